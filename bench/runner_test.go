package bench

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBackend struct {
	badVerify bool
	signErr   error
	keygens   int
}

type fakeKeys struct{}

func (fakeKeys) PublicKeySize() (int, error)  { return 32, nil }
func (fakeKeys) PrivateKeySize() (int, error) { return 64, nil }

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Open(set string) (Algorithm, error) {
	return &fakeAlgorithm{b: b, name: set}, nil
}

type fakeAlgorithm struct {
	b    *fakeBackend
	name string
}

func (a *fakeAlgorithm) Name() string { return a.name }

func (a *fakeAlgorithm) GenerateKey() (KeyPair, error) {
	a.b.keygens++
	return fakeKeys{}, nil
}

func (a *fakeAlgorithm) Sign(_ KeyPair, msg []byte) ([]byte, error) {
	if a.b.signErr != nil {
		return nil, a.b.signErr
	}
	return append([]byte("sig:"), msg...), nil
}

func (a *fakeAlgorithm) Verify(_ KeyPair, msg, sig []byte) (bool, error) {
	return !a.b.badVerify && bytes.Equal(sig, append([]byte("sig:"), msg...)), nil
}

func fakeConfig() Config {
	cfg := DefaultConfig()
	cfg.ParameterSets = []string{"SLH-DSA-SHA2-128f", "SLH-DSA-SHAKE-128f"}
	cfg.Iterations = 4
	cfg.Message = "abc"
	return cfg
}

func TestRunnerFake(t *testing.T) {
	b := &fakeBackend{}
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	r, err := NewRunner(fakeConfig(), b, m, nil)
	require.NoError(t, err)

	var seen []string
	res, err := r.Run(context.Background(), func(r Result) { seen = append(seen, r.Params) })
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, []string{"SLH-DSA-SHA2-128f", "SLH-DSA-SHAKE-128f"}, seen)
	require.Equal(t, 8, b.keygens)
	for _, x := range res {
		require.Equal(t, "fake", x.Backend)
		require.Equal(t, 4, x.Iterations)
		require.Equal(t, 32, x.PublicKeySize)
		require.Equal(t, 64, x.PrivateKeySize)
		require.Equal(t, 7, x.SignatureSize)
		require.False(t, x.Time.IsZero())
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]int{}
	for _, f := range families {
		counts[f.GetName()] = len(f.GetMetric())
	}
	require.Equal(t, 6, counts["sphincs_operation_latency_seconds"])
	require.Equal(t, 6, counts["sphincs_artifact_size_bytes"])
	require.NotContains(t, counts, "sphincs_failure_count")
}

func TestRunnerVerifyFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	m := NewMetrics()
	r, err := NewRunner(fakeConfig(), &fakeBackend{badVerify: true}, m, zap.New(core))
	require.NoError(t, err)

	res, err := r.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrVerifyFailed)
	require.Empty(t, res)
	require.Equal(t, 1, logs.FilterMessage("verification failed").Len())

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.Failures))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, 1.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestRunnerSignError(t *testing.T) {
	boom := errors.New("boom")
	r, err := NewRunner(fakeConfig(), &fakeBackend{signErr: boom}, nil, nil)
	require.NoError(t, err)
	_, err = r.RunSet(context.Background(), "SLH-DSA-SHA2-128f")
	require.ErrorIs(t, err, boom)
}

func TestRunnerCanceled(t *testing.T) {
	b := &fakeBackend{}
	r, err := NewRunner(fakeConfig(), b, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, b.keygens)
}

func TestNewRunnerRejects(t *testing.T) {
	_, err := NewRunner(fakeConfig(), nil, nil, nil)
	require.Error(t, err)
	cfg := fakeConfig()
	cfg.Iterations = 0
	_, err = NewRunner(cfg, &fakeBackend{}, nil, nil)
	require.Error(t, err)
}

func TestRunnerNative(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.ParameterSets = []string{"SLH-DSA-SHAKE-128f"}
	cfg.Iterations = 2
	cfg.Threads = 2
	b, err := NewBackend(cfg.Backend, cfg.Threads)
	require.NoError(t, err)
	r, err := NewRunner(cfg, b, nil, nil)
	require.NoError(t, err)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, BackendNative, res[0].Backend)
	require.Equal(t, "SLH-DSA-SHAKE-128f", res[0].Params)
	require.Equal(t, 32, res[0].PublicKeySize)
	require.Equal(t, 64, res[0].PrivateKeySize)
	require.Equal(t, 17088, res[0].SignatureSize)
	require.Positive(t, res[0].KeyGen)
	require.Equal(t, time.Unix(1700000000, 0), res[0].Time)
}
