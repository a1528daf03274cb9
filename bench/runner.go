package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrVerifyFailed is returned when a freshly produced signature does not
// verify.
var ErrVerifyFailed = errors.New("bench: signature verification failed")

// Result is the outcome of one parameter set. Durations are averages.
type Result struct {
	Backend        string        `json:"backend"`
	Params         string        `json:"params"`
	Iterations     int           `json:"iterations"`
	KeyGen         time.Duration `json:"keygen_ns"`
	Sign           time.Duration `json:"sign_ns"`
	Verify         time.Duration `json:"verify_ns"`
	PublicKeySize  int           `json:"public_key_size"`
	PrivateKeySize int           `json:"private_key_size"`
	SignatureSize  int           `json:"signature_size"`
	Time           time.Time     `json:"time"`
}

// Runner executes the configured iterations against one backend.
type Runner struct {
	cfg     Config
	backend Backend
	metrics *Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewRunner validates cfg and returns a runner. metrics and log may be nil.
func NewRunner(cfg Config, backend Backend, metrics *Metrics, log *zap.Logger) (*Runner, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, errors.New("bench: backend is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		backend: backend,
		metrics: metrics,
		log:     log.With(zap.String("backend", backend.Name())),
		now:     time.Now,
	}, nil
}

// Run benchmarks every configured parameter set in order. fn, if non-nil,
// is called after each set completes.
func (r *Runner) Run(ctx context.Context, fn func(Result)) ([]Result, error) {
	out := make([]Result, 0, len(r.cfg.ParameterSets))
	for _, set := range r.cfg.ParameterSets {
		res, err := r.RunSet(ctx, set)
		if err != nil {
			return out, err
		}
		out = append(out, res)
		if fn != nil {
			fn(res)
		}
	}
	return out, nil
}

// RunSet benchmarks a single parameter set. The context is checked between
// iterations; a running operation is never interrupted.
func (r *Runner) RunSet(ctx context.Context, set string) (Result, error) {
	alg, err := r.backend.Open(set)
	if err != nil {
		return Result{}, err
	}
	name := alg.Name()
	log := r.log.With(zap.String("params", name))
	msg := []byte(r.cfg.Message)
	res := Result{Backend: r.backend.Name(), Params: name, Iterations: r.cfg.Iterations, Time: r.now()}

	var genTotal, signTotal, verifyTotal time.Duration
	for i := 0; i < r.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := time.Now()
		kp, err := alg.GenerateKey()
		d := time.Since(start)
		if err != nil {
			r.metrics.failure(res.Backend, name)
			return res, fmt.Errorf("bench: %s keygen: %w", name, err)
		}
		genTotal += d
		r.metrics.observe(res.Backend, name, "keygen", d)
		if i == 0 {
			if res.PublicKeySize, err = kp.PublicKeySize(); err != nil {
				return res, fmt.Errorf("bench: %s encode public key: %w", name, err)
			}
			if res.PrivateKeySize, err = kp.PrivateKeySize(); err != nil {
				return res, fmt.Errorf("bench: %s encode private key: %w", name, err)
			}
		}

		start = time.Now()
		sig, err := alg.Sign(kp, msg)
		d = time.Since(start)
		if err != nil {
			r.metrics.failure(res.Backend, name)
			return res, fmt.Errorf("bench: %s sign: %w", name, err)
		}
		signTotal += d
		r.metrics.observe(res.Backend, name, "sign", d)
		if i == 0 {
			res.SignatureSize = len(sig)
		}

		start = time.Now()
		ok, err := alg.Verify(kp, msg, sig)
		d = time.Since(start)
		if err != nil {
			r.metrics.failure(res.Backend, name)
			return res, fmt.Errorf("bench: %s verify: %w", name, err)
		}
		if !ok {
			r.metrics.failure(res.Backend, name)
			log.Error("verification failed", zap.Int("iteration", i))
			return res, fmt.Errorf("%w for %s", ErrVerifyFailed, name)
		}
		verifyTotal += d
		r.metrics.observe(res.Backend, name, "verify", d)
		log.Debug("iteration done", zap.Int("iteration", i))
	}

	n := time.Duration(r.cfg.Iterations)
	res.KeyGen = genTotal / n
	res.Sign = signTotal / n
	res.Verify = verifyTotal / n
	r.metrics.sizes(res)
	log.Info("parameter set done",
		zap.Duration("keygen", res.KeyGen),
		zap.Duration("sign", res.Sign),
		zap.Duration("verify", res.Verify),
		zap.Int("signature_size", res.SignatureSize),
	)
	return res, nil
}
