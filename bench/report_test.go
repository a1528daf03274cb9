package bench

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteResult(t *testing.T) {
	r := Result{
		Params:         "SLH-DSA-SHA2-128s",
		KeyGen:         1500 * time.Microsecond,
		Sign:           20 * time.Millisecond,
		Verify:         250 * time.Microsecond,
		PublicKeySize:  32,
		PrivateKeySize: 64,
		SignatureSize:  7856,
	}
	var buf bytes.Buffer
	WriteResult(&buf, r, nil)
	require.Equal(t, `
Parameter: SLH-DSA-SHA2-128s
Key generation  : 1.500 ms (avg)
Signing         : 20.000 ms (avg)
Verification    : 0.250 ms (avg)
Public key size : 32 bytes
Private key size: 64 bytes
Signature size  : 7856 bytes
`, buf.String())

	prev := r
	prev.Sign = 25 * time.Millisecond
	prev.Verify = 0
	buf.Reset()
	WriteResult(&buf, r, &prev)
	require.Contains(t, buf.String(), "Key generation  : 1.500 ms (avg) +0.0%\n")
	require.Contains(t, buf.String(), "Signing         : 20.000 ms (avg) -20.0%\n")
	require.Contains(t, buf.String(), "Verification    : 0.250 ms (avg)\n")
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	WriteHeader(&buf, Host{Brand: "Test CPU", PhysicalCores: 4, LogicalCores: 8, Features: []string{"SHA", "AVX2"}}, cfg)
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Using backend: native\n"))
	require.Contains(t, out, "Host: Test CPU (4 cores, 8 threads) [SHA AVX2]\n")
	require.Contains(t, out, "Iterations per parameter: 10\n")
	require.True(t, strings.HasSuffix(out, "=== SPHINCS+ Signature Benchmark ===\n"))

	h := DetectHost()
	require.NotEmpty(t, h.Brand)
}
