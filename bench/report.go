package bench

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"
)

// Host describes the machine a run executes on.
type Host struct {
	Brand         string
	PhysicalCores int
	LogicalCores  int
	Features      []string
}

// hashFeatures are the CPU extensions the hash primitives can use.
var hashFeatures = []cpuid.FeatureID{cpuid.SHA, cpuid.AVX2, cpuid.AVX512F, cpuid.ASIMD, cpuid.SHA2, cpuid.SHA3}

// DetectHost reads the CPU description.
func DetectHost() Host {
	h := Host{
		Brand:         strings.TrimSpace(cpuid.CPU.BrandName),
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
	}
	if h.Brand == "" {
		h.Brand = "unknown"
	}
	for _, f := range hashFeatures {
		if cpuid.CPU.Supports(f) {
			h.Features = append(h.Features, f.String())
		}
	}
	return h
}

// WriteHeader prints the run header.
func WriteHeader(w io.Writer, h Host, cfg Config) {
	_, _ = fmt.Fprintf(w, "Using backend: %s\n", cfg.Backend)
	_, _ = fmt.Fprintf(w, "Host: %s (%d cores, %d threads)", h.Brand, h.PhysicalCores, h.LogicalCores)
	if len(h.Features) > 0 {
		_, _ = fmt.Fprintf(w, " [%s]", strings.Join(h.Features, " "))
	}
	_, _ = fmt.Fprintf(w, "\nIterations per parameter: %d\n\n", cfg.Iterations)
	_, _ = fmt.Fprintf(w, "=== SPHINCS+ Signature Benchmark ===\n")
}

// WriteResult prints one parameter set. prev, if non-nil, adds the change
// against an earlier run.
func WriteResult(w io.Writer, r Result, prev *Result) {
	_, _ = fmt.Fprintf(w, "\nParameter: %s\n", r.Params)
	line := func(label string, cur time.Duration, old func(Result) time.Duration) {
		_, _ = fmt.Fprintf(w, "%s: %.3f ms (avg)", label, millis(cur))
		if prev != nil && old(*prev) > 0 {
			_, _ = fmt.Fprintf(w, " %+.1f%%", 100*(float64(cur)/float64(old(*prev))-1))
		}
		_, _ = fmt.Fprintln(w)
	}
	line("Key generation  ", r.KeyGen, func(p Result) time.Duration { return p.KeyGen })
	line("Signing         ", r.Sign, func(p Result) time.Duration { return p.Sign })
	line("Verification    ", r.Verify, func(p Result) time.Duration { return p.Verify })
	_, _ = fmt.Fprintf(w, "Public key size : %d bytes\n", r.PublicKeySize)
	_, _ = fmt.Fprintf(w, "Private key size: %d bytes\n", r.PrivateKeySize)
	_, _ = fmt.Fprintf(w, "Signature size  : %d bytes\n", r.SignatureSize)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
