package bench

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors updated by the runner.
type Metrics struct {
	OpLatency    *prometheus.HistogramVec
	ArtifactSize *prometheus.GaugeVec
	Failures     *prometheus.CounterVec
}

// NewMetrics initializes Prometheus metrics for benchmark runs.
func NewMetrics() *Metrics {
	return &Metrics{
		OpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sphincs_operation_latency_seconds",
				Help:    "Latency of key generation, signing and verification",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "params", "op"},
		),
		ArtifactSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sphincs_artifact_size_bytes",
				Help: "Encoded size of public keys, private keys and signatures",
			},
			[]string{"backend", "params", "artifact"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sphincs_failure_count",
				Help: "Number of failed benchmark iterations",
			},
			[]string{"backend", "params"},
		),
	}
}

// Register adds all collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.OpLatency, m.ArtifactSize, m.Failures} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observe(backend, params, op string, d time.Duration) {
	if m == nil {
		return
	}
	m.OpLatency.WithLabelValues(backend, params, op).Observe(d.Seconds())
}

func (m *Metrics) sizes(r Result) {
	if m == nil {
		return
	}
	m.ArtifactSize.WithLabelValues(r.Backend, r.Params, "public_key").Set(float64(r.PublicKeySize))
	m.ArtifactSize.WithLabelValues(r.Backend, r.Params, "private_key").Set(float64(r.PrivateKeySize))
	m.ArtifactSize.WithLabelValues(r.Backend, r.Params, "signature").Set(float64(r.SignatureSize))
}

func (m *Metrics) failure(backend, params string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(backend, params).Inc()
}
