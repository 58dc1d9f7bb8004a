// Package promhooks exports store events as Prometheus metrics.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unkn0wn-root/ixcache"
)

// Failure stages, used as the "stage" label of the failures counter.
const (
	StageDial   = "dial"
	StageEncode = "encode"
	StageWrite  = "write"
)

type Hooks struct {
	stored       prometheus.Counter
	payloadBytes prometheus.Histogram
	skipped      prometheus.Counter
	connects     prometheus.Counter
	failures     *prometheus.CounterVec
}

var _ ixcache.Hooks = (*Hooks)(nil)

// New registers the collectors on reg under namespace ("" => "ixcache").
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if namespace == "" {
		namespace = ixcache.PluginName
	}
	h := &Hooks{
		stored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stored_total",
			Help:      "Inner instruction sets written to the cache.",
		}),
		payloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_bytes",
			Help:      "Size of written payloads.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentinel_skipped_total",
			Help:      "Transaction notifications dropped for carrying the zero signature.",
		}),
		connects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connects_total",
			Help:      "Cache connections established.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed store calls by stage.",
		}, []string{"stage"}),
	}

	for _, c := range []prometheus.Collector{h.stored, h.payloadBytes, h.skipped, h.connects, h.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	// pre-create series so dashboards see zeros
	for _, s := range []string{StageDial, StageEncode, StageWrite} {
		h.failures.WithLabelValues(s)
	}
	return h, nil
}

func (h *Hooks) SentinelSkipped(uint64) { h.skipped.Inc() }

func (h *Hooks) Stored(_ string, size int) {
	h.stored.Inc()
	h.payloadBytes.Observe(float64(size))
}

func (h *Hooks) Connected()                 { h.connects.Inc() }
func (h *Hooks) DialFailed(error)           { h.failures.WithLabelValues(StageDial).Inc() }
func (h *Hooks) EncodeFailed(string, error) { h.failures.WithLabelValues(StageEncode).Inc() }
func (h *Hooks) WriteFailed(string, error)  { h.failures.WithLabelValues(StageWrite).Inc() }
