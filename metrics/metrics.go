// Package metrics exposes Prometheus instrumentation for capability probes and
// session lifecycle. The created/destroyed counter pair makes session leaks
// visible: the two values must converge when no operation is in flight.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set bundles the panelprobe collectors registered on one registry.
type Set struct {
	// ProbesTotal counts availability probes by capability and resulting status.
	ProbesTotal *prometheus.CounterVec

	// SessionsCreated counts capability sessions created, by capability.
	SessionsCreated *prometheus.CounterVec

	// SessionsDestroyed counts capability sessions destroyed, by capability.
	SessionsDestroyed *prometheus.CounterVec

	// SessionsActive tracks sessions currently alive.
	SessionsActive prometheus.Gauge

	// SummarizePasses observes how many reduction passes a summarization took.
	SummarizePasses prometheus.Histogram

	// DownloadProgress records the last reported model download percent.
	DownloadProgress *prometheus.GaugeVec
}

// New creates a Set registered on the given registerer.
func New(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)

	return &Set{
		ProbesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panelprobe",
			Name:      "probes_total",
			Help:      "Availability probes by capability and normalized status.",
		}, []string{"capability", "status"}),
		SessionsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panelprobe",
			Name:      "sessions_created_total",
			Help:      "Capability sessions created.",
		}, []string{"capability"}),
		SessionsDestroyed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panelprobe",
			Name:      "sessions_destroyed_total",
			Help:      "Capability sessions destroyed.",
		}, []string{"capability"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "panelprobe",
			Name:      "sessions_active",
			Help:      "Capability sessions currently alive.",
		}),
		SummarizePasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "panelprobe",
			Name:      "summarize_passes",
			Help:      "Reduction passes per summarization.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8},
		}),
		DownloadProgress: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "panelprobe",
			Name:      "download_progress_percent",
			Help:      "Last reported model download progress percent.",
		}, []string{"capability"}),
	}
}

// NewDefault creates a Set on its own private registry. Used by commands that
// do not serve metrics but still feed the counters.
func NewDefault() *Set {
	return New(prometheus.NewRegistry())
}
