package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/loom-ui/loom/pkg/host"
)

// Metrics is the Prometheus instrumentation for one engine.
type Metrics struct {
	Mounts         prometheus.Counter
	Unmounts       prometheus.Counter
	Rerenders      prometheus.Counter
	RenderFailures prometheus.Counter
	RenderDuration prometheus.Histogram
	Mutations      *prometheus.CounterVec
}

// NewMetrics registers the engine metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Mounts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "engine",
			Name:      "mounts_total",
			Help:      "Component instances mounted.",
		}),
		Unmounts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "engine",
			Name:      "unmounts_total",
			Help:      "Component instances unmounted.",
		}),
		Rerenders: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "engine",
			Name:      "rerenders_total",
			Help:      "Committed re-render passes.",
		}),
		RenderFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "engine",
			Name:      "render_failures_total",
			Help:      "Re-renders abandoned because the component failed.",
		}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loom",
			Subsystem: "engine",
			Name:      "render_duration_seconds",
			Help:      "Duration of committed re-render passes.",
			Buckets:   prometheus.DefBuckets,
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "engine",
			Name:      "host_mutations_total",
			Help:      "Host tree mutations by operation.",
		}, []string{"op"}),
	}
}

// ObserveMutation counts one host mutation; wire it to Document.Observe.
func (m *Metrics) ObserveMutation(mut host.Mutation) {
	m.Mutations.WithLabelValues(mut.Op.String()).Inc()
}
