package poller

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cycle results used as the "result" label.
const (
	resultSyncing = "syncing"
	resultSynced  = "synced"
	resultFailed  = "failed"
	resultDropped = "discarded"
)

// Metrics are the Prometheus collectors of a Poller.
type Metrics struct {
	cycles       *prometheus.CounterVec
	skipped      prometheus.Counter
	duration     prometheus.Histogram
	nodes        prometheus.Gauge
	renderErrors prometheus.Counter
}

// NewMetrics creates the poller collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackgraph_poll_cycles_total",
				Help: "Number of completed poll cycles by result.",
			},
			[]string{"result"},
		),
		skipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stackgraph_poll_skipped_ticks_total",
				Help: "Number of ticks skipped because a cycle was still running.",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stackgraph_poll_cycle_duration_seconds",
				Help:    "Time taken by one preview, build and layout cycle.",
				Buckets: prometheus.DefBuckets,
			},
		),
		nodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stackgraph_graph_nodes",
				Help: "Number of resources in the last rendered graph.",
			},
		),
		renderErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stackgraph_render_errors_total",
				Help: "Number of messages a renderer sink failed to deliver.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.cycles, m.skipped, m.duration, m.nodes, m.renderErrors)
	}
	return m
}
