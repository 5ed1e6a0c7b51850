package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics are the mediation counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	created  prometheus.Counter
	failed   *prometheus.CounterVec
	rejected prometheus.Counter
}

// NewRegistry returns the registry served on /metrics, with the Go and process
// collectors already attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediation",
			Name:      "call_details_created_total",
			Help:      "Call details built from IPCG records.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediation",
			Name:      "call_details_failed_total",
			Help:      "IPCG records that could not be turned into a call detail.",
		}, []string{"reason"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediation",
			Name:      "batches_rejected_total",
			Help:      "ER lines rejected before any record was built.",
		}),
	}
	reg.MustRegister(m.created, m.failed, m.rejected)
	return m
}

func (m *Metrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Metrics) ObserveFailed(reason string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveBatchRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}
