package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records counters for the order lifecycle engine.
type LifecycleMetrics struct {
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	selections  prometheus.Counter
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_status_transitions_total",
		Help: "Committed deal status transitions, by target phase.",
	}, []string{"phase"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_status_transitions_rejected_total",
		Help: "Status transition attempts rejected as invalid.",
	}, []string{"phase"})
	selections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quoting_winner_selections_total",
		Help: "Committed winner selections in competitive quoting.",
	})
	reg.MustRegister(transitions, rejected, selections)
	return &LifecycleMetrics{
		transitions: transitions,
		rejected:    rejected,
		selections:  selections,
	}
}

// IncTransition increments the committed transition counter for the phase.
func (m *LifecycleMetrics) IncTransition(phase string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(phase)).Inc()
}

// IncRejected increments the rejected transition counter for the phase.
func (m *LifecycleMetrics) IncRejected(phase string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(phase)).Inc()
}

// IncSelection increments the winner selection counter.
func (m *LifecycleMetrics) IncSelection() {
	if m == nil || m.selections == nil {
		return
	}
	m.selections.Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
