package gateway

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports guarded-handle state to Prometheus.
//
// A single Metrics instance is shared by all handles in the process. It is
// created once in main with an explicitly-owned registry; there is no
// package-level default registration, so tests can create isolated
// instances freely.
type Metrics struct {
	state       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
}

// NewMetrics creates and registers the dependency metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vitrine",
			Subsystem: "dependency",
			Name:      "state",
			Help:      "Current dependency state (0=unconfigured, 1=connecting, 2=available, 3=unavailable).",
		}, []string{"dependency"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "dependency",
			Name:      "transitions_total",
			Help:      "Count of dependency state transitions by resulting state.",
		}, []string{"dependency", "to"}),
	}
	reg.MustRegister(m.state, m.transitions)
	return m
}

func (m *Metrics) setState(dependency string, s State) {
	m.state.WithLabelValues(dependency).Set(float64(s))
}

func (m *Metrics) countTransition(dependency string, to State) {
	m.transitions.WithLabelValues(dependency, to.String()).Inc()
}
