package agenda

import "github.com/prometheus/client_golang/prometheus"

// Metrics expone contadores del ciclo fetch/mutación. Es nil-safe.
type Metrics struct {
	fetchTotal    *prometheus.CounterVec
	staleTotal    prometheus.Counter
	mutationTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vet_appointments",
			Subsystem: "agenda",
			Name:      "fetch_total",
			Help:      "Appointment collection fetches by scope and outcome",
		}, []string{"scope", "outcome"}),
		staleTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vet_appointments",
			Subsystem: "agenda",
			Name:      "stale_responses_total",
			Help:      "Fetch responses dropped because a newer request was dispatched",
		}),
		mutationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vet_appointments",
			Subsystem: "agenda",
			Name:      "mutation_total",
			Help:      "Appointment mutations by operation and outcome",
		}, []string{"op", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.staleTotal, m.mutationTotal)
	return m
}

func (m *Metrics) ObserveFetch(scope, outcome string) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) ObserveStale() {
	if m == nil {
		return
	}
	m.staleTotal.Inc()
}

func (m *Metrics) ObserveMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutationTotal.WithLabelValues(op, outcome).Inc()
}
