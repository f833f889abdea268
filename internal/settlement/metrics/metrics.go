package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"go-settlement/internal/settlement/data"
)

const namespace = "settlement"

type Metrics struct {
	Transitions     *prometheus.CounterVec
	Callbacks       *prometheus.CounterVec
	Jobs            *prometheus.CounterVec
	Compensations   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Deposit and order transitions by outcome.",
			},
			[]string{"entity", "transition", "outcome"},
		),
		Callbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "callbacks_total",
				Help:      "Provider callbacks by outcome.",
			},
			[]string{"provider", "outcome"},
		),
		Jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Delayed jobs processed by outcome.",
			},
			[]string{"type", "outcome"},
		),
		Compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compensations_total",
				Help:      "Compensation steps by outcome.",
			},
			[]string{"action", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"route", "code"},
		),
	}
	registerer.MustRegister(m.Transitions, m.Callbacks, m.Jobs, m.Compensations, m.RequestDuration)
	return m
}

func (m *Metrics) Transition(entity data.EntityKind, transition string, outcome string) {
	m.Transitions.WithLabelValues(string(entity), transition, outcome).Inc()
}

func (m *Metrics) Callback(provider string, outcome string) {
	m.Callbacks.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) Job(jobType string, outcome string) {
	m.Jobs.WithLabelValues(jobType, outcome).Inc()
}

func (m *Metrics) Compensation(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Compensations.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveRequest(route string, code string, seconds float64) {
	m.RequestDuration.WithLabelValues(route, code).Observe(seconds)
}
