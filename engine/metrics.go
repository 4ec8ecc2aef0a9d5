package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	commands *prometheus.CounterVec
	events   *prometheus.CounterVec
}

// NewMetrics registers the engine counters on reg. A nil reg keeps the
// counters unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gojobs",
			Subsystem: "engine",
			Name:      "commands_total",
			Help:      "Commands run by the engine loop, by op and result.",
		}, []string{"op", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gojobs",
			Subsystem: "engine",
			Name:      "events_total",
			Help:      "Events flushed after successful commands, by name.",
		}, []string{"event"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.commands, m.events} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) command(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commands.WithLabelValues(op, result).Inc()
}

func (m *Metrics) event(name string) {
	m.events.WithLabelValues(name).Inc()
}
