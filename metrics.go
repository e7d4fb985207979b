package gotrail

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts recorded actions and failed flushes. A nil *Metrics records nothing.
type Metrics struct {
	actions       *prometheus.CounterVec
	flushFailures *prometheus.CounterVec
}

// NewMetrics registers the gotrail counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gotrail",
			Name:      "actions_recorded_total",
			Help:      "Number of actions persisted, by entity collection and action type.",
		}, []string{"collection", "type"}),
		flushFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gotrail",
			Name:      "flush_failures_total",
			Help:      "Number of saves whose actions could not be persisted.",
		}, []string{"collection"}),
	}
	for _, c := range []prometheus.Collector{m.actions, m.flushFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recorded(collection string, actions []Action) {
	if m == nil {
		return
	}
	for _, a := range actions {
		m.actions.WithLabelValues(collection, string(a.Type)).Inc()
	}
}

func (m *Metrics) flushFailed(collection string) {
	if m == nil {
		return
	}
	m.flushFailures.WithLabelValues(collection).Inc()
}

// Actions returns the persisted actions counter, labelled by collection and type.
func (m *Metrics) Actions() *prometheus.CounterVec {
	return m.actions
}

// FlushFailures returns the failed flush counter, labelled by collection.
func (m *Metrics) FlushFailures() *prometheus.CounterVec {
	return m.flushFailures
}
