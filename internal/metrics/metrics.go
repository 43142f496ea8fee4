// Package metrics defines the Prometheus instrumentation for the turn
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the turn pipeline metrics. A nil *Collector is valid
// and records nothing, so instrumentation stays optional.
type Collector struct {
	turnsTotal         *prometheus.CounterVec
	turnDuration       prometheus.Histogram
	planDegradations   *prometheus.CounterVec
	specialistFailures *prometheus.CounterVec
	recipientFallbacks *prometheus.CounterVec
	traceEventsDropped prometheus.Counter
}

// New creates a Collector and registers it with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "turns_total",
			Help:      "Completed turns by routing outcome.",
		}, []string{"route"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "turn_duration_seconds",
			Help:      "Wall time of a full turn through the pipeline.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		planDegradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "plan_degradations_total",
			Help:      "Plans recovered by regex salvage instead of strict parsing.",
		}, []string{"agent"}),
		specialistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "specialist_failures_total",
			Help:      "Leaf call failures caught at the coordinator boundary.",
		}, []string{"agent"}),
		recipientFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "recipient_fallbacks_total",
			Help:      "Recipient resolutions that exhausted every query tier.",
		}, []string{"tier"}),
		traceEventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "trace_events_dropped_total",
			Help:      "Trace events discarded due to sink backpressure.",
		}),
	}
	reg.MustRegister(
		c.turnsTotal,
		c.turnDuration,
		c.planDegradations,
		c.specialistFailures,
		c.recipientFallbacks,
		c.traceEventsDropped,
	)
	return c
}

// TurnCompleted records one finished turn.
func (c *Collector) TurnCompleted(route string, seconds float64) {
	if c == nil {
		return
	}
	c.turnsTotal.WithLabelValues(route).Inc()
	c.turnDuration.Observe(seconds)
}

// PlanDegraded records a regex-salvaged plan.
func (c *Collector) PlanDegraded(agent string) {
	if c == nil {
		return
	}
	c.planDegradations.WithLabelValues(agent).Inc()
}

// SpecialistFailed records a caught leaf failure.
func (c *Collector) SpecialistFailed(agent string) {
	if c == nil {
		return
	}
	c.specialistFailures.WithLabelValues(agent).Inc()
}

// RecipientFallback records a hard-coded mailbox fallback.
func (c *Collector) RecipientFallback(tier string) {
	if c == nil {
		return
	}
	c.recipientFallbacks.WithLabelValues(tier).Inc()
}

// TraceEventDropped records one discarded trace event.
func (c *Collector) TraceEventDropped() {
	if c == nil {
		return
	}
	c.traceEventsDropped.Inc()
}
