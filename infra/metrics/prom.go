package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/medibox-iot/medibox/core/metrics"
)

// PromSink records node events in Prometheus metrics.
type PromSink struct {
	dispenses  *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	reconnects prometheus.Counter
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	dispenses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispense_commands_total",
		Help: "Total number of dispense commands",
	}, []string{"slot"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dose_outcomes_total",
		Help: "Total number of completed dispense cycles",
	}, []string{"slot", "taken"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ack_latency_seconds",
		Help:    "Time between dispense command and acknowledgment or timeout",
		Buckets: prometheus.DefBuckets,
	}, []string{"taken"})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bus_reconnects_total",
		Help: "Number of broker reconnect attempts",
	})

	if err := reg.Register(dispenses); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			dispenses = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(outcomes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			outcomes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(reconnects); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			reconnects = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &PromSink{dispenses: dispenses, outcomes: outcomes, latency: latency, reconnects: reconnects}, nil
}

// RecordDispense increments the dispense counter for the slot.
func (s *PromSink) RecordDispense(ev coremetrics.DispenseEvent) error {
	s.dispenses.WithLabelValues(ev.Slot).Inc()
	return nil
}

// RecordOutcome increments the outcome counter and observes the latency.
func (s *PromSink) RecordOutcome(ev coremetrics.OutcomeEvent) error {
	taken := strconv.FormatBool(ev.Taken)
	s.outcomes.WithLabelValues(ev.Slot, taken).Inc()
	s.latency.WithLabelValues(taken).Observe(ev.Elapsed.Seconds())
	return nil
}

// RecordReconnect counts one reconnect attempt.
func (s *PromSink) RecordReconnect(coremetrics.ReconnectEvent) error {
	s.reconnects.Inc()
	return nil
}
