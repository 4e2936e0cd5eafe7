// Package metrics defines the observability events both nodes emit and the
// sink interface the infra adapters implement.
package metrics

import "time"

// DispenseEvent records a dispense command leaving the scheduler or
// arriving at the dispenser.
type DispenseEvent struct {
	Slot string
	Time time.Time
}

// OutcomeEvent records the result of a dispense cycle.
type OutcomeEvent struct {
	Slot  string
	Taken bool
	// Elapsed is the time between the dispense command and the outcome.
	Elapsed time.Duration
	Time    time.Time
}

// ReconnectEvent records one broker reconnect attempt.
type ReconnectEvent struct {
	Wait time.Duration
	Time time.Time
}

// Sink records node events for observability purposes.
type Sink interface {
	RecordDispense(ev DispenseEvent) error
	RecordOutcome(ev OutcomeEvent) error
	RecordReconnect(ev ReconnectEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordDispense(DispenseEvent) error   { return nil }
func (NopSink) RecordOutcome(OutcomeEvent) error     { return nil }
func (NopSink) RecordReconnect(ReconnectEvent) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = "2112"
	}
}
