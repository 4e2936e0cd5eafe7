package config

import "fmt"

// DispenserConfig defines settings for the dispenser node.
type DispenserConfig struct {
	// AckTimeoutSeconds bounds the acknowledgment window after a dispense.
	AckTimeoutSeconds int `json:"ack_timeout_seconds"`
	// TickMS is the state machine evaluation period.
	TickMS int `json:"tick_ms"`
	// BlinkMS is the alert indicator toggle period.
	BlinkMS int `json:"blink_ms"`
	// PulseMS is the actuator activation duration on dispensing.
	PulseMS int `json:"pulse_ms"`
	// DoseLog is the append-only event log path.
	DoseLog string `json:"dose_log"`
}

// SetDefaults applies sane defaults.
func (c *DispenserConfig) SetDefaults() {
	if c.AckTimeoutSeconds == 0 {
		c.AckTimeoutSeconds = 60
	}
	if c.TickMS == 0 {
		c.TickMS = 100
	}
	if c.BlinkMS == 0 {
		c.BlinkMS = 500
	}
	if c.PulseMS == 0 {
		c.PulseMS = 380
	}
	if c.DoseLog == "" {
		c.DoseLog = "dose_log.txt"
	}
}

// Validate checks mandatory fields.
func (c DispenserConfig) Validate() error {
	if c.AckTimeoutSeconds < 1 {
		return fmt.Errorf("ack_timeout_seconds must be positive, got %d", c.AckTimeoutSeconds)
	}
	if c.TickMS < 1 || c.TickMS > 1000 {
		return fmt.Errorf("tick_ms must be in [1, 1000], got %d", c.TickMS)
	}
	if c.BlinkMS < 1 {
		return fmt.Errorf("blink_ms must be positive, got %d", c.BlinkMS)
	}
	return nil
}
