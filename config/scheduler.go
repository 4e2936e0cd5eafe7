package config

import "fmt"

// SchedulerConfig defines settings for the scheduler node.
type SchedulerConfig struct {
	// PollSeconds is the trigger loop interval. Anything above 60 risks
	// skipping the minute a dose is scheduled for.
	PollSeconds int `json:"poll_seconds"`
	// ScheduleFile is where the entry list is persisted.
	ScheduleFile string `json:"schedule_file"`
	// MaxSlots bounds the number of concurrently scheduled entries.
	MaxSlots int `json:"max_slots"`
	// DoseLog is the append-only event log path.
	DoseLog string `json:"dose_log"`
}

// SetDefaults applies sane defaults.
func (c *SchedulerConfig) SetDefaults() {
	if c.PollSeconds == 0 {
		c.PollSeconds = 30
	}
	if c.ScheduleFile == "" {
		c.ScheduleFile = "schedules.json"
	}
	if c.MaxSlots == 0 {
		c.MaxSlots = 3
	}
	if c.DoseLog == "" {
		c.DoseLog = "dose_log.txt"
	}
}

// Validate checks mandatory fields.
func (c SchedulerConfig) Validate() error {
	if c.PollSeconds < 1 || c.PollSeconds > 60 {
		return fmt.Errorf("poll_seconds must be in [1, 60], got %d", c.PollSeconds)
	}
	if c.MaxSlots < 1 {
		return fmt.Errorf("max_slots must be positive, got %d", c.MaxSlots)
	}
	return nil
}
