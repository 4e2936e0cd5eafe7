package schedule

import (
	"context"
	"strconv"
	"time"

	"github.com/medibox-iot/medibox/core/bus"
	"github.com/medibox-iot/medibox/core/doselog"
	"github.com/medibox-iot/medibox/core/logger"
	"github.com/medibox-iot/medibox/core/metrics"
	"github.com/medibox-iot/medibox/core/protocol"
)

// DefaultPollInterval is how often the trigger loop compares the wall clock
// against the schedule. Anything at or below a minute preserves the
// minute-granularity trigger behavior.
const DefaultPollInterval = 30 * time.Second

// Trigger fires dispense commands when a schedule entry's time matches the
// current wall-clock minute. The match is exact: if the process is
// suspended across the scheduled minute, that dose is skipped for the day.
type Trigger struct {
	store    *Store
	client   bus.Client
	topic    string
	interval time.Duration
	dose     *doselog.Log
	sink     metrics.Sink
	log      logger.Logger
	now      func() time.Time
}

// NewTrigger creates the trigger loop. dose may be nil to skip event
// logging; sink may be nil for no metrics.
func NewTrigger(store *Store, client bus.Client, topic string, interval time.Duration, dose *doselog.Log, sink metrics.Sink, log logger.Logger) *Trigger {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Trigger{
		store:    store,
		client:   client,
		topic:    topic,
		interval: interval,
		dose:     dose,
		sink:     sink,
		log:      log,
		now:      time.Now,
	}
}

// Run polls until the context is cancelled.
func (t *Trigger) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Check(t.now())
		}
	}
}

// Check fires every entry whose time matches the given wall-clock minute.
// The entry is consumed whether or not the publish succeeded; the command
// is not retried on a later tick.
func (t *Trigger) Check(now time.Time) {
	minute := now.Format(TimeLayout)
	for _, e := range t.store.Entries() {
		if e.Time != minute {
			continue
		}
		t.fire(e, now)
	}
}

func (t *Trigger) fire(e Entry, now time.Time) {
	slot := strconv.Itoa(e.Slot)
	if err := t.client.Publish(t.topic, protocol.CommandPayload(slot)); err != nil {
		t.log.Errorf("publish dispense for slot %d: %v", e.Slot, err)
	} else {
		t.log.Infof("triggered slot %d at %s", e.Slot, e.Time)
	}
	t.store.Remove(e.Time, e.Slot)
	if t.dose != nil {
		if err := t.dose.Append(now, slot, doselog.ActionDispense); err != nil {
			t.log.Errorf("dose log: %v", err)
		}
	}
	if err := t.sink.RecordDispense(metrics.DispenseEvent{Slot: slot, Time: now}); err != nil {
		t.log.Errorf("metrics: %v", err)
	}
}
