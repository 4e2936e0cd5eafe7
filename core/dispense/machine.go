// Package dispense implements the dispenser node's state machine: it
// tracks the one outstanding dispense request, detects patient
// acknowledgment or its absence within a bounded window and reports the
// outcome on the status topic.
package dispense

import (
	"context"
	"sync"
	"time"

	"github.com/medibox-iot/medibox/core/bus"
	"github.com/medibox-iot/medibox/core/doselog"
	"github.com/medibox-iot/medibox/core/hardware"
	"github.com/medibox-iot/medibox/core/logger"
	"github.com/medibox-iot/medibox/core/metrics"
	"github.com/medibox-iot/medibox/core/protocol"
)

// State is the machine's explicit state.
type State int

const (
	// StateIdle means no dispense request is outstanding.
	StateIdle State = iota
	// StateAwaitingAck means a dose was announced and the node is waiting
	// for the patient's button press.
	StateAwaitingAck
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingAck:
		return "AWAITING_ACK"
	}
	return "UNKNOWN"
}

// Request is the one outstanding dispense request. The protocol carries no
// request IDs, so the slot value is the only correlation between a command
// and its status.
type Request struct {
	Slot     string
	IssuedAt time.Time
}

// DefaultAckTimeout bounds the acknowledgment window.
const DefaultAckTimeout = 60 * time.Second

// DefaultTickInterval drives the acknowledgment/timeout check.
const DefaultTickInterval = 100 * time.Millisecond

// DefaultPulseDuration is how long the actuator is driven on dispensing.
const DefaultPulseDuration = 380 * time.Millisecond

// Config groups the machine's tunables.
type Config struct {
	AckTimeout    time.Duration
	PulseDuration time.Duration
	StatusTopic   string
}

// Machine owns the dispenser state. The node is deliberately not
// reentrant: a DISPENSE arriving while a request is outstanding is ignored
// rather than queued. All state lives behind one mutex; side effects
// (actuator pulse, publish, log line) run outside it on a snapshot.
type Machine struct {
	cfg Config

	mu    sync.Mutex
	state State
	req   Request
	// acked latches the acknowledgment so a held button triggers exactly
	// one actuation per cycle.
	acked bool

	client   bus.Client
	button   hardware.Button
	actuator hardware.Actuator
	visual   hardware.Indicator
	audible  hardware.Indicator
	dose     *doselog.Log
	sink     metrics.Sink
	log      logger.Logger
	now      func() time.Time
}

// NewMachine creates the state machine. dose may be nil to skip event
// logging, sink may be nil for no metrics.
func NewMachine(cfg Config, client bus.Client, button hardware.Button, actuator hardware.Actuator, visual, audible hardware.Indicator, dose *doselog.Log, sink metrics.Sink, log logger.Logger) *Machine {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = DefaultAckTimeout
	}
	if cfg.PulseDuration <= 0 {
		cfg.PulseDuration = DefaultPulseDuration
	}
	if cfg.StatusTopic == "" {
		cfg.StatusTopic = protocol.DefaultStatusTopic
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Machine{
		cfg:      cfg,
		client:   client,
		button:   button,
		actuator: actuator,
		visual:   visual,
		audible:  audible,
		dose:     dose,
		sink:     sink,
		log:      log,
		now:      time.Now,
	}
}

// State returns the current machine state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Awaiting reports whether an acknowledgment is outstanding. The alert
// presenter polls this to drive the indicators.
func (m *Machine) Awaiting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAwaitingAck
}

// CurrentSlot returns the slot of the outstanding request, or "" when idle.
func (m *Machine) CurrentSlot() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAwaitingAck {
		return ""
	}
	return m.req.Slot
}

// OnCommand handles a command-topic payload. A malformed DISPENSE still
// opens a cycle under the UNKNOWN slot so the dose event is never silently
// lost; anything else is dropped.
func (m *Machine) OnCommand(payload []byte) {
	cmd, ok := protocol.ParseCommand(payload)
	if !ok {
		m.log.Debugf("ignoring payload %q", payload)
		return
	}
	now := m.now()

	m.mu.Lock()
	if m.state == StateAwaitingAck {
		m.mu.Unlock()
		m.log.Warnf("DISPENSE ignored: request for slot %s still outstanding", m.req.Slot)
		return
	}
	m.state = StateAwaitingAck
	m.req = Request{Slot: cmd.Slot, IssuedAt: now}
	m.acked = false
	m.mu.Unlock()

	if cmd.Malformed {
		m.log.Warnf("DISPENSE carried no slot, using %s", cmd.Slot)
	}
	m.log.Infof("dispense requested for slot %s", cmd.Slot)
	m.appendDose(now, cmd.Slot, doselog.ActionDispense)
	if err := m.sink.RecordDispense(metrics.DispenseEvent{Slot: cmd.Slot, Time: now}); err != nil {
		m.log.Errorf("metrics: %v", err)
	}
}

// OnAckSignal handles a hardware edge event from the acknowledgment button.
func (m *Machine) OnAckSignal() {
	now := m.now()
	m.mu.Lock()
	if m.state != StateAwaitingAck || m.acked {
		m.mu.Unlock()
		return
	}
	req := m.req
	m.state = StateIdle
	m.acked = true
	m.mu.Unlock()

	m.completeTaken(req, now)
}

// Tick evaluates the acknowledgment/timeout check once. Acknowledgment is
// checked before the timeout so a press racing the deadline wins.
func (m *Machine) Tick(now time.Time) {
	pressed := m.button != nil && m.button.Pressed()

	m.mu.Lock()
	if m.state != StateAwaitingAck {
		m.acked = false
		m.mu.Unlock()
		return
	}
	if pressed && !m.acked {
		req := m.req
		m.state = StateIdle
		m.acked = true
		m.mu.Unlock()
		m.completeTaken(req, now)
		return
	}
	if now.Sub(m.req.IssuedAt) >= m.cfg.AckTimeout {
		req := m.req
		m.state = StateIdle
		m.acked = false
		m.mu.Unlock()
		m.completeMissed(req, now)
		return
	}
	m.mu.Unlock()
}

// Run drives Tick on the given interval until the context is cancelled.
func (m *Machine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(m.now())
		}
	}
}

func (m *Machine) completeTaken(req Request, now time.Time) {
	m.log.Infof("slot %s acknowledged, dispensing", req.Slot)
	if m.actuator != nil {
		m.actuator.Pulse(m.cfg.PulseDuration)
	}
	m.indicatorsOff()
	m.publishStatus(protocol.StatusTaken)
	m.appendDose(now, req.Slot, doselog.ActionTaken)
	if err := m.sink.RecordOutcome(metrics.OutcomeEvent{
		Slot:    req.Slot,
		Taken:   true,
		Elapsed: now.Sub(req.IssuedAt),
		Time:    now,
	}); err != nil {
		m.log.Errorf("metrics: %v", err)
	}
}

func (m *Machine) completeMissed(req Request, now time.Time) {
	m.log.Warnf("slot %s timed out, dose missed", req.Slot)
	m.indicatorsOff()
	m.publishStatus(protocol.StatusMissed)
	m.appendDose(now, req.Slot, doselog.ActionMissed)
	if err := m.sink.RecordOutcome(metrics.OutcomeEvent{
		Slot:    req.Slot,
		Taken:   false,
		Elapsed: now.Sub(req.IssuedAt),
		Time:    now,
	}); err != nil {
		m.log.Errorf("metrics: %v", err)
	}
}

func (m *Machine) indicatorsOff() {
	if m.visual != nil {
		m.visual.Off()
	}
	if m.audible != nil {
		m.audible.Off()
	}
}

func (m *Machine) publishStatus(s protocol.Status) {
	if err := m.client.Publish(m.cfg.StatusTopic, []byte(s)); err != nil {
		m.log.Errorf("publish status %s: %v", s, err)
	}
}

func (m *Machine) appendDose(now time.Time, slot string, action doselog.Action) {
	if m.dose == nil {
		return
	}
	if err := m.dose.Append(now, slot, action); err != nil {
		m.log.Errorf("dose log: %v", err)
	}
}
