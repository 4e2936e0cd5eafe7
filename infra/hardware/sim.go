// Package hardware provides console-backed stand-ins for the dispenser's
// GPIO peripherals so the node can run off-device.
package hardware

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/medibox-iot/medibox/infra/logger"
)

// SimButton emulates the acknowledgment push-button. Press asserts the
// signal for a short hold so the polling loop observes a level, like a
// human keeping the button down for a moment.
type SimButton struct {
	mu           sync.Mutex
	pressedUntil time.Time
	hold         time.Duration
	now          func() time.Time
}

// NewSimButton creates a button whose presses stay asserted for hold.
func NewSimButton(hold time.Duration) *SimButton {
	if hold <= 0 {
		hold = 500 * time.Millisecond
	}
	return &SimButton{hold: hold, now: time.Now}
}

// Press asserts the signal.
func (b *SimButton) Press() {
	b.mu.Lock()
	b.pressedUntil = b.now().Add(b.hold)
	b.mu.Unlock()
}

// Pressed reports the current signal level.
func (b *SimButton) Pressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now().Before(b.pressedUntil)
}

// RunReader presses the button on every line read from r (typically
// stdin) until the context is cancelled or the reader is exhausted.
func (b *SimButton) RunReader(ctx context.Context, r io.Reader) {
	lines := make(chan struct{})
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-lines:
			if !ok {
				return
			}
			b.Press()
		}
	}
}

// LogIndicator logs indicator state changes instead of driving a GPIO pin.
// Repeated Off calls while already off stay silent; the alert presenter
// forces indicators off on every idle tick.
type LogIndicator struct {
	name string
	log  logger.Logger

	mu sync.Mutex
	on bool
}

// NewLogIndicator creates an indicator logging under the given name.
func NewLogIndicator(name string, log logger.Logger) *LogIndicator {
	return &LogIndicator{name: name, log: log}
}

func (i *LogIndicator) set(on bool) {
	i.mu.Lock()
	changed := i.on != on
	i.on = on
	i.mu.Unlock()
	if changed {
		if on {
			i.log.Debugf("%s on", i.name)
		} else {
			i.log.Debugf("%s off", i.name)
		}
	}
}

func (i *LogIndicator) On()  { i.set(true) }
func (i *LogIndicator) Off() { i.set(false) }

func (i *LogIndicator) Toggle() {
	i.mu.Lock()
	i.on = !i.on
	on := i.on
	i.mu.Unlock()
	if on {
		i.log.Debugf("%s on", i.name)
	} else {
		i.log.Debugf("%s off", i.name)
	}
}

// Active reports the current indicator state.
func (i *LogIndicator) Active() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.on
}

// LogActuator stands in for the servo. Pulse blocks for the requested
// duration, matching the bounded movement of the real mechanism.
type LogActuator struct {
	log logger.Logger
}

// NewLogActuator creates the actuator stand-in.
func NewLogActuator(log logger.Logger) *LogActuator {
	return &LogActuator{log: log}
}

// Pulse simulates one bounded actuation.
func (a *LogActuator) Pulse(d time.Duration) {
	a.log.Infof("actuator pulse for %s", d)
	time.Sleep(d)
}
