// Package hardware defines the dispenser node's physical boundary. Real
// GPIO access lives behind these interfaces; the repo ships a console
// simulator and tests use in-memory fakes.
package hardware

import "time"

// Button is the acknowledgment signal source. Pressed reports the current
// signal level; debouncing to a single transition per press is the state
// machine's job, not the button's.
type Button interface {
	Pressed() bool
}

// Actuator is the dispensing mechanism. Pulse activates it for a bounded
// duration and returns when the movement completed.
type Actuator interface {
	Pulse(d time.Duration)
}

// Indicator is a visual or audible on/off sink.
type Indicator interface {
	On()
	Off()
	Toggle()
}
