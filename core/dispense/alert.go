package dispense

import (
	"context"
	"time"

	"github.com/medibox-iot/medibox/core/hardware"
)

// DefaultBlinkInterval is the indicator toggle period while a request is
// outstanding.
const DefaultBlinkInterval = 500 * time.Millisecond

// StateSource is the read-only view the presenter needs.
type StateSource interface {
	Awaiting() bool
}

// AlertPresenter blinks the visual indicator and pulses the audible one
// while an acknowledgment is outstanding, and forces both off otherwise.
// It is strictly driven by the machine's state and never changes it.
type AlertPresenter struct {
	src      StateSource
	visual   hardware.Indicator
	audible  hardware.Indicator
	interval time.Duration
}

// NewAlertPresenter creates the presenter.
func NewAlertPresenter(src StateSource, visual, audible hardware.Indicator, interval time.Duration) *AlertPresenter {
	if interval <= 0 {
		interval = DefaultBlinkInterval
	}
	return &AlertPresenter{src: src, visual: visual, audible: audible, interval: interval}
}

// Run toggles the indicators until the context is cancelled, leaving both
// off on exit.
func (p *AlertPresenter) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.visual.Off()
			p.audible.Off()
			return
		case <-ticker.C:
			p.Step()
		}
	}
}

// Step applies one blink evaluation.
func (p *AlertPresenter) Step() {
	if p.src.Awaiting() {
		p.visual.Toggle()
		p.audible.Toggle()
		return
	}
	p.visual.Off()
	p.audible.Off()
}
