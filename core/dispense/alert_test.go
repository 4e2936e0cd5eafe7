package dispense

import (
	"testing"
	"time"
)

type staticState bool

func (s staticState) Awaiting() bool { return bool(s) }

func TestAlertTogglesWhileAwaiting(t *testing.T) {
	led := &fakeIndicator{}
	buzzer := &fakeIndicator{}
	p := NewAlertPresenter(staticState(true), led, buzzer, time.Second)

	p.Step()
	if !led.active() || !buzzer.active() {
		t.Fatalf("indicators should toggle on while awaiting")
	}
	p.Step()
	if led.active() || buzzer.active() {
		t.Fatalf("indicators should toggle back off")
	}
}

func TestAlertForcesOffWhenIdle(t *testing.T) {
	led := &fakeIndicator{}
	buzzer := &fakeIndicator{}
	led.On()
	buzzer.On()
	p := NewAlertPresenter(staticState(false), led, buzzer, time.Second)

	p.Step()
	if led.active() || buzzer.active() {
		t.Fatalf("indicators must be forced off when idle")
	}
	p.Step()
	if led.active() || buzzer.active() {
		t.Fatalf("indicators must stay off when idle")
	}
}

func TestAlertFollowsMachineState(t *testing.T) {
	f := newFixture(t)
	led := &fakeIndicator{}
	buzzer := &fakeIndicator{}
	p := NewAlertPresenter(f.m, led, buzzer, time.Second)

	p.Step()
	if led.active() {
		t.Fatalf("no blink expected while idle")
	}

	f.m.OnCommand([]byte("DISPENSE:1"))
	p.Step()
	if !led.active() || !buzzer.active() {
		t.Fatalf("blink expected while awaiting acknowledgment")
	}

	f.m.OnAckSignal()
	p.Step()
	if led.active() || buzzer.active() {
		t.Fatalf("indicators must clear once acknowledged")
	}
}
