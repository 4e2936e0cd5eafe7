package mqtt

import "time"

// Backoff tracks the exponential reconnect delay for a broker link. The
// delay doubles on every consecutive failure, is capped at max and resets
// to base on the first successful connect. Not safe for concurrent use;
// it is owned by the connection supervisor goroutine.
type Backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a Backoff with the given base and cap.
func NewBackoff(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	return &Backoff{base: base, max: max, current: base}
}

// Next returns the delay to wait before the next attempt and advances the
// state as if that attempt failed.
func (b *Backoff) Next() time.Duration {
	d := b.current
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset restores the base delay after a successful connect.
func (b *Backoff) Reset() {
	b.current = b.base
}
