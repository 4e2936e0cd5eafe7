package bus

import "errors"

// ErrNotConnected is returned when a publish is attempted while the broker
// link is down. The caller decides whether the message is droppable.
var ErrNotConnected = errors.New("bus: not connected")
