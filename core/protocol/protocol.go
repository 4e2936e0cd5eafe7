// Package protocol defines the plain-text payloads exchanged between the
// scheduler and dispenser nodes. The wire format carries no request
// identifiers: both sides correlate a status message with "the one
// outstanding request". A late or duplicate command cannot be told apart
// from a fresh one; this is a known weakness of the protocol, kept as-is.
package protocol

import "strings"

// Topic defaults shared by both nodes.
const (
	DefaultCommandTopic = "dispenser/command"
	DefaultStatusTopic  = "dispenser/status"
)

// UnknownSlot is recorded when a DISPENSE command carries no slot suffix.
const UnknownSlot = "UNKNOWN"

const commandPrefix = "DISPENSE"

// Command is the parsed form of a command-topic payload.
type Command struct {
	// Slot is the scheduled slot identifier, or UnknownSlot when the
	// payload had no usable suffix.
	Slot string
	// Malformed reports that the payload matched the DISPENSE prefix but
	// carried no slot. The command is still acted upon so a dose is never
	// silently lost.
	Malformed bool
}

// ParseCommand decodes a command-topic payload. It returns ok=false for
// payloads that are not DISPENSE commands at all; those are dropped by the
// receiver.
func ParseCommand(payload []byte) (Command, bool) {
	text := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(text, commandPrefix) {
		return Command{}, false
	}
	rest := text[len(commandPrefix):]
	if !strings.HasPrefix(rest, ":") {
		return Command{Slot: UnknownSlot, Malformed: true}, true
	}
	slot := strings.TrimSpace(rest[1:])
	if slot == "" {
		return Command{Slot: UnknownSlot, Malformed: true}, true
	}
	return Command{Slot: slot}, true
}

// CommandPayload renders the command for the given slot identifier.
func CommandPayload(slot string) []byte {
	return []byte(commandPrefix + ":" + slot)
}

// Status is the outcome reported by the dispenser after a dispense cycle.
type Status string

const (
	// StatusTaken means the patient acknowledged the dose in time.
	StatusTaken Status = "TAKEN"
	// StatusMissed means the acknowledgment window elapsed.
	StatusMissed Status = "MISSED"
)

// ParseStatus decodes a status-topic payload.
func ParseStatus(payload []byte) (Status, bool) {
	switch Status(strings.TrimSpace(string(payload))) {
	case StatusTaken:
		return StatusTaken, true
	case StatusMissed:
		return StatusMissed, true
	}
	return "", false
}

func (s Status) String() string { return string(s) }
