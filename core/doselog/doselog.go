// Package doselog writes the flat append-only event log both nodes keep:
// one line per trigger or state transition.
package doselog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Action is the event recorded for a slot.
type Action string

const (
	ActionDispense Action = "DISPENSE"
	ActionTaken    Action = "TAKEN"
	ActionMissed   Action = "MISSED"
)

// timeLayout is the minute-resolution timestamp used in log lines.
const timeLayout = "2006-01-02 15:04"

// Record is one parsed log line.
type Record struct {
	At     time.Time
	Slot   string
	Action Action
}

// Log appends dose events to a flat text file. Lines have the form
//
//	2025-03-01 08:00 - Slot 1 - TAKEN
//
// The file is opened per append so an abrupt shutdown loses at most the
// line being written.
type Log struct {
	path string
	mu   sync.Mutex
}

// New creates the log file if needed and returns the writer.
func New(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &Log{path: path}, nil
}

// Append writes one event line.
func (l *Log) Append(at time.Time, slot string, action Action) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintf(f, "%s - Slot %s - %s\n", at.Format(timeLayout), slot, action)
	return err
}

// Read parses the log back into records. Malformed lines are skipped.
func (l *Log) Read() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var recs []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rec, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func parseLine(line string) (Record, bool) {
	parts := strings.SplitN(line, " - ", 3)
	if len(parts) != 3 {
		return Record{}, false
	}
	at, err := time.Parse(timeLayout, parts[0])
	if err != nil {
		return Record{}, false
	}
	slot, ok := strings.CutPrefix(parts[1], "Slot ")
	if !ok || slot == "" {
		return Record{}, false
	}
	switch Action(parts[2]) {
	case ActionDispense, ActionTaken, ActionMissed:
		return Record{At: at, Slot: slot, Action: Action(parts[2])}, true
	}
	return Record{}, false
}
