// Package schedule holds the scheduler node's dose plan: an ordered list of
// (time-of-day, slot) entries bounded by the number of physical
// compartments on the dispenser.
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/medibox-iot/medibox/core/logger"
)

// TimeLayout is the wall-clock format entries are stored in. Minute
// resolution, zero padded.
const TimeLayout = "15:04"

// DefaultMaxSlots matches the three physical compartments of the dispenser.
const DefaultMaxSlots = 3

// Entry schedules one dose: a wall-clock time and the compartment slot it
// dispenses from.
type Entry struct {
	Time string `json:"time"`
	Slot int    `json:"slot"`
}

// Persister round-trips the full entry list. The store treats persistence
// as a best-effort recovery aid: failures are logged, never fatal.
type Persister interface {
	Save(entries []Entry) error
	Load() ([]Entry, error)
	Clear() error
}

// Store is the ordered, bounded collection of schedule entries. Entries are
// kept in ascending time order, times are unique, and slots are assigned
// sequentially starting at 1 and never reused until a clear-all.
type Store struct {
	mu       sync.Mutex
	entries  []Entry
	nextSlot int
	maxSlots int
	persist  Persister
	log      logger.Logger
}

// NewStore creates a Store bounded to maxSlots entries. persist may be nil
// for a purely in-memory store.
func NewStore(maxSlots int, persist Persister, log logger.Logger) *Store {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	return &Store{nextSlot: 1, maxSlots: maxSlots, persist: persist, log: log}
}

// normalizeTime validates the HH:MM form strictly: "8:00" is rejected, only
// the zero-padded layout round-trips.
func normalizeTime(t string) (string, error) {
	parsed, err := time.Parse(TimeLayout, t)
	if err != nil {
		return "", err
	}
	if parsed.Format(TimeLayout) != t {
		return "", fmt.Errorf("time %q not in HH:MM form", t)
	}
	return t, nil
}

// Load replays the persisted entry list. Entries whose time fails to parse
// are skipped so a partially corrupted file never takes the node down.
func (s *Store) Load() error {
	if s.persist == nil {
		return nil
	}
	loaded, err := s.persist.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range loaded {
		if _, err := normalizeTime(e.Time); err != nil {
			if s.log != nil {
				s.log.Warnf("skipping corrupt entry %q: %v", e.Time, err)
			}
			continue
		}
		s.entries = append(s.entries, e)
		if e.Slot >= s.nextSlot {
			s.nextSlot = e.Slot + 1
		}
	}
	return nil
}

// NextSlot returns the slot the next Add will occupy.
func (s *Store) NextSlot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSlot
}

// Full reports whether every slot is scheduled.
func (s *Store) Full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSlot > s.maxSlots
}

// Add appends an entry for the next free slot. The time must be a valid
// HH:MM string, must not duplicate an existing entry and must be strictly
// after the latest existing entry, so the list is always in chronological
// order.
func (s *Store) Add(t string) (Entry, error) {
	normalized, err := normalizeTime(t)
	if err != nil {
		return Entry{}, &ValidationError{Reason: fmt.Sprintf("invalid time %q (use HH:MM)", t)}
	}

	s.mu.Lock()
	if s.nextSlot > s.maxSlots {
		s.mu.Unlock()
		return Entry{}, ErrCapacity
	}
	for _, e := range s.entries {
		if e.Time == normalized {
			s.mu.Unlock()
			return Entry{}, &ValidationError{Reason: "duplicate time not allowed"}
		}
	}
	if n := len(s.entries); n > 0 && normalized <= s.entries[n-1].Time {
		s.mu.Unlock()
		return Entry{}, &ValidationError{Reason: "time must be after previous slot"}
	}
	entry := Entry{Time: normalized, Slot: s.nextSlot}
	s.entries = append(s.entries, entry)
	s.nextSlot++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.save(snapshot)
	return entry, nil
}

// Remove drops the given entry after its trigger fired. It reports whether
// the entry was present.
func (s *Store) Remove(t string, slot int) bool {
	s.mu.Lock()
	found := false
	for i, e := range s.entries {
		if e.Time == t && e.Slot == slot {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			found = true
			break
		}
	}
	var snapshot []Entry
	if found {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if found {
		s.save(snapshot)
	}
	return found
}

// Clear empties the store, resets slot assignment and deletes the
// persisted state.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.nextSlot = 1
	s.mu.Unlock()

	if s.persist == nil {
		return
	}
	if err := s.persist.Clear(); err != nil && s.log != nil {
		s.log.Errorf("clear persisted schedule: %v", err)
	}
}

// Entries returns a snapshot of the current entry list.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) save(snapshot []Entry) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(snapshot); err != nil && s.log != nil {
		s.log.Errorf("persist schedule: %v", err)
	}
}
