package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/medibox-iot/medibox/infra/logger"
)

func TestAddAssignsSequentialSlots(t *testing.T) {
	s := NewStore(3, nil, logger.NopLogger{})
	times := []string{"08:00", "12:30", "20:15"}
	for i, tm := range times {
		entry, err := s.Add(tm)
		if err != nil {
			t.Fatalf("add %s: %v", tm, err)
		}
		if entry.Slot != i+1 {
			t.Fatalf("slot = %d, want %d", entry.Slot, i+1)
		}
	}
	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, tm := range times {
		if entries[i].Time != tm {
			t.Fatalf("entry %d time = %s, want %s", i, entries[i].Time, tm)
		}
	}
}

func TestAddValidation(t *testing.T) {
	cases := []struct {
		name  string
		setup []string
		add   string
	}{
		{"bad format", nil, "25:00"},
		{"not a time", nil, "soon"},
		{"unpadded hour", nil, "8:00"},
		{"duplicate", []string{"08:00"}, "08:00"},
		{"before previous", []string{"12:00"}, "08:00"},
		{"equal to previous", []string{"12:00"}, "12:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(3, nil, logger.NopLogger{})
			for _, tm := range tc.setup {
				if _, err := s.Add(tm); err != nil {
					t.Fatalf("setup add %s: %v", tm, err)
				}
			}
			before := s.Entries()
			_, err := s.Add(tc.add)
			if !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			after := s.Entries()
			if len(after) != len(before) {
				t.Fatalf("store changed on rejected add")
			}
		})
	}
}

func TestAddCapacity(t *testing.T) {
	s := NewStore(3, nil, logger.NopLogger{})
	for _, tm := range []string{"08:00", "12:00", "18:00"} {
		if _, err := s.Add(tm); err != nil {
			t.Fatalf("add %s: %v", tm, err)
		}
	}
	if !s.Full() {
		t.Fatalf("store should be full")
	}
	if _, err := s.Add("20:00"); !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
}

func TestSlotsNotReusedAfterRemove(t *testing.T) {
	s := NewStore(3, nil, logger.NopLogger{})
	if _, err := s.Add("08:00"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !s.Remove("08:00", 1) {
		t.Fatalf("remove failed")
	}
	entry, err := s.Add("09:00")
	if err != nil {
		t.Fatalf("add after remove: %v", err)
	}
	if entry.Slot != 2 {
		t.Fatalf("slot = %d, want 2 (slot 1 consumed)", entry.Slot)
	}
}

func TestClearResetsSlots(t *testing.T) {
	s := NewStore(3, nil, logger.NopLogger{})
	if _, err := s.Add("08:00"); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Clear()
	if len(s.Entries()) != 0 {
		t.Fatalf("entries not cleared")
	}
	if got := s.NextSlot(); got != 1 {
		t.Fatalf("next slot = %d, want 1", got)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	persist := NewJSONFile(path)

	s := NewStore(3, persist, logger.NopLogger{})
	times := []string{"08:00", "12:30", "20:15"}
	for _, tm := range times {
		if _, err := s.Add(tm); err != nil {
			t.Fatalf("add %s: %v", tm, err)
		}
	}

	reloaded := NewStore(3, persist, logger.NopLogger{})
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := reloaded.Entries()
	want := s.Entries()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if reloaded.NextSlot() != 4 {
		t.Fatalf("next slot after load = %d, want 4", reloaded.NextSlot())
	}
}

func TestLoadSkipsCorruptEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	data := `[{"time":"08:00","slot":1},{"time":"nonsense","slot":2},{"time":"12:00","slot":3}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := NewStore(3, NewJSONFile(path), logger.NopLogger{})
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected corrupt entry skipped, got %d entries", len(entries))
	}
	if entries[0].Time != "08:00" || entries[1].Time != "12:00" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewStore(3, NewJSONFile(path), logger.NopLogger{})
	if err := s.Load(); err == nil {
		t.Fatalf("expected load error for corrupt file")
	}
	// The node keeps running with an empty store.
	if len(s.Entries()) != 0 {
		t.Fatalf("store should be empty")
	}
}

func TestClearDeletesPersistedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.json")
	s := NewStore(3, NewJSONFile(path), logger.NopLogger{})
	if _, err := s.Add("08:00"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("schedule file not written: %v", err)
	}
	s.Clear()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("schedule file not deleted: %v", err)
	}
}
