package schedule

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// JSONFile persists the entry list as a JSON array, rewritten wholesale on
// every mutation.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile creates a persister writing to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Save rewrites the whole file with the given entries.
func (f *JSONFile) Save(entries []Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}

// Load reads the persisted list. A missing file is an empty schedule, not
// an error.
func (f *JSONFile) Load() ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear deletes the persisted state.
func (f *JSONFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
