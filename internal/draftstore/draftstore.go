// Package draftstore persists in-progress evaluation sheets to local
// files so unsaved work survives a crash between server autosaves.
package draftstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxAge bounds how long a local draft stays preferable to a server
// one; anything older is considered abandoned.
const MaxAge = 24 * time.Hour

// Draft is the on-disk envelope around the raw sheet data.
type Draft struct {
	VendorID    int64           `json:"vendorId"`
	EvaluatorID int64           `json:"evaluatorId"`
	Data        json.RawMessage `json:"data"`
	SavedAt     time.Time       `json:"savedAt"`
}

// Store reads and writes drafts under a single directory, one file per
// (vendor, evaluator) pair.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(vendorID, evaluatorID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("draft-%d-%d.json", vendorID, evaluatorID))
}

// Save writes the draft atomically via a temp file rename.
func (s *Store) Save(vendorID, evaluatorID int64, data json.RawMessage) error {
	draft := Draft{
		VendorID:    vendorID,
		EvaluatorID: evaluatorID,
		Data:        data,
		SavedAt:     time.Now(),
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	path := s.path(vendorID, evaluatorID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the stored draft, or nil when there is none or the file
// is stale or unreadable. A corrupt file is treated as absent.
func (s *Store) Load(vendorID, evaluatorID int64) (*Draft, error) {
	payload, err := os.ReadFile(s.path(vendorID, evaluatorID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var draft Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, nil
	}
	if time.Since(draft.SavedAt) > MaxAge {
		return nil, nil
	}
	return &draft, nil
}

// Delete removes the pair's draft, if any.
func (s *Store) Delete(vendorID, evaluatorID int64) error {
	err := os.Remove(s.path(vendorID, evaluatorID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Autosaver debounces rapid edits into one write. Set schedules a save;
// only the last value within the debounce window lands on disk.
type Autosaver struct {
	store       *Store
	vendorID    int64
	evaluatorID int64
	debounce    time.Duration

	mu      sync.Mutex
	pending json.RawMessage
	timer   *time.Timer
	saveErr error
}

func NewAutosaver(store *Store, vendorID, evaluatorID int64) *Autosaver {
	return &Autosaver{
		store:       store,
		vendorID:    vendorID,
		evaluatorID: evaluatorID,
		debounce:    2 * time.Second,
	}
}

// Set records the latest sheet state and (re)arms the debounce timer.
func (a *Autosaver) Set(data json.RawMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = data
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, func() {
		if err := a.Flush(); err != nil {
			a.mu.Lock()
			a.saveErr = err
			a.mu.Unlock()
		}
	})
}

// Flush writes any pending state immediately. Callers invoke it on
// navigation away or shutdown, where waiting out the debounce would
// lose the edit.
func (a *Autosaver) Flush() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		return nil
	}
	return a.store.Save(a.vendorID, a.evaluatorID, pending)
}

// Err returns the last background save error, if any.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveErr
}
