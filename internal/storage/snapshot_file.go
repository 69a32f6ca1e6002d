package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dharmatimer/internal/core/timekeeper"
)

const snapshotFileName = "timer-state.json"

// SnapshotFile stores the in-flight timer snapshot as JSON under dir.
type SnapshotFile struct {
	mu   sync.Mutex
	path string
}

// NewSnapshotFile returns a snapshot store rooted at dir.
func NewSnapshotFile(dir string) *SnapshotFile {
	return &SnapshotFile{path: filepath.Join(dir, snapshotFileName)}
}

// Path returns the snapshot file location.
func (store *SnapshotFile) Path() string {
	return store.path
}

// Load returns the stored snapshot, or nil when none exists.
func (store *SnapshotFile) Load() (*timekeeper.Snapshot, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot timekeeper.Snapshot
	if err := json.Unmarshal(rawData, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", store.path, err)
	}
	return &snapshot, nil
}

// Save replaces the stored snapshot atomically.
func (store *SnapshotFile) Save(snapshot timekeeper.Snapshot) error {
	serialized, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if err := AtomicWriteFile(store.path, serialized, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Clear removes the stored snapshot. Clearing an absent snapshot is not an error.
func (store *SnapshotFile) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := os.Remove(store.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

var _ timekeeper.SnapshotStore = (*SnapshotFile)(nil)
