package timekeeper

import (
	"context"
	"sync"

	"dharmatimer/internal/core/model"
)

// CuePlayer renders bells. Implementations must not block and must swallow
// their own failures.
type CuePlayer interface {
	Play(cue model.Cue)
}

// WakeLock keeps the display awake while a session is active.
type WakeLock interface {
	Acquire(ctx context.Context) error
	Release() error
}

// SessionSaver durably records a finished session.
type SessionSaver interface {
	SaveCompletedSession(ctx context.Context, session model.CompletedSession) error
}

// SnapshotStore persists the in-flight timer state.
// Load returns (nil, nil) when nothing is stored.
type SnapshotStore interface {
	Load() (*Snapshot, error)
	Save(snapshot Snapshot) error
	Clear() error
}

// NoopWakeLock is used when no platform wake lock is available.
type NoopWakeLock struct{}

func (NoopWakeLock) Acquire(context.Context) error { return nil }
func (NoopWakeLock) Release() error                { return nil }

type silentCues struct{}

func (silentCues) Play(model.Cue) {}

// MemorySnapshots keeps the snapshot in process memory.
type MemorySnapshots struct {
	mu       sync.Mutex
	snapshot *Snapshot
}

// NewMemorySnapshots returns an empty in-memory snapshot store.
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{}
}

func (store *MemorySnapshots) Load() (*Snapshot, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.snapshot == nil {
		return nil, nil
	}
	copied := store.snapshot.clone()
	return &copied, nil
}

func (store *MemorySnapshots) Save(snapshot Snapshot) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := snapshot.clone()
	store.snapshot = &copied
	return nil
}

func (store *MemorySnapshots) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.snapshot = nil
	return nil
}

var (
	_ SnapshotStore = (*MemorySnapshots)(nil)
	_ WakeLock      = NoopWakeLock{}
)
