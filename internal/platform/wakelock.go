package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrWakeLockUnsupported indicates the platform cannot keep the display awake.
var ErrWakeLockUnsupported = errors.New("wake lock unsupported")

const inhibitReason = "Meditation session in progress"

type inhibitor interface {
	inhibit(ctx context.Context, reason string) error
	uninhibit() error
}

// ScreenWakeLock keeps the display from sleeping while held. Acquire and
// Release are idempotent.
type ScreenWakeLock struct {
	mu        sync.Mutex
	inhibitor inhibitor
	held      bool
}

// NewWakeLock returns the platform wake lock for appName.
func NewWakeLock(appName string) *ScreenWakeLock {
	return &ScreenWakeLock{inhibitor: newInhibitor(appName)}
}

// Acquire inhibits display sleep.
func (lock *ScreenWakeLock) Acquire(ctx context.Context) error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.held {
		return nil
	}
	if err := lock.inhibitor.inhibit(ctx, inhibitReason); err != nil {
		return fmt.Errorf("acquire wake lock: %w", err)
	}
	lock.held = true
	return nil
}

// Release lets the display sleep again.
func (lock *ScreenWakeLock) Release() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if !lock.held {
		return nil
	}
	lock.held = false
	if err := lock.inhibitor.uninhibit(); err != nil {
		return fmt.Errorf("release wake lock: %w", err)
	}
	return nil
}

// Held reports whether the lock is currently held.
func (lock *ScreenWakeLock) Held() bool {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	return lock.held
}
