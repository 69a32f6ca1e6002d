package timekeeper

import "time"

// State represents the current TimeKeeper mode.
type State string

const (
	StateSetup     State = "setup"
	StatePreparing State = "preparing"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange   EventType = "state_change"
	EventProgress      EventType = "progress"
	EventPrepTick      EventType = "prep_tick"
	EventBell          EventType = "bell"
	EventSaved         EventType = "saved"
	EventSaveFailed    EventType = "save_failed"
	EventWakeLockError EventType = "wake_lock_error"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type      EventType
	State     State
	Remaining time.Duration
	Practiced time.Duration
	Progress  float64
	Countdown int
	Message   string
	At        time.Time
}
