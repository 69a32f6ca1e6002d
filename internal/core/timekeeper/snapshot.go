package timekeeper

import "fmt"

// Snapshot is the persisted form of an in-flight session.
type Snapshot struct {
	State                     State  `json:"state"`
	StartEpochMillis          *int64 `json:"start_epoch_millis,omitempty"`
	SelectedDurationSeconds   int    `json:"selected_duration_seconds"`
	BaseSeconds               int    `json:"base_seconds"`
	RemainingAtPauseSeconds   *int   `json:"remaining_at_pause_seconds,omitempty"`
	PracticeType              string `json:"practice_type"`
	IntervalBellPeriodSeconds int    `json:"interval_bell_period_seconds"`
	LastFiredIntervalMark     int    `json:"last_fired_interval_mark"`
}

// Validate checks the running/paused authority invariant.
func (snapshot Snapshot) Validate() error {
	if snapshot.SelectedDurationSeconds <= 0 {
		return fmt.Errorf("snapshot: selected duration %d", snapshot.SelectedDurationSeconds)
	}
	switch snapshot.State {
	case StateRunning:
		if snapshot.StartEpochMillis == nil || snapshot.RemainingAtPauseSeconds != nil {
			return fmt.Errorf("snapshot: running state needs only a start timestamp")
		}
		if snapshot.BaseSeconds < 0 || snapshot.BaseSeconds > snapshot.SelectedDurationSeconds {
			return fmt.Errorf("snapshot: base %d outside selected duration", snapshot.BaseSeconds)
		}
	case StatePaused:
		if snapshot.RemainingAtPauseSeconds == nil || snapshot.StartEpochMillis != nil {
			return fmt.Errorf("snapshot: paused state needs only a frozen remaining value")
		}
		if *snapshot.RemainingAtPauseSeconds < 0 {
			return fmt.Errorf("snapshot: negative remaining %d", *snapshot.RemainingAtPauseSeconds)
		}
	default:
		return fmt.Errorf("snapshot: state %q is not restorable", snapshot.State)
	}
	return nil
}

func (snapshot Snapshot) clone() Snapshot {
	copied := snapshot
	if snapshot.StartEpochMillis != nil {
		start := *snapshot.StartEpochMillis
		copied.StartEpochMillis = &start
	}
	if snapshot.RemainingAtPauseSeconds != nil {
		remaining := *snapshot.RemainingAtPauseSeconds
		copied.RemainingAtPauseSeconds = &remaining
	}
	return copied
}
