package timekeeper

import "time"

// Restore rehydrates an in-flight session from the snapshot store. It only
// applies in setup and reports whether a session was recovered. A run whose
// time elapsed while the process was gone completes without a bell.
func (keeper *TimeKeeper) Restore() bool {
	keeper.mu.Lock()
	if keeper.closed || keeper.state != StateSetup {
		keeper.mu.Unlock()
		return false
	}

	snapshot, err := keeper.options.Snapshots.Load()
	if err != nil {
		keeper.logger.Warn("load timer snapshot", "error", err)
		keeper.clearSnapshotLocked()
		keeper.mu.Unlock()
		return false
	}
	if snapshot == nil {
		keeper.mu.Unlock()
		return false
	}
	if err := snapshot.Validate(); err != nil {
		keeper.logger.Warn("discarding timer snapshot", "error", err)
		keeper.clearSnapshotLocked()
		keeper.mu.Unlock()
		return false
	}

	now := keeper.options.Clock.Now()
	keeper.selectedSeconds = snapshot.SelectedDurationSeconds
	if snapshot.PracticeType != "" {
		keeper.practiceType = snapshot.PracticeType
	}
	keeper.intervalSeconds = max(snapshot.IntervalBellPeriodSeconds, 0)
	keeper.lastMark = max(snapshot.LastFiredIntervalMark, 0)
	keeper.notes = ""

	var fx sideEffects
	switch snapshot.State {
	case StateRunning:
		start := *snapshot.StartEpochMillis
		base := snapshot.BaseSeconds
		remaining := ComputeRemaining(now, start, base)
		keeper.remaining = remaining
		if remaining == 0 {
			keeper.logger.Info("restored session already elapsed", "overshoot", Overshoot(now, start, base))
			fx = keeper.completeLocked(now, false)
			break
		}
		keeper.state = StateRunning
		keeper.startedAt = time.UnixMilli(start)
		keeper.baseSeconds = base
		keeper.startLoopLocked()
		keeper.emitStateLocked(now)
		fx = sideEffects{wake: true}
	case StatePaused:
		frozen := min(*snapshot.RemainingAtPauseSeconds, keeper.selectedSeconds)
		keeper.pausedRemaining = &frozen
		keeper.remaining = frozen
		keeper.startedAt = time.Time{}
		keeper.state = StatePaused
		keeper.emitStateLocked(now)
	}
	keeper.logger.Info("restored session", "state", keeper.state, "remaining", keeper.remaining)
	keeper.mu.Unlock()

	keeper.apply(fx)
	return true
}
