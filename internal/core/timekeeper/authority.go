package timekeeper

import "time"

// ElapsedSeconds returns whole seconds between start and now.
// A start in the future (clock skew) counts as zero elapsed.
func ElapsedSeconds(now time.Time, startEpochMillis int64) int {
	deltaMillis := now.UnixMilli() - startEpochMillis
	if deltaMillis <= 0 {
		return 0
	}
	return int(deltaMillis / 1000)
}

// ComputeRemaining is the single source of truth for time left in a run.
// It depends only on timestamps, never on how many ticks were observed.
func ComputeRemaining(now time.Time, startEpochMillis int64, baseSeconds int) int {
	remaining := baseSeconds - ElapsedSeconds(now, startEpochMillis)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Overshoot returns how many seconds past the base duration now is.
func Overshoot(now time.Time, startEpochMillis int64, baseSeconds int) int {
	return ElapsedSeconds(now, startEpochMillis) - baseSeconds
}

// IntervalMarkDue reports the newest interval mark crossed since lastMark.
// Marks are multiples of period in practiced seconds, strictly between 0
// and the session duration. Several marks crossed in one gap yield only the
// newest one.
func IntervalMarkDue(practiced, period, lastMark, durationSeconds int) (int, bool) {
	if period <= 0 || practiced <= 0 {
		return lastMark, false
	}
	mark := (practiced / period) * period
	if mark >= durationSeconds {
		mark = ((durationSeconds - 1) / period) * period
	}
	if mark <= 0 || mark <= lastMark {
		return lastMark, false
	}
	return mark, true
}
