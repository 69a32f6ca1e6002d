package timekeeper

// Reconcile recomputes the session after the app returns to the foreground
// or the machine wakes. An expired run completes silently and cancels the
// pending tick; an active one re-acquires the wake lock the OS may have
// dropped.
func (keeper *TimeKeeper) Reconcile() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	now := keeper.options.Clock.Now()

	var fx sideEffects
	switch keeper.state {
	case StateRunning:
		remaining := ComputeRemaining(now, keeper.startedAt.UnixMilli(), keeper.baseSeconds)
		keeper.remaining = remaining
		if remaining == 0 {
			fx = keeper.completeLocked(now, false)
		} else {
			keeper.emitLocked(keeper.eventLocked(EventProgress, now))
			fx = sideEffects{wake: true, forceWake: true}
		}
	case StatePreparing:
		fx = sideEffects{wake: true, forceWake: true}
	}
	keeper.mu.Unlock()

	keeper.apply(fx)
}
