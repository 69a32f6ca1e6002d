package timekeeper

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dharmatimer/internal/core/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(d)
	clock.mu.Unlock()
}

// NewTicker returns a ticker that never fires; tests drive Tick directly.
func (clock *fakeClock) NewTicker(time.Duration) Ticker {
	return idleTicker{ch: make(chan time.Time)}
}

type idleTicker struct {
	ch chan time.Time
}

func (ticker idleTicker) C() <-chan time.Time { return ticker.ch }
func (ticker idleTicker) Stop()               {}

type play struct {
	cue model.Cue
	at  time.Time
}

type recordingCues struct {
	mu    sync.Mutex
	clock Clock
	plays []play
}

func (cues *recordingCues) Play(cue model.Cue) {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	cues.plays = append(cues.plays, play{cue: cue, at: cues.clock.Now()})
}

func (cues *recordingCues) count(cue model.Cue) int {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	total := 0
	for _, p := range cues.plays {
		if p.cue == cue {
			total++
		}
	}
	return total
}

func (cues *recordingCues) times(cue model.Cue) []time.Time {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	var out []time.Time
	for _, p := range cues.plays {
		if p.cue == cue {
			out = append(out, p.at)
		}
	}
	return out
}

type recordingWakeLock struct {
	mu       sync.Mutex
	acquired int
	released int
	err      error
}

func (lock *recordingWakeLock) Acquire(context.Context) error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.err != nil {
		return lock.err
	}
	lock.acquired++
	return nil
}

func (lock *recordingWakeLock) Release() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	lock.released++
	return nil
}

func (lock *recordingWakeLock) counts() (int, int) {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	return lock.acquired, lock.released
}

type fakeSaver struct {
	mu       sync.Mutex
	err      error
	entered  chan struct{}
	release  chan struct{}
	sessions []model.CompletedSession
}

func (saver *fakeSaver) SaveCompletedSession(_ context.Context, session model.CompletedSession) error {
	if saver.entered != nil {
		saver.entered <- struct{}{}
	}
	if saver.release != nil {
		<-saver.release
	}
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if saver.err != nil {
		return saver.err
	}
	saver.sessions = append(saver.sessions, session)
	return nil
}

type harness struct {
	keeper    *TimeKeeper
	clock     *fakeClock
	cues      *recordingCues
	wake      *recordingWakeLock
	saver     *fakeSaver
	snapshots *MemorySnapshots
}

func newHarness(t *testing.T, settings model.TimerSettings) *harness {
	t.Helper()
	clock := newFakeClock()
	h := &harness{
		clock:     clock,
		cues:      &recordingCues{clock: clock},
		wake:      &recordingWakeLock{},
		saver:     &fakeSaver{},
		snapshots: NewMemorySnapshots(),
	}
	h.keeper = New(settings, Config{
		Clock:     clock,
		Snapshots: h.snapshots,
		Cues:      h.cues,
		WakeLock:  h.wake,
		Saver:     h.saver,
	})
	t.Cleanup(h.keeper.Stop)
	return h
}

func settingsFor(durationSeconds, intervalMinutes int) model.TimerSettings {
	settings := model.DefaultTimerSettings()
	settings.DurationSeconds = durationSeconds
	settings.IntervalBellMinutes = intervalMinutes
	return settings
}

// startRunning drives the preparation countdown until the run begins.
func (h *harness) startRunning(t *testing.T) {
	t.Helper()
	require.NoError(t, h.keeper.Start())
	for i := 0; i < 5; i++ {
		h.clock.Advance(time.Second)
		h.keeper.Tick()
	}
	require.Equal(t, StateRunning, h.keeper.Status().State)
}

func (h *harness) tickFor(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Second {
		h.clock.Advance(time.Second)
		h.keeper.Tick()
	}
}

func (h *harness) snapshot(t *testing.T) *Snapshot {
	t.Helper()
	snapshot, err := h.snapshots.Load()
	require.NoError(t, err)
	return snapshot
}

func TestComputeRemainingUsesTimestampsOnly(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	startMillis := start.UnixMilli()

	assert.Equal(t, 600, ComputeRemaining(start, startMillis, 600))
	assert.Equal(t, 475, ComputeRemaining(start.Add(125*time.Second+900*time.Millisecond), startMillis, 600))
	assert.Equal(t, 1, ComputeRemaining(start.Add(599*time.Second), startMillis, 600))
	assert.Equal(t, 0, ComputeRemaining(start.Add(600*time.Second), startMillis, 600))
	assert.Equal(t, 0, ComputeRemaining(start.Add(time.Hour), startMillis, 600))
	assert.Equal(t, 600, ComputeRemaining(start.Add(-time.Minute), startMillis, 600))
}

func TestIntervalMarkDue(t *testing.T) {
	tests := []struct {
		name      string
		practiced int
		period    int
		lastMark  int
		wantMark  int
		wantDue   bool
	}{
		{name: "disabled", practiced: 300, period: 0, wantDue: false},
		{name: "before first mark", practiced: 299, period: 300, wantDue: false},
		{name: "first mark", practiced: 300, period: 300, wantMark: 300, wantDue: true},
		{name: "already fired", practiced: 301, period: 300, lastMark: 300, wantMark: 300, wantDue: false},
		{name: "skips to newest", practiced: 650, period: 300, wantMark: 600, wantDue: true},
		{name: "never at end", practiced: 1200, period: 300, lastMark: 900, wantMark: 900, wantDue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mark, due := IntervalMarkDue(tt.practiced, tt.period, tt.lastMark, 1200)
			assert.Equal(t, tt.wantDue, due)
			if tt.wantDue || tt.lastMark > 0 {
				assert.Equal(t, tt.wantMark, mark)
			}
		})
	}
}

func TestPreparationCountdownStartsRun(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	events := h.keeper.Subscribe(64)

	require.NoError(t, h.keeper.Start())
	assert.Equal(t, StatePreparing, h.keeper.Status().State)
	assert.Equal(t, 5, h.keeper.Status().Countdown)

	for i := 0; i < 4; i++ {
		h.clock.Advance(time.Second)
		h.keeper.Tick()
	}
	assert.Equal(t, StatePreparing, h.keeper.Status().State)
	assert.Equal(t, 1, h.keeper.Status().Countdown)
	assert.Nil(t, h.snapshot(t))

	h.clock.Advance(time.Second)
	h.keeper.Tick()

	status := h.keeper.Status()
	assert.Equal(t, StateRunning, status.State)
	assert.Equal(t, 600*time.Second, status.Remaining)
	assert.Equal(t, 1, h.cues.count(model.CueStart))

	snapshot := h.snapshot(t)
	require.NotNil(t, snapshot)
	assert.Equal(t, StateRunning, snapshot.State)
	require.NotNil(t, snapshot.StartEpochMillis)
	assert.Equal(t, h.clock.Now().UnixMilli(), *snapshot.StartEpochMillis)
	assert.Nil(t, snapshot.RemainingAtPauseSeconds)

	var prepTicks int
	for len(events) > 0 {
		if event := <-events; event.Type == EventPrepTick {
			prepTicks++
		}
	}
	assert.Equal(t, 4, prepTicks)
}

func TestPreparationFollowsWallClockAtFastTicks(t *testing.T) {
	clock := newFakeClock()
	keeper := New(settingsFor(600, 0), Config{Clock: clock, TickInterval: 100 * time.Millisecond})
	t.Cleanup(keeper.Stop)
	events := keeper.Subscribe(128)

	require.NoError(t, keeper.Start())
	for i := 0; i < 49; i++ {
		clock.Advance(100 * time.Millisecond)
		keeper.Tick()
	}
	assert.Equal(t, StatePreparing, keeper.Status().State)
	assert.Equal(t, 1, keeper.Status().Countdown)

	clock.Advance(100 * time.Millisecond)
	keeper.Tick()
	assert.Equal(t, StateRunning, keeper.Status().State)

	var countdowns []int
	for len(events) > 0 {
		if event := <-events; event.Type == EventPrepTick {
			countdowns = append(countdowns, event.Countdown)
		}
	}
	assert.Equal(t, []int{4, 3, 2, 1}, countdowns)
}

func TestPreparationSurvivesSlowTicks(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	require.NoError(t, h.keeper.Start())

	h.clock.Advance(2500 * time.Millisecond)
	h.keeper.Tick()
	assert.Equal(t, 3, h.keeper.Status().Countdown)

	h.clock.Advance(2500 * time.Millisecond)
	h.keeper.Tick()
	assert.Equal(t, StateRunning, h.keeper.Status().State)
	assert.Equal(t, 1, h.cues.count(model.CueStart))
}

func TestTickIntervalIsBoundedByGraceWindow(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantTick  time.Duration
		wantGrace time.Duration
	}{
		{name: "defaults", wantTick: time.Second, wantGrace: 3 * time.Second},
		{name: "slow tick capped", config: Config{TickInterval: 10 * time.Second}, wantTick: time.Second, wantGrace: 3 * time.Second},
		{name: "grace raised to tick", config: Config{TickInterval: time.Second, GraceWindow: 200 * time.Millisecond}, wantTick: time.Second, wantGrace: time.Second},
		{name: "fast tick kept", config: Config{TickInterval: 250 * time.Millisecond, GraceWindow: time.Second}, wantTick: 250 * time.Millisecond, wantGrace: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keeper := New(settingsFor(600, 0), tt.config)
			t.Cleanup(keeper.Stop)
			assert.Equal(t, tt.wantTick, keeper.options.TickInterval)
			assert.Equal(t, tt.wantGrace, keeper.options.GraceWindow)
		})
	}
}

func TestCompletionBellRingsAtMaximumTickLateness(t *testing.T) {
	clock := newFakeClock()
	cues := &recordingCues{clock: clock}
	keeper := New(settingsFor(60, 0), Config{
		Clock:        clock,
		TickInterval: 10 * time.Second,
		GraceWindow:  100 * time.Millisecond,
		PrepSeconds:  -1,
		Cues:         cues,
	})
	t.Cleanup(keeper.Stop)

	require.NoError(t, keeper.Start())
	clock.Advance(59*time.Second + 900*time.Millisecond)
	keeper.Tick()
	require.Equal(t, StateRunning, keeper.Status().State)

	clock.Advance(keeper.options.TickInterval)
	keeper.Tick()

	assert.Equal(t, StateCompleted, keeper.Status().State)
	assert.Equal(t, 1, cues.count(model.CueCompletion))
}

func TestCancelPreparationReturnsToSetup(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	require.NoError(t, h.keeper.Start())
	require.NoError(t, h.keeper.CancelPreparation())

	assert.Equal(t, StateSetup, h.keeper.Status().State)
	h.clock.Advance(10 * time.Second)
	h.keeper.Tick()
	assert.Equal(t, StateSetup, h.keeper.Status().State)
	assert.Zero(t, h.cues.count(model.CueStart))
}

func TestPauseResumeIsLossless(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	h.startRunning(t)

	h.tickFor(100 * time.Second)
	require.NoError(t, h.keeper.Pause())
	assert.Equal(t, 500*time.Second, h.keeper.Status().Remaining)

	snapshot := h.snapshot(t)
	require.NotNil(t, snapshot)
	assert.Equal(t, StatePaused, snapshot.State)
	assert.Nil(t, snapshot.StartEpochMillis)
	require.NotNil(t, snapshot.RemainingAtPauseSeconds)
	assert.Equal(t, 500, *snapshot.RemainingAtPauseSeconds)

	h.clock.Advance(17 * time.Minute)
	h.keeper.Tick()
	assert.Equal(t, 500*time.Second, h.keeper.Status().Remaining)

	require.NoError(t, h.keeper.Resume())
	assert.Equal(t, 500*time.Second, h.keeper.Status().Remaining)

	h.tickFor(50 * time.Second)
	assert.Equal(t, 450*time.Second, h.keeper.Status().Remaining)

	snapshot = h.snapshot(t)
	require.NotNil(t, snapshot)
	assert.Equal(t, StateRunning, snapshot.State)
	assert.Equal(t, 500, snapshot.BaseSeconds)
}

func TestTickFromStoppedLoopIsDropped(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	h.startRunning(t)
	h.tickFor(10 * time.Second)

	h.keeper.mu.Lock()
	stale := h.keeper.generation
	h.keeper.mu.Unlock()

	require.NoError(t, h.keeper.Pause())
	events := h.keeper.Subscribe(8)
	h.clock.Advance(2 * time.Minute)
	h.keeper.advance(stale)

	status := h.keeper.Status()
	assert.Equal(t, StatePaused, status.State)
	assert.Equal(t, 590*time.Second, status.Remaining)
	assert.Empty(t, events)

	require.NoError(t, h.keeper.Resume())
	h.keeper.mu.Lock()
	current := h.keeper.generation
	h.keeper.mu.Unlock()
	assert.NotEqual(t, stale, current)

	h.clock.Advance(time.Second)
	h.keeper.advance(current)
	assert.Equal(t, 589*time.Second, h.keeper.Status().Remaining)
}

type blockingCues struct {
	entered chan model.Cue
	release chan struct{}
}

func (cues *blockingCues) Play(cue model.Cue) {
	cues.entered <- cue
	<-cues.release
}

func TestWaitCuesCoversBellsBeingHandedOff(t *testing.T) {
	clock := newFakeClock()
	cues := &blockingCues{entered: make(chan model.Cue, 1), release: make(chan struct{})}
	keeper := New(settingsFor(60, 0), Config{Clock: clock, PrepSeconds: -1, Cues: cues})
	t.Cleanup(keeper.Stop)
	keeper.WaitCues()

	started := make(chan error, 1)
	go func() {
		started <- keeper.Start()
	}()
	assert.Equal(t, model.CueStart, <-cues.entered)

	waited := make(chan struct{})
	go func() {
		keeper.WaitCues()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("WaitCues returned before the start bell was handed off")
	case <-time.After(50 * time.Millisecond):
	}

	close(cues.release)
	require.NoError(t, <-started)
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("WaitCues did not return")
	}
}

func TestCompletionIsIdempotent(t *testing.T) {
	h := newHarness(t, settingsFor(60, 0))
	h.startRunning(t)

	h.tickFor(60 * time.Second)
	assert.Equal(t, StateCompleted, h.keeper.Status().State)

	h.clock.Advance(time.Second)
	h.keeper.Tick()
	h.keeper.Tick()
	h.keeper.Reconcile()
	assert.Error(t, h.keeper.Pause())

	assert.Equal(t, 1, h.cues.count(model.CueCompletion))
	assert.Nil(t, h.snapshot(t))
}

func TestRestoreAfterKill(t *testing.T) {
	t.Run("elapsed run completes silently", func(t *testing.T) {
		h := newHarness(t, model.DefaultTimerSettings())
		start := h.clock.Now().UnixMilli()
		require.NoError(t, h.snapshots.Save(Snapshot{
			State:                   StateRunning,
			StartEpochMillis:        &start,
			BaseSeconds:             600,
			SelectedDurationSeconds: 600,
			PracticeType:            model.PracticeMahamudra,
		}))

		h.clock.Advance(601 * time.Second)
		assert.True(t, h.keeper.Restore())

		status := h.keeper.Status()
		assert.Equal(t, StateCompleted, status.State)
		assert.Equal(t, model.PracticeMahamudra, status.PracticeType)
		assert.Zero(t, h.cues.count(model.CueCompletion))
		assert.Nil(t, h.snapshot(t))
	})

	t.Run("live run resumes", func(t *testing.T) {
		h := newHarness(t, model.DefaultTimerSettings())
		start := h.clock.Now().UnixMilli()
		require.NoError(t, h.snapshots.Save(Snapshot{
			State:                   StateRunning,
			StartEpochMillis:        &start,
			BaseSeconds:             600,
			SelectedDurationSeconds: 600,
		}))

		h.clock.Advance(595 * time.Second)
		assert.True(t, h.keeper.Restore())

		status := h.keeper.Status()
		assert.Equal(t, StateRunning, status.State)
		assert.Equal(t, 5*time.Second, status.Remaining)

		h.tickFor(5 * time.Second)
		assert.Equal(t, StateCompleted, h.keeper.Status().State)
		assert.Equal(t, 1, h.cues.count(model.CueCompletion))
		acquired, _ := h.wake.counts()
		assert.Equal(t, 1, acquired)
	})

	t.Run("paused run keeps frozen remaining", func(t *testing.T) {
		h := newHarness(t, model.DefaultTimerSettings())
		frozen := 240
		require.NoError(t, h.snapshots.Save(Snapshot{
			State:                   StatePaused,
			SelectedDurationSeconds: 600,
			RemainingAtPauseSeconds: &frozen,
		}))

		h.clock.Advance(time.Hour)
		assert.True(t, h.keeper.Restore())
		assert.Equal(t, StatePaused, h.keeper.Status().State)
		assert.Equal(t, 240*time.Second, h.keeper.Status().Remaining)
	})

	t.Run("invalid snapshot is cleared", func(t *testing.T) {
		h := newHarness(t, model.DefaultTimerSettings())
		start := h.clock.Now().UnixMilli()
		frozen := 10
		require.NoError(t, h.snapshots.Save(Snapshot{
			State:                   StateRunning,
			StartEpochMillis:        &start,
			RemainingAtPauseSeconds: &frozen,
			SelectedDurationSeconds: 600,
		}))

		assert.False(t, h.keeper.Restore())
		assert.Equal(t, StateSetup, h.keeper.Status().State)
		assert.Nil(t, h.snapshot(t))
	})

	t.Run("nothing stored", func(t *testing.T) {
		h := newHarness(t, model.DefaultTimerSettings())
		assert.False(t, h.keeper.Restore())
		assert.Equal(t, StateSetup, h.keeper.Status().State)
	})
}

func TestRunningSnapshotKeepsZeroBase(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	start := h.clock.Now().UnixMilli()
	data, err := json.Marshal(Snapshot{
		State:                   StateRunning,
		StartEpochMillis:        &start,
		BaseSeconds:             0,
		SelectedDurationSeconds: 600,
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"base_seconds":0`)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NoError(t, h.snapshots.Save(decoded))

	h.clock.Advance(time.Second)
	assert.True(t, h.keeper.Restore())
	assert.Equal(t, StateCompleted, h.keeper.Status().State)
	assert.Zero(t, h.keeper.Status().Remaining)
	assert.Nil(t, h.snapshot(t))
}

type failingSnapshots struct {
	mu    sync.Mutex
	saves int
}

var errSnapshotDisk = errors.New("snapshot disk unavailable")

func (store *failingSnapshots) Load() (*Snapshot, error) {
	return nil, errSnapshotDisk
}

func (store *failingSnapshots) Save(Snapshot) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.saves++
	return errSnapshotDisk
}

func (store *failingSnapshots) Clear() error {
	return errSnapshotDisk
}

func TestSnapshotStoreFailuresDoNotBreakLifecycle(t *testing.T) {
	clock := newFakeClock()
	store := &failingSnapshots{}
	cues := &recordingCues{clock: clock}
	saver := &fakeSaver{}
	keeper := New(settingsFor(60, 0), Config{
		Clock:     clock,
		Snapshots: store,
		Cues:      cues,
		Saver:     saver,
	})
	t.Cleanup(keeper.Stop)

	assert.False(t, keeper.Restore())
	assert.Equal(t, StateSetup, keeper.Status().State)

	require.NoError(t, keeper.Start())
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		keeper.Tick()
	}
	require.Equal(t, StateRunning, keeper.Status().State)

	clock.Advance(20 * time.Second)
	keeper.Tick()
	require.NoError(t, keeper.Pause())
	assert.Equal(t, 40*time.Second, keeper.Status().Remaining)
	require.NoError(t, keeper.Resume())

	clock.Advance(40 * time.Second)
	keeper.Tick()
	assert.Equal(t, StateCompleted, keeper.Status().State)
	assert.Equal(t, 1, cues.count(model.CueCompletion))

	require.NoError(t, keeper.Save(context.Background()))
	assert.Equal(t, StateSetup, keeper.Status().State)
	require.Len(t, saver.sessions, 1)
	assert.Equal(t, 60, saver.sessions[0].DurationSeconds)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Positive(t, store.saves)
}

func TestIntervalBellsFireAtMarksOnly(t *testing.T) {
	h := newHarness(t, settingsFor(1200, 5))
	h.startRunning(t)
	start := h.clock.Now()

	h.tickFor(1200 * time.Second)

	var marks []time.Duration
	for _, at := range h.cues.times(model.CueInterval) {
		marks = append(marks, at.Sub(start))
	}
	assert.Equal(t, []time.Duration{300 * time.Second, 600 * time.Second, 900 * time.Second}, marks)
	assert.Equal(t, 1, h.cues.count(model.CueCompletion))
}

func TestIntervalBellsContinueAcrossPause(t *testing.T) {
	h := newHarness(t, settingsFor(1200, 5))
	h.startRunning(t)

	h.tickFor(200 * time.Second)
	require.NoError(t, h.keeper.Pause())
	h.clock.Advance(10 * time.Minute)
	require.NoError(t, h.keeper.Resume())

	h.tickFor(99 * time.Second)
	assert.Zero(t, h.cues.count(model.CueInterval))
	h.tickFor(time.Second)
	assert.Equal(t, 1, h.cues.count(model.CueInterval))
}

func TestStaleIntervalBellIsSkipped(t *testing.T) {
	h := newHarness(t, settingsFor(1200, 5))
	h.startRunning(t)

	h.clock.Advance(310 * time.Second)
	h.keeper.Tick()
	assert.Zero(t, h.cues.count(model.CueInterval))

	h.tickFor(290 * time.Second)
	assert.Equal(t, 1, h.cues.count(model.CueInterval))
}

func TestCompletionBellGraceWindow(t *testing.T) {
	tests := []struct {
		name      string
		overshoot time.Duration
		wantBell  int
	}{
		{name: "on time", overshoot: 0, wantBell: 1},
		{name: "one second late", overshoot: time.Second, wantBell: 1},
		{name: "at grace limit", overshoot: 3 * time.Second, wantBell: 1},
		{name: "ten seconds late", overshoot: 10 * time.Second, wantBell: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, settingsFor(600, 0))
			h.startRunning(t)

			h.clock.Advance(600*time.Second + tt.overshoot)
			h.keeper.Tick()

			assert.Equal(t, StateCompleted, h.keeper.Status().State)
			assert.Equal(t, tt.wantBell, h.cues.count(model.CueCompletion))
		})
	}
}

func TestCustomMinutesValidation(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))

	for _, input := range []string{"0", "-5", "181", "abc", ""} {
		err := h.keeper.SetCustomMinutes(input)
		assert.ErrorIs(t, err, model.ErrInvalidDuration, input)
		assert.Equal(t, 600*time.Second, h.keeper.Status().Selected, input)
	}

	require.NoError(t, h.keeper.SetCustomMinutes("1"))
	assert.Equal(t, 60*time.Second, h.keeper.Status().Selected)
	require.NoError(t, h.keeper.SetCustomMinutes("180"))
	assert.Equal(t, 180*time.Minute, h.keeper.Status().Selected)
}

func TestTenMinuteSessionScenario(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	require.NoError(t, h.keeper.SetPracticeType(model.PracticeVipashyana))
	h.startRunning(t)

	h.tickFor(600 * time.Second)
	h.tickFor(5 * time.Second)

	assert.Equal(t, StateCompleted, h.keeper.Status().State)
	assert.Equal(t, 1, h.cues.count(model.CueCompletion))
	assert.Nil(t, h.snapshot(t))

	acquired, released := h.wake.counts()
	assert.Equal(t, 1, acquired)
	assert.Equal(t, 1, released)

	h.keeper.SetNotes("  steady breath  ")
	require.NoError(t, h.keeper.Save(context.Background()))
	assert.Equal(t, StateSetup, h.keeper.Status().State)
	require.Len(t, h.saver.sessions, 1)
	assert.Equal(t, model.CompletedSession{
		DurationSeconds: 600,
		PracticeType:    model.PracticeVipashyana,
		Notes:           "steady breath",
	}, h.saver.sessions[0])
}

func TestEndRecordsPracticedTime(t *testing.T) {
	h := newHarness(t, settingsFor(1200, 0))
	h.startRunning(t)
	h.tickFor(420 * time.Second)

	require.NoError(t, h.keeper.End())
	status := h.keeper.Status()
	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, 420*time.Second, status.Practiced)
	assert.Equal(t, 1, h.cues.count(model.CueCompletion))

	require.NoError(t, h.keeper.Save(context.Background()))
	require.Len(t, h.saver.sessions, 1)
	assert.Equal(t, 420, h.saver.sessions[0].DurationSeconds)
}

func TestPauseAfterExpiryCompletes(t *testing.T) {
	h := newHarness(t, settingsFor(60, 0))
	h.startRunning(t)
	h.clock.Advance(61 * time.Second)

	require.NoError(t, h.keeper.Pause())
	assert.Equal(t, StateCompleted, h.keeper.Status().State)
	assert.Nil(t, h.snapshot(t))
}

func TestReconcileExpiredRunCompletesSilently(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	h.startRunning(t)

	h.clock.Advance(45 * time.Minute)
	h.keeper.Reconcile()
	h.keeper.Tick()

	assert.Equal(t, StateCompleted, h.keeper.Status().State)
	assert.Zero(t, h.cues.count(model.CueCompletion))
}

func TestReconcileReacquiresWakeLock(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	h.startRunning(t)
	h.clock.Advance(30 * time.Second)

	h.keeper.Reconcile()

	acquired, _ := h.wake.counts()
	assert.Equal(t, 2, acquired)
	assert.Equal(t, 570*time.Second, h.keeper.Status().Remaining)
}

func TestWakeLockFailureIsReported(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	h.wake.err = errors.New("no session bus")
	events := h.keeper.Subscribe(32)

	require.NoError(t, h.keeper.Start())
	assert.Equal(t, StatePreparing, h.keeper.Status().State)

	var reported bool
	for len(events) > 0 {
		if event := <-events; event.Type == EventWakeLockError {
			reported = true
			assert.Contains(t, event.Message, "no session bus")
		}
	}
	assert.True(t, reported)
}

func TestSaveFailureKeepsSession(t *testing.T) {
	h := newHarness(t, settingsFor(60, 0))
	h.saver.err = errors.New("disk full")
	events := h.keeper.Subscribe(256)
	h.startRunning(t)
	h.tickFor(60 * time.Second)

	err := h.keeper.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateCompleted, h.keeper.Status().State)

	var failed bool
	for len(events) > 0 {
		if event := <-events; event.Type == EventSaveFailed {
			failed = true
		}
	}
	assert.True(t, failed)

	h.saver.mu.Lock()
	h.saver.err = nil
	h.saver.mu.Unlock()
	require.NoError(t, h.keeper.Save(context.Background()))
	assert.Equal(t, StateSetup, h.keeper.Status().State)
}

func TestSaveRejectsConcurrentActions(t *testing.T) {
	h := newHarness(t, settingsFor(60, 0))
	h.saver.entered = make(chan struct{})
	h.saver.release = make(chan struct{})
	h.startRunning(t)
	h.tickFor(60 * time.Second)

	done := make(chan error, 1)
	go func() {
		done <- h.keeper.Save(context.Background())
	}()
	<-h.saver.entered

	assert.True(t, h.keeper.Status().Saving)
	assert.ErrorIs(t, h.keeper.Save(context.Background()), ErrSaveInProgress)
	assert.ErrorIs(t, h.keeper.Discard(), ErrSaveInProgress)

	close(h.saver.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateSetup, h.keeper.Status().State)
}

func TestSaveWithoutStore(t *testing.T) {
	clock := newFakeClock()
	keeper := New(settingsFor(60, 0), Config{Clock: clock, PrepSeconds: -1})
	t.Cleanup(keeper.Stop)

	require.NoError(t, keeper.Start())
	clock.Advance(time.Minute)
	keeper.Tick()

	assert.ErrorIs(t, keeper.Save(context.Background()), ErrNoSessionSaver)
	require.NoError(t, keeper.Discard())
	assert.Equal(t, StateSetup, keeper.Status().State)
}

func TestInvalidTransitions(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))

	assert.ErrorIs(t, h.keeper.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, h.keeper.Resume(), ErrInvalidTransition)
	assert.ErrorIs(t, h.keeper.End(), ErrInvalidTransition)
	assert.ErrorIs(t, h.keeper.Discard(), ErrInvalidTransition)
	assert.ErrorIs(t, h.keeper.Save(context.Background()), ErrInvalidTransition)

	h.startRunning(t)
	assert.ErrorIs(t, h.keeper.Start(), ErrInvalidTransition)
	assert.ErrorIs(t, h.keeper.SelectDuration(300), ErrInvalidTransition)
	assert.ErrorIs(t, h.keeper.SetPracticeType("other"), ErrInvalidTransition)
}

func TestStopClosesSubscribers(t *testing.T) {
	h := newHarness(t, settingsFor(600, 0))
	events := h.keeper.Subscribe(4)
	h.startRunning(t)

	h.keeper.Stop()
	for range events {
	}
	_, released := h.wake.counts()
	assert.Equal(t, 1, released)
	assert.ErrorIs(t, h.keeper.Pause(), ErrInvalidTransition)
}
