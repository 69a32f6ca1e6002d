package timekeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dharmatimer/internal/core/model"
)

var (
	// ErrInvalidTransition is returned when an action does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid timer transition")
	// ErrSaveInProgress rejects a second save while one is pending.
	ErrSaveInProgress = errors.New("session save already in progress")
	// ErrNoSessionSaver is returned by Save when no store is configured.
	ErrNoSessionSaver = errors.New("no session store configured")
	// ErrEmptyPracticeType rejects blank practice labels.
	ErrEmptyPracticeType = errors.New("practice type is empty")
)

const wakeLockTimeout = 3 * time.Second

// maxTickInterval bounds the loop cadence so the countdown display and the
// bell grace window stay meaningful.
const maxTickInterval = time.Second

// Config contains runtime options for TimeKeeper.
type Config struct {
	Clock Clock
	// TickInterval is the loop cadence, capped at one second.
	TickInterval time.Duration
	// PrepSeconds is the readiness countdown. Zero selects the default of
	// five; a negative value starts running immediately.
	PrepSeconds int
	// GraceWindow bounds how late a bell may still be played. Zero selects
	// the default of three seconds; it is never shorter than TickInterval.
	GraceWindow time.Duration

	Snapshots SnapshotStore
	Cues      CuePlayer
	WakeLock  WakeLock
	Saver     SessionSaver
	Logger    *slog.Logger
}

// Status is a point-in-time view of the timer for renderers.
type Status struct {
	State        State
	Remaining    time.Duration
	Selected     time.Duration
	Practiced    time.Duration
	Progress     float64
	Countdown    int
	PracticeType string
	IntervalBell time.Duration
	Notes        string
	Saving       bool
}

// TimeKeeper is the meditation session state machine. Remaining time is
// always derived from the run's start timestamp, so late or missing ticks
// never skew it.
type TimeKeeper struct {
	mu      sync.Mutex
	options Config
	logger  *slog.Logger

	state           State
	selectedSeconds int
	practiceType    string
	intervalSeconds int
	countdown       int
	prepDeadline    time.Time
	startedAt       time.Time
	baseSeconds     int
	pausedRemaining *int
	remaining       int
	lastMark        int
	notes           string
	saving          bool

	generation uint64
	stopCh     chan struct{}
	events     []chan Event
	closed     bool

	// cuesPending counts announced bells not yet handed to the player.
	cuesPending int
	cuesIdle    *sync.Cond

	wakeMu   sync.Mutex
	wakeHeld bool
}

type sideEffects struct {
	cues      []model.Cue
	wake      bool
	forceWake bool
}

// New creates a TimeKeeper in the setup state seeded from settings.
func New(settings model.TimerSettings, options Config) *TimeKeeper {
	if options.Clock == nil {
		options.Clock = SystemClock
	}
	if options.TickInterval <= 0 || options.TickInterval > maxTickInterval {
		options.TickInterval = maxTickInterval
	}
	if options.PrepSeconds == 0 {
		options.PrepSeconds = 5
	}
	if options.GraceWindow <= 0 {
		options.GraceWindow = 3 * time.Second
	}
	if options.GraceWindow < options.TickInterval {
		options.GraceWindow = options.TickInterval
	}
	if options.Snapshots == nil {
		options.Snapshots = NewMemorySnapshots()
	}
	if options.Cues == nil {
		options.Cues = silentCues{}
	}
	if options.WakeLock == nil {
		options.WakeLock = NoopWakeLock{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keeper := &TimeKeeper{
		options: options,
		logger:  logger.With("component", "timekeeper"),
		state:   StateSetup,
	}
	keeper.cuesIdle = sync.NewCond(&keeper.mu)
	keeper.applySettingsLocked(settings)
	return keeper
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	if keeper.closed {
		close(ch)
	} else {
		keeper.events = append(keeper.events, ch)
	}
	keeper.mu.Unlock()
	return ch
}

// Stop terminates the tick loop, releases the wake lock and closes observers.
func (keeper *TimeKeeper) Stop() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.stopLoopLocked()
	keeper.closed = true
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
	keeper.syncWakeLock(false)
}

// Status returns the current view, recomputing remaining time if running.
func (keeper *TimeKeeper) Status() Status {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	remaining := keeper.remaining
	if keeper.state == StateRunning {
		remaining = ComputeRemaining(keeper.options.Clock.Now(), keeper.startedAt.UnixMilli(), keeper.baseSeconds)
	}
	return Status{
		State:        keeper.state,
		Remaining:    seconds(remaining),
		Selected:     seconds(keeper.selectedSeconds),
		Practiced:    seconds(keeper.selectedSeconds - remaining),
		Progress:     progress(keeper.selectedSeconds, remaining),
		Countdown:    keeper.countdown,
		PracticeType: keeper.practiceType,
		IntervalBell: seconds(keeper.intervalSeconds),
		Notes:        keeper.notes,
		Saving:       keeper.saving,
	}
}

// ApplySettings replaces the setup defaults. It is ignored outside setup.
func (keeper *TimeKeeper) ApplySettings(settings model.TimerSettings) bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.state != StateSetup {
		return false
	}
	keeper.applySettingsLocked(settings)
	keeper.emitStateLocked(keeper.options.Clock.Now())
	return true
}

// SelectDuration sets the session length in seconds.
func (keeper *TimeKeeper) SelectDuration(durationSeconds int) error {
	if !model.ValidDurationSeconds(durationSeconds) {
		return model.ErrInvalidDuration
	}
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireLocked(StateSetup, "select duration"); err != nil {
		return err
	}
	keeper.selectedSeconds = durationSeconds
	keeper.remaining = durationSeconds
	keeper.emitStateLocked(keeper.options.Clock.Now())
	return nil
}

// SetCustomMinutes validates free-form minute input and selects it.
// Invalid input leaves the setup unchanged.
func (keeper *TimeKeeper) SetCustomMinutes(input string) error {
	durationSeconds, err := model.ParseCustomMinutes(input)
	if err != nil {
		return err
	}
	return keeper.SelectDuration(durationSeconds)
}

// SetPracticeType sets the practice label for the next session.
func (keeper *TimeKeeper) SetPracticeType(practiceType string) error {
	practiceType = strings.TrimSpace(practiceType)
	if practiceType == "" {
		return ErrEmptyPracticeType
	}
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireLocked(StateSetup, "set practice type"); err != nil {
		return err
	}
	keeper.practiceType = practiceType
	keeper.emitStateLocked(keeper.options.Clock.Now())
	return nil
}

// SetIntervalBell sets the interval bell period in seconds; 0 disables it.
func (keeper *TimeKeeper) SetIntervalBell(periodSeconds int) error {
	if periodSeconds < 0 {
		return fmt.Errorf("interval bell period %d: %w", periodSeconds, ErrInvalidTransition)
	}
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireLocked(StateSetup, "set interval bell"); err != nil {
		return err
	}
	keeper.intervalSeconds = periodSeconds
	keeper.emitStateLocked(keeper.options.Clock.Now())
	return nil
}

// SetNotes stores the free-text notes saved with the session.
func (keeper *TimeKeeper) SetNotes(notes string) {
	keeper.mu.Lock()
	keeper.notes = notes
	keeper.mu.Unlock()
}

// Start begins the preparation countdown.
func (keeper *TimeKeeper) Start() error {
	keeper.mu.Lock()
	if err := keeper.requireLocked(StateSetup, "start"); err != nil {
		keeper.mu.Unlock()
		return err
	}
	now := keeper.options.Clock.Now()
	keeper.remaining = keeper.selectedSeconds
	keeper.lastMark = 0
	keeper.notes = ""

	var fx sideEffects
	if keeper.options.PrepSeconds < 0 {
		fx = keeper.beginRunLocked(now)
	} else {
		keeper.state = StatePreparing
		keeper.countdown = keeper.options.PrepSeconds
		keeper.prepDeadline = now.Add(seconds(keeper.options.PrepSeconds))
		keeper.startLoopLocked()
		keeper.emitStateLocked(now)
		fx = sideEffects{wake: true}
	}
	keeper.mu.Unlock()

	keeper.apply(fx)
	return nil
}

// CancelPreparation abandons the readiness countdown.
func (keeper *TimeKeeper) CancelPreparation() error {
	keeper.mu.Lock()
	if err := keeper.requireLocked(StatePreparing, "cancel preparation"); err != nil {
		keeper.mu.Unlock()
		return err
	}
	keeper.stopLoopLocked()
	keeper.state = StateSetup
	keeper.countdown = 0
	keeper.prepDeadline = time.Time{}
	keeper.emitStateLocked(keeper.options.Clock.Now())
	keeper.mu.Unlock()

	keeper.apply(sideEffects{wake: true})
	return nil
}

// Pause freezes the remaining time and cancels the tick loop.
func (keeper *TimeKeeper) Pause() error {
	keeper.mu.Lock()
	if err := keeper.requireLocked(StateRunning, "pause"); err != nil {
		keeper.mu.Unlock()
		return err
	}
	now := keeper.options.Clock.Now()
	start := keeper.startedAt.UnixMilli()
	remaining := ComputeRemaining(now, start, keeper.baseSeconds)
	keeper.remaining = remaining

	var fx sideEffects
	if remaining == 0 {
		fx = keeper.completeLocked(now, keeper.withinGraceLocked(Overshoot(now, start, keeper.baseSeconds)))
	} else {
		keeper.stopLoopLocked()
		frozen := remaining
		keeper.pausedRemaining = &frozen
		keeper.startedAt = time.Time{}
		keeper.state = StatePaused
		keeper.persistLocked()
		keeper.emitStateLocked(now)
		fx = sideEffects{wake: true}
	}
	keeper.mu.Unlock()

	keeper.apply(fx)
	return nil
}

// Resume restarts the run from the frozen remaining time.
func (keeper *TimeKeeper) Resume() error {
	keeper.mu.Lock()
	if err := keeper.requireLocked(StatePaused, "resume"); err != nil {
		keeper.mu.Unlock()
		return err
	}
	now := keeper.options.Clock.Now()
	base := keeper.selectedSeconds
	if keeper.pausedRemaining != nil {
		base = *keeper.pausedRemaining
	}
	keeper.baseSeconds = base
	keeper.pausedRemaining = nil
	keeper.startedAt = now
	keeper.remaining = base
	keeper.state = StateRunning
	keeper.persistLocked()
	keeper.startLoopLocked()
	keeper.emitStateLocked(now)
	keeper.mu.Unlock()

	keeper.apply(sideEffects{wake: true})
	return nil
}

// End finishes the session early, keeping the time practiced so far.
func (keeper *TimeKeeper) End() error {
	keeper.mu.Lock()
	now := keeper.options.Clock.Now()
	switch keeper.state {
	case StateRunning:
		keeper.remaining = ComputeRemaining(now, keeper.startedAt.UnixMilli(), keeper.baseSeconds)
	case StatePaused:
		if keeper.pausedRemaining != nil {
			keeper.remaining = *keeper.pausedRemaining
		}
	default:
		state := keeper.state
		keeper.mu.Unlock()
		return fmt.Errorf("end from %s: %w", state, ErrInvalidTransition)
	}
	fx := keeper.completeLocked(now, true)
	keeper.mu.Unlock()

	keeper.apply(fx)
	return nil
}

// Discard drops a completed session and returns to setup.
func (keeper *TimeKeeper) Discard() error {
	keeper.mu.Lock()
	if err := keeper.requireLocked(StateCompleted, "discard"); err != nil {
		keeper.mu.Unlock()
		return err
	}
	if keeper.saving {
		keeper.mu.Unlock()
		return ErrSaveInProgress
	}
	keeper.resetToSetupLocked()
	keeper.clearSnapshotLocked()
	keeper.emitStateLocked(keeper.options.Clock.Now())
	keeper.mu.Unlock()

	keeper.apply(sideEffects{wake: true})
	return nil
}

// Save hands the completed session to the session store. On failure the
// timer stays completed so the user can retry.
func (keeper *TimeKeeper) Save(ctx context.Context) error {
	keeper.mu.Lock()
	if err := keeper.requireLocked(StateCompleted, "save"); err != nil {
		keeper.mu.Unlock()
		return err
	}
	if keeper.saving {
		keeper.mu.Unlock()
		return ErrSaveInProgress
	}
	saver := keeper.options.Saver
	if saver == nil {
		keeper.mu.Unlock()
		return ErrNoSessionSaver
	}
	keeper.saving = true
	session := model.CompletedSession{
		DurationSeconds: keeper.selectedSeconds - keeper.remaining,
		PracticeType:    keeper.practiceType,
		Notes:           strings.TrimSpace(keeper.notes),
	}
	keeper.clearSnapshotLocked()
	keeper.mu.Unlock()

	err := saver.SaveCompletedSession(ctx, session)

	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.saving = false
	now := keeper.options.Clock.Now()
	if err != nil {
		keeper.logger.Warn("save session failed", "error", err)
		keeper.emitLocked(Event{
			Type:    EventSaveFailed,
			State:   keeper.state,
			Message: err.Error(),
			At:      now,
		})
		return fmt.Errorf("save session: %w", err)
	}

	keeper.resetToSetupLocked()
	keeper.emitLocked(Event{
		Type:      EventSaved,
		State:     StateSetup,
		Practiced: seconds(session.DurationSeconds),
		Message:   session.PracticeType,
		At:        now,
	})
	keeper.emitStateLocked(now)
	return nil
}

// Tick recomputes the timer immediately. The tick loop calls the same path.
func (keeper *TimeKeeper) Tick() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	fx := keeper.tickLocked(keeper.options.Clock.Now())
	keeper.mu.Unlock()

	keeper.apply(fx)
}

func (keeper *TimeKeeper) run(generation uint64, stop <-chan struct{}) {
	ticker := keeper.options.Clock.NewTicker(keeper.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			keeper.advance(generation)
		}
	}
}

// advance applies a loop tick unless the loop that scheduled it was torn
// down in the meantime.
func (keeper *TimeKeeper) advance(generation uint64) {
	keeper.mu.Lock()
	if keeper.closed || generation != keeper.generation {
		keeper.mu.Unlock()
		return
	}
	fx := keeper.tickLocked(keeper.options.Clock.Now())
	keeper.mu.Unlock()

	keeper.apply(fx)
}

func (keeper *TimeKeeper) tickLocked(now time.Time) sideEffects {
	switch keeper.state {
	case StatePreparing:
		return keeper.prepStepLocked(now)
	case StateRunning:
		return keeper.runStepLocked(now)
	default:
		return sideEffects{}
	}
}

// prepStepLocked derives the countdown from the preparation deadline, so
// the tick cadence never stretches or shortens preparation.
func (keeper *TimeKeeper) prepStepLocked(now time.Time) sideEffects {
	left := keeper.prepDeadline.Sub(now)
	if left <= 0 {
		return keeper.beginRunLocked(now)
	}
	countdown := int((left + time.Second - 1) / time.Second)
	if countdown != keeper.countdown {
		keeper.countdown = countdown
		keeper.emitLocked(Event{
			Type:      EventPrepTick,
			State:     StatePreparing,
			Countdown: keeper.countdown,
			Remaining: seconds(keeper.selectedSeconds),
			At:        now,
		})
	}
	return sideEffects{}
}

func (keeper *TimeKeeper) beginRunLocked(now time.Time) sideEffects {
	keeper.countdown = 0
	keeper.prepDeadline = time.Time{}
	keeper.state = StateRunning
	keeper.startedAt = now
	keeper.baseSeconds = keeper.selectedSeconds
	keeper.pausedRemaining = nil
	keeper.remaining = keeper.selectedSeconds
	keeper.lastMark = 0
	keeper.persistLocked()
	keeper.startLoopLocked()
	keeper.emitStateLocked(now)
	keeper.emitBellLocked(model.CueStart, now)
	return sideEffects{cues: []model.Cue{model.CueStart}, wake: true}
}

func (keeper *TimeKeeper) runStepLocked(now time.Time) sideEffects {
	start := keeper.startedAt.UnixMilli()
	remaining := ComputeRemaining(now, start, keeper.baseSeconds)
	keeper.remaining = remaining
	if remaining == 0 {
		return keeper.completeLocked(now, keeper.withinGraceLocked(Overshoot(now, start, keeper.baseSeconds)))
	}

	var fx sideEffects
	practiced := keeper.selectedSeconds - remaining
	if mark, due := IntervalMarkDue(practiced, keeper.intervalSeconds, keeper.lastMark, keeper.selectedSeconds); due {
		keeper.lastMark = mark
		keeper.persistLocked()
		if keeper.withinGraceLocked(practiced - mark) {
			fx.cues = append(fx.cues, model.CueInterval)
			keeper.emitBellLocked(model.CueInterval, now)
		} else {
			keeper.logger.Debug("stale interval bell skipped", "mark", mark, "practiced", practiced)
		}
	}
	keeper.emitLocked(keeper.eventLocked(EventProgress, now))
	return fx
}

func (keeper *TimeKeeper) completeLocked(now time.Time, withBell bool) sideEffects {
	keeper.stopLoopLocked()
	keeper.state = StateCompleted
	keeper.startedAt = time.Time{}
	keeper.pausedRemaining = nil
	keeper.countdown = 0
	keeper.clearSnapshotLocked()
	keeper.emitStateLocked(now)

	fx := sideEffects{wake: true}
	if withBell {
		fx.cues = append(fx.cues, model.CueCompletion)
		keeper.emitBellLocked(model.CueCompletion, now)
	}
	return fx
}

func (keeper *TimeKeeper) resetToSetupLocked() {
	keeper.state = StateSetup
	keeper.remaining = keeper.selectedSeconds
	keeper.notes = ""
	keeper.lastMark = 0
	keeper.countdown = 0
	keeper.startedAt = time.Time{}
	keeper.pausedRemaining = nil
}

func (keeper *TimeKeeper) applySettingsLocked(settings model.TimerSettings) {
	keeper.selectedSeconds = settings.DurationSeconds
	if !model.ValidDurationSeconds(keeper.selectedSeconds) {
		keeper.selectedSeconds = model.DefaultTimerSettings().DurationSeconds
	}
	keeper.practiceType = strings.TrimSpace(settings.PracticeType)
	if keeper.practiceType == "" {
		keeper.practiceType = model.PracticeShamatha
	}
	keeper.intervalSeconds = settings.IntervalBellSeconds()
	keeper.remaining = keeper.selectedSeconds
}

func (keeper *TimeKeeper) requireLocked(state State, action string) error {
	if keeper.closed {
		return fmt.Errorf("%s: timer stopped: %w", action, ErrInvalidTransition)
	}
	if keeper.state != state {
		return fmt.Errorf("%s from %s: %w", action, keeper.state, ErrInvalidTransition)
	}
	return nil
}

func (keeper *TimeKeeper) withinGraceLocked(lateSeconds int) bool {
	return lateSeconds <= int(keeper.options.GraceWindow/time.Second)
}

func (keeper *TimeKeeper) startLoopLocked() {
	keeper.stopLoopLocked()
	stop := make(chan struct{})
	keeper.stopCh = stop
	go keeper.run(keeper.generation, stop)
}

// stopLoopLocked cancels the active tick source; any tick it already
// queued is dropped by the generation check in advance.
func (keeper *TimeKeeper) stopLoopLocked() {
	if keeper.stopCh != nil {
		close(keeper.stopCh)
		keeper.stopCh = nil
	}
	keeper.generation++
}

func (keeper *TimeKeeper) snapshotLocked() (Snapshot, bool) {
	snapshot := Snapshot{
		State:                     keeper.state,
		SelectedDurationSeconds:   keeper.selectedSeconds,
		PracticeType:              keeper.practiceType,
		IntervalBellPeriodSeconds: keeper.intervalSeconds,
		LastFiredIntervalMark:     keeper.lastMark,
	}
	switch keeper.state {
	case StateRunning:
		start := keeper.startedAt.UnixMilli()
		snapshot.StartEpochMillis = &start
		snapshot.BaseSeconds = keeper.baseSeconds
	case StatePaused:
		frozen := keeper.remaining
		if keeper.pausedRemaining != nil {
			frozen = *keeper.pausedRemaining
		}
		snapshot.RemainingAtPauseSeconds = &frozen
	default:
		return Snapshot{}, false
	}
	return snapshot, true
}

func (keeper *TimeKeeper) persistLocked() {
	snapshot, ok := keeper.snapshotLocked()
	if !ok {
		return
	}
	if err := keeper.options.Snapshots.Save(snapshot); err != nil {
		keeper.logger.Warn("persist timer snapshot", "error", err)
	}
}

func (keeper *TimeKeeper) clearSnapshotLocked() {
	if err := keeper.options.Snapshots.Clear(); err != nil {
		keeper.logger.Warn("clear timer snapshot", "error", err)
	}
}

func (keeper *TimeKeeper) apply(fx sideEffects) {
	if fx.wake {
		keeper.syncWakeLock(fx.forceWake)
	}
	for _, cue := range fx.cues {
		keeper.options.Cues.Play(cue)
		keeper.mu.Lock()
		keeper.cuesPending--
		if keeper.cuesPending == 0 {
			keeper.cuesIdle.Broadcast()
		}
		keeper.mu.Unlock()
	}
}

// WaitCues blocks until every bell announced so far has been handed to the
// cue player. Playback itself may still be in progress.
func (keeper *TimeKeeper) WaitCues() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	for keeper.cuesPending > 0 {
		keeper.cuesIdle.Wait()
	}
}

// syncWakeLock converges the held wake lock onto the current state. Calls
// from different goroutines may interleave; each one reads the latest state.
func (keeper *TimeKeeper) syncWakeLock(force bool) {
	keeper.wakeMu.Lock()
	defer keeper.wakeMu.Unlock()

	keeper.mu.Lock()
	want := !keeper.closed && (keeper.state == StateRunning || keeper.state == StatePreparing)
	keeper.mu.Unlock()

	switch {
	case want && (!keeper.wakeHeld || force):
		ctx, cancel := context.WithTimeout(context.Background(), wakeLockTimeout)
		err := keeper.options.WakeLock.Acquire(ctx)
		cancel()
		if err != nil {
			keeper.logger.Warn("wake lock unavailable", "error", err)
			keeper.emit(Event{Type: EventWakeLockError, Message: err.Error(), At: keeper.options.Clock.Now()})
			return
		}
		keeper.wakeHeld = true
	case !want && keeper.wakeHeld:
		if err := keeper.options.WakeLock.Release(); err != nil {
			keeper.logger.Warn("wake lock release failed", "error", err)
		}
		keeper.wakeHeld = false
	}
}

func (keeper *TimeKeeper) eventLocked(eventType EventType, now time.Time) Event {
	return Event{
		Type:      eventType,
		State:     keeper.state,
		Remaining: seconds(keeper.remaining),
		Practiced: seconds(keeper.selectedSeconds - keeper.remaining),
		Progress:  progress(keeper.selectedSeconds, keeper.remaining),
		Countdown: keeper.countdown,
		At:        now,
	}
}

func (keeper *TimeKeeper) emitStateLocked(now time.Time) {
	keeper.emitLocked(keeper.eventLocked(EventStateChange, now))
}

func (keeper *TimeKeeper) emitBellLocked(cue model.Cue, now time.Time) {
	keeper.cuesPending++
	event := keeper.eventLocked(EventBell, now)
	event.Message = string(cue)
	keeper.emitLocked(event)
}

func (keeper *TimeKeeper) emit(event Event) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if event.State == "" {
		event.State = keeper.state
	}
	keeper.emitLocked(event)
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	events := append([]chan Event(nil), keeper.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func progress(selectedSeconds, remaining int) float64 {
	if selectedSeconds <= 0 {
		return 1
	}
	value := float64(selectedSeconds-remaining) / float64(selectedSeconds)
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
