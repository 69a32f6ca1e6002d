package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains animation timing values.
type Config struct {
	FrameInterval time.Duration
	Breath        BreathSpec
	// Rest is sampled per cycle so the pulse does not feel mechanical.
	Rest Range
}

// Engine drives the breathing pulse shown during a session.
type Engine struct {
	mu          sync.Mutex
	config      Config
	updateScale func(float64)
	onPhase     func(Phase)
	cancel      context.CancelFunc
	done        chan struct{}
	rng         *rand.Rand
}

// New creates a new animation engine.
func New(config Config, updateScale func(float64)) *Engine {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultConfig().FrameInterval
	}
	return &Engine{
		config:      config,
		updateScale: updateScale,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartBreathing runs the pulse until ctx is cancelled or Stop is called.
func (engine *Engine) StartBreathing(ctx context.Context) {
	engine.start(ctx, func(runCtx context.Context) {
		for {
			spec := engine.config.Breath
			spec.Rest = engine.config.Rest.Random(engine.rng)
			if !engine.runCycle(runCtx, spec) {
				return
			}
		}
	})
}

// Rest stops the pulse and settles it at the resting scale.
func (engine *Engine) Rest() {
	engine.Stop()
	engine.updateScale(engine.config.Breath.MinScale)
}

// Stop terminates any active animation and waits for its last frame.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	done := engine.halt()
	engine.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (engine *Engine) halt() chan struct{} {
	done := engine.done
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
	engine.done = nil
	return done
}

// SetOnPhaseChange sets a callback fired when the breath phase changes.
func (engine *Engine) SetOnPhaseChange(handler func(Phase)) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.onPhase = handler
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	previous := engine.halt()
	runCtx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	if previous != nil {
		<-previous
	}
	go func() {
		defer close(done)
		run(runCtx)
	}()
}

func (engine *Engine) runCycle(ctx context.Context, spec BreathSpec) bool {
	cycle := spec.Cycle()
	if cycle <= 0 {
		<-ctx.Done()
		return false
	}
	last := Phase(-1)
	for offset := time.Duration(0); offset < cycle; offset += engine.config.FrameInterval {
		phase, scale := spec.At(offset)
		if phase != last {
			engine.notifyPhaseChange(phase)
			last = phase
		}
		engine.updateScale(scale)
		if !sleepWithContext(ctx, engine.config.FrameInterval) {
			return false
		}
	}
	return true
}

func (engine *Engine) notifyPhaseChange(phase Phase) {
	engine.mu.Lock()
	handler := engine.onPhase
	engine.mu.Unlock()
	if handler != nil {
		handler(phase)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
