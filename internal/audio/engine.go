package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"dharmatimer/internal/core/model"
)

// ErrAudioUnavailable is returned when the output device cannot be opened.
var ErrAudioUnavailable = errors.New("audio output unavailable")

// strikeSpacing separates the strikes of the completion cue.
const strikeSpacing = 3 * time.Second

// Output is the sink bells are mixed into.
type Output interface {
	Init(format beep.Format) error
	Play(streamer beep.Streamer)
}

// Config contains options for Engine.
type Config struct {
	SampleRate int
	BellID     string
	Output     Output
	Logger     *slog.Logger
}

// Engine plays timer cues with the selected bell preset.
type Engine struct {
	mu      sync.Mutex
	catalog *Catalog
	format  beep.Format
	bellID  string
	strikes map[string]*beep.Buffer
	output  Output
	logger  *slog.Logger

	initOnce sync.Once
	initErr  error

	// pending counts streamers handed to output that have not finished;
	// idle is closed whenever it drops to zero.
	pending int
	idle    chan struct{}
}

// NewEngine creates a cue engine. The output device is opened lazily on
// the first cue.
func NewEngine(catalog *Catalog, options Config) *Engine {
	if options.Output == nil {
		options.Output = speakerOutput{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog: catalog,
		format:  Format(options.SampleRate),
		bellID:  catalog.Lookup(options.BellID).ID,
		strikes: make(map[string]*beep.Buffer),
		output:  options.Output,
		logger:  logger.With("component", "audio"),
	}
}

// SetBellSound selects the preset used for future cues.
func (engine *Engine) SetBellSound(id string) {
	engine.mu.Lock()
	engine.bellID = engine.catalog.Lookup(id).ID
	engine.mu.Unlock()
}

// BellSound returns the selected preset id.
func (engine *Engine) BellSound() string {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.bellID
}

// Play renders cue without blocking. Failures are logged and dropped.
func (engine *Engine) Play(cue model.Cue) {
	if err := engine.PlayCue(cue); err != nil {
		engine.logger.Warn("bell not played", "cue", cue, "error", err)
	}
}

// PlayCue renders cue and reports device errors.
func (engine *Engine) PlayCue(cue model.Cue) error {
	if err := engine.ready(); err != nil {
		return err
	}
	engine.mu.Lock()
	streamer := engine.trackLocked(engine.composeLocked(cue, engine.strikeLocked(engine.bellID)))
	engine.mu.Unlock()

	engine.output.Play(streamer)
	return nil
}

// Preview plays a single strike of the given preset.
func (engine *Engine) Preview(id string) error {
	if err := engine.ready(); err != nil {
		return err
	}
	engine.mu.Lock()
	buffer := engine.strikeLocked(engine.catalog.Lookup(id).ID)
	streamer := engine.trackLocked(buffer.Streamer(0, buffer.Len()))
	engine.mu.Unlock()

	engine.output.Play(streamer)
	return nil
}

// Wait blocks until every cue handed to the output has finished playing
// or ctx is done.
func (engine *Engine) Wait(ctx context.Context) error {
	engine.mu.Lock()
	if engine.pending == 0 {
		engine.mu.Unlock()
		return nil
	}
	idle := engine.idle
	engine.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// trackLocked wraps streamer so the engine learns when the output has
// consumed it.
func (engine *Engine) trackLocked(streamer beep.Streamer) beep.Streamer {
	if engine.pending == 0 {
		engine.idle = make(chan struct{})
	}
	engine.pending++
	return beep.Seq(streamer, beep.Callback(engine.finish))
}

// finish runs on the output goroutine and must not call back into it.
func (engine *Engine) finish() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.pending--
	if engine.pending == 0 {
		close(engine.idle)
	}
}

func (engine *Engine) ready() error {
	engine.initOnce.Do(func() {
		engine.initErr = engine.output.Init(engine.format)
		if engine.initErr != nil {
			engine.logger.Warn("audio output init failed", "error", engine.initErr)
		}
	})
	if engine.initErr != nil {
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, engine.initErr)
	}
	return nil
}

func (engine *Engine) strikeLocked(id string) *beep.Buffer {
	if buffer, ok := engine.strikes[id]; ok {
		return buffer
	}
	buffer := Render(engine.catalog.Lookup(id), int(engine.format.SampleRate))
	engine.strikes[id] = buffer
	return buffer
}

func (engine *Engine) composeLocked(cue model.Cue, buffer *beep.Buffer) beep.Streamer {
	switch cue {
	case model.CueInterval:
		return &effects.Volume{
			Streamer: buffer.Streamer(0, buffer.Len()),
			Base:     2,
			Volume:   -1,
		}
	case model.CueCompletion:
		gap := engine.format.SampleRate.N(strikeSpacing)
		return beep.Mix(
			buffer.Streamer(0, buffer.Len()),
			beep.Seq(beep.Silence(gap), buffer.Streamer(0, buffer.Len())),
			beep.Seq(beep.Silence(2*gap), buffer.Streamer(0, buffer.Len())),
		)
	default:
		return buffer.Streamer(0, buffer.Len())
	}
}

// Silent is a cue player that plays nothing.
type Silent struct{}

func (Silent) Play(model.Cue) {}

var speakerInit struct {
	once sync.Once
	err  error
}

// speakerOutput mixes into the process-wide beep speaker, which can only
// be initialised once.
type speakerOutput struct{}

func (speakerOutput) Init(format beep.Format) error {
	speakerInit.once.Do(func() {
		speakerInit.err = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	return speakerInit.err
}

func (speakerOutput) Play(streamer beep.Streamer) {
	speaker.Play(streamer)
}
