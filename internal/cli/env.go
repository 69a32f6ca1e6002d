package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"dharmatimer/internal/audio"
	"dharmatimer/internal/config"
	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
	"dharmatimer/internal/platform"
	"dharmatimer/internal/storage"
)

// env is the wiring shared by every command: configuration, logger and
// the stores under the data directory.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	settings  storage.SettingsFile
	snapshots *storage.SnapshotFile
	sessions  *storage.SessionDB
}

func openEnv() (*env, error) {
	dir := configDir
	if dir == "" {
		var err error
		dir, err = platform.ConfigDir(appName)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger := config.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	sessions, err := storage.OpenSessionDB(storage.SessionDBPath(cfg.DataDir))
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:       cfg,
		logger:    logger,
		settings:  storage.SettingsFile{Dir: cfg.DataDir},
		snapshots: storage.NewSnapshotFile(cfg.DataDir),
		sessions:  sessions,
	}, nil
}

func (app *env) Close() {
	if err := app.sessions.Close(); err != nil {
		app.logger.Warn("close session db", "error", err)
	}
}

// loadSettings falls back to defaults when settings.yaml is unreadable.
func (app *env) loadSettings() model.TimerSettings {
	settings, err := app.settings.LoadTimerSettings()
	if err != nil {
		app.logger.Warn("settings unreadable, using defaults", "error", err)
	}
	app.sessions.SetCustomPracticeTypes(settings.CustomPracticeTypes)
	return settings
}

// newAudio returns nil when audio is disabled in config.
func (app *env) newAudio(settings model.TimerSettings) (*audio.Engine, error) {
	if !app.cfg.Audio.Enabled {
		return nil, nil
	}
	catalog, err := audio.LoadCatalog()
	if err != nil {
		return nil, err
	}
	return audio.NewEngine(catalog, audio.Config{
		SampleRate: app.cfg.Audio.SampleRate,
		BellID:     settings.BellSoundID,
		Logger:     app.logger,
	}), nil
}

func (app *env) newWakeLock() timekeeper.WakeLock {
	if !app.cfg.WakeLock.Enabled {
		return timekeeper.NoopWakeLock{}
	}
	return platform.NewWakeLock(appName)
}

func (app *env) newKeeper(settings model.TimerSettings, cues timekeeper.CuePlayer, wake timekeeper.WakeLock) *timekeeper.TimeKeeper {
	return timekeeper.New(settings, timekeeper.Config{
		TickInterval: app.cfg.Timer.TickInterval,
		PrepSeconds:  app.cfg.PrepCountdown(),
		GraceWindow:  app.cfg.Timer.GraceWindow,
		Snapshots:    app.snapshots,
		Cues:         cues,
		WakeLock:     wake,
		Saver:        app.sessions,
		Logger:       app.logger,
	})
}

// cuePlayer adapts an optional engine to the timekeeper's player.
func cuePlayer(engine *audio.Engine) timekeeper.CuePlayer {
	if engine == nil {
		return audio.Silent{}
	}
	return engine
}

func isAudioUnavailable(err error) bool {
	return errors.Is(err, audio.ErrAudioUnavailable)
}
