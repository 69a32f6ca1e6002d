package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	fileName  = "config.yaml"
	envPrefix = "DHARMATIMER"
)

// Config is the application configuration. User-facing timer defaults live
// in settings.yaml instead.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Log      LogConfig      `mapstructure:"log"`
	Timer    TimerConfig    `mapstructure:"timer"`
	Audio    AudioConfig    `mapstructure:"audio"`
	WakeLock WakeLockConfig `mapstructure:"wakelock"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TimerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	PrepSeconds  int           `mapstructure:"prep_seconds"`
	GraceWindow  time.Duration `mapstructure:"grace_window"`
}

type AudioConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	SampleRate int  `mapstructure:"sample_rate"`
}

type WakeLockConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Path returns the config file location under dir.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("data_dir", dir)
	v.SetDefault("log.level", "info")
	v.SetDefault("timer.tick_interval", time.Second)
	v.SetDefault("timer.prep_seconds", 5)
	v.SetDefault("timer.grace_window", 3*time.Second)
	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("wakelock.enabled", true)
}

// Load reads config.yaml from dir, applying DHARMATIMER_* environment
// overrides. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, dir)
	v.SetConfigFile(Path(dir))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", Path(dir), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the timer cannot run with.
func (cfg *Config) Validate() error {
	if cfg.DataDir == "" {
		return errors.New("config: data_dir is empty")
	}
	if cfg.Timer.TickInterval <= 0 || cfg.Timer.TickInterval > time.Second {
		return fmt.Errorf("config: timer.tick_interval %s out of range (0s, 1s]", cfg.Timer.TickInterval)
	}
	if cfg.Timer.PrepSeconds < 0 || cfg.Timer.PrepSeconds > 60 {
		return fmt.Errorf("config: timer.prep_seconds %d out of range", cfg.Timer.PrepSeconds)
	}
	// A bell is judged late against the grace window; a window shorter than
	// one tick would drop bells that were merely observed on the next tick.
	if cfg.Timer.GraceWindow < cfg.Timer.TickInterval {
		return fmt.Errorf("config: timer.grace_window %s shorter than tick_interval %s", cfg.Timer.GraceWindow, cfg.Timer.TickInterval)
	}
	if cfg.Audio.SampleRate < 8000 || cfg.Audio.SampleRate > 192000 {
		return fmt.Errorf("config: audio.sample_rate %d out of range", cfg.Audio.SampleRate)
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// PrepCountdown converts prep_seconds to the timekeeper convention, where
// a negative count skips preparation.
func (cfg *Config) PrepCountdown() int {
	if cfg.Timer.PrepSeconds == 0 {
		return -1
	}
	return cfg.Timer.PrepSeconds
}

// ParseLevel maps a level name onto slog.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// NewLogger builds the process logger writing text records to w.
func NewLogger(w io.Writer, level string) *slog.Logger {
	parsed, err := ParseLevel(level)
	if err != nil {
		parsed = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parsed}))
}
