package animation

import "time"

// DefaultConfig returns a slow resting breath: 4s in, 2s hold, 6s out.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 50 * time.Millisecond,
		Breath: BreathSpec{
			Inhale:   4 * time.Second,
			Hold:     2 * time.Second,
			Exhale:   6 * time.Second,
			MinScale: 0.82,
			MaxScale: 1.0,
		},
		Rest: Range{
			Min: 1 * time.Second,
			Max: 2 * time.Second,
		},
	}
}
