package animation

import (
	"math"
	"time"
)

// Phase is one segment of a breath cycle.
type Phase int

const (
	PhaseInhale Phase = iota
	PhaseHold
	PhaseExhale
	PhaseRest
)

func (phase Phase) String() string {
	switch phase {
	case PhaseInhale:
		return "Breathe in"
	case PhaseHold:
		return "Hold"
	case PhaseExhale:
		return "Breathe out"
	default:
		return "Rest"
	}
}

// BreathSpec describes one breath cycle of the pulse.
type BreathSpec struct {
	Inhale   time.Duration
	Hold     time.Duration
	Exhale   time.Duration
	Rest     time.Duration
	MinScale float64
	MaxScale float64
}

// Cycle returns the length of one full breath.
func (spec BreathSpec) Cycle() time.Duration {
	return spec.Inhale + spec.Hold + spec.Exhale + spec.Rest
}

// At returns the phase and pulse scale at offset into the cycle.
func (spec BreathSpec) At(offset time.Duration) (Phase, float64) {
	if cycle := spec.Cycle(); cycle > 0 {
		offset %= cycle
		if offset < 0 {
			offset += cycle
		}
	}
	span := spec.MaxScale - spec.MinScale

	if offset < spec.Inhale {
		return PhaseInhale, spec.MinScale + span*ease(offset, spec.Inhale)
	}
	offset -= spec.Inhale
	if offset < spec.Hold {
		return PhaseHold, spec.MaxScale
	}
	offset -= spec.Hold
	if offset < spec.Exhale {
		return PhaseExhale, spec.MaxScale - span*ease(offset, spec.Exhale)
	}
	return PhaseRest, spec.MinScale
}

// ease is a cosine ease-in-out of elapsed over total.
func ease(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	x := float64(elapsed) / float64(total)
	return (1 - math.Cos(math.Pi*x)) / 2
}
