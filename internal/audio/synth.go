package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// decayFloor is the gain every partial ramps down to by the end of its decay.
const decayFloor = 0.01

// DefaultSampleRate is used when no rate is configured.
const DefaultSampleRate = 44100

// Format returns the stereo 16-bit format bells are rendered in.
func Format(sampleRate int) beep.Format {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 2}
}

// Amplitude returns the partial's signal at t seconds after the strike.
func (partial Partial) Amplitude(t float64) float64 {
	if t < 0 || t >= partial.Decay {
		return 0
	}
	gain := partial.Gain
	if gain > decayFloor {
		gain *= math.Pow(decayFloor/partial.Gain, t/partial.Decay)
	}
	return gain * math.Sin(2*math.Pi*partial.Frequency*t)
}

// Amplitude sums every partial at t seconds after the strike.
func (bell Bell) Amplitude(t float64) float64 {
	var value float64
	for _, partial := range bell.Partials {
		value += partial.Amplitude(t)
	}
	return value
}

// Tone streams a single strike of bell.
func Tone(bell Bell, sampleRate beep.SampleRate) beep.Streamer {
	total := sampleRate.N(bell.Length())
	position := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if position >= total {
			return 0, false
		}
		n := 0
		for n < len(samples) && position < total {
			value := bell.Amplitude(float64(position) / float64(sampleRate))
			samples[n][0] = value
			samples[n][1] = value
			n++
			position++
		}
		return n, true
	})
}

// Render synthesizes one strike into a replayable buffer.
func Render(bell Bell, sampleRate int) *beep.Buffer {
	format := Format(sampleRate)
	buffer := beep.NewBuffer(format)
	buffer.Append(Tone(bell, format.SampleRate))
	return buffer
}

// ExportWAV writes one strike of bell as a WAV file.
func ExportWAV(w io.WriteSeeker, bell Bell, sampleRate int) error {
	buffer := Render(bell, sampleRate)
	if err := wav.Encode(w, buffer.Streamer(0, buffer.Len()), buffer.Format()); err != nil {
		return fmt.Errorf("encode %s: %w", bell.ID, err)
	}
	return nil
}
