package audio

import (
	"fmt"
	"math"
)

// ----- Waveform ----- //

// Waveform ...
type Waveform int

const (
	WaveSilence Waveform = iota
	WaveSine
	WaveSquare
	WaveSaw
)

var waveformNames = [...]string{
	WaveSilence: "none",
	WaveSine:    "sine",
	WaveSquare:  "square",
	WaveSaw:     "saw",
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform ...
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if name == s {
			return Waveform(i), nil
		}
	}
	return WaveSilence, fmt.Errorf("unknown waveform %q", s)
}

// ----- OSC ----- //

// Oscillator is a stateless waveform generator. Phase is derived from the absolute
// time passed to Sample, so changing Freq between calls never resets the phase.
type Oscillator struct {
	Waveform Waveform
	Freq     float64 // Hz
	Amp      float64
}

// Sample returns the value of the oscillator at t seconds.
//
// Square ranges over {0, Amp} and Saw over [0, Amp); neither is centered on zero.
func (o Oscillator) Sample(t float64) float64 {
	switch o.Waveform {
	case WaveSine:
		return o.Amp * math.Sin(2.0*math.Pi*o.Freq*t)
	case WaveSquare:
		if math.Sin(2.0*math.Pi*o.Freq*t) >= 0 {
			return o.Amp
		}
		return 0
	case WaveSaw:
		x := o.Freq * t
		f := x - math.Floor(x)
		if f >= 1 {
			f = 0
		}
		return o.Amp * f
	default:
		return 0
	}
}
