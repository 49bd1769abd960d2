package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// ----- Streamer ----- //

// Streamer adapts a SampleSource to beep.Streamer, duplicating the mono signal
// into both channels.
type Streamer struct {
	src SampleSource
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer ...
func NewStreamer(src SampleSource) *Streamer {
	return &Streamer{src: src}
}

// Format describes the stream as 16-bit stereo at the source's sample rate.
func (s *Streamer) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(s.src.SampleRate()),
		NumChannels: 2,
		Precision:   bitDepthInBytes,
	}
}

// Stream ...
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		value, ok := s.src.Next()
		if !ok {
			return i, i > 0
		}
		samples[i][0] = value
		samples[i][1] = value
	}
	return len(samples), true
}

// Err ...
func (s *Streamer) Err() error {
	return nil
}

// WriteWAV renders d worth of src into w as a 16-bit stereo WAV file.
func WriteWAV(w io.WriteSeeker, src SampleSource, d time.Duration) error {
	s := NewStreamer(src)
	format := s.Format()
	n := format.SampleRate.N(d)
	if n <= 0 {
		return fmt.Errorf("duration too short: %v", d)
	}
	if err := wav.Encode(w, beep.Take(n, s), format); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	return nil
}
