package audio

// ----- Sample Source ----- //

// SampleSource is the pull interface an audio sink consumes. Sources in this
// package are mono and never end.
type SampleSource interface {
	Channels() int
	SampleRate() int
	Next() (float64, bool)
}

// Fill pulls up to len(buf) samples from src and returns how many were written.
func Fill(src SampleSource, buf []float64) int {
	for i := range buf {
		v, ok := src.Next()
		if !ok {
			return i
		}
		buf[i] = v
	}
	return len(buf)
}

// ----- Single OSC Source ----- //

// OscillatorSource plays a single oscillator with its own sample clock.
type OscillatorSource struct {
	Osc        Oscillator
	sampleRate int
	pos        uint64
}

var _ SampleSource = (*OscillatorSource)(nil)

// NewOscillatorSource ...
func NewOscillatorSource(o Oscillator, sampleRate int) (*OscillatorSource, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return &OscillatorSource{Osc: o, sampleRate: sampleRate}, nil
}

// Channels ...
func (s *OscillatorSource) Channels() int {
	return 1
}

// SampleRate ...
func (s *OscillatorSource) SampleRate() int {
	return s.sampleRate
}

// Next ...
func (s *OscillatorSource) Next() (float64, bool) {
	t := float64(s.pos) / float64(s.sampleRate)
	s.pos++
	return s.Osc.Sample(t), true
}
