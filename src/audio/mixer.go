package audio

import (
	"fmt"
	"math"
	"sync/atomic"
)

// ----- Combine Op ----- //

// CombineOp decides how an oscillator contributes to the mix.
type CombineOp int

const (
	OpAdd CombineOp = iota
	OpSubtract
	OpMute
)

var combineOpNames = [...]string{
	OpAdd:      "add",
	OpSubtract: "sub",
	OpMute:     "mute",
}

func (op CombineOp) String() string {
	if op < 0 || int(op) >= len(combineOpNames) {
		return fmt.Sprintf("CombineOp(%d)", int(op))
	}
	return combineOpNames[op]
}

// ParseCombineOp ...
func ParseCombineOp(s string) (CombineOp, error) {
	for i, name := range combineOpNames {
		if name == s {
			return CombineOp(i), nil
		}
	}
	return OpMute, fmt.Errorf("unknown combine op %q", s)
}

// ----- Mixer Config ----- //

// MixerConfig ...
type MixerConfig struct {
	SampleRate int // Hz
	Gain       float64
	ClipLimit  float64
}

// DefaultMixerConfig ...
func DefaultMixerConfig() MixerConfig {
	return MixerConfig{
		SampleRate: 48000,
		Gain:       1.0,
		ClipLimit:  1.0,
	}
}

func validateSampleRate(rate int) error {
	if rate <= 0 {
		return &ConfigError{Field: "sample_rate", Value: float64(rate)}
	}
	return nil
}

func validateGain(gain float64) error {
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		return &ConfigError{Field: "gain", Value: gain}
	}
	return nil
}

func validateClipLimit(limit float64) error {
	if math.IsNaN(limit) || limit < 0 {
		return &ConfigError{Field: "clip_limit", Value: limit}
	}
	return nil
}

// ----- Mixer ----- //

const initialBankSize = 8

type mixerEntry struct {
	osc Oscillator
	op  CombineOp
}

// Mixer sums a bank of oscillators into one clamped sample per pull.
//
// The clock is kept as a time base plus a sample counter, so the current time is
// base + pos/sampleRate. Changing the sample rate folds the elapsed time into the
// base and restarts the counter, which keeps every oscillator's phase continuous.
type Mixer struct {
	entries      []mixerEntry
	size         atomic.Int32 // len(entries), readable from the control goroutine
	sampleRate   int
	secPerSample float64
	base         float64 // sec
	pos          uint64
	gain         float64
	clipLimit    float64
}

var _ SampleSource = (*Mixer)(nil)

// NewMixer ...
func NewMixer(cfg MixerConfig) (*Mixer, error) {
	if err := validateSampleRate(cfg.SampleRate); err != nil {
		return nil, err
	}
	if err := validateGain(cfg.Gain); err != nil {
		return nil, err
	}
	if err := validateClipLimit(cfg.ClipLimit); err != nil {
		return nil, err
	}
	return &Mixer{
		entries:      make([]mixerEntry, 0, initialBankSize),
		sampleRate:   cfg.SampleRate,
		secPerSample: 1.0 / float64(cfg.SampleRate),
		gain:         cfg.Gain,
		clipLimit:    cfg.ClipLimit,
	}, nil
}

func (m *Mixer) checkIndex(i int) error {
	if i < 0 || i >= len(m.entries) {
		return &IndexError{Index: i, Len: len(m.entries)}
	}
	return nil
}

// Len ...
func (m *Mixer) Len() int {
	return len(m.entries)
}

// AddOscillator appends an oscillator and returns its index.
func (m *Mixer) AddOscillator(o Oscillator, op CombineOp) int {
	m.entries = append(m.entries, mixerEntry{osc: o, op: op})
	m.size.Store(int32(len(m.entries)))
	return len(m.entries) - 1
}

// RemoveOscillator deletes the oscillator at i. Later oscillators shift down by one.
func (m *Mixer) RemoveOscillator(i int) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	copy(m.entries[i:], m.entries[i+1:])
	m.entries[len(m.entries)-1] = mixerEntry{}
	m.entries = m.entries[:len(m.entries)-1]
	m.size.Store(int32(len(m.entries)))
	return nil
}

// Oscillator ...
func (m *Mixer) Oscillator(i int) (Oscillator, CombineOp, error) {
	if err := m.checkIndex(i); err != nil {
		return Oscillator{}, OpMute, err
	}
	e := m.entries[i]
	return e.osc, e.op, nil
}

// SetFrequency ...
func (m *Mixer) SetFrequency(i int, freq float64) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.entries[i].osc.Freq = freq
	return nil
}

// SetAmplitude ...
func (m *Mixer) SetAmplitude(i int, amp float64) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.entries[i].osc.Amp = amp
	return nil
}

// SetWaveform ...
func (m *Mixer) SetWaveform(i int, w Waveform) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.entries[i].osc.Waveform = w
	return nil
}

// SetCombineOp ...
func (m *Mixer) SetCombineOp(i int, op CombineOp) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.entries[i].op = op
	return nil
}

// SetGain ...
func (m *Mixer) SetGain(gain float64) error {
	if err := validateGain(gain); err != nil {
		return err
	}
	m.gain = gain
	return nil
}

// SetClipLimit ...
func (m *Mixer) SetClipLimit(limit float64) error {
	if err := validateClipLimit(limit); err != nil {
		return err
	}
	m.clipLimit = limit
	return nil
}

// ClipLimit ...
func (m *Mixer) ClipLimit() float64 {
	return m.clipLimit
}

// SetSampleRate changes the time per sample. The current time is kept as is.
func (m *Mixer) SetSampleRate(rate int) error {
	if err := validateSampleRate(rate); err != nil {
		return err
	}
	m.base = m.Time()
	m.pos = 0
	m.sampleRate = rate
	m.secPerSample = 1.0 / float64(rate)
	return nil
}

// Time returns the time in seconds of the next sample to be produced.
func (m *Mixer) Time() float64 {
	return m.base + float64(m.pos)/float64(m.sampleRate)
}

// SecPerSample ...
func (m *Mixer) SecPerSample() float64 {
	return m.secPerSample
}

// NextSample evaluates every oscillator at the current time, combines them,
// advances the clock by one sample and returns the clamped result.
func (m *Mixer) NextSample() float64 {
	t := m.Time()
	sum := 0.0
	for i := range m.entries {
		e := &m.entries[i]
		switch e.op {
		case OpAdd:
			sum += e.osc.Sample(t)
		case OpSubtract:
			sum -= e.osc.Sample(t)
		}
	}
	m.pos++
	return clamp(sum*m.gain, m.clipLimit)
}

func clamp(x, limit float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}

// Fill renders len(buf) consecutive samples.
func (m *Mixer) Fill(buf []float64) {
	for i := range buf {
		buf[i] = m.NextSample()
	}
}

// Channels ...
func (m *Mixer) Channels() int {
	return 1
}

// SampleRate ...
func (m *Mixer) SampleRate() int {
	return m.sampleRate
}

// Next ...
func (m *Mixer) Next() (float64, bool) {
	return m.NextSample(), true
}
