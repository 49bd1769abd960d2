package audio

import (
	"fmt"
	"math"
)

// ----- ADSR Stage ----- //

// Stage ...
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

var stageNames = [...]string{
	StageIdle:    "idle",
	StageAttack:  "attack",
	StageDecay:   "decay",
	StageSustain: "sustain",
	StageRelease: "release",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ----- ADSR Config ----- //

// EnvelopeConfig holds times in seconds and levels as linear fractions.
// Levels are not clamped; keep AttackPeak and Sustain in [0, 1] so the envelope
// never amplifies its input.
type EnvelopeConfig struct {
	Attack     float64
	AttackPeak float64
	Decay      float64
	Sustain    float64
	Release    float64
}

// DefaultEnvelopeConfig ...
func DefaultEnvelopeConfig() EnvelopeConfig {
	return EnvelopeConfig{
		Attack:     0.01,
		AttackPeak: 1.0,
		Decay:      0,
		Sustain:    1.0,
		Release:    0.01,
	}
}

func (c EnvelopeConfig) validate() error {
	times := []struct {
		name  string
		value float64
	}{
		{"attack", c.Attack},
		{"decay", c.Decay},
		{"release", c.Release},
	}
	for _, t := range times {
		if math.IsNaN(t.value) || math.IsInf(t.value, 0) || t.value < 0 {
			return &ConfigError{Field: t.name, Value: t.value}
		}
	}
	if math.IsNaN(c.AttackPeak) {
		return &ConfigError{Field: "attack_peak", Value: c.AttackPeak}
	}
	if math.IsNaN(c.Sustain) {
		return &ConfigError{Field: "sustain", Value: c.Sustain}
	}
	return nil
}

// ----- ADSR ----- //

/*
  p +   x
    |  / \
  s + /   x---------x
    |/               \
  0 +-----+--+-------+---+----
    |a    |d |       |r  |
    gate on          gate off
*/

// Envelope is a linear ADSR amplitude multiplier. It is evaluated lazily from the
// time elapsed since the last gate transition; GateOn and GateOff both restart that
// time from zero, so a retrigger always starts the attack (or release) over.
type Envelope struct {
	cfg     EnvelopeConfig
	gate    bool
	elapsed float64 // sec since last gate transition
}

// NewEnvelope ...
func NewEnvelope(cfg EnvelopeConfig) (*Envelope, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Envelope{
		cfg:     cfg,
		elapsed: math.Inf(1),
	}, nil
}

// Config ...
func (e *Envelope) Config() EnvelopeConfig {
	return e.cfg
}

// SetConfig replaces the stage parameters without touching gate or elapsed time.
func (e *Envelope) SetConfig(cfg EnvelopeConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// GateOn ...
func (e *Envelope) GateOn() {
	e.gate = true
	e.elapsed = 0
}

// GateOff ...
func (e *Envelope) GateOff() {
	e.gate = false
	e.elapsed = 0
}

// Gate ...
func (e *Envelope) Gate() bool {
	return e.gate
}

// Elapsed is +Inf until the first gate transition.
func (e *Envelope) Elapsed() float64 {
	return e.elapsed
}

// Advance moves the envelope forward by dt seconds. Non-positive or NaN deltas are ignored.
func (e *Envelope) Advance(dt float64) {
	if dt > 0 {
		e.elapsed += dt
	}
}

// Stage ...
func (e *Envelope) Stage() Stage {
	c := &e.cfg
	if e.gate {
		switch {
		case e.elapsed < c.Attack:
			return StageAttack
		case e.elapsed < c.Attack+c.Decay:
			return StageDecay
		default:
			return StageSustain
		}
	}
	if e.elapsed < c.Release {
		return StageRelease
	}
	return StageIdle
}

// Multiplier returns the current gain of the envelope.
func (e *Envelope) Multiplier() float64 {
	c := &e.cfg
	switch e.Stage() {
	case StageAttack:
		if c.Attack == 0 {
			return c.AttackPeak
		}
		return e.elapsed * c.AttackPeak / c.Attack
	case StageDecay:
		if c.Decay == 0 {
			return c.Sustain
		}
		t := (e.elapsed - c.Attack) / c.Decay
		return t*c.Sustain + (1-t)*c.AttackPeak
	case StageSustain:
		return c.Sustain
	case StageRelease:
		if c.Release == 0 {
			return 0
		}
		t := e.elapsed / c.Release
		return (1 - t) * c.Sustain
	default:
		return 0
	}
}

// Apply scales x by the current multiplier.
func (e *Envelope) Apply(x float64) float64 {
	return x * e.Multiplier()
}
