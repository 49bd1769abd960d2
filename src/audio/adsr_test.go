package audio

import (
	"math"
	"testing"
)

func newTestEnvelope(t *testing.T, cfg EnvelopeConfig) *Envelope {
	t.Helper()
	e, err := NewEnvelope(cfg)
	if err != nil {
		t.Fatalf("failed to create envelope: %v", err)
	}
	return e
}

func TestEnvelopeStartsIdle(t *testing.T) {
	e := newTestEnvelope(t, DefaultEnvelopeConfig())
	expectEqual(t, e.Stage(), StageIdle)
	expectEqual(t, e.Multiplier(), 0.0)
	expectEqual(t, e.Gate(), false)
}

func TestEnvelopeAttackToSustain(t *testing.T) {
	e := newTestEnvelope(t, DefaultEnvelopeConfig())
	e.GateOn()
	expectEqual(t, e.Stage(), StageAttack)
	expectNearlyEqual(t, e.Multiplier(), 0)
	e.Advance(0.005)
	expectNearlyEqual(t, e.Multiplier(), 0.5)
	e.Advance(0.005)
	expectEqual(t, e.Stage(), StageSustain)
	expectEqual(t, e.Multiplier(), 1.0)
	e.Advance(10)
	expectEqual(t, e.Multiplier(), 1.0)
}

func TestEnvelopeRelease(t *testing.T) {
	e := newTestEnvelope(t, DefaultEnvelopeConfig())
	e.GateOn()
	e.Advance(0.01)
	e.GateOff()
	expectEqual(t, e.Stage(), StageRelease)
	expectEqual(t, e.Elapsed(), 0.0)
	e.Advance(0.005)
	expectNearlyEqual(t, e.Multiplier(), 0.5)
	e.Advance(0.005)
	expectEqual(t, e.Stage(), StageIdle)
	expectEqual(t, e.Multiplier(), 0.0)
	e.Advance(1)
	expectEqual(t, e.Multiplier(), 0.0)
}

func TestEnvelopeDecay(t *testing.T) {
	e := newTestEnvelope(t, EnvelopeConfig{Attack: 0.1, AttackPeak: 1.0, Decay: 0.2, Sustain: 0.5, Release: 0.3})
	e.GateOn()
	e.Advance(0.1)
	expectEqual(t, e.Stage(), StageDecay)
	expectNearlyEqual(t, e.Multiplier(), 1.0)
	e.Advance(0.1)
	expectNearlyEqual(t, e.Multiplier(), 0.75)
	e.Advance(0.1)
	expectEqual(t, e.Stage(), StageSustain)
	expectNearlyEqual(t, e.Multiplier(), 0.5)
	e.GateOff()
	e.Advance(0.15)
	expectNearlyEqual(t, e.Multiplier(), 0.25)
}

func TestEnvelopeZeroLengthStages(t *testing.T) {
	e := newTestEnvelope(t, EnvelopeConfig{Attack: 0, AttackPeak: 0.9, Decay: 0, Sustain: 0.6, Release: 0})
	e.GateOn()
	expectEqual(t, e.Stage(), StageSustain)
	expectEqual(t, e.Multiplier(), 0.6)
	e.GateOff()
	expectEqual(t, e.Stage(), StageIdle)
	expectEqual(t, e.Multiplier(), 0.0)

	e = newTestEnvelope(t, EnvelopeConfig{Attack: 0.01, AttackPeak: 0.9, Decay: 0, Sustain: 0.6, Release: 0.01})
	e.GateOn()
	e.Advance(0.01)
	expectEqual(t, e.Multiplier(), 0.6)
}

func TestEnvelopeRetriggerRestartsAttack(t *testing.T) {
	e := newTestEnvelope(t, DefaultEnvelopeConfig())
	e.GateOn()
	e.Advance(0.5)
	e.GateOn()
	expectEqual(t, e.Stage(), StageAttack)
	expectNearlyEqual(t, e.Multiplier(), 0)
}

func TestEnvelopeAttackIsMonotonic(t *testing.T) {
	e := newTestEnvelope(t, EnvelopeConfig{Attack: 0.05, AttackPeak: 0.8, Decay: 0.05, Sustain: 0.3, Release: 0.1})
	e.GateOn()
	prev := e.Multiplier()
	for e.Stage() == StageAttack {
		e.Advance(1.0 / 48000)
		m := e.Multiplier()
		if e.Stage() == StageAttack && m < prev {
			t.Fatalf("attack decreased at %v: %v < %v", e.Elapsed(), m, prev)
		}
		prev = m
	}
}

func TestEnvelopeNeverExceedsLevels(t *testing.T) {
	configs := []EnvelopeConfig{
		DefaultEnvelopeConfig(),
		{Attack: 0.01, AttackPeak: 1.0, Decay: 0.02, Sustain: 0.2, Release: 0.05},
		{Attack: 0.03, AttackPeak: 0.4, Decay: 0.01, Sustain: 0.9, Release: 0},
		{Attack: 0, AttackPeak: 0, Decay: 0, Sustain: 0, Release: 0},
	}
	const dt = 1.0 / 48000
	for _, cfg := range configs {
		e := newTestEnvelope(t, cfg)
		bound := math.Max(cfg.AttackPeak, cfg.Sustain)
		check := func() {
			for _, x := range []float64{1, -1, 0.3} {
				y := e.Apply(x)
				if math.Abs(y) > bound*math.Abs(x)+1e-12 {
					t.Fatalf("%+v: |%v| exceeds %v at stage %v", cfg, y, bound*math.Abs(x), e.Stage())
				}
			}
			if m := e.Multiplier(); m < 0 {
				t.Fatalf("%+v: negative multiplier %v", cfg, m)
			}
		}
		check()
		e.GateOn()
		for i := 0; i < 4800; i++ {
			check()
			e.Advance(dt)
		}
		e.GateOff()
		for i := 0; i < 4800; i++ {
			check()
			e.Advance(dt)
		}
	}
}

func TestEnvelopeRejectsBadTimes(t *testing.T) {
	bad := []struct {
		field string
		cfg   EnvelopeConfig
	}{
		{"attack", EnvelopeConfig{Attack: -0.1, Sustain: 1}},
		{"decay", EnvelopeConfig{Decay: math.NaN(), Sustain: 1}},
		{"release", EnvelopeConfig{Release: -1, Sustain: 1}},
		{"release", EnvelopeConfig{Release: math.Inf(1), Sustain: 1}},
		{"sustain", EnvelopeConfig{Sustain: math.NaN()}},
	}
	for _, c := range bad {
		_, err := NewEnvelope(c.cfg)
		expectConfigError(t, err, c.field)
	}
	e := newTestEnvelope(t, DefaultEnvelopeConfig())
	expectConfigError(t, e.SetConfig(EnvelopeConfig{Attack: -1}), "attack")
	expectEqual(t, e.Config(), DefaultEnvelopeConfig())
}

func TestEnvelopeIgnoresNegativeAdvance(t *testing.T) {
	e := newTestEnvelope(t, DefaultEnvelopeConfig())
	e.GateOn()
	e.Advance(0.004)
	e.Advance(-1)
	e.Advance(math.NaN())
	expectNearlyEqual(t, e.Elapsed(), 0.004)
}

func TestStageString(t *testing.T) {
	expectEqual(t, StageRelease.String(), "release")
	expectEqual(t, Stage(9).String(), "Stage(9)")
}
