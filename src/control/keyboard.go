package control

import (
	"fmt"
	"math"
)

const baseFreq = 440.0
const maxActiveNotes = 128

// Controller is the parameter surface of a voice. *audio.Control implements it.
type Controller interface {
	GateOn() error
	GateOff() error
	SetFrequency(i int, freq float64) error
	SetAmplitude(i int, amp float64) error
}

func noteToFreq(note int) float64 {
	return baseFreq * math.Pow(2, float64(note-69)/12)
}

// 0 sense: always 1, 1 sense: proportional to velocity
func velocityToGain(velocity int, sense float64) float64 {
	v := float64(velocity) / 127
	if v > 1 {
		v = 1
	} else if v < 0 {
		v = 0
	}
	return 1 - sense*(1-v)
}

// ----- Keyboard ----- //

// KeyboardConfig maps a note onto the oscillator bank. Oscillator i plays
// noteFreq*Ratios[i] at Levels[i] (1.0 when missing) scaled by velocity.
type KeyboardConfig struct {
	Ratios   []float64
	Levels   []float64
	VelSense float64 // 0-1
}

type heldNote struct {
	note     int
	velocity int
}

// Keyboard is a monophonic, last-note-priority note stack. Only a note played
// while the gate is off triggers the envelope; later notes change pitch without
// a retrigger, and releasing a note falls back to the most recent one still held.
// A call that fails leaves the stack as it was before it.
type Keyboard struct {
	target Controller
	cfg    KeyboardConfig
	active []heldNote
	gated  bool // a gate on was accepted and not yet released
}

// NewKeyboard ...
func NewKeyboard(target Controller, cfg KeyboardConfig) *Keyboard {
	return &Keyboard{
		target: target,
		cfg:    cfg,
		active: make([]heldNote, 0, maxActiveNotes),
	}
}

// ActiveNote returns the sounding note, if any.
func (k *Keyboard) ActiveNote() (int, bool) {
	if len(k.active) == 0 {
		return 0, false
	}
	return k.active[0].note, true
}

func (k *Keyboard) remove(note int) {
	removed := 0
	for i := 0; i < len(k.active); i++ {
		if k.active[i].note == note {
			removed++
		} else {
			k.active[i-removed] = k.active[i]
		}
	}
	k.active = k.active[:len(k.active)-removed]
}

func (k *Keyboard) tune(n heldNote) error {
	freq := noteToFreq(n.note)
	gain := velocityToGain(n.velocity, k.cfg.VelSense)
	for i, ratio := range k.cfg.Ratios {
		if err := k.target.SetFrequency(i, freq*ratio); err != nil {
			return err
		}
		level := 1.0
		if i < len(k.cfg.Levels) {
			level = k.cfg.Levels[i]
		}
		if err := k.target.SetAmplitude(i, level*gain); err != nil {
			return err
		}
	}
	return nil
}

// NoteOn ...
func (k *Keyboard) NoteOn(note, velocity int) error {
	if note < 0 || note >= maxActiveNotes {
		return fmt.Errorf("note %d out of range 0-%d", note, maxActiveNotes-1)
	}
	k.remove(note)
	k.active = k.active[:len(k.active)+1]
	copy(k.active[1:], k.active[:len(k.active)-1])
	k.active[0] = heldNote{note: note, velocity: velocity}
	if err := k.tune(k.active[0]); err != nil {
		k.remove(note)
		if k.gated && len(k.active) > 0 {
			// best effort; err is the one worth reporting
			_ = k.tune(k.active[0])
		}
		return err
	}
	if k.gated {
		return nil
	}
	if err := k.target.GateOn(); err != nil {
		k.remove(note)
		return err
	}
	k.gated = true
	return nil
}

// NoteOff ...
func (k *Keyboard) NoteOff(note int) error {
	wasTop := len(k.active) > 0 && k.active[0].note == note
	k.remove(note)
	if !wasTop || !k.gated {
		return nil
	}
	if len(k.active) > 0 {
		err := k.tune(k.active[0])
		if err == nil {
			return nil
		}
		// the released pitch must not keep sounding
		if gerr := k.gateOff(); gerr != nil {
			return gerr
		}
		return err
	}
	return k.gateOff()
}

func (k *Keyboard) gateOff() error {
	if err := k.target.GateOff(); err != nil {
		return err
	}
	k.gated = false
	return nil
}

// Reset releases every held note.
func (k *Keyboard) Reset() error {
	k.active = k.active[:0]
	if !k.gated {
		return nil
	}
	return k.gateOff()
}
