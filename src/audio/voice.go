package audio

// ----- Voice ----- //

// VoiceConfig ...
type VoiceConfig struct {
	Mixer     MixerConfig
	Envelope  EnvelopeConfig
	QueueSize int // rounded up to a power of two; 0 means 256
}

// DefaultVoiceConfig ...
func DefaultVoiceConfig() VoiceConfig {
	return VoiceConfig{
		Mixer:     DefaultMixerConfig(),
		Envelope:  DefaultEnvelopeConfig(),
		QueueSize: defaultQueueSize,
	}
}

// Voice is one oscillator bank shaped by one envelope. The envelope runs on its own
// time base that restarts on every gate change, while the mixer clock keeps running.
//
// Next must be called from a single goroutine. Parameter changes from another
// goroutine go through Control.
type Voice struct {
	mixer   *Mixer
	env     *Envelope
	control *Control
}

var _ SampleSource = (*Voice)(nil)

// NewVoice ...
func NewVoice(cfg VoiceConfig) (*Voice, error) {
	mixer, err := NewMixer(cfg.Mixer)
	if err != nil {
		return nil, err
	}
	env, err := NewEnvelope(cfg.Envelope)
	if err != nil {
		return nil, err
	}
	return &Voice{
		mixer:   mixer,
		env:     env,
		control: newControl(cfg.QueueSize, &mixer.size),
	}, nil
}

// Mixer gives direct access to the bank. Only use it from the goroutine calling Next.
func (v *Voice) Mixer() *Mixer {
	return v.mixer
}

// Envelope ...
func (v *Voice) Envelope() *Envelope {
	return v.env
}

// Control ...
func (v *Voice) Control() *Control {
	return v.control
}

func (v *Voice) apply(cmd command) {
	var err error
	switch cmd.kind {
	case cmdGateOn:
		v.env.GateOn()
	case cmdGateOff:
		v.env.GateOff()
	case cmdSetFreq:
		err = v.mixer.SetFrequency(cmd.index, cmd.value)
	case cmdSetAmp:
		err = v.mixer.SetAmplitude(cmd.index, cmd.value)
	}
	if err != nil {
		v.control.dropped.Add(1)
	}
}

// NextSample applies pending control commands and produces one enveloped sample.
func (v *Voice) NextSample() float64 {
	for {
		cmd, ok := v.control.pop()
		if !ok {
			break
		}
		v.apply(cmd)
	}
	x := v.env.Apply(v.mixer.NextSample())
	v.env.Advance(v.mixer.SecPerSample())
	return clamp(x, v.mixer.ClipLimit())
}

// Fill renders len(buf) consecutive samples.
func (v *Voice) Fill(buf []float64) {
	for i := range buf {
		buf[i] = v.NextSample()
	}
}

// Channels ...
func (v *Voice) Channels() int {
	return 1
}

// SampleRate ...
func (v *Voice) SampleRate() int {
	return v.mixer.SampleRate()
}

// Next ...
func (v *Voice) Next() (float64, bool) {
	return v.NextSample(), true
}
