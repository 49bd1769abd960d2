package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hajimehoshi/oto"
	"github.com/jinjor/desktop-synth/src/audio"
	"github.com/jinjor/desktop-synth/src/control"
	"golang.org/x/sync/errgroup"
)

const (
	channelNum        = 2
	bitDepthInBytes   = 2
	samplesPerCycle   = 1024
	bufferSizeInBytes = samplesPerCycle * bitDepthInBytes * channelNum
	monitorSize       = 4096
)

var (
	sampleRate = flag.Int("rate", 48000, "sample rate in Hz")
	oscs       = flag.String("oscs", "sine:1:1:add", "comma separated oscillators as wave:ratio:level:op")
	freq       = flag.Float64("freq", 440, "initial base frequency in Hz")
	gain       = flag.Float64("gain", 0.3, "output gain")
	clip       = flag.Float64("clip", 1.0, "output clip limit")
	attack     = flag.Float64("attack", 0.01, "attack time in seconds")
	peak       = flag.Float64("peak", 1.0, "attack peak level 0-1")
	decay      = flag.Float64("decay", 0.1, "decay time in seconds")
	sustain    = flag.Float64("sustain", 0.7, "sustain level 0-1")
	release    = flag.Float64("release", 0.2, "release time in seconds")
	velSense   = flag.Float64("velsense", 0, "velocity sensitivity 0-1")
	render     = flag.String("render", "", "write a WAV file instead of playing")
	duration   = flag.Duration("duration", 2*time.Second, "length of the rendered file")
	midiPort   = flag.Int("midi", -1, "MIDI IN port to listen to, -1 to disable")
	report     = flag.Bool("report", false, "log the peak frequency every second")
)

type oscSetting struct {
	wave  audio.Waveform
	ratio float64
	level float64
	op    audio.CombineOp
}

func parseOscs(s string) ([]oscSetting, error) {
	var settings []oscSetting
	for _, item := range strings.Split(s, ",") {
		fields := strings.Split(item, ":")
		if len(fields) != 4 {
			return nil, fmt.Errorf("invalid oscillator %q", item)
		}
		wave, err := audio.ParseWaveform(fields[0])
		if err != nil {
			return nil, err
		}
		ratio, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		level, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, err
		}
		op, err := audio.ParseCombineOp(fields[3])
		if err != nil {
			return nil, err
		}
		settings = append(settings, oscSetting{wave: wave, ratio: ratio, level: level, op: op})
	}
	return settings, nil
}

func newVoice(settings []oscSetting) (*audio.Voice, error) {
	voice, err := audio.NewVoice(audio.VoiceConfig{
		Mixer: audio.MixerConfig{
			SampleRate: *sampleRate,
			Gain:       *gain,
			ClipLimit:  *clip,
		},
		Envelope: audio.EnvelopeConfig{
			Attack:     *attack,
			AttackPeak: *peak,
			Decay:      *decay,
			Sustain:    *sustain,
			Release:    *release,
		},
	})
	if err != nil {
		return nil, err
	}
	for _, setting := range settings {
		voice.Mixer().AddOscillator(audio.Oscillator{
			Waveform: setting.wave,
			Freq:     *freq * setting.ratio,
			Amp:      setting.level,
		}, setting.op)
	}
	return voice, nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	settings, err := parseOscs(*oscs)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	voice, err := newVoice(settings)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if *render != "" {
		if err := renderFile(*render, voice, *duration); err != nil {
			log.Fatalf("error: %v\n", err)
		}
		log.Printf("wrote %s\n", *render)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	if err := play(ctx, voice, settings); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func renderFile(path string, voice *audio.Voice, d time.Duration) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	voice.Envelope().GateOn()
	return audio.WriteWAV(f, voice, d)
}

func play(ctx context.Context, voice *audio.Voice, settings []oscSetting) error {
	otoContext, err := oto.NewContext(*sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing audio device...")
		if err := otoContext.Close(); err != nil {
			log.Printf("error while closing audio device: %v", err)
		}
	}()
	monitor, err := audio.NewMonitor(voice, monitorSize)
	if err != nil {
		return err
	}

	ratios := make([]float64, len(settings))
	levels := make([]float64, len(settings))
	for i, setting := range settings {
		ratios[i] = setting.ratio
		levels[i] = setting.level
	}
	keyboard := control.NewKeyboard(voice.Control(), control.KeyboardConfig{
		Ratios:   ratios,
		Levels:   levels,
		VelSense: *velSense,
	})
	dispatcher := control.NewDispatcher(voice.Control(), keyboard)

	commandCh := make(chan []string, 256)
	log.Println("commands: note_on <note> [velocity] | note_off <note> | gate on|off | set freq|amp <index> <value>")
	go func() {
		// stdin cannot be interrupted, so this goroutine is not waited for
		if err := control.ReadCommands(ctx, os.Stdin, commandCh); err != nil {
			log.Printf("error while reading commands: %v", err)
		}
		log.Println("ReadCommands() ended.")
	}()
	var midiCh <-chan []byte
	if *midiPort >= 0 {
		midiCh = control.ListenToMidiIn(ctx, *midiPort)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p := otoContext.NewPlayer()
		defer func() {
			if err := p.Close(); err != nil {
				log.Printf("error: %v", err)
			}
		}()
		// block until ctx is done
		reader := audio.NewPCMReader(gctx, monitor, channelNum)
		if _, err := io.CopyBuffer(p, reader, make([]byte, bufferSizeInBytes)); err != nil {
			return err
		}
		log.Println("playback ended.")
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx, commandCh, midiCh)
	})
	if *report {
		g.Go(func() error {
			return sendReports(gctx, monitor, voice.Control())
		})
	}
	return g.Wait()
}

func sendReports(ctx context.Context, monitor *audio.Monitor, c *audio.Control) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() ended.")
			return nil
		case <-t.C:
			log.Printf("peak: %.1f Hz, pending: %d, dropped: %d\n", monitor.PeakFrequency(), c.Pending(), c.Dropped())
		}
	}
}
