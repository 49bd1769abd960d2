package audio

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestBitReverse(t *testing.T) {
	expected := []int{0, 4, 2, 6, 1, 5, 3, 7}
	for i, e := range expected {
		expectEqual(t, bitReverse(i, 8), e)
	}
}

func TestFFT(t *testing.T) {
	f, err := newFFT(8)
	expectNoError(t, err)
	in := []float64{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25}
	x := make([]complex128, 8)
	for i, v := range in {
		x[i] = complex(v, 0)
	}
	f.transform(x)
	expectNearlyEqual(t, real(x[0]), 4)
	expectNearlyEqual(t, real(x[1]), -(1 + math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[2]), 0)
	expectNearlyEqual(t, real(x[3]), -(1 - math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[4]), 0)
	expectNearlyEqual(t, real(x[5]), -(1 - math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[6]), 0)
	expectNearlyEqual(t, real(x[7]), -(1 + math.Sqrt(2)/2))
	for _, v := range x {
		expectNearlyEqual(t, imag(v), 0)
	}
	expectNearlyEqual(t, cmplx.Abs(x[1]), 1+math.Sqrt(2)/2)
}

func TestFFTRejectsBadSize(t *testing.T) {
	for _, n := range []int{0, 1, 3, 100} {
		if _, err := newFFT(n); err == nil {
			t.Errorf("expected error for size %d", n)
		}
	}
}

func TestMonitorPassesSamplesThrough(t *testing.T) {
	src, err := NewOscillatorSource(Oscillator{Waveform: WaveSaw, Freq: 10, Amp: 1}, 1000)
	expectNoError(t, err)
	ref, err := NewOscillatorSource(Oscillator{Waveform: WaveSaw, Freq: 10, Amp: 1}, 1000)
	expectNoError(t, err)
	m, err := NewMonitor(src, 8)
	expectNoError(t, err)
	expectEqual(t, m.Channels(), 1)
	expectEqual(t, m.SampleRate(), 1000)

	recent := make([]float64, 8)
	expectEqual(t, m.Recent(recent), 0)
	want := make([]float64, 12)
	for i := range want {
		got, ok := m.Next()
		expectEqual(t, ok, true)
		want[i], _ = ref.Next()
		expectEqual(t, got, want[i])
	}
	expectEqual(t, m.Recent(recent), 8)
	for i, v := range recent {
		expectEqual(t, v, want[4+i])
	}
	short := make([]float64, 3)
	expectEqual(t, m.Recent(short), 3)
	expectEqual(t, short[2], want[11])
}

func TestMonitorPeakFrequency(t *testing.T) {
	m, err := NewMixer(DefaultMixerConfig())
	expectNoError(t, err)
	m.AddOscillator(Oscillator{Waveform: WaveSine, Freq: 1000, Amp: 1}, OpAdd)
	mon, err := NewMonitor(m, 4096)
	expectNoError(t, err)
	for i := 0; i < 4096; i++ {
		mon.Next()
	}
	binWidth := 48000.0 / 4096
	if peak := mon.PeakFrequency(); math.Abs(peak-1000) > binWidth {
		t.Errorf("expected peak near 1000 Hz, but got: %v", peak)
	}
	spectrum := mon.Spectrum()
	expectEqual(t, len(spectrum), 2048)
	loudest := 0.0
	for _, v := range spectrum {
		loudest = math.Max(loudest, v)
	}
	if loudest < 0.35 || loudest > 0.55 {
		t.Errorf("expected peak magnitude around 0.5, but got: %v", loudest)
	}
}
