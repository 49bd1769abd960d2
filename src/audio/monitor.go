package audio

import (
	"math"
	"sync/atomic"
)

// ----- Monitor ----- //

// Monitor passes samples through from a source while keeping the most recent ones
// for spectrum analysis. The audio side only does atomic stores; Spectrum and
// PeakFrequency may run on one other goroutine.
type Monitor struct {
	src     SampleSource
	history []atomic.Uint64 // float64 bits
	pos     atomic.Uint64
	rate    atomic.Int64

	fft       *fft
	snapshot  []float64
	work      []complex128
	magnitude []float64
}

var _ SampleSource = (*Monitor)(nil)

// NewMonitor keeps the last size samples of src. size must be a power of two.
func NewMonitor(src SampleSource, size int) (*Monitor, error) {
	f, err := newFFT(size)
	if err != nil {
		return nil, err
	}
	m := &Monitor{
		src:       src,
		history:   make([]atomic.Uint64, size),
		fft:       f,
		snapshot:  make([]float64, size),
		work:      make([]complex128, size),
		magnitude: make([]float64, size/2),
	}
	m.rate.Store(int64(src.SampleRate()))
	return m, nil
}

// Channels ...
func (m *Monitor) Channels() int {
	return m.src.Channels()
}

// SampleRate ...
func (m *Monitor) SampleRate() int {
	return m.src.SampleRate()
}

// Next ...
func (m *Monitor) Next() (float64, bool) {
	value, ok := m.src.Next()
	if !ok {
		return value, ok
	}
	pos := m.pos.Load()
	m.history[pos%uint64(len(m.history))].Store(math.Float64bits(value))
	m.pos.Store(pos + 1)
	m.rate.Store(int64(m.src.SampleRate()))
	return value, true
}

// Recent copies the last len(dst) samples, oldest first, and returns how many were copied.
func (m *Monitor) Recent(dst []float64) int {
	size := uint64(len(m.history))
	pos := m.pos.Load()
	n := uint64(len(dst))
	if n > size {
		n = size
	}
	if n > pos {
		n = pos
	}
	start := pos - n
	for i := uint64(0); i < n; i++ {
		dst[i] = math.Float64frombits(m.history[(start+i)%size].Load())
	}
	return int(n)
}

// Spectrum returns the Hann-windowed magnitude spectrum of the recent samples,
// normalized so that a full-scale sine reads about 0.5 at its bin. The returned
// slice is reused by the next call.
func (m *Monitor) Spectrum() []float64 {
	n := m.Recent(m.snapshot)
	for i := n; i < len(m.snapshot); i++ {
		m.snapshot[i] = 0
	}
	hann(m.snapshot)
	m.fft.magnitudes(m.snapshot, m.work, m.magnitude)
	size := float64(m.fft.size())
	for i, v := range m.magnitude {
		m.magnitude[i] = v * 2 / size
	}
	return m.magnitude
}

// PeakFrequency returns the center frequency in Hz of the loudest bin, ignoring DC.
func (m *Monitor) PeakFrequency() float64 {
	spectrum := m.Spectrum()
	peak := 1
	for i := 2; i < len(spectrum); i++ {
		if spectrum[i] > spectrum[peak] {
			peak = i
		}
	}
	return float64(peak) * float64(m.rate.Load()) / float64(m.fft.size())
}
