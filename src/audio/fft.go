package audio

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
)

// ----- FFT ----- //

// radix-2 decimation in time, forward only
type fft struct {
	rev     []int
	twiddle []complex128
}

func newFFT(n int) (*fft, error) {
	if n < 2 || bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("fft size must be a power of two, got %d", n)
	}
	rev := make([]int, n)
	for i := range rev {
		rev[i] = bitReverse(i, n)
	}
	twiddle := make([]complex128, n/2)
	for i := range twiddle {
		twiddle[i] = cmplx.Exp(complex(0, -2.0*math.Pi*float64(i)/float64(n)))
	}
	return &fft{rev: rev, twiddle: twiddle}, nil
}

func bitReverse(k, n int) int {
	m := 0
	for ; n > 1; n >>= 1 {
		m = m<<1 | k&1
		k >>= 1
	}
	return m
}

func (f *fft) size() int {
	return len(f.rev)
}

// transform works in place; len(x) must equal f.size().
func (f *fft) transform(x []complex128) {
	n := len(x)
	for i, r := range f.rev {
		if i < r {
			x[i], x[r] = x[r], x[i]
		}
	}
	for m := 1; m < n; m <<= 1 {
		step := m << 1
		for k := 0; k < m; k++ {
			w := f.twiddle[n/step*k]
			for i := k; i < n; i += step {
				j := i + m
				tmp := x[j] * w
				x[j] = x[i] - tmp
				x[i] += tmp
			}
		}
	}
}

// magnitudes writes |X[k]| for the real signal in into out, using work as scratch.
func (f *fft) magnitudes(in []float64, work []complex128, out []float64) {
	for i, v := range in {
		work[i] = complex(v, 0)
	}
	f.transform(work)
	for i := range out {
		out[i] = cmplx.Abs(work[i])
	}
}
