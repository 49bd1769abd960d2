package audio

import "math"

// hann applies a periodic Hann window in place.
func hann(data []float64) {
	n := len(data)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		data[i] *= 0.5 - 0.5*math.Cos(2.0*math.Pi*x)
	}
}
