package analyzers

import "math"

// WindowType represents different window functions
type WindowType int

const (
	WindowHann WindowType = iota
	WindowHamming
	WindowBlackman
	WindowRectangular
)

// WindowGenerator produces and caches window coefficient tables.
type WindowGenerator struct {
	cache map[windowKey][]float64
}

type windowKey struct {
	typ  WindowType
	size int
}

// NewWindowGenerator creates a new window generator
func NewWindowGenerator() *WindowGenerator {
	return &WindowGenerator{cache: make(map[windowKey][]float64)}
}

// Generate returns the coefficient table for the given window type and
// length. Tables are cached; callers must not mutate the returned slice.
func (wg *WindowGenerator) Generate(typ WindowType, size int) []float64 {
	if size <= 0 {
		return nil
	}

	key := windowKey{typ: typ, size: size}
	if w, ok := wg.cache[key]; ok {
		return w
	}

	w := make([]float64, size)
	switch typ {
	case WindowHann:
		for i := range w {
			w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(size-1)))
		}
	case WindowHamming:
		for i := range w {
			w[i] = 0.54 - 0.46*math.Cos(2.0*math.Pi*float64(i)/float64(size-1))
		}
	case WindowBlackman:
		for i := range w {
			x := 2.0 * math.Pi * float64(i) / float64(size-1)
			w[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2.0*x)
		}
	default:
		for i := range w {
			w[i] = 1.0
		}
	}

	if size == 1 {
		w[0] = 1.0
	}

	wg.cache[key] = w
	return w
}

// Hann returns a Hann window of the given length.
func (wg *WindowGenerator) Hann(size int) []float64 {
	return wg.Generate(WindowHann, size)
}

// ApplyWindow multiplies a frame by a coefficient table into a new slice.
// The shorter of the two lengths bounds the output.
func ApplyWindow(frame, window []float64) []float64 {
	n := min(len(frame), len(window))
	out := make([]float64, n)
	for i := range n {
		out[i] = frame[i] * window[i]
	}
	return out
}
