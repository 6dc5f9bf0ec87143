package filters

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBand indicates band edges outside 0 < low < high < nyquist
	ErrInvalidBand = errors.New("filters: invalid band configuration")
	// ErrUnstableFilter indicates a designed section with poles on or outside the unit circle
	ErrUnstableFilter = errors.New("filters: unstable filter design")
	// ErrInvalidBuffer indicates an empty or missing sample buffer
	ErrInvalidBuffer = errors.New("filters: invalid sample buffer")
)

const int16Scale = 32768.0

// Biquad is a single second-order filter section with internal delay-line
// state, so consecutive ProcessBuffer calls filter a continuous stream
// without boundary discontinuities. Not safe for concurrent use.
type Biquad struct {
	Coefficients

	x1, x2 float64 // input delay line
	y1, y2 float64 // output delay line
}

// NewBiquad returns a Biquad with the given coefficients and zero state.
func NewBiquad(c Coefficients) *Biquad {
	return &Biquad{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (f *Biquad) ProcessSample(x float64) float64 {
	y := f.B0*x + f.B1*f.x1 + f.B2*f.x2 - f.A1*f.y1 - f.A2*f.y2

	f.x2 = f.x1
	f.x1 = x
	f.y2 = f.y1
	f.y1 = y

	return y
}

// ProcessBuffer filters a buffer of samples, carrying delay-line state
// across calls. The output has the same length as the input.
func (f *Biquad) ProcessBuffer(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrInvalidBuffer
	}

	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = f.ProcessSample(x)
	}
	return output, nil
}

// Reset clears the delay line. Call this when processing discontinuous
// audio segments.
func (f *Biquad) Reset() {
	f.x1, f.x2 = 0.0, 0.0
	f.y1, f.y2 = 0.0, 0.0
}

// Apply filters a buffer through the given coefficients with the delay line
// zeroed at the start of the call. Each call is independent; use Biquad for
// continuous streaming.
func Apply(c Coefficients, input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrInvalidBuffer
	}
	return NewBiquad(c).ProcessBuffer(input)
}

// ApplyInt16 filters 16-bit integer samples. Samples are scaled to ±1.0
// before filtering and rescaled afterward, clamping to the representable
// int16 range. The delay line is zeroed at the start of the call.
func ApplyInt16(c Coefficients, input []int16) ([]int16, error) {
	if len(input) == 0 {
		return nil, ErrInvalidBuffer
	}

	f := NewBiquad(c)
	output := make([]int16, len(input))
	for i, s := range input {
		y := f.ProcessSample(float64(s)/int16Scale) * int16Scale
		output[i] = clampInt16(y)
	}
	return output, nil
}

func clampInt16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(math.Round(v))
	}
}
