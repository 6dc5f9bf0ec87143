package analyzers

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/calmora/breathscope/logging"
)

// ErrInsufficientSamples indicates a frame too short for spectral analysis.
var ErrInsufficientSamples = errors.New("analyzers: insufficient samples")

// SpectralAnalyzer provides FFT, power-spectral-density and periodicity
// analysis over sample frames. Frames are Hann-windowed and zero-padded to
// the next power of two before the transform; the padded length is the
// reference for bin-to-frequency conversion.
type SpectralAnalyzer struct {
	windowGenerator *WindowGenerator
	sampleRate      int
	logger          logging.Logger
}

// Peak is a strict local maximum in a sequence.
type Peak struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		windowGenerator: NewWindowGenerator(),
		sampleRate:      sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// SampleRate returns the analyzer's configured sample rate.
func (sa *SpectralAnalyzer) SampleRate() int {
	return sa.sampleRate
}

// MagnitudeSpectrum windows the frame, runs a forward FFT and returns the
// single-sided magnitude spectrum (DC through Nyquist) together with the
// padded FFT length.
func (sa *SpectralAnalyzer) MagnitudeSpectrum(frame []float64) ([]float64, int, error) {
	windowed, fftLength, err := sa.prepare(frame)
	if err != nil {
		return nil, 0, err
	}

	spectrum := fft.FFTReal(windowed)
	bins := fftLength/2 + 1

	magnitudes := make([]float64, bins)
	for i := range bins {
		magnitudes[i] = cmplx.Abs(spectrum[i])
	}
	return magnitudes, fftLength, nil
}

// PowerSpectralDensity computes a single-segment periodogram: squared
// magnitudes scaled by 1/N over the padded FFT length.
func (sa *SpectralAnalyzer) PowerSpectralDensity(frame []float64) ([]float64, int, error) {
	magnitudes, fftLength, err := sa.MagnitudeSpectrum(frame)
	if err != nil {
		return nil, 0, err
	}

	scale := 1.0 / float64(fftLength)
	for i, m := range magnitudes {
		magnitudes[i] = m * m * scale
	}
	return magnitudes, fftLength, nil
}

// WelchPSD computes an averaged periodogram over the given number of
// 50%-overlapped segments. With segments <= 1 it reduces to the
// single-segment periodogram over the whole frame.
func (sa *SpectralAnalyzer) WelchPSD(frame []float64, segments int) ([]float64, int, error) {
	if segments <= 1 {
		return sa.PowerSpectralDensity(frame)
	}
	if len(frame) < 2 {
		return nil, 0, fmt.Errorf("%w: frame length %d", ErrInsufficientSamples, len(frame))
	}

	// Segment length for k segments with 50% overlap: n = 2L/(k+1).
	segLength := 2 * len(frame) / (segments + 1)
	if segLength < 2 {
		return sa.PowerSpectralDensity(frame)
	}
	hop := segLength / 2

	var averaged []float64
	fftLength := 0
	count := 0
	for start := 0; start+segLength <= len(frame); start += hop {
		psd, n, err := sa.PowerSpectralDensity(frame[start : start+segLength])
		if err != nil {
			return nil, 0, err
		}
		if averaged == nil {
			averaged = psd
			fftLength = n
		} else {
			floats.Add(averaged, psd)
		}
		count++
	}

	floats.Scale(1.0/float64(count), averaged)

	sa.logger.Debug("welch averaging complete", logging.Fields{
		"segments":       count,
		"segment_length": segLength,
		"fft_length":     fftLength,
	})
	return averaged, fftLength, nil
}

// DetectPeaks returns the strict local maxima of a sequence: indices i in
// 1..n-2 with v[i] > v[i-1] and v[i] > v[i+1].
func DetectPeaks(sequence []float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(sequence)-1; i++ {
		if sequence[i] > sequence[i-1] && sequence[i] > sequence[i+1] {
			peaks = append(peaks, Peak{Index: i, Value: sequence[i]})
		}
	}
	return peaks
}

// PeakDistances returns the index deltas between consecutive peaks, a
// period proxy for quasi-periodic sequences.
func PeakDistances(peaks []Peak) []int {
	if len(peaks) < 2 {
		return nil
	}
	distances := make([]int, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		distances[i-1] = peaks[i].Index - peaks[i-1].Index
	}
	return distances
}

// EstimateRateFromSpectrum converts the dominant PSD bin to a rate in
// breaths per minute. The DC bin is excluded from the search; fftLength is
// the padded transform length the PSD was computed over.
func (sa *SpectralAnalyzer) EstimateRateFromSpectrum(psd []float64, fftLength int) (float64, error) {
	if len(psd) < 2 || fftLength < 2 {
		return 0, fmt.Errorf("%w: psd bins %d", ErrInsufficientSamples, len(psd))
	}

	peakBin := 1 + floats.MaxIdx(psd[1:])
	frequency := float64(peakBin) * float64(sa.sampleRate) / float64(fftLength)
	return frequency * 60.0, nil
}

// Envelope returns the rectified amplitude envelope of a frame.
func Envelope(frame []float64) []float64 {
	out := make([]float64, len(frame))
	for i, v := range frame {
		out[i] = math.Abs(v)
	}
	return out
}

// Decimate keeps every factor-th sample. Factor <= 1 returns a copy. The
// caller is responsible for band-limiting the input first.
func Decimate(frame []float64, factor int) []float64 {
	if factor <= 1 {
		out := make([]float64, len(frame))
		copy(out, frame)
		return out
	}
	out := make([]float64, 0, (len(frame)+factor-1)/factor)
	for i := 0; i < len(frame); i += factor {
		out = append(out, frame[i])
	}
	return out
}

// prepare validates, windows and zero-pads a frame for transformation.
func (sa *SpectralAnalyzer) prepare(frame []float64) ([]float64, int, error) {
	if len(frame) < 2 {
		return nil, 0, fmt.Errorf("%w: frame length %d", ErrInsufficientSamples, len(frame))
	}

	window := sa.windowGenerator.Hann(len(frame))
	windowed := ApplyWindow(frame, window)

	fftLength := nextPowerOfTwo(len(windowed))
	if fftLength > len(windowed) {
		padded := make([]float64, fftLength)
		copy(padded, windowed)
		windowed = padded
	}
	return windowed, fftLength, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
