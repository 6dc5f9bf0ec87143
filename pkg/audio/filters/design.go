package filters

import (
	"fmt"
	"math"
)

// Coefficients holds the transfer function coefficients of a single biquad
// section, normalized so that a0 = 1.
//
// The difference equation is:
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// DesignBandPass computes band-pass biquad coefficients from band edges.
//
// This uses the cookbook formulas from Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients"
// (constant skirt gain, peak gain = Q). The band edges are mapped to a
// center frequency f0 = (low+high)/2 and an octave bandwidth
// BW = log2(high/low), which keeps the design on the reference formula
// rather than substituting a raw Hz bandwidth into the sinh term.
func DesignBandPass(sampleRate int, lowHz, highHz float64) (Coefficients, error) {
	nyquist := float64(sampleRate) / 2.0
	if lowHz <= 0 || highHz <= lowHz || highHz >= nyquist {
		return Coefficients{}, fmt.Errorf("%w: low=%.3f high=%.3f nyquist=%.1f",
			ErrInvalidBand, lowHz, highHz, nyquist)
	}

	center := (lowHz + highHz) / 2.0
	octaves := math.Log2(highHz / lowHz)
	return DesignBandPassOctave(sampleRate, center, octaves)
}

// DesignBandPassOctave computes band-pass biquad coefficients from a center
// frequency and a bandwidth expressed in octaves.
func DesignBandPassOctave(sampleRate int, centerHz, octaves float64) (Coefficients, error) {
	nyquist := float64(sampleRate) / 2.0
	if centerHz <= 0 || centerHz >= nyquist {
		return Coefficients{}, fmt.Errorf("%w: center=%.3f nyquist=%.1f",
			ErrInvalidBand, centerHz, nyquist)
	}
	if octaves <= 0 {
		return Coefficients{}, fmt.Errorf("%w: bandwidth octaves must be positive", ErrInvalidBand)
	}

	w0 := 2.0 * math.Pi * centerHz / float64(sampleRate)
	sinW0 := math.Sin(w0)

	// alpha = sin(w0)*sinh(ln(2)/2 * BW * w0/sin(w0)), BW in octaves
	alpha := sinW0 * math.Sinh(math.Ln2/2.0*octaves*w0/sinW0)

	return normalizeBandPass(w0, alpha)
}

// DesignBandPassQ computes band-pass biquad coefficients from a center
// frequency and an explicit quality factor (higher Q = narrower band).
func DesignBandPassQ(sampleRate int, centerHz, q float64) (Coefficients, error) {
	nyquist := float64(sampleRate) / 2.0
	if centerHz <= 0 || centerHz >= nyquist {
		return Coefficients{}, fmt.Errorf("%w: center=%.3f nyquist=%.1f",
			ErrInvalidBand, centerHz, nyquist)
	}
	if q <= 0 {
		return Coefficients{}, fmt.Errorf("%w: q factor must be positive", ErrInvalidBand)
	}

	w0 := 2.0 * math.Pi * centerHz / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * q)

	return normalizeBandPass(w0, alpha)
}

// normalizeBandPass assembles the cookbook band-pass section and divides
// through by a0. The denominator is checked for pole stability before the
// coefficients are handed out.
func normalizeBandPass(w0, alpha float64) (Coefficients, error) {
	cosW0 := math.Cos(w0)

	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1.0 + alpha
	a1 := -2.0 * cosW0
	a2 := 1.0 - alpha

	c := Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}

	if !c.Stable() {
		return Coefficients{}, fmt.Errorf("%w: w0=%.4f alpha=%.4f", ErrUnstableFilter, w0, alpha)
	}
	return c, nil
}

// Stable reports whether both poles of the section lie inside the unit
// circle, using the stability triangle |A2| < 1 and |A1| < 1 + A2.
func (c Coefficients) Stable() bool {
	return math.Abs(c.A2) < 1.0 && math.Abs(c.A1) < 1.0+c.A2
}

// FrequencyResponse computes the magnitude and phase of the section at the
// given frequency:
//
//	H(e^jw) = (B0 + B1*e^-jw + B2*e^-j2w) / (1 + A1*e^-jw + A2*e^-j2w)
func (c Coefficients) FrequencyResponse(sampleRate int, frequency float64) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / float64(sampleRate)

	cosW := math.Cos(w)
	sinW := math.Sin(w)
	cos2W := math.Cos(2 * w)
	sin2W := math.Sin(2 * w)

	numReal := c.B0 + c.B1*cosW + c.B2*cos2W
	numImag := -c.B1*sinW - c.B2*sin2W

	denReal := 1.0 + c.A1*cosW + c.A2*cos2W
	denImag := -c.A1*sinW - c.A2*sin2W

	denMagSq := denReal*denReal + denImag*denImag

	hReal := (numReal*denReal + numImag*denImag) / denMagSq
	hImag := (numImag*denReal - numReal*denImag) / denMagSq

	magnitude = math.Sqrt(hReal*hReal + hImag*hImag)
	phase = math.Atan2(hImag, hReal)

	return magnitude, phase
}
