// Package common holds the capture-boundary types shared by PCM sources:
// sample formats, audio frames and the capture error taxonomy.
package common

import "time"

// SampleFormat identifies the wire encoding of PCM samples
type SampleFormat string

const (
	// FormatS16LE is 16-bit signed little-endian PCM
	FormatS16LE SampleFormat = "s16le"
	// FormatF32LE is 32-bit float little-endian PCM
	FormatF32LE SampleFormat = "f32le"
	// FormatUnsupported marks an unrecognized format string
	FormatUnsupported SampleFormat = "unsupported"
)

// ParseSampleFormat maps a format string to a SampleFormat
func ParseSampleFormat(s string) SampleFormat {
	switch SampleFormat(s) {
	case FormatS16LE:
		return FormatS16LE
	case FormatF32LE:
		return FormatF32LE
	default:
		return FormatUnsupported
	}
}

// BytesPerSample returns the encoded width of one sample, or 0 for
// unsupported formats.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatS16LE:
		return 2
	case FormatF32LE:
		return 4
	default:
		return 0
	}
}

// AudioFrame is one mono capture frame: normalized float samples tagged
// with the nominal sample rate. Frames are consumed immediately and not
// retained by the pipeline.
type AudioFrame struct {
	Samples    []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Format     SampleFormat  `json:"format"`
	Sequence   uint64        `json:"sequence"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
}
