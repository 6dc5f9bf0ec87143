package common

import (
	"encoding/binary"
	"math"
)

// DecodePCM converts a raw byte buffer into normalized ±1.0 float samples
// according to the given format. Trailing bytes that do not complete a
// sample are ignored.
func DecodePCM(buffer []byte, format SampleFormat) ([]float64, error) {
	switch format {
	case FormatS16LE:
		return decodeS16LE(buffer), nil
	case FormatF32LE:
		return decodeF32LE(buffer), nil
	default:
		return nil, NewCaptureError("", ErrCodeInvalidFormat,
			"unsupported sample format: "+string(format), nil)
	}
}

func decodeS16LE(buffer []byte) []float64 {
	n := len(buffer) / 2
	samples := make([]float64, n)
	for i := range n {
		raw := int16(binary.LittleEndian.Uint16(buffer[i*2:]))
		samples[i] = float64(raw) / 32768.0
	}
	return samples
}

func decodeF32LE(buffer []byte) []float64 {
	n := len(buffer) / 4
	samples := make([]float64, n)
	for i := range n {
		bits := binary.LittleEndian.Uint32(buffer[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples
}

// EncodeS16LE converts normalized float samples back to 16-bit PCM bytes,
// clamping out-of-range values.
func EncodeS16LE(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		scaled := s * 32768.0
		if scaled > math.MaxInt16 {
			scaled = math.MaxInt16
		} else if scaled < math.MinInt16 {
			scaled = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(scaled)))
	}
	return out
}
