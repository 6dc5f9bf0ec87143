// Package buffer provides overlap-aware sample accumulation for the
// streaming estimation pipeline. Incoming capture frames of arbitrary
// length are appended and drained as fixed-size, overlapping chunks.
package buffer

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry indicates a chunk size / hop combination that cannot
// produce overlapping chunks.
var ErrInvalidGeometry = errors.New("buffer: hop must satisfy 0 < hop < size")

// growthLimitFactor caps buffer growth when the consumer falls behind.
// Oldest samples are dropped beyond size*growthLimitFactor and counted
// as overruns.
const growthLimitFactor = 8

// Overflow accumulates samples and yields fixed-size chunks that advance
// by a hop smaller than the chunk size, so consecutive chunks overlap and
// no sample is skipped. Single producer, single consumer.
type Overflow struct {
	samples  []float64
	size     int
	hop      int
	maxLen   int
	overruns uint64
}

// NewOverflow returns an Overflow that yields chunks of the given size,
// advancing by hop samples per drained chunk.
func NewOverflow(size, hop int) (*Overflow, error) {
	if size <= 0 || hop <= 0 || hop >= size {
		return nil, fmt.Errorf("%w: size=%d hop=%d", ErrInvalidGeometry, size, hop)
	}
	return &Overflow{
		samples: make([]float64, 0, size*2),
		size:    size,
		hop:     hop,
		maxLen:  size * growthLimitFactor,
	}, nil
}

// Append adds samples to the buffer. If the consumer has fallen far enough
// behind that the buffer exceeds its growth cap, the oldest samples are
// dropped and counted as overruns.
func (b *Overflow) Append(samples []float64) {
	b.samples = append(b.samples, samples...)
	if excess := len(b.samples) - b.maxLen; excess > 0 {
		b.samples = append(b.samples[:0], b.samples[excess:]...)
		b.overruns += uint64(excess)
	}
}

// DrainOne removes and returns the next chunk, advancing by the hop. The
// returned slice is a copy, safe to hand to another goroutine. Returns
// false when fewer than size samples are buffered.
func (b *Overflow) DrainOne() ([]float64, bool) {
	if len(b.samples) < b.size {
		return nil, false
	}

	chunk := make([]float64, b.size)
	copy(chunk, b.samples[:b.size])

	b.samples = append(b.samples[:0], b.samples[b.hop:]...)
	return chunk, true
}

// Drain removes and returns every currently available chunk.
func (b *Overflow) Drain() [][]float64 {
	var chunks [][]float64
	for {
		chunk, ok := b.DrainOne()
		if !ok {
			return chunks
		}
		chunks = append(chunks, chunk)
	}
}

// Len returns the number of buffered samples.
func (b *Overflow) Len() int {
	return len(b.samples)
}

// Overruns returns the total number of samples dropped due to the growth cap.
func (b *Overflow) Overruns() uint64 {
	return b.overruns
}

// Reset discards all buffered samples and clears the overrun count.
func (b *Overflow) Reset() {
	b.samples = b.samples[:0]
	b.overruns = 0
}

// Accumulator pairs the two overlap buffers of an estimation session: a
// small fast-path buffer for low-latency amplitude frames and a multi-second
// analysis buffer drained with 50% overlap.
type Accumulator struct {
	fast     *Overflow
	analysis *Overflow
}

// NewAccumulator builds an Accumulator from the fast-path frame geometry
// and the analysis window geometry, all in samples. A windowHop of 0
// defaults to half the window (50% overlap).
func NewAccumulator(frameSize, hopSize, windowSize, windowHop int) (*Accumulator, error) {
	fast, err := NewOverflow(frameSize, hopSize)
	if err != nil {
		return nil, fmt.Errorf("fast path: %w", err)
	}
	if windowHop == 0 {
		windowHop = windowSize / 2
	}
	analysis, err := NewOverflow(windowSize, windowHop)
	if err != nil {
		return nil, fmt.Errorf("analysis window: %w", err)
	}
	return &Accumulator{fast: fast, analysis: analysis}, nil
}

// Append adds a capture frame's samples to both buffers.
func (a *Accumulator) Append(samples []float64) {
	a.fast.Append(samples)
	a.analysis.Append(samples)
}

// AppendFast adds samples only to the fast-path buffer.
func (a *Accumulator) AppendFast(samples []float64) {
	a.fast.Append(samples)
}

// AppendAnalysis adds samples only to the analysis buffer. Together with
// AppendFast this lets the two paths receive differently conditioned
// versions of the same capture frame.
func (a *Accumulator) AppendAnalysis(samples []float64) {
	a.analysis.Append(samples)
}

// DrainFrames returns all complete fast-path frames.
func (a *Accumulator) DrainFrames() [][]float64 {
	return a.fast.Drain()
}

// DrainWindows returns all complete analysis windows.
func (a *Accumulator) DrainWindows() [][]float64 {
	return a.analysis.Drain()
}

// Overruns returns the samples dropped from either buffer.
func (a *Accumulator) Overruns() uint64 {
	return a.fast.Overruns() + a.analysis.Overruns()
}

// Reset clears both buffers.
func (a *Accumulator) Reset() {
	a.fast.Reset()
	a.analysis.Reset()
}
