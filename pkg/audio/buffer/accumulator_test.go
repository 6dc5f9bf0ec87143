package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOverflowGeometry(t *testing.T) {
	type test struct {
		size, hop int
		wantErr   bool
	}

	tests := []test{
		{512, 256, false},
		{2, 1, false},
		{512, 512, true},
		{512, 600, true},
		{512, 0, true},
		{0, 0, true},
		{-4, 2, true},
	}

	for _, tt := range tests {
		_, err := NewOverflow(tt.size, tt.hop)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidGeometry, "size=%d hop=%d", tt.size, tt.hop)
		} else {
			assert.NoError(t, err, "size=%d hop=%d", tt.size, tt.hop)
		}
	}
}

func TestOverflowDrainOrderAndOverlap(t *testing.T) {
	b, err := NewOverflow(4, 2)
	require.NoError(t, err)

	b.Append([]float64{0, 1, 2, 3, 4, 5, 6, 7})

	first, ok := b.DrainOne()
	require.True(t, ok)
	assert.Equal(t, []float64{0, 1, 2, 3}, first)

	// Advancing by the hop keeps the second half of the previous chunk.
	second, ok := b.DrainOne()
	require.True(t, ok)
	assert.Equal(t, []float64{2, 3, 4, 5}, second)

	third, ok := b.DrainOne()
	require.True(t, ok)
	assert.Equal(t, []float64{4, 5, 6, 7}, third)

	_, ok = b.DrainOne()
	assert.False(t, ok)
	assert.Equal(t, 2, b.Len())
}

func TestOverflowCoversEverySample(t *testing.T) {
	// Regardless of how appends are sliced, the union of drained chunks
	// must cover every input sample at least once.
	b, err := NewOverflow(8, 3)
	require.NoError(t, err)

	const total = 1000
	seen := make([]bool, total)
	start := 0
	drainAll := func() {
		for _, chunk := range b.Drain() {
			for i, v := range chunk {
				idx := int(v)
				require.Equal(t, start+i, idx, "chunk must be contiguous")
				seen[idx] = true
			}
			start += 3 // hop
		}
	}

	appendSizes := []int{1, 7, 2, 13, 64, 5, 31}
	value := 0
	for value < total {
		n := appendSizes[value%len(appendSizes)]
		if value+n > total {
			n = total - value
		}
		frame := make([]float64, n)
		for i := range frame {
			frame[i] = float64(value + i)
		}
		b.Append(frame)
		value += n
		drainAll()
	}

	// Everything up to the last full chunk boundary must have been covered.
	covered := 0
	for _, s := range seen {
		if !s {
			break
		}
		covered++
	}
	assert.GreaterOrEqual(t, covered, total-8, "only the trailing partial chunk may be pending")
}

func TestOverflowGrowthCap(t *testing.T) {
	b, err := NewOverflow(10, 5)
	require.NoError(t, err)

	// Never draining forces the cap to engage.
	for range 100 {
		b.Append(make([]float64, 10))
	}

	assert.LessOrEqual(t, b.Len(), 10*growthLimitFactor)
	assert.Positive(t, b.Overruns())

	b.Reset()
	assert.Zero(t, b.Len())
	assert.Zero(t, b.Overruns())
}

func TestAccumulatorFeedsBothPaths(t *testing.T) {
	acc, err := NewAccumulator(4, 2, 16, 0)
	require.NoError(t, err)

	samples := make([]float64, 20)
	for i := range samples {
		samples[i] = float64(i)
	}
	acc.Append(samples)

	frames := acc.DrainFrames()
	require.NotEmpty(t, frames)
	assert.Equal(t, []float64{0, 1, 2, 3}, frames[0])

	windows := acc.DrainWindows()
	require.Len(t, windows, 1)
	assert.Len(t, windows[0], 16)
	assert.Equal(t, 0.0, windows[0][0])
	assert.Equal(t, 15.0, windows[0][15])

	// 50% overlap: the next window starts at sample 8.
	acc.Append(make([]float64, 4))
	windows = acc.DrainWindows()
	require.Len(t, windows, 1)
	assert.Equal(t, 8.0, windows[0][0])
}

func TestDrainedChunksAreCopies(t *testing.T) {
	b, err := NewOverflow(4, 2)
	require.NoError(t, err)

	b.Append([]float64{1, 2, 3, 4, 5, 6})
	chunk, ok := b.DrainOne()
	require.True(t, ok)

	chunk[0] = 99
	next, ok := b.DrainOne()
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4, 5, 6}, next)
}
