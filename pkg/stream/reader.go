package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/calmora/breathscope/logging"
	"github.com/calmora/breathscope/pkg/stream/common"
)

// pcmReader delivers fixed-size frames decoded from a raw PCM byte stream.
// With Realtime enabled, delivery is paced to the nominal sample rate so a
// recorded file replays at capture cadence.
type pcmReader struct {
	r      io.Reader
	name   string
	cfg    SourceConfig
	logger logging.Logger

	mu       sync.Mutex
	buf      []byte
	sequence uint64
	started  time.Time
	closed   bool
}

func newPCMReader(r io.Reader, name string, cfg SourceConfig) *pcmReader {
	return &pcmReader{
		r:    r,
		name: name,
		cfg:  cfg,
		buf:  make([]byte, cfg.FrameSize*cfg.Format.BytesPerSample()),
		logger: logging.WithFields(logging.Fields{
			"component": "pcm_reader",
			"source":    name,
			"format":    string(cfg.Format),
		}),
	}
}

// ReadFrame reads, decodes and (optionally) paces one frame. A short final
// read yields a short final frame; io.EOF follows on the next call.
func (p *pcmReader) ReadFrame(ctx context.Context) (*common.AudioFrame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, common.NewCaptureError(p.name, common.ErrCodeClosed,
			"read from closed source", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := io.ReadFull(p.r, p.buf)
	if n == 0 {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, common.NewCaptureError(p.name, common.ErrCodeRead,
			"capture read failed", err)
	}
	if err != nil && err != io.EOF && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, common.NewCaptureError(p.name, common.ErrCodeRead,
			"capture read failed", err)
	}

	samples, err := common.DecodePCM(p.buf[:n], p.cfg.Format)
	if err != nil {
		return nil, err
	}

	p.sequence++
	frame := &common.AudioFrame{
		Samples:    samples,
		SampleRate: p.cfg.SampleRate,
		Format:     p.cfg.Format,
		Sequence:   p.sequence,
		Duration:   time.Duration(float64(len(samples)) / float64(p.cfg.SampleRate) * float64(time.Second)),
		Timestamp:  time.Now(),
	}

	if p.cfg.Realtime {
		p.pace(ctx, frame)
	}

	return frame, nil
}

// pace sleeps until the frame's nominal position in the stream timeline.
func (p *pcmReader) pace(ctx context.Context, frame *common.AudioFrame) {
	if p.started.IsZero() {
		p.started = time.Now()
		return
	}

	elapsed := time.Duration(p.sequence-1) * time.Duration(float64(p.cfg.FrameSize)/float64(p.cfg.SampleRate)*float64(time.Second))
	deadline := p.started.Add(elapsed)
	if wait := time.Until(deadline); wait > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}
}

// Close releases the underlying reader if it is closable. Subsequent
// ReadFrame calls fail with a closed-source error.
func (p *pcmReader) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.logger.Debug("source closed", logging.Fields{"frames": p.sequence})

	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
