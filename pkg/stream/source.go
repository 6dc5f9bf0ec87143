// Package stream provides PCM capture sources for the estimation pipeline.
// A Source stands in for the device capture collaborator: it delivers mono
// sample frames at a nominal rate, from a file, stdin or any io.Reader.
package stream

import (
	"context"
	"io"
	"os"

	"github.com/calmora/breathscope/pkg/stream/common"
)

// Source delivers mono PCM frames. ReadFrame returns io.EOF when the feed
// is exhausted; any other error is a capture-layer failure and ends the
// session.
type Source interface {
	ReadFrame(ctx context.Context) (*common.AudioFrame, error)
	Close() error
}

// SourceConfig describes the feed geometry of a PCM source
type SourceConfig struct {
	SampleRate int
	Format     common.SampleFormat
	FrameSize  int  // samples per delivered frame
	Realtime   bool // pace frame delivery at the nominal sample rate
}

// NewFileSource opens a raw PCM file as a Source. The special path "-"
// reads from stdin.
func NewFileSource(path string, cfg SourceConfig) (Source, error) {
	if path == "-" {
		return NewReaderSource(os.Stdin, "stdin", cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewCaptureError(path, common.ErrCodeOpen,
			"failed to open input", err)
	}
	return NewReaderSource(f, path, cfg)
}

// NewReaderSource wraps an io.Reader as a Source. If the reader is also an
// io.Closer it is closed with the source.
func NewReaderSource(r io.Reader, name string, cfg SourceConfig) (Source, error) {
	if cfg.Format.BytesPerSample() == 0 {
		return nil, common.NewCaptureError(name, common.ErrCodeInvalidFormat,
			"unsupported sample format: "+string(cfg.Format), nil)
	}
	if cfg.SampleRate <= 0 || cfg.FrameSize <= 0 {
		return nil, common.NewCaptureError(name, common.ErrCodeInvalidFormat,
			"sample rate and frame size must be positive", nil)
	}
	return newPCMReader(r, name, cfg), nil
}
