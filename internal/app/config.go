package app

import (
	"fmt"
	"io"

	"github.com/calmora/breathscope/configs"
	"github.com/calmora/breathscope/pkg/breath"
)

// EstimatorConfig maps the application configuration onto the estimator's
// pipeline settings.
func EstimatorConfig(cfg *configs.Config) breath.Config {
	return breath.Config{
		SampleRate:             cfg.Capture.SampleRate,
		BandLowHz:              cfg.Band.LowHz,
		BandHighHz:             cfg.Band.HighHz,
		FastFrameSize:          cfg.Fast.FrameSize,
		FastHopSize:            cfg.Fast.HopSize,
		AmplitudeCeiling:       cfg.Fast.AmplitudeCeiling,
		AnalysisWindowSeconds:  cfg.Analysis.WindowSeconds,
		AnalysisOverlapSeconds: cfg.Analysis.OverlapSeconds,
		WelchSegments:          cfg.Analysis.WelchSegments,
		AccumulateFiltered:     cfg.Analysis.AccumulateFiltered,
		EnvelopeDecimation:     cfg.Analysis.EnvelopeDecimation,
		RateMinBPM:             cfg.Rate.MinBPM,
		RateMaxBPM:             cfg.Rate.MaxBPM,
	}
}

// newLivePrinter returns a sink that prints rate estimates as they
// resolve, for interactive sessions.
func newLivePrinter(w io.Writer) breath.Sink {
	return breath.SinkFuncs{
		Rate: func(r breath.RateEstimate) {
			if r.Pending {
				return
			}
			fmt.Fprintf(w, "window %d: %.1f bpm\n", r.Window, r.BPM)
		},
	}
}
