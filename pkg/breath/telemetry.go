package breath

import "time"

// Telemetry is the low-latency per-frame measurement emitted on the fast
// path: instantaneous amplitude and power of one overlapped frame.
type Telemetry struct {
	Amplitude float64   `json:"amplitude"`
	PowerDB   float64   `json:"power_db"`
	Timestamp time.Time `json:"timestamp"`
}

// RateEstimate is one respiratory-rate result. While a window is being
// analyzed a pending estimate (Pending=true, BPM=0) is emitted; the final
// value is clamped to the configured physiological range.
type RateEstimate struct {
	BPM       float64   `json:"bpm"`
	Pending   bool      `json:"pending"`
	Window    uint64    `json:"window"`
	Epoch     uint64    `json:"epoch"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives pipeline output. Delivery is at-most-once per event and
// callbacks must not block: telemetry arrives on the capture path and rate
// estimates on analysis goroutines.
type Sink interface {
	OnTelemetry(t Telemetry)
	OnRate(r RateEstimate)
}

// SinkFuncs adapts plain functions to the Sink interface. Nil fields
// discard their events.
type SinkFuncs struct {
	Telemetry func(t Telemetry)
	Rate      func(r RateEstimate)
}

func (s SinkFuncs) OnTelemetry(t Telemetry) {
	if s.Telemetry != nil {
		s.Telemetry(t)
	}
}

func (s SinkFuncs) OnRate(r RateEstimate) {
	if s.Rate != nil {
		s.Rate(r)
	}
}
