package metrics

import "time"

type Reading struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	BikeID     string    `json:"bike_id"`
	IntervalUs *int64    `json:"interval_us,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty"`
}

// Window is a rolling average over the most recent speed-bearing samples.
// AvgKmh is nil when no qualifying sample exists.
type Window struct {
	CountUsed int      `json:"count_used"`
	AvgKmh    *float64 `json:"avg_kmh"`
}

type RunMetrics struct {
	RunID         string   `json:"run_id"`
	ReadingsCount int      `json:"readings_count"`
	DistanceM     float64  `json:"distance_m"`
	DurationS     float64  `json:"duration_s"`
	AvgKmh        *float64 `json:"avg_kmh"`
	MaxKmh        *float64 `json:"max_kmh"`
	Last          *Reading `json:"last"`
	AvgLastN      Window   `json:"avg_last_n"`
}

type LiveView struct {
	RunID    string   `json:"run_id"`
	Last     *Reading `json:"last"`
	AvgLastN Window   `json:"avg_last_n"`
}
