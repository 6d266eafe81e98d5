package telemetry

import "time"

// RawReading is one element of an ingestion batch as sent by a device.
// bike_id is required; everything else is optional. A missing or zero
// interval means "no new rotation since the last sample".
type RawReading struct {
	BikeID     string  `json:"bike_id"`
	RunID      *string `json:"run_id,omitempty"`
	IntervalUs *int64  `json:"interval_us,omitempty"`
	Timestamp  *string `json:"timestamp,omitempty"`
}

type BatchRequest struct {
	Readings []RawReading `json:"readings"`
}

type BatchResult struct {
	Inserted int `json:"inserted"`
}

// SpeedUpdate is the live event published per accepted speed-bearing
// reading, on the topic equal to the bike id.
type SpeedUpdate struct {
	BikeID    string    `json:"bike_id"`
	SpeedKmh  float64   `json:"speed_kmh"`
	Timestamp time.Time `json:"timestamp"`
}
