package telemetry

// Limits holds the physical-plausibility thresholds applied to every
// reading. The same predicate guards ingestion and therefore everything the
// aggregator later sees; it must never diverge between the two.
type Limits struct {
	MinIntervalUs int64
	MaxSpeedKmh   float64
}

// DefaultLimits: sub-millisecond intervals are sensor glitches, and no
// bicycle goes faster than 200 km/h.
func DefaultLimits() Limits {
	return Limits{MinIntervalUs: 1000, MaxSpeedKmh: 200}
}

// Check reports whether a reading passes the plausibility filters. A nil
// interval ("no rotation") always passes and carries no speed. The speed
// bound is inclusive-valid: exactly MaxSpeedKmh is accepted, anything
// strictly above is rejected.
func (l Limits) Check(intervalUs *int64, speedKmh float64, hasSpeed bool) bool {
	if intervalUs != nil && *intervalUs > 0 && *intervalUs < l.MinIntervalUs {
		return false
	}
	if hasSpeed && speedKmh > l.MaxSpeedKmh {
		return false
	}
	return true
}
