package units

// usPerHour converts a microsecond interval into km/h when multiplied by
// meters travelled: (m / µs) * 3_600_000 = km/h.
const usPerHour = 3_600_000

// SpeedKmh derives speed from one wheel rotation: the wheel covers exactly
// one circumference per pulse interval. Returns false when no speed can be
// derived (no rotation observed, or nonsensical inputs).
func SpeedKmh(circumferenceM float64, intervalUs int64) (float64, bool) {
	if circumferenceM <= 0 || intervalUs <= 0 {
		return 0, false
	}
	return circumferenceM * usPerHour / float64(intervalUs), true
}

// AverageKmh computes total-distance over total-time for a set of pulse
// intervals. This is NOT the mean of per-sample speeds: under variable
// intervals (a brief stop, a sprint) the two diverge, and distance/time is
// the physically correct figure.
func AverageKmh(circumferenceM float64, intervalsUs []int64) (float64, bool) {
	var totalUs int64
	for _, iv := range intervalsUs {
		totalUs += iv
	}
	return AggregateKmh(circumferenceM, int64(len(intervalsUs)), totalUs)
}

// AggregateKmh is the same total-distance / total-time figure from
// pre-aggregated counters: `samples` rotations over `totalUs` microseconds.
func AggregateKmh(circumferenceM float64, samples, totalUs int64) (float64, bool) {
	if circumferenceM <= 0 || samples <= 0 || totalUs <= 0 {
		return 0, false
	}
	return float64(samples) * circumferenceM * usPerHour / float64(totalUs), true
}

// DistanceM is the distance covered by a number of full wheel rotations.
func DistanceM(rotations int64, circumferenceM float64) float64 {
	if rotations < 0 || circumferenceM <= 0 {
		return 0
	}
	return float64(rotations) * circumferenceM
}
