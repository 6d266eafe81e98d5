package telemetry

import "testing"

func i64(v int64) *int64 { return &v }

func TestCheckDebounceBoundary(t *testing.T) {
	limits := DefaultLimits()

	if limits.Check(i64(999), 3.0, true) {
		t.Fatalf("999us is a sub-millisecond glitch, must be invalid")
	}
	if !limits.Check(i64(1000), 7200.0/1000.0, true) {
		t.Fatalf("1000us must be valid (speed within bound assumed)")
	}
}

func TestCheckSpeedBoundary(t *testing.T) {
	limits := DefaultLimits()

	// the upper bound is inclusive-valid: exactly 200 km/h passes
	if !limits.Check(i64(37_800), 200.0, true) {
		t.Fatalf("exactly 200 km/h must be valid")
	}
	if limits.Check(i64(37_000), 200.01, true) {
		t.Fatalf("above 200 km/h must be invalid")
	}
}

func TestCheckNoRotation(t *testing.T) {
	limits := DefaultLimits()

	if !limits.Check(nil, 0, false) {
		t.Fatalf("a reading without rotation is valid")
	}
}

func TestCheckCustomLimits(t *testing.T) {
	limits := Limits{MinIntervalUs: 5000, MaxSpeedKmh: 50}

	if limits.Check(i64(4000), 10, true) {
		t.Fatalf("interval below custom debounce must be invalid")
	}
	if limits.Check(i64(100_000), 51, true) {
		t.Fatalf("speed above custom bound must be invalid")
	}
	if !limits.Check(i64(100_000), 49, true) {
		t.Fatalf("plausible reading must be valid")
	}
}
