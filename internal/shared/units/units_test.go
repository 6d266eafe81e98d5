package units

import (
	"math"
	"testing"
)

func TestSpeedKmh(t *testing.T) {
	// 2 m circumference, one rotation per second = 2 m/s = 7.2 km/h
	v, ok := SpeedKmh(2.0, 1_000_000)
	if !ok || math.Abs(v-7.2) > 1e-9 {
		t.Fatalf("expected 7.2 km/h, got %v ok=%v", v, ok)
	}

	if _, ok := SpeedKmh(2.0, 0); ok {
		t.Fatalf("zero interval must not yield a speed")
	}
	if _, ok := SpeedKmh(2.0, -5); ok {
		t.Fatalf("negative interval must not yield a speed")
	}
	if _, ok := SpeedKmh(0, 1_000_000); ok {
		t.Fatalf("zero circumference must not yield a speed")
	}
}

func TestAverageKmhIsDistanceOverTime(t *testing.T) {
	// Per-sample speeds are 14.4 and 4.8 km/h (mean 9.6), but the correct
	// aggregate is 2 rotations * 2 m over 2 s = 7.2 km/h.
	v, ok := AverageKmh(2.0, []int64{500_000, 1_500_000})
	if !ok {
		t.Fatalf("expected an average")
	}
	if math.Abs(v-7.2) > 1e-9 {
		t.Fatalf("expected aggregate 7.2 km/h, got %v", v)
	}
}

func TestAverageKmhEmptyAndDegenerate(t *testing.T) {
	if _, ok := AverageKmh(2.0, nil); ok {
		t.Fatalf("no samples must not yield an average")
	}
	if _, ok := AverageKmh(2.0, []int64{500_000, -500_000}); ok {
		t.Fatalf("non-positive interval sum must not yield an average")
	}
	if _, ok := AverageKmh(0, []int64{500_000}); ok {
		t.Fatalf("zero circumference must not yield an average")
	}
}

func TestDistanceM(t *testing.T) {
	if d := DistanceM(3, 2.1); math.Abs(d-6.3) > 1e-9 {
		t.Fatalf("unexpected distance: %v", d)
	}
	if d := DistanceM(-1, 2.1); d != 0 {
		t.Fatalf("negative rotations should yield 0, got %v", d)
	}
}
