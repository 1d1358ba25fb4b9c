package utils

import (
	"math"
	"testing"
)

func TestCalculateHaversineDistance(t *testing.T) {
	// Same point is zero
	if d := CalculateHaversineDistance(1.5, 103.8, 1.5, 103.8); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}

	// One degree of latitude is roughly 111km
	d := CalculateHaversineDistance(0, 0, 1, 0)
	if math.Abs(d-111195) > 500 {
		t.Errorf("one degree latitude = %f m, want ~111195 m", d)
	}

	// Symmetry
	a := CalculateHaversineDistance(-6.2, 106.8, -6.9, 107.6)
	b := CalculateHaversineDistance(-6.9, 107.6, -6.2, 106.8)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}
