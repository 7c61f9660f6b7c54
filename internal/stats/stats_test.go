package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDerive(t *testing.T) {
	current := []int64{100000, 120000, 150000}
	prior := []int64{100000, 100000, 120000}

	delta, hourly := Derive(current, prior)

	wantDelta := []float64{0, 20, 25}
	for i, want := range wantDelta {
		if !almostEqual(delta[i], want) {
			t.Errorf("deltaPercent[%d] = %f, want %f", i, delta[i], want)
		}
	}

	wantHourly := []int64{0, 20000, 30000}
	for i, want := range wantHourly {
		if hourly[i] != want {
			t.Errorf("hourlyIncrease[%d] = %d, want %d", i, hourly[i], want)
		}
	}
}

func TestDerive_ZeroPrior(t *testing.T) {
	delta, _ := Derive([]int64{500, 600}, []int64{0, 0})
	for i, d := range delta {
		if d != 0 {
			t.Errorf("deltaPercent[%d] = %f, want 0 for zero prior", i, d)
		}
	}
}

func TestDerive_ShortPrior(t *testing.T) {
	delta, hourly := Derive([]int64{10, 20, 35}, []int64{10})

	if !almostEqual(delta[0], 0) || delta[1] != 0 || delta[2] != 0 {
		t.Errorf("Unexpected deltas with short prior: %v", delta)
	}
	if hourly[1] != 10 || hourly[2] != 15 {
		t.Errorf("Hourly increases should ignore prior length: %v", hourly)
	}
}

func TestDerive_Empty(t *testing.T) {
	delta, hourly := Derive(nil, nil)
	if len(delta) != 0 || len(hourly) != 0 {
		t.Errorf("Expected empty outputs, got %v %v", delta, hourly)
	}
}

func TestDerive_Decrease(t *testing.T) {
	delta, hourly := Derive([]int64{80}, []int64{100})
	if !almostEqual(delta[0], -20) {
		t.Errorf("deltaPercent[0] = %f, want -20", delta[0])
	}
	if hourly[0] != 0 {
		t.Errorf("hourlyIncrease[0] = %d, want 0", hourly[0])
	}
}
