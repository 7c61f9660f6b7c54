package timeindex

import (
	"testing"
	"time"

	"github.com/prezmon/prezmon/internal/models"
)

func mustTime(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2025, time.May, day, hour, minute, 0, 0, time.UTC)
}

func TestGenerate_DayRollover(t *testing.T) {
	start := models.ObservationTimestamp{Day: 15, Hour: 22}
	end := models.ObservationTimestamp{Day: 18, Hour: 21}
	now := mustTime(t, 16, 10, 30)

	index := Generate(now, start, end)

	if len(index) != 13 {
		t.Fatalf("Expected 13 timestamps, got %d", len(index))
	}
	if index[0] != start {
		t.Errorf("Expected first timestamp %v, got %v", start, index[0])
	}
	if index[1] != (models.ObservationTimestamp{Day: 15, Hour: 23}) {
		t.Errorf("Unexpected second timestamp: %v", index[1])
	}
	if index[2] != (models.ObservationTimestamp{Day: 16, Hour: 0}) {
		t.Errorf("Day rollover failed, got %v", index[2])
	}
	last := index[len(index)-1]
	if last != (models.ObservationTimestamp{Day: 16, Hour: 10}) {
		t.Errorf("Expected last timestamp (16, 10), got %v", last)
	}
}

func TestGenerate_StrictlyIncreasing(t *testing.T) {
	start := models.ObservationTimestamp{Day: 15, Hour: 22}
	end := models.ObservationTimestamp{Day: 18, Hour: 21}
	now := mustTime(t, 17, 5, 45)

	index := Generate(now, start, end)
	if len(index) == 0 {
		t.Fatal("Expected non-empty index")
	}

	limit := models.ObservationTimestamp{Day: 17, Hour: 5}
	for i, ts := range index {
		if i > 0 && !index[i-1].Before(ts) {
			t.Errorf("Index not strictly increasing at %d: %v then %v", i, index[i-1], ts)
		}
		if ts.After(limit) {
			t.Errorf("Timestamp %v is after now (%v)", ts, limit)
		}
		if !ts.Before(end) {
			t.Errorf("Timestamp %v reached the window end %v", ts, end)
		}
	}
}

func TestGenerate_StopsBeforeEnd(t *testing.T) {
	start := models.ObservationTimestamp{Day: 15, Hour: 22}
	end := models.ObservationTimestamp{Day: 18, Hour: 21}
	// Well past the window end
	now := mustTime(t, 25, 12, 30)

	index := Generate(now, start, end)
	last := index[len(index)-1]
	if last != (models.ObservationTimestamp{Day: 18, Hour: 20}) {
		t.Errorf("Expected last timestamp (18, 20), got %v", last)
	}
}

func TestGenerate_MinuteZeroGuard(t *testing.T) {
	start := models.ObservationTimestamp{Day: 15, Hour: 22}
	end := models.ObservationTimestamp{Day: 18, Hour: 21}
	now := mustTime(t, 16, 10, 0)

	if index := Generate(now, start, end); len(index) != 0 {
		t.Errorf("Expected empty index at minute 0, got %d entries", len(index))
	}
}

func TestGenerate_BeforeWindowStart(t *testing.T) {
	start := models.ObservationTimestamp{Day: 15, Hour: 22}
	end := models.ObservationTimestamp{Day: 18, Hour: 21}
	now := mustTime(t, 15, 10, 30)

	if index := Generate(now, start, end); len(index) != 0 {
		t.Errorf("Expected empty index before window start, got %d entries", len(index))
	}
}
