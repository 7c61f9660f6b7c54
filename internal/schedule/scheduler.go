// Package schedule decides when the hourly aggregation cycle runs.
//
// The source publishes a new snapshot shortly after the top of each hour, so
// cycles are anchored to a fixed (minute, second) offset within the hour
// rather than to a free-running interval. The scheduler is polled every tick
// and fires at most once per wall-clock hour.
package schedule

import "time"

// Scheduler tracks the configured within-hour trigger point and the last hour
// a cycle fired in.
type Scheduler struct {
	minute int
	second int

	lastFiredHour time.Time
	fired         bool
}

// New creates a scheduler that triggers at the given minute and second of each
// hour.
func New(minute, second int) *Scheduler {
	return &Scheduler{minute: minute, second: second}
}

// NextUpdate returns the next trigger instant at or after now, and how long
// until it.
func (s *Scheduler) NextUpdate(now time.Time) (time.Time, time.Duration) {
	target := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), s.minute, s.second, 0, now.Location())
	if !now.Before(target) {
		target = target.Add(time.Hour)
	}
	return target, target.Sub(now)
}

// ShouldFire reports whether a cycle is due at now: the trigger point of the
// current hour has been reached and no cycle has fired this hour yet. Callers
// confirm the run with MarkFired.
func (s *Scheduler) ShouldFire(now time.Time) bool {
	if s.fired && now.Truncate(time.Hour).Equal(s.lastFiredHour) {
		return false
	}
	if now.Minute() < s.minute {
		return false
	}
	if now.Minute() == s.minute && now.Second() < s.second {
		return false
	}
	return true
}

// MarkFired records that a cycle ran during now's hour.
func (s *Scheduler) MarkFired(now time.Time) {
	s.lastFiredHour = now.Truncate(time.Hour)
	s.fired = true
}
