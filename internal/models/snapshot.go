package models

import "errors"

// EntitySnapshot holds the most recently computed values for one entity. It is
// overwritten in place once per aggregation cycle, always from the last element
// of the current time index.
type EntitySnapshot struct {
	Round1Votes    int64 `json:"round1_votes"`
	Round2Votes    int64 `json:"round2_votes"`
	HourlyIncrease int64 `json:"hourly_increase"`
}

// Validate checks that the snapshot fields are valid.
func (s *EntitySnapshot) Validate() error {
	if s.Round1Votes < 0 {
		return errors.New("round 1 votes must not be negative")
	}
	if s.Round2Votes < 0 {
		return errors.New("round 2 votes must not be negative")
	}
	return nil
}

// Difference returns round-2 minus round-1 votes.
func (s *EntitySnapshot) Difference() int64 {
	return s.Round2Votes - s.Round1Votes
}

// DeltaPercent returns the round-over-round percentage change, or 0 when no
// round-1 baseline exists.
func (s *EntitySnapshot) DeltaPercent() float64 {
	if s.Round1Votes <= 0 {
		return 0
	}
	return float64(s.Round2Votes-s.Round1Votes) / float64(s.Round1Votes) * 100
}
