// Package models defines the core domain entities for the prezmon application:
// observation timestamps, tracked entities, per-entity snapshots, aligned series,
// and the raw presence payload published by the election authority.
//
// Terminology (matching the authority's own naming):
//   - Presence: the hourly cumulative turnout snapshot published per round.
//   - Precinct: a single polling station record; foreign precincts carry the
//     country they are located in as their administrative unit (uat) name.
//   - County: the coarser aggregate the authority publishes for the domestic view.
package models

import "fmt"

// ObservationTimestamp identifies one published hourly snapshot as a (day, hour)
// pair within the election month. Ordering is lexicographic by (day, hour).
type ObservationTimestamp struct {
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

// Before reports whether t is strictly earlier than other.
func (t ObservationTimestamp) Before(other ObservationTimestamp) bool {
	if t.Day != other.Day {
		return t.Day < other.Day
	}
	return t.Hour < other.Hour
}

// After reports whether t is strictly later than other.
func (t ObservationTimestamp) After(other ObservationTimestamp) bool {
	return other.Before(t)
}

// Next returns the timestamp one hour later, rolling over to the next day
// after hour 23.
func (t ObservationTimestamp) Next() ObservationTimestamp {
	if t.Hour == 23 {
		return ObservationTimestamp{Day: t.Day + 1, Hour: 0}
	}
	return ObservationTimestamp{Day: t.Day, Hour: t.Hour + 1}
}

// String formats the timestamp the way the source tables display it, e.g. "[16 09:00]".
func (t ObservationTimestamp) String() string {
	return fmt.Sprintf("[%02d %02d:00]", t.Day, t.Hour)
}
