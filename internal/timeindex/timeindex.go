// Package timeindex generates the ordered sequence of valid observation
// timestamps for an aggregation cycle. The index is a pure function of the
// wall clock and the configured observation window; it performs no I/O.
package timeindex

import (
	"time"

	"github.com/prezmon/prezmon/internal/models"
)

// Generate walks hour by hour from start and returns every timestamp that is
// strictly before end and not after now's (day, hour). Rolling from hour 23 to
// hour 0 advances the day.
//
// When now's minute is exactly 0 the index is empty: at the top of the hour the
// source's own aggregation for the just-completed hour is not yet guaranteed
// stable, so sampling is refused rather than risk an inconsistent read. Callers
// treat an empty index as "no data this cycle", not as an error.
func Generate(now time.Time, start, end models.ObservationTimestamp) []models.ObservationTimestamp {
	if now.Minute() == 0 {
		return nil
	}

	limit := models.ObservationTimestamp{Day: now.Day(), Hour: now.Hour()}

	var index []models.ObservationTimestamp
	for ts := start; ts.Before(end) && !ts.After(limit); ts = ts.Next() {
		index = append(index, ts)
	}
	return index
}
