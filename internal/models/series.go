package models

import "errors"

// SeriesPair holds the two aligned cumulative series for one entity, indexed
// positionally by time-index position: Current is the second round, Prior the
// first round at the same hour fourteen days (the configured offset) earlier.
type SeriesPair struct {
	Current []int64 `json:"current"`
	Prior   []int64 `json:"prior"`
}

// NewSeriesPair allocates a pair of zeroed series of length n.
func NewSeriesPair(n int) *SeriesPair {
	return &SeriesPair{
		Current: make([]int64, n),
		Prior:   make([]int64, n),
	}
}

// Validate checks the two series are aligned.
func (p *SeriesPair) Validate() error {
	if len(p.Current) != len(p.Prior) {
		return errors.New("current and prior series must have equal length")
	}
	return nil
}

// Len returns the number of observation points.
func (p *SeriesPair) Len() int {
	return len(p.Current)
}

// Difference returns the positional round-2 minus round-1 series.
func (p *SeriesPair) Difference() []int64 {
	diff := make([]int64, len(p.Current))
	for i := range p.Current {
		diff[i] = p.Current[i] - p.Prior[i]
	}
	return diff
}
