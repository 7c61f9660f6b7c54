// Package extract pulls scalar vote totals for one entity out of raw presence
// payloads, caching each derived value in the durable store under a key built
// from the fetch purpose, the entity, and the URL.
//
// Extraction never fails upward: a fetch error or an unexpected payload shape
// degrades to a zero value with a logged error, and the aggregation cycle
// continues. Degraded zeros are not written to the durable cache, so the next
// cycle retries them.
package extract

import (
	"context"
	"fmt"

	"github.com/prezmon/prezmon/internal/cache"
	"github.com/prezmon/prezmon/internal/logger"
	"github.com/prezmon/prezmon/internal/models"
)

// SumPrecinctVotes sums precinct-level votes for records whose administrative
// unit name exactly equals region. Returns 0 when nothing matches.
func SumPrecinctVotes(data *models.PresenceData, region string) int64 {
	var total int64
	for _, p := range data.Precinct {
		if p.UAT.Name == region {
			total += p.TotalVotes
		}
	}
	return total
}

// SumAllPrecinctVotes sums precinct-level votes across every record.
func SumAllPrecinctVotes(data *models.PresenceData) int64 {
	var total int64
	for _, p := range data.Precinct {
		total += p.TotalVotes
	}
	return total
}

// SumCountyVotes sums the county-level aggregates. The source publishes this
// coarser view for the all-counties total; summing every precinct instead would
// be both slower and off-contract.
func SumCountyVotes(data *models.PresenceData) int64 {
	var total int64
	for _, c := range data.County {
		total += c.TotalVotes
	}
	return total
}

// ForeignVotes extracts the abroad total from a foreign-variant payload. The
// source has served at least two shapes for this query, so preference order is
// precinct detail, then the flat published total, then county detail.
func ForeignVotes(data *models.PresenceData) int64 {
	if data.Precinct != nil {
		return SumAllPrecinctVotes(data)
	}
	if data.TotalV != 0 {
		return data.TotalV
	}
	return SumCountyVotes(data)
}

// Extractor derives per-entity vote totals through the two cache tiers.
type Extractor struct {
	fetcher *cache.Fetcher
	store   *cache.Store
}

// New creates an extractor reading through fetcher and caching derived values
// in store.
func New(fetcher *cache.Fetcher, store *cache.Store) *Extractor {
	return &Extractor{fetcher: fetcher, store: store}
}

// ResetRequestCache clears the request-scope tier. Called once per cycle.
func (e *Extractor) ResetRequestCache() {
	e.fetcher.Reset()
}

// RegionVotes returns the vote total for one named region at the snapshot URL.
// The boolean reports whether the value came from the durable cache.
func (e *Extractor) RegionVotes(ctx context.Context, url, region string) (int64, bool) {
	key := fmt.Sprintf("%s_%s", region, url)
	v, cached, err := e.store.GetOrCompute(key, func() (int64, error) {
		data, err := e.fetcher.FetchRaw(ctx, url)
		if err != nil {
			return 0, err
		}
		return SumPrecinctVotes(data, region), nil
	})
	if err != nil {
		logger.Error("Region extraction failed: region=%s url=%s: %v", region, url, err)
		return 0, false
	}
	return v, cached
}

// GrandTotal returns the all-counties total at the snapshot URL. With useCache
// false the durable tier is bypassed in both directions and the fetch goes
// straight to the source — the live/now path.
func (e *Extractor) GrandTotal(ctx context.Context, url string, useCache bool) (int64, bool) {
	v, cached, err := e.grandTotal(ctx, url, useCache)
	if err != nil {
		logger.Error("Total extraction failed: url=%s: %v", url, err)
		return 0, false
	}
	return v, cached
}

// ForeignTotal returns the abroad total at the snapshot URL, applying the
// shape fallback order documented on ForeignVotes.
func (e *Extractor) ForeignTotal(ctx context.Context, url string, useCache bool) (int64, bool) {
	v, cached, err := e.foreignTotal(ctx, url, useCache)
	if err != nil {
		logger.Error("Foreign extraction failed: url=%s: %v", url, err)
		return 0, false
	}
	return v, cached
}

// DomesticTotal returns the home-country total: all-counties total minus the
// abroad total, floored at zero. The floor guards against the two source calls
// landing on different underlying data generations. Each sub-fetch caches under
// its own key; the derived value caches under a combined key, and only when
// both sub-fetches succeeded.
func (e *Extractor) DomesticTotal(ctx context.Context, totalURL, foreignURL string, useCache bool) (int64, bool) {
	key := fmt.Sprintf("domestic_%s_%s", totalURL, foreignURL)
	if useCache {
		if v, ok := e.store.Get(key); ok {
			return v, true
		}
	}

	total, totalCached, err := e.grandTotal(ctx, totalURL, useCache)
	if err != nil {
		logger.Error("Domestic extraction failed: url=%s: %v", totalURL, err)
		return 0, false
	}
	foreign, foreignCached, err := e.foreignTotal(ctx, foreignURL, useCache)
	if err != nil {
		logger.Error("Domestic extraction failed: url=%s: %v", foreignURL, err)
		return 0, false
	}

	domestic := total - foreign
	if domestic < 0 {
		domestic = 0
	}

	if useCache {
		e.store.Put(key, domestic)
	}
	return domestic, totalCached && foreignCached
}

func (e *Extractor) grandTotal(ctx context.Context, url string, useCache bool) (int64, bool, error) {
	if !useCache {
		data, err := e.fetcher.FetchFresh(ctx, url)
		if err != nil {
			return 0, false, err
		}
		return SumCountyVotes(data), false, nil
	}

	return e.store.GetOrCompute("total_"+url, func() (int64, error) {
		data, err := e.fetcher.FetchRaw(ctx, url)
		if err != nil {
			return 0, err
		}
		return SumCountyVotes(data), nil
	})
}

func (e *Extractor) foreignTotal(ctx context.Context, url string, useCache bool) (int64, bool, error) {
	if !useCache {
		data, err := e.fetcher.FetchFresh(ctx, url)
		if err != nil {
			return 0, false, err
		}
		return ForeignVotes(data), false, nil
	}

	return e.store.GetOrCompute("foreign_"+url, func() (int64, error) {
		data, err := e.fetcher.FetchRaw(ctx, url)
		if err != nil {
			return 0, err
		}
		return ForeignVotes(data), nil
	})
}
