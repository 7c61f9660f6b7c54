// Package aggregate runs the hourly collection cycle: it walks the time index,
// derives a vote total per tracked entity per hour in both election rounds,
// and aligns the two rounds into series pairs for comparison.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/prezmon/prezmon/internal/extract"
	"github.com/prezmon/prezmon/internal/logger"
	"github.com/prezmon/prezmon/internal/models"
	"github.com/prezmon/prezmon/internal/roaep"
)

// ErrCycleInProgress is returned by Run when a cycle is already executing.
var ErrCycleInProgress = errors.New("aggregation cycle already in progress")

// Aggregator drives collection cycles and retains the latest per-entity
// snapshot for readers between cycles.
type Aggregator struct {
	extractor  *extract.Extractor
	client     *roaep.Client
	round1Tag  string
	round2Tag  string
	dayOffset  int
	homeRegion string

	mu      sync.Mutex
	running bool
	latest  map[string]models.EntitySnapshot
}

// New creates an aggregator. dayOffset is the number of days between the two
// rounds; a current-round timestamp maps to the prior round by subtracting it.
func New(extractor *extract.Extractor, client *roaep.Client, round1Tag, round2Tag string, dayOffset int, homeRegion string) *Aggregator {
	return &Aggregator{
		extractor:  extractor,
		client:     client,
		round1Tag:  round1Tag,
		round2Tag:  round2Tag,
		dayOffset:  dayOffset,
		homeRegion: homeRegion,
		latest:     make(map[string]models.EntitySnapshot),
	}
}

// Run executes one collection cycle over index for the given entities and
// returns the aligned series keyed by entity key. Only one cycle runs at a
// time; a second caller gets ErrCycleInProgress instead of blocking.
func (a *Aggregator) Run(ctx context.Context, index []models.ObservationTimestamp, entities []models.Entity) (map[string]*models.SeriesPair, error) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return nil, ErrCycleInProgress
	}
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	cycleID := uuid.New().String()[:8]
	logger.Info("Cycle %s: %d timestamps, %d entities", cycleID, len(index), len(entities))

	// Snapshots within one cycle must agree with each other, so the
	// request-scope cache resets at the boundary, not mid-cycle.
	a.extractor.ResetRequestCache()

	results := make(map[string]*models.SeriesPair, len(entities))
	for _, entity := range entities {
		if err := entity.Validate(); err != nil {
			return nil, fmt.Errorf("invalid entity: %w", err)
		}

		pair := models.NewSeriesPair(len(index))
		for i, ts := range index {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			prior := models.ObservationTimestamp{Day: ts.Day - a.dayOffset, Hour: ts.Hour}
			pair.Current[i] = a.entityVotes(ctx, entity, a.round2Tag, ts)
			pair.Prior[i] = a.entityVotes(ctx, entity, a.round1Tag, prior)
		}
		results[entity.Key()] = pair
		a.recordSnapshot(entity, pair)
	}

	logger.Info("Cycle %s: done", cycleID)
	return results, nil
}

func (a *Aggregator) entityVotes(ctx context.Context, entity models.Entity, roundTag string, ts models.ObservationTimestamp) int64 {
	switch entity.Kind {
	case models.EntityRegion:
		url := a.client.PresenceURL(roundTag, roaep.VariantForeign, ts)
		v, _ := a.extractor.RegionVotes(ctx, url, entity.Name)
		return v
	case models.EntityDomestic:
		totalURL := a.client.PresenceURL(roundTag, roaep.VariantAll, ts)
		foreignURL := a.client.PresenceURL(roundTag, roaep.VariantForeign, ts)
		v, _ := a.extractor.DomesticTotal(ctx, totalURL, foreignURL, true)
		return v
	default:
		url := a.client.PresenceURL(roundTag, roaep.VariantAll, ts)
		v, _ := a.extractor.GrandTotal(ctx, url, true)
		return v
	}
}

func (a *Aggregator) recordSnapshot(entity models.Entity, pair *models.SeriesPair) {
	n := pair.Len()
	if n == 0 {
		return
	}

	snap := models.EntitySnapshot{
		Round1Votes: pair.Prior[n-1],
		Round2Votes: pair.Current[n-1],
	}
	// The opening hour's increase is the value itself: everything counted so
	// far arrived "this hour" as far as the window is concerned.
	if n == 1 {
		snap.HourlyIncrease = pair.Current[0]
	} else {
		snap.HourlyIncrease = pair.Current[n-1] - pair.Current[n-2]
	}

	a.mu.Lock()
	a.latest[entity.Key()] = snap
	a.mu.Unlock()
}

// Snapshot returns the latest snapshot recorded for the entity key.
func (a *Aggregator) Snapshot(key string) (models.EntitySnapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap, ok := a.latest[key]
	return snap, ok
}

// Snapshots returns a copy of all latest snapshots keyed by entity key.
func (a *Aggregator) Snapshots() map[string]models.EntitySnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]models.EntitySnapshot, len(a.latest))
	for k, v := range a.latest {
		out[k] = v
	}
	return out
}

// LiveTotal fetches the current-round live total, bypassing every cache tier.
func (a *Aggregator) LiveTotal(ctx context.Context) (int64, error) {
	url := a.client.LiveURL(a.round2Tag, roaep.VariantAll)
	data, err := a.client.FetchPresence(ctx, url)
	if err != nil {
		return 0, err
	}
	return extract.SumCountyVotes(data), nil
}

// DiscoverRegions fetches the live foreign snapshot and returns the distinct
// region names found in it, home region excluded, ordered by vote count
// descending so the busiest regions come first.
func (a *Aggregator) DiscoverRegions(ctx context.Context) ([]string, error) {
	url := a.client.LiveURL(a.round2Tag, roaep.VariantForeign)
	data, err := a.client.FetchPresence(ctx, url)
	if err != nil {
		return nil, err
	}

	votes := make(map[string]int64)
	for _, p := range data.Precinct {
		name := p.UAT.Name
		if name == "" || name == a.homeRegion {
			continue
		}
		votes[name] += p.TotalVotes
	}

	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if votes[names[i]] != votes[names[j]] {
			return votes[names[i]] > votes[names[j]]
		}
		return names[i] < names[j]
	})
	return names, nil
}
