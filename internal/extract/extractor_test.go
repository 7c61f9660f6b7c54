package extract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prezmon/prezmon/internal/cache"
	"github.com/prezmon/prezmon/internal/models"
)

type fakeSource struct {
	calls map[string]int
	data  map[string]*models.PresenceData
	err   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: make(map[string]int),
		data:  make(map[string]*models.PresenceData),
	}
}

func (f *fakeSource) FetchPresence(_ context.Context, url string) (*models.PresenceData, error) {
	f.calls[url]++
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.data[url]; ok {
		return d, nil
	}
	return nil, errors.New("no fixture for " + url)
}

func newExtractor(t *testing.T, src *fakeSource) *Extractor {
	t.Helper()
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"))
	return New(cache.NewFetcher(src), store)
}

func TestSumPrecinctVotes(t *testing.T) {
	data := &models.PresenceData{
		Precinct: []models.PrecinctRecord{
			{UAT: models.UATRef{Name: "GERMANIA"}, TotalVotes: 1200},
			{UAT: models.UATRef{Name: "ITALIA"}, TotalVotes: 800},
			{UAT: models.UATRef{Name: "GERMANIA"}, TotalVotes: 300},
		},
	}

	if got := SumPrecinctVotes(data, "GERMANIA"); got != 1500 {
		t.Errorf("Expected 1500, got %d", got)
	}
	if got := SumPrecinctVotes(data, "FRANTA"); got != 0 {
		t.Errorf("Expected 0 for unmatched region, got %d", got)
	}
}

func TestForeignVotes_FallbackOrder(t *testing.T) {
	// Precinct detail wins even when the flat total disagrees
	withPrecinct := &models.PresenceData{
		Precinct: []models.PrecinctRecord{{TotalVotes: 400}, {TotalVotes: 600}},
		TotalV:   9999,
	}
	if got := ForeignVotes(withPrecinct); got != 1000 {
		t.Errorf("Expected precinct sum 1000, got %d", got)
	}

	// No precinct array: the flat total applies
	withTotal := &models.PresenceData{TotalV: 2500, County: []models.CountyRecord{{TotalVotes: 1}}}
	if got := ForeignVotes(withTotal); got != 2500 {
		t.Errorf("Expected flat total 2500, got %d", got)
	}

	// Neither: county detail is the last resort
	withCounty := &models.PresenceData{County: []models.CountyRecord{{TotalVotes: 70}, {TotalVotes: 30}}}
	if got := ForeignVotes(withCounty); got != 100 {
		t.Errorf("Expected county sum 100, got %d", got)
	}

	// An empty (non-nil) precinct array still means zero, not a fallback
	emptyPrecinct := &models.PresenceData{Precinct: []models.PrecinctRecord{}, TotalV: 42}
	if got := ForeignVotes(emptyPrecinct); got != 0 {
		t.Errorf("Expected 0 for empty precinct array, got %d", got)
	}
}

func TestRegionVotes_CachesPerRegionAndURL(t *testing.T) {
	src := newFakeSource()
	src.data["u1"] = &models.PresenceData{
		Precinct: []models.PrecinctRecord{
			{UAT: models.UATRef{Name: "GERMANIA"}, TotalVotes: 1200},
			{UAT: models.UATRef{Name: "ITALIA"}, TotalVotes: 800},
		},
	}
	e := newExtractor(t, src)
	ctx := context.Background()

	v, cached := e.RegionVotes(ctx, "u1", "GERMANIA")
	if v != 1200 || cached {
		t.Errorf("Expected (1200, false), got (%d, %v)", v, cached)
	}

	// A different region at the same URL is its own key but shares the raw fetch
	v, cached = e.RegionVotes(ctx, "u1", "ITALIA")
	if v != 800 || cached {
		t.Errorf("Expected (800, false), got (%d, %v)", v, cached)
	}
	if src.calls["u1"] != 1 {
		t.Errorf("Expected 1 source call within a cycle, got %d", src.calls["u1"])
	}

	// A new cycle with a cleared request scope must be served by the durable tier
	e.ResetRequestCache()
	v, cached = e.RegionVotes(ctx, "u1", "GERMANIA")
	if v != 1200 || !cached {
		t.Errorf("Expected (1200, true), got (%d, %v)", v, cached)
	}
	if src.calls["u1"] != 1 {
		t.Errorf("Expected durable hit without a source call, got %d", src.calls["u1"])
	}
}

func TestRegionVotes_FailureDegradesAndRetries(t *testing.T) {
	src := newFakeSource()
	e := newExtractor(t, src)
	ctx := context.Background()

	v, cached := e.RegionVotes(ctx, "u1", "GERMANIA")
	if v != 0 || cached {
		t.Errorf("Expected degraded (0, false), got (%d, %v)", v, cached)
	}

	// Next cycle the value becomes available and must be computed, not poisoned
	src.data["u1"] = &models.PresenceData{
		Precinct: []models.PrecinctRecord{{UAT: models.UATRef{Name: "GERMANIA"}, TotalVotes: 50}},
	}
	e.ResetRequestCache()
	v, _ = e.RegionVotes(ctx, "u1", "GERMANIA")
	if v != 50 {
		t.Errorf("Expected 50 after recovery, got %d", v)
	}
}

func TestGrandTotal_FreshBypassesCache(t *testing.T) {
	src := newFakeSource()
	src.data["u1"] = &models.PresenceData{County: []models.CountyRecord{{TotalVotes: 900}, {TotalVotes: 100}}}
	e := newExtractor(t, src)
	ctx := context.Background()

	v, cached := e.GrandTotal(ctx, "u1", true)
	if v != 1000 || cached {
		t.Errorf("Expected (1000, false), got (%d, %v)", v, cached)
	}

	// Live reads skip both tiers
	src.data["u1"] = &models.PresenceData{County: []models.CountyRecord{{TotalVotes: 1500}}}
	v, cached = e.GrandTotal(ctx, "u1", false)
	if v != 1500 || cached {
		t.Errorf("Expected fresh (1500, false), got (%d, %v)", v, cached)
	}
	if src.calls["u1"] != 2 {
		t.Errorf("Expected 2 source calls, got %d", src.calls["u1"])
	}
}

func TestDomesticTotal(t *testing.T) {
	src := newFakeSource()
	src.data["total"] = &models.PresenceData{County: []models.CountyRecord{{TotalVotes: 950000}}}
	src.data["foreign"] = &models.PresenceData{
		Precinct: []models.PrecinctRecord{{TotalVotes: 40000}, {TotalVotes: 10000}},
	}
	e := newExtractor(t, src)
	ctx := context.Background()

	v, cached := e.DomesticTotal(ctx, "total", "foreign", true)
	if v != 900000 || cached {
		t.Errorf("Expected (900000, false), got (%d, %v)", v, cached)
	}

	// The combined key short-circuits both sub-fetches on the next cycle
	e.ResetRequestCache()
	v, cached = e.DomesticTotal(ctx, "total", "foreign", true)
	if v != 900000 || !cached {
		t.Errorf("Expected (900000, true), got (%d, %v)", v, cached)
	}
	if src.calls["total"] != 1 || src.calls["foreign"] != 1 {
		t.Errorf("Expected 1 call each, got total=%d foreign=%d", src.calls["total"], src.calls["foreign"])
	}
}

func TestDomesticTotal_FlooredAtZero(t *testing.T) {
	src := newFakeSource()
	src.data["total"] = &models.PresenceData{County: []models.CountyRecord{{TotalVotes: 100}}}
	src.data["foreign"] = &models.PresenceData{TotalV: 500}
	e := newExtractor(t, src)

	v, _ := e.DomesticTotal(context.Background(), "total", "foreign", true)
	if v != 0 {
		t.Errorf("Expected floor at 0, got %d", v)
	}
}

func TestDomesticTotal_FailureNotCached(t *testing.T) {
	src := newFakeSource()
	src.data["total"] = &models.PresenceData{County: []models.CountyRecord{{TotalVotes: 100}}}
	// foreign has no fixture, so the first attempt fails
	e := newExtractor(t, src)
	ctx := context.Background()

	v, cached := e.DomesticTotal(ctx, "total", "foreign", true)
	if v != 0 || cached {
		t.Errorf("Expected degraded (0, false), got (%d, %v)", v, cached)
	}

	src.data["foreign"] = &models.PresenceData{TotalV: 30}
	e.ResetRequestCache()
	v, _ = e.DomesticTotal(ctx, "total", "foreign", true)
	if v != 70 {
		t.Errorf("Expected 70 after recovery, got %d", v)
	}
}
