package cache

import (
	"context"
	"sync"

	"github.com/prezmon/prezmon/internal/models"
)

// Source is the remote fetch boundary the request-scope cache fronts.
type Source interface {
	FetchPresence(ctx context.Context, url string) (*models.PresenceData, error)
}

// Fetcher deduplicates fetches for the duration of one aggregation cycle.
// It never touches the durable tier; caching derived values there is the
// caller's responsibility per derived value.
type Fetcher struct {
	source Source

	mu    sync.Mutex
	scope map[string]*models.PresenceData
}

// NewFetcher creates a request-scope cache in front of source.
func NewFetcher(source Source) *Fetcher {
	return &Fetcher{
		source: source,
		scope:  make(map[string]*models.PresenceData),
	}
}

// FetchRaw returns the payload for url, fetching from the source only on the
// first request for a given URL within the current cycle. Failed fetches are
// not cached.
func (f *Fetcher) FetchRaw(ctx context.Context, url string) (*models.PresenceData, error) {
	f.mu.Lock()
	if data, ok := f.scope[url]; ok {
		f.mu.Unlock()
		return data, nil
	}
	f.mu.Unlock()

	data, err := f.source.FetchPresence(ctx, url)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.scope[url] = data
	f.mu.Unlock()
	return data, nil
}

// FetchFresh bypasses the request-scope cache entirely, neither reading nor
// writing it. Used for live/now queries that must reflect the freshest state.
func (f *Fetcher) FetchFresh(ctx context.Context, url string) (*models.PresenceData, error) {
	return f.source.FetchPresence(ctx, url)
}

// Reset clears the request-scope cache. Called at the start of every
// aggregation cycle.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scope = make(map[string]*models.PresenceData)
}
