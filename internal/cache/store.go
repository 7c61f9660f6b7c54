// Package cache implements the two cache tiers fronting the remote source.
//
// Store is the durable tier: a thread-safe map of opaque string keys to vote
// counts, persisted wholesale to a flat JSON file. A key, once written, is
// treated as immutable truth for the remainder of the process — published
// hourly snapshots never change after the fact, so there is no invalidation.
//
// Fetcher is the request-scope tier: an in-memory URL→payload map cleared at
// the start of every aggregation cycle, existing purely to avoid duplicate
// network fetches when multiple derivations share a URL within one cycle.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prezmon/prezmon/internal/logger"
)

// Store provides the durable key→count cache with file-based persistence.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]int64
	filePath string
}

// NewStore creates a durable store persisting to filePath.
func NewStore(filePath string) *Store {
	return &Store{
		entries:  make(map[string]int64),
		filePath: filePath,
	}
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns the cached value for key, if present.
func (s *Store) Get(key string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Put stores value under key.
func (s *Store) Put(key string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// GetOrCompute returns the cached value for key, or invokes compute, stores the
// result, and returns it. The boolean reports whether the value came from the
// cache. A compute error leaves the key unset so a later cycle can retry.
func (s *Store) GetOrCompute(key string, compute func() (int64, error)) (int64, bool, error) {
	if v, ok := s.Get(key); ok {
		return v, true, nil
	}

	v, err := compute()
	if err != nil {
		return 0, false, err
	}

	s.Put(key, v)
	return v, false, nil
}

// Load restores the store from its file. A missing or corrupt file is not an
// error: all cached values are re-fetchable, so the store simply starts empty
// with a logged warning.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clean up any stale temp file from a previous crash
	tempPath := s.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	var entries map[string]int64
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("Cache file %s is corrupt, starting with an empty cache: %v", s.filePath, err)
		s.entries = make(map[string]int64)
		return nil
	}

	if entries == nil {
		entries = make(map[string]int64)
	}
	s.entries = entries
	return nil
}

// Save persists the store to its file as a full overwrite. The write goes
// through a temp file and rename; a lost update on crash is acceptable since
// every entry can be re-fetched.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return nil
}
