// Package stores provides concrete cache store implementations
package stores

import (
	"fmt"
	"sync"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
)

// AttemptsStore implements in-memory caching of attempt state, keyed by
// calendar date. It mirrors what the remote store held the last time it
// answered, so the ledger can fall back to it when the remote is unreachable.
type AttemptsStore struct {
	dateCaches map[string]*dateCache
	mu         sync.RWMutex
	logger     *logging.ChanneledLogger
}

type dateCache struct {
	flags      map[string]bool // "identity|day" -> attempted
	records    []calendar.AttemptRecord
	lastLoaded time.Time
}

// NewAttemptsStore creates a new attempts cache store
func NewAttemptsStore(logger *logging.ChanneledLogger) *AttemptsStore {
	if logger != nil {
		logger.Cache().Info("Initializing attempts cache store")
	}
	return &AttemptsStore{
		dateCaches: make(map[string]*dateCache),
		logger:     logger,
	}
}

func attemptKey(identity string, day int) string {
	return fmt.Sprintf("%s|%d", identity, day)
}

// initializeDate creates cache structures for a calendar date
func (as *AttemptsStore) initializeDate(date string) *dateCache {
	if as.dateCaches[date] == nil {
		as.dateCaches[date] = &dateCache{
			flags:      make(map[string]bool),
			lastLoaded: time.Now().UTC(),
		}
	}
	return as.dateCaches[date]
}

// HasAttempt checks the cached attempt flag for the given triple. The second
// return value reports whether the cache holds any state for that date at
// all; callers must not treat an uncached date as "no attempt".
func (as *AttemptsStore) HasAttempt(date, identity string, day int) (bool, bool) {
	start := time.Now()
	as.mu.RLock()
	defer as.mu.RUnlock()

	cache, exists := as.dateCaches[date]
	if !exists {
		if as.logger != nil {
			as.logger.Cache().Debug("Cache operation", "operation", "has_attempt", "date", date, "identity", identity, "day", day, "hit", false, "reason", "date_not_cached", "duration", time.Since(start))
		}
		return false, false
	}

	attempted := cache.flags[attemptKey(identity, day)]
	if as.logger != nil {
		as.logger.Cache().Debug("Cache operation", "operation", "has_attempt", "date", date, "identity", identity, "day", day, "hit", true, "attempted", attempted, "duration", time.Since(start))
	}
	return attempted, true
}

// SetAttempt records a single attempt in the date's cache. Called only after
// the corresponding remote write succeeded.
func (as *AttemptsStore) SetAttempt(record calendar.AttemptRecord) {
	start := time.Now()
	as.mu.Lock()
	defer as.mu.Unlock()

	cache := as.initializeDate(record.Date)
	key := attemptKey(record.Identity, record.Day)
	if !cache.flags[key] {
		cache.flags[key] = true
		cache.records = append(cache.records, record)
	}
	cache.lastLoaded = time.Now().UTC()

	if as.logger != nil {
		as.logger.Cache().Debug("Cache operation", "operation", "set_attempt", "date", record.Date, "identity", record.Identity, "day", record.Day, "duration", time.Since(start))
	}
}

// LoadAttempts bulk loads a date's attempt list, replacing any cached state
// for that date. Called after every successful remote read.
func (as *AttemptsStore) LoadAttempts(date string, records []calendar.AttemptRecord) {
	start := time.Now()
	as.mu.Lock()
	defer as.mu.Unlock()

	cache := &dateCache{
		flags:      make(map[string]bool, len(records)),
		records:    make([]calendar.AttemptRecord, len(records)),
		lastLoaded: time.Now().UTC(),
	}
	copy(cache.records, records)
	for _, record := range records {
		cache.flags[attemptKey(record.Identity, record.Day)] = true
	}
	as.dateCaches[date] = cache

	if as.logger != nil {
		as.logger.Cache().Debug("Cache operation", "operation", "load_attempts", "date", date, "count", len(records), "duration", time.Since(start))
	}
}

// GetAttempts returns the cached attempt list for a date and whether the
// date is cached at all.
func (as *AttemptsStore) GetAttempts(date string) ([]calendar.AttemptRecord, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	cache, exists := as.dateCaches[date]
	if !exists {
		return nil, false
	}

	records := make([]calendar.AttemptRecord, len(cache.records))
	copy(records, cache.records)
	return records, true
}

// PurgeExcept drops cached state for every date except the given one.
// Past dates never get queried again once the calendar day rolls over.
func (as *AttemptsStore) PurgeExcept(date string) {
	start := time.Now()
	as.mu.Lock()
	defer as.mu.Unlock()

	purged := 0
	for cached := range as.dateCaches {
		if cached != date {
			delete(as.dateCaches, cached)
			purged++
		}
	}

	if purged > 0 && as.logger != nil {
		as.logger.Cache().Info("Purged stale date caches", "kept", date, "purged", purged, "duration", time.Since(start))
	}
}
