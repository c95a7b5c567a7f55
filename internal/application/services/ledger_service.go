package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/security"
)

// LedgerService enforces one attempt per identity per day. Checks and writes
// go through the remote document store first; the in-memory cache and the
// durable local attempt list serve as fallback tiers when the remote cannot
// answer. Local state is only ever updated after a successful remote write.
type LedgerService struct {
	store       calendar.DocumentStore
	cache       *stores.AttemptsStore
	attemptRepo calendar.AttemptRepository
	logger      *logging.ChanneledLogger
	timeout     time.Duration
}

// NewLedgerService creates a new ledger application service.
func NewLedgerService(store calendar.DocumentStore, cache *stores.AttemptsStore, attemptRepo calendar.AttemptRepository, timeout time.Duration, logger *logging.ChanneledLogger) *LedgerService {
	return &LedgerService{
		store:       store,
		cache:       cache,
		attemptRepo: attemptRepo,
		logger:      logger,
		timeout:     timeout,
	}
}

// HasAttemptedToday reports whether the identity already attempted the given
// day today. Never returns an error: if every tier fails the answer is false,
// erring on the side of letting the user play.
func (s *LedgerService) HasAttemptedToday(ctx context.Context, identity string, day int, now time.Time) bool {
	date := calendar.DateKey(now)

	if s.store.Configured() {
		records, err := s.fetchRemoteAttempts(ctx, date)
		if err == nil {
			s.refreshCache(date, records)
			for _, record := range records {
				if record.Matches(identity, day) {
					return true
				}
			}
			return false
		}
		s.logger.Ledger().Warn("Remote check unavailable, falling back to cache", "error", err.Error(), "identity", identity, "day", day)
	}

	if attempted, cached := s.cache.HasAttempt(date, identity, day); cached {
		return attempted
	}

	attempted, repoErr := s.attemptRepo.HasAttempt(identity, date, day)
	if repoErr != nil {
		s.logger.Ledger().Error("All ledger tiers failed, allowing attempt", "error", repoErr.Error(), "identity", identity, "day", day)
		return false
	}
	return attempted
}

// RecordAttempt durably records an attempt for the identity and day. The
// remote store is written first; cache and durable list are updated only
// after the remote write succeeds. Recording an already-present attempt is
// an idempotent no-op. On failure local state is left untouched and a
// RecordError wrapping the cause is returned.
func (s *LedgerService) RecordAttempt(ctx context.Context, identity string, day int, now time.Time) error {
	date := calendar.DateKey(now)

	if !s.store.Configured() {
		return s.recordLocalOnly(identity, day, date, now)
	}

	records, err := s.fetchRemoteAttempts(ctx, date)
	if err != nil {
		s.logger.Ledger().Error("Attempt record aborted, remote read failed", "error", err.Error(), "identity", identity, "day", day)
		return &calendar.RecordError{Identity: identity, Day: day, Cause: err}
	}

	for _, existing := range records {
		if existing.Matches(identity, day) {
			s.logger.Ledger().Info("Attempt already recorded, no-op", "identity", identity, "day", day)
			s.refreshCache(date, records)
			return nil
		}
	}

	record := calendar.AttemptRecord{
		ID:        security.GenerateULID(),
		Identity:  identity,
		Date:      date,
		Day:       day,
		Timestamp: now.UTC(),
	}
	updated := append(records, record)

	content, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return &calendar.RecordError{Identity: identity, Day: day, Cause: err}
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.WriteFile(writeCtx, calendar.DocumentFilename(date), string(content)); err != nil {
		s.logger.Ledger().Error("Attempt record aborted, remote write failed", "error", err.Error(), "identity", identity, "day", day)
		return &calendar.RecordError{Identity: identity, Day: day, Cause: err}
	}

	s.cache.SetAttempt(record)
	if err := s.attemptRepo.SaveAttempt(record); err != nil {
		// The remote write already succeeded, so the attempt stands. The
		// durable fallback tier is just weaker until the next sync.
		s.logger.Ledger().Warn("Durable attempt save failed after remote success", "error", err.Error(), "identity", identity, "day", day)
	}

	s.logger.Ledger().Info("Attempt recorded", "identity", identity, "day", day, "recordId", record.ID)
	return nil
}

// recordLocalOnly records an attempt without a remote store. The durable
// list is the authoritative ledger here, so its write failure fails the
// record.
func (s *LedgerService) recordLocalOnly(identity string, day int, date string, now time.Time) error {
	if attempted, cached := s.cache.HasAttempt(date, identity, day); cached && attempted {
		s.logger.Ledger().Info("Attempt already recorded locally, no-op", "identity", identity, "day", day)
		return nil
	}
	if attempted, err := s.attemptRepo.HasAttempt(identity, date, day); err == nil && attempted {
		s.logger.Ledger().Info("Attempt already recorded locally, no-op", "identity", identity, "day", day)
		return nil
	}

	record := calendar.AttemptRecord{
		ID:        security.GenerateULID(),
		Identity:  identity,
		Date:      date,
		Day:       day,
		Timestamp: now.UTC(),
	}
	if err := s.attemptRepo.SaveAttempt(record); err != nil {
		s.logger.Ledger().Error("Local attempt record failed", "error", err.Error(), "identity", identity, "day", day)
		return &calendar.RecordError{Identity: identity, Day: day, Cause: err}
	}
	s.cache.SetAttempt(record)

	s.logger.Ledger().Info("Attempt recorded locally, no remote store configured", "identity", identity, "day", day, "recordId", record.ID)
	return nil
}

// ListToday returns today's attempt list from the best available tier.
func (s *LedgerService) ListToday(ctx context.Context, now time.Time) ([]calendar.AttemptRecord, error) {
	date := calendar.DateKey(now)

	if s.store.Configured() {
		records, err := s.fetchRemoteAttempts(ctx, date)
		if err == nil {
			s.refreshCache(date, records)
			return records, nil
		}
	}

	if cached, ok := s.cache.GetAttempts(date); ok {
		return cached, nil
	}

	return s.attemptRepo.ListAttempts(date)
}

// refreshCache replaces the date's cached state with a fresh remote read and
// drops caches for rolled-over dates, which never get queried again.
func (s *LedgerService) refreshCache(date string, records []calendar.AttemptRecord) {
	s.cache.LoadAttempts(date, records)
	s.cache.PurgeExcept(date)
}

// fetchRemoteAttempts reads today's attempt file from the remote store. A
// missing file inside an existing document means no attempts yet today.
func (s *LedgerService) fetchRemoteAttempts(ctx context.Context, date string) ([]calendar.AttemptRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc, err := s.store.ReadDocument(ctx)
	if err != nil {
		return nil, err
	}

	content, ok := doc.Files[calendar.DocumentFilename(date)]
	if !ok || content == "" {
		return []calendar.AttemptRecord{}, nil
	}

	var records []calendar.AttemptRecord
	if err := json.Unmarshal([]byte(content), &records); err != nil {
		return nil, fmt.Errorf("malformed attempt file for %s: %w", date, err)
	}
	return records, nil
}

// IsRemoteUnavailable reports whether an error from RecordAttempt stems from
// the remote store being unreachable rather than a hard failure.
func IsRemoteUnavailable(err error) bool {
	return errors.Is(err, calendar.ErrRemoteTimeout) || errors.Is(err, calendar.ErrRemoteTransport)
}
