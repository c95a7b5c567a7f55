package services

import (
	"context"
	"errors"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
)

// ErrStoreAlreadyBootstrapped rejects bootstrap calls when a document is
// already configured and reachable.
var ErrStoreAlreadyBootstrapped = errors.New("remote store already holds a document")

const bootstrapDescription = "Advent Calendar Attempts Tracker"

// StoreService exposes the organizer-facing remote store operations:
// connectivity diagnostics and first-time document bootstrap.
type StoreService struct {
	store   calendar.DocumentStore
	logger  *logging.ChanneledLogger
	timeout time.Duration
}

// NewStoreService creates a new store administration service.
func NewStoreService(store calendar.DocumentStore, timeout time.Duration, logger *logging.ChanneledLogger) *StoreService {
	return &StoreService{
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
}

// Status probes the remote store and returns a structured diagnostic.
func (s *StoreService) Status(ctx context.Context) calendar.StoreStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.VerifyConnectivity(ctx)
}

// Bootstrap creates a fresh attempts document seeded with a README and
// returns its ID for the organizer to put into configuration. Refuses to
// run when the configured document is already reachable.
func (s *StoreService) Bootstrap(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.store.Configured() {
		if _, err := s.store.ReadDocument(ctx); err == nil {
			return "", ErrStoreAlreadyBootstrapped
		}
	}

	files := map[string]string{
		"README.md": "# Advent Calendar Attempts Tracker\n\nThis gist stores daily attempt records for the advent calendar backend.\nEach `attempts_YYYY-MM-DD.json` file holds a JSON array of attempt records for that date.\n",
	}

	documentID, err := s.store.CreateDocument(ctx, bootstrapDescription, files)
	if err != nil {
		s.logger.Store().Error("Store bootstrap failed", "error", err.Error())
		return "", err
	}
	s.store.AdoptDocument(documentID)

	s.logger.Store().Info("Store bootstrapped, set GIST_ID to persist across restarts", "documentId", documentID)
	return documentID, nil
}
