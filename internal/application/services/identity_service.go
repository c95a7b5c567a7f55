// Package services provides application-level services that orchestrate
// business logic and coordinate between infrastructure and domain entities.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/infrastructure/ipinfo"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/security"
)

// IdentitySource names where an identity came from.
type IdentitySource string

const (
	SourcePrimaryIP   IdentitySource = "ip"
	SourceFingerprint IdentitySource = "fingerprint"
)

// Identity is a resolved caller identity with its provenance.
type Identity struct {
	Value     string         `json:"identity"`
	Source    IdentitySource `json:"source"`
	SessionID string         `json:"sessionId"`
}

// IdentityService resolves the caller's identity for attempt keying.
// Resolution is cached per fingerprint seed so repeated opens within one
// session do not re-hit the echo endpoints.
type IdentityService struct {
	resolver *ipinfo.Resolver
	logger   *logging.ChanneledLogger
	timeout  time.Duration

	mu     sync.Mutex
	cached map[string]Identity
}

// NewIdentityService creates a new identity application service.
func NewIdentityService(resolver *ipinfo.Resolver, timeout time.Duration, logger *logging.ChanneledLogger) *IdentityService {
	return &IdentityService{
		resolver: resolver,
		logger:   logger,
		timeout:  timeout,
		cached:   make(map[string]Identity),
	}
}

// Resolve returns the caller's identity. Public IP when an echo endpoint
// answers, otherwise a deterministic hash of the fingerprint seed. Never
// fails: the fingerprint fallback always produces an identity.
func (s *IdentityService) Resolve(ctx context.Context, fingerprintSeed string) Identity {
	s.mu.Lock()
	if identity, ok := s.cached[fingerprintSeed]; ok {
		s.mu.Unlock()
		s.logger.Identity().Debug("Identity resolved from cache", "source", identity.Source)
		return identity
	}
	s.mu.Unlock()

	identity := s.resolve(ctx, fingerprintSeed)

	s.mu.Lock()
	s.cached[fingerprintSeed] = identity
	s.mu.Unlock()

	return identity
}

func (s *IdentityService) resolve(ctx context.Context, fingerprintSeed string) Identity {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sessionID := security.GenerateULID()

	ip, err := s.resolver.PublicIP(ctx)
	if err == nil {
		s.logger.Identity().Info("Identity resolved via public IP", "sessionId", sessionID, "duration", time.Since(start))
		return Identity{Value: ip, Source: SourcePrimaryIP, SessionID: sessionID}
	}

	fallback := ipinfo.FallbackIdentity(fingerprintSeed)
	s.logger.Identity().Warn("Falling back to fingerprint identity", "error", err.Error(), "sessionId", sessionID, "duration", time.Since(start))
	return Identity{Value: fallback, Source: SourceFingerprint, SessionID: sessionID}
}

// Invalidate drops the cached identity for a seed. Used when the caller
// signals a network change.
func (s *IdentityService) Invalidate(fingerprintSeed string) {
	s.mu.Lock()
	delete(s.cached, fingerprintSeed)
	s.mu.Unlock()
}
