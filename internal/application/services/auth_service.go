package services

import (
	"errors"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/security"
	"golang.org/x/crypto/bcrypt"
)

// Auth errors matched by the HTTP layer.
var (
	ErrAuthNotConfigured  = errors.New("admin auth not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles organizer authentication: password login against a
// bcrypt hash and JWT issuing/validation for the admin endpoints.
type AuthService struct {
	jwtSecret    string
	passwordHash string
	tokenTTL     time.Duration
	logger       *logging.ChanneledLogger
}

// NewAuthService creates a new auth application service.
func NewAuthService(jwtSecret, passwordHash string, tokenTTL time.Duration, logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{
		jwtSecret:    jwtSecret,
		passwordHash: passwordHash,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// Configured reports whether admin auth can be used at all.
func (s *AuthService) Configured() bool {
	return s.jwtSecret != "" && s.passwordHash != ""
}

// Login validates the organizer password and returns a fresh admin token.
func (s *AuthService) Login(password string) (string, error) {
	if !s.Configured() {
		return "", ErrAuthNotConfigured
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.logger.System().Warn("Admin login rejected")
		return "", ErrInvalidCredentials
	}

	token, err := security.GenerateAdminToken(s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", err
	}

	s.logger.System().Info("Admin login succeeded", "ttl", s.tokenTTL)
	return token, nil
}

// ValidateToken checks an admin token.
func (s *AuthService) ValidateToken(token string) error {
	if !s.Configured() {
		return ErrAuthNotConfigured
	}
	return security.ValidateAdminToken(token, s.jwtSecret)
}
