package container

import (
	"log/slog"
	"testing"

	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/advent-go/pkg/config"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.Level(12),
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return logger
}

// A configured password hash with no JWT_SECRET still yields working admin
// auth, backed by an ephemeral secret minted at wiring time.
func TestContainerEphemeralJWTSecret(t *testing.T) {
	origSecret, origHash := config.JWTSecret, config.AdminPasswordHash
	t.Cleanup(func() {
		config.JWTSecret = origSecret
		config.AdminPasswordHash = origHash
	})

	config.JWTSecret = ""
	config.AdminPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	c := NewContainer(nil, newTestLogger(t), performance.NewTracker(nil))
	if !c.AuthService.Configured() {
		t.Error("auth service not configured despite password hash being set")
	}
}

func TestContainerAuthDisabledWithoutPasswordHash(t *testing.T) {
	origSecret, origHash := config.JWTSecret, config.AdminPasswordHash
	t.Cleanup(func() {
		config.JWTSecret = origSecret
		config.AdminPasswordHash = origHash
	})

	config.JWTSecret = ""
	config.AdminPasswordHash = ""

	c := NewContainer(nil, newTestLogger(t), performance.NewTracker(nil))
	if c.AuthService.Configured() {
		t.Error("auth service configured with neither secret nor password hash")
	}
}
