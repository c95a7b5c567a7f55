// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AtRiskMedia/advent-go/internal/application/services"
	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/gist"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/ipinfo"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	persistence "github.com/AtRiskMedia/advent-go/internal/infrastructure/persistence/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/advent-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services (stateful singletons)
	IdentityService *services.IdentityService
	LedgerService   *services.LedgerService
	DrawService     *services.DrawService
	CalendarService *services.CalendarService
	StoreService    *services.StoreService
	AuthService     *services.AuthService

	// Infrastructure dependencies
	DB            *database.DB
	DocumentStore calendar.DocumentStore
	AttemptsCache *stores.AttemptsStore
	Broadcaster   *messaging.DrawBroadcaster
	EmailService  email.Service
	Logger        *logging.ChanneledLogger
	PerfTracker   *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(db *database.DB, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	documentStore := gist.NewClient(config.GistAPIBase, config.GistID, config.GistToken, config.RemoteTimeout, logger)
	attemptsCache := stores.NewAttemptsStore(logger)
	broadcaster := messaging.NewDrawBroadcaster(logger)

	stateRepo := persistence.NewSQLStateRepository(db, logger)
	attemptRepo := persistence.NewSQLAttemptRepository(db, logger)

	resolver := ipinfo.NewResolver(config.IPEchoPrimary, config.IPEchoSecondary, config.IPEchoTimeout, logger)
	identityService := services.NewIdentityService(resolver, config.IPEchoTimeout, logger)
	ledgerService := services.NewLedgerService(documentStore, attemptsCache, attemptRepo, config.RemoteTimeout, logger)
	drawService := services.NewDrawService(calendar.DefaultTiers(), config.WinProbFinal, config.WinProbDefault, config.CalendarDays, logger)

	// Organizer notifications are optional; the calendar works without them.
	emailService, err := email.NewService()
	if err != nil {
		logger.System().Info("Organizer email notifications disabled", "reason", err.Error())
		emailService = nil
	}

	// A password hash without a JWT secret gets an ephemeral secret so the
	// admin login still works. Tokens minted with it die with the process.
	jwtSecret := config.JWTSecret
	if jwtSecret == "" && config.AdminPasswordHash != "" {
		generated, err := security.GenerateSecureKey(64)
		if err != nil {
			logger.System().Error("Failed to generate ephemeral JWT secret, admin auth disabled", "error", err.Error())
		} else {
			jwtSecret = generated
			logger.System().Warn("JWT_SECRET not set, using an ephemeral secret; admin tokens will not survive a restart")
		}
	}

	calendarService := services.NewCalendarService(
		identityService,
		ledgerService,
		drawService,
		stateRepo,
		broadcaster,
		emailService,
		config.CalendarDays,
		config.UnlockAllDays,
		logger,
	)

	return &Container{
		IdentityService: identityService,
		LedgerService:   ledgerService,
		DrawService:     drawService,
		CalendarService: calendarService,
		StoreService:    services.NewStoreService(documentStore, config.RemoteTimeout, logger),
		AuthService:     services.NewAuthService(jwtSecret, config.AdminPasswordHash, config.AdminTokenTTL, logger),

		DB:            db,
		DocumentStore: documentStore,
		AttemptsCache: attemptsCache,
		Broadcaster:   broadcaster,
		EmailService:  emailService,
		Logger:        logger,
		PerfTracker:   perfTracker,
	}
}
