// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AtRiskMedia/advent-go/internal/application/container"
	"github.com/AtRiskMedia/advent-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/advent-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	calendarHandlers := handlers.NewCalendarHandlers(container.CalendarService, container.Logger, container.PerfTracker)
	identityHandlers := handlers.NewIdentityHandlers(container.IdentityService, container.Logger, container.PerfTracker)
	storeHandlers := handlers.NewStoreHandlers(container.StoreService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	eventsHandlers := handlers.NewEventsHandlers(container.Broadcaster, container.Logger)
	systemHandlers := handlers.NewSystemHandlers(container.DB, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")
	{
		// Player-facing calendar routes
		calendarGroup := api.Group("/calendar")
		{
			calendarGroup.GET("/state", calendarHandlers.GetState)
			calendarGroup.GET("/days/:day", calendarHandlers.GetDay)
			calendarGroup.POST("/days/:day/open", calendarHandlers.PostOpenDay)
		}

		// Code verification is public: anyone holding a code may check it
		api.POST("/codes/verify", calendarHandlers.PostVerifyCode)

		// Identity diagnostics
		api.POST("/identity", identityHandlers.PostResolve)

		// Remote store diagnostics
		api.GET("/store/status", storeHandlers.GetStatus)

		// System health
		api.GET("/health", systemHandlers.GetHealth)

		// Organizer authentication
		api.POST("/auth/login", authHandlers.PostLogin)

		// Organizer endpoints
		admin := api.Group("")
		admin.Use(authHandlers.AdminAuthMiddleware())
		{
			admin.GET("/codes", calendarHandlers.GetCodes)
			admin.POST("/store/bootstrap", storeHandlers.PostBootstrap)
			admin.GET("/events", eventsHandlers.GetEvents)
			admin.GET("/admin/perf", systemHandlers.GetPerfStats)
			admin.GET("/admin/logs/levels", systemHandlers.GetLogLevels)
			admin.POST("/admin/logs/levels", systemHandlers.PostLogLevel)
		}
	}

	return r
}
