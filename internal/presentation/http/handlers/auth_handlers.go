package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AtRiskMedia/advent-go/internal/application/services"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// AuthHandlers handles organizer authentication
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLogin handles POST /api/v1/auth/login
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	marker := h.perfTracker.StartOperation("auth:login")
	defer marker.Complete()

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		marker.SetError(err)
		switch {
		case errors.Is(err, services.ErrAuthNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin auth not configured"})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			h.logger.System().Error("Admin login failed", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// AdminAuthMiddleware guards the organizer endpoints with a bearer token.
func (h *AuthHandlers) AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		if err := h.authService.ValidateToken(token); err != nil {
			h.logger.System().Warn("Admin token rejected", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// bearerToken extracts a bearer token from the Authorization header, falling
// back to the token query parameter for websocket clients that cannot set
// headers.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Query("token")
}
