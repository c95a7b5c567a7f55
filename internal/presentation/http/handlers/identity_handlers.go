package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/advent-go/internal/application/services"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// IdentityHandlers exposes identity resolution diagnostics
type IdentityHandlers struct {
	identityService *services.IdentityService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewIdentityHandlers creates identity handlers with injected dependencies
func NewIdentityHandlers(identityService *services.IdentityService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *IdentityHandlers {
	return &IdentityHandlers{
		identityService: identityService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// IdentityRequest carries the fingerprint seed for fallback hashing.
type IdentityRequest struct {
	Fingerprint string `json:"fingerprint"`
	Refresh     bool   `json:"refresh"`
}

// PostResolve handles POST /api/v1/identity: resolves and returns the
// caller's attempt identity. Refresh drops the cached resolution first,
// for clients signalling a network change.
func (h *IdentityHandlers) PostResolve(c *gin.Context) {
	marker := h.perfTracker.StartOperation("identity:resolve")
	defer marker.Complete()

	var req IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if req.Refresh {
		h.identityService.Invalidate(req.Fingerprint)
	}

	identity := h.identityService.Resolve(c.Request.Context(), req.Fingerprint)
	marker.AddMetadata("source", string(identity.Source))
	c.JSON(http.StatusOK, identity)
}
