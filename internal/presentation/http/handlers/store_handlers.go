package handlers

import (
	"errors"
	"net/http"

	"github.com/AtRiskMedia/advent-go/internal/application/services"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// StoreHandlers exposes remote store diagnostics and bootstrap
type StoreHandlers struct {
	storeService *services.StoreService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewStoreHandlers creates store handlers with injected dependencies
func NewStoreHandlers(storeService *services.StoreService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StoreHandlers {
	return &StoreHandlers{
		storeService: storeService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// GetStatus handles GET /api/v1/store/status
func (h *StoreHandlers) GetStatus(c *gin.Context) {
	marker := h.perfTracker.StartOperation("store:status")
	defer marker.Complete()

	status := h.storeService.Status(c.Request.Context())
	marker.AddMetadata("reachable", status.Reachable)
	c.JSON(http.StatusOK, status)
}

// PostBootstrap handles POST /api/v1/store/bootstrap (admin only)
func (h *StoreHandlers) PostBootstrap(c *gin.Context) {
	marker := h.perfTracker.StartOperation("store:bootstrap")
	defer marker.Complete()

	documentID, err := h.storeService.Bootstrap(c.Request.Context())
	if err != nil {
		marker.SetError(err)
		if errors.Is(err, services.ErrStoreAlreadyBootstrapped) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Store().Error("Store bootstrap request failed", "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "bootstrap failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"documentId": documentID})
}
