package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/persistence/database"
	"github.com/gin-gonic/gin"
)

// SystemHandlers covers health, performance stats, and dynamic log levels
type SystemHandlers struct {
	db          *database.DB
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	started     time.Time
}

// NewSystemHandlers creates system handlers with injected dependencies
func NewSystemHandlers(db *database.DB, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SystemHandlers {
	return &SystemHandlers{
		db:          db,
		logger:      logger,
		perfTracker: perfTracker,
		started:     time.Now(),
	}
}

// GetHealth handles GET /api/v1/health
func (h *SystemHandlers) GetHealth(c *gin.Context) {
	dbOK := h.db.Ping() == nil
	status := http.StatusOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"database": dbOK,
		"uptime":   time.Since(h.started).String(),
	})
}

// GetPerfStats handles GET /api/v1/admin/perf (admin only)
func (h *SystemHandlers) GetPerfStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":  h.perfTracker.GetOverallStats(),
		"alerts": h.perfTracker.GetAlerts(),
	})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels (admin only)
func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.logger.GetChannelLevels()})
}

// PostLogLevel handles POST /api/v1/admin/logs/levels (admin only)
func (h *SystemHandlers) PostLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel and level are required"})
		return
	}

	var level slog.Level
	switch strings.ToLower(req.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level " + req.Level})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": req.Channel, "level": req.Level})
}
