// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/application/services"
	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// CalendarHandlers contains the calendar-facing HTTP handlers
type CalendarHandlers struct {
	calendarService *services.CalendarService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewCalendarHandlers creates calendar handlers with injected dependencies
func NewCalendarHandlers(calendarService *services.CalendarService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CalendarHandlers {
	return &CalendarHandlers{
		calendarService: calendarService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// OpenDayRequest carries the client fingerprint hints used for fallback
// identity when the public IP cannot be resolved.
type OpenDayRequest struct {
	Fingerprint string `json:"fingerprint"`
}

// OpenDayResponse is the wire shape of a completed open.
type OpenDayResponse struct {
	Day         int    `json:"day"`
	Outcome     string `json:"outcome"`
	TierType    string `json:"tierType,omitempty"`
	TierName    string `json:"tierName,omitempty"`
	Prize       string `json:"prize,omitempty"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message"`
	RevealState string `json:"revealState"`
	Replayed    bool   `json:"replayed"`
}

// PostOpenDay handles POST /api/v1/calendar/days/:day/open
func (h *CalendarHandlers) PostOpenDay(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("calendar:open_day")
	defer marker.Complete()

	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day parameter"})
		return
	}
	marker.AddMetadata("day", day)

	var req OpenDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Draw().Error("Open day request JSON binding failed", "error", err.Error(), "day", day)
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	result, err := h.calendarService.OpenDay(c.Request.Context(), day, req.Fingerprint)
	if err != nil {
		marker.SetError(err)
		h.respondOpenError(c, day, err)
		return
	}

	h.logger.Draw().Info("Open day request completed", "day", day, "outcome", result.Prize.Outcome, "replayed", result.Replayed, "duration", time.Since(start))
	c.JSON(http.StatusOK, OpenDayResponse{
		Day:         result.Prize.Day,
		Outcome:     string(result.Prize.Outcome),
		TierType:    result.Prize.TierType,
		TierName:    result.Prize.TierName,
		Prize:       result.Prize.Description,
		Code:        result.Prize.Code,
		Message:     result.Message,
		RevealState: string(result.Prize.Reveal),
		Replayed:    result.Replayed,
	})
}

func (h *CalendarHandlers) respondOpenError(c *gin.Context, day int, err error) {
	var recordErr *calendar.RecordError
	switch {
	case errors.Is(err, services.ErrInvalidDay):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDayLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyAttempted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &recordErr):
		h.logger.Draw().Error("Open day failed during attempt recording", "error", err.Error(), "day", day)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":       "attempt could not be recorded, result revoked",
			"revealState": string(calendar.RevealRevoked),
			"warning":     "your result was revoked because the attempt could not be saved, please try again",
		})
	default:
		h.logger.Draw().Error("Open day failed", "error", err.Error(), "day", day)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GetState handles GET /api/v1/calendar/state
func (h *CalendarHandlers) GetState(c *gin.Context) {
	marker := h.perfTracker.StartOperation("calendar:get_state")
	defer marker.Complete()

	state, err := h.calendarService.GetState()
	if err != nil {
		marker.SetError(err)
		h.logger.Draw().Error("Calendar state load failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetDay handles GET /api/v1/calendar/days/:day
func (h *CalendarHandlers) GetDay(c *gin.Context) {
	marker := h.perfTracker.StartOperation("calendar:get_day")
	defer marker.Complete()

	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day parameter"})
		return
	}

	dayState, err := h.calendarService.GetDay(day)
	if err != nil {
		marker.SetError(err)
		if errors.Is(err, services.ErrInvalidDay) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Draw().Error("Day state load failed", "error", err.Error(), "day", day)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, dayState)
}

// VerifyRequest is the wire shape of a code verification call.
type VerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// PostVerifyCode handles POST /api/v1/codes/verify
func (h *CalendarHandlers) PostVerifyCode(c *gin.Context) {
	marker := h.perfTracker.StartOperation("draw:verify_code")
	defer marker.Complete()

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	result := h.calendarService.VerifyCode(req.Code)
	marker.AddMetadata("valid", result.Valid)
	c.JSON(http.StatusOK, result)
}

// GetCodes handles GET /api/v1/codes (admin only)
func (h *CalendarHandlers) GetCodes(c *gin.Context) {
	marker := h.perfTracker.StartOperation("draw:list_codes")
	defer marker.Complete()

	wins, err := h.calendarService.ListWinCodes()
	if err != nil {
		marker.SetError(err)
		h.logger.Draw().Error("Win code listing failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": wins})
}
