package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/dto"
	"github.com/nimbusbank/corebank/internal/middleware"
)

// holdHandler handles HTTP requests related to account holds.
type holdHandler struct {
	holdService portssvc.HoldSvcFacade
}

func newHoldHandler(hs portssvc.HoldSvcFacade) *holdHandler {
	return &holdHandler{holdService: hs}
}

// registerHoldRoutes registers hold lifecycle routes keyed by hold ID. Placement
// and listing live under the account routes.
func registerHoldRoutes(rg *gin.RouterGroup, holdService portssvc.HoldSvcFacade) {
	h := newHoldHandler(holdService)

	holds := rg.Group("/holds")
	{
		holds.POST("/:holdID/release", h.releaseHold)
		holds.POST("/:holdID/cancel", h.cancelHold)
	}
}

func (h *holdHandler) placeHold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.PlaceHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PlaceHold", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to place hold", slog.String("hold_type", string(req.HoldType)), slog.String("amount", req.Amount.String()))

	hold, err := h.holdService.PlaceHold(c.Request.Context(), accountID, req, domain.UserActor(actorID))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error placing hold", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Account not found placing hold")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrStateInvalid):
			logger.Warn("Account state rejects hold", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			logger.Warn("Insufficient capacity for hold", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to place hold", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place hold"})
		}
		return
	}

	logger.Info("Hold placed successfully", slog.String("hold_id", hold.HoldID))
	c.JSON(http.StatusCreated, dto.ToHoldResponse(hold))
}

func (h *holdHandler) listHolds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	holds, err := h.holdService.ListHolds(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found listing holds", slog.String("account_id", accountID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to list holds", slog.String("account_id", accountID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list holds"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListHoldResponse(holds))
}

func (h *holdHandler) releaseHold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holdID := c.Param("holdID")

	var req dto.ReleaseHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReleaseHold", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("hold_id", holdID))
	logger.Info("Received request to release hold")

	hold, err := h.holdService.ReleaseHold(c.Request.Context(), holdID, req, domain.UserActor(actorID))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error releasing hold", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Hold not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Hold not found"})
		case errors.Is(err, apperrors.ErrAlreadyTerminal):
			logger.Warn("Hold already terminal", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to release hold", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release hold"})
		}
		return
	}

	logger.Info("Hold released", slog.String("status", string(hold.Status)))
	c.JSON(http.StatusOK, dto.ToHoldResponse(hold))
}

func (h *holdHandler) cancelHold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holdID := c.Param("holdID")

	var req struct {
		ReasonID string `json:"reasonID" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelHold", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("hold_id", holdID))
	logger.Info("Received request to cancel hold")

	hold, err := h.holdService.CancelHold(c.Request.Context(), holdID, req.ReasonID, domain.UserActor(actorID))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Hold not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Hold not found"})
		case errors.Is(err, apperrors.ErrStateInvalid), errors.Is(err, apperrors.ErrAlreadyTerminal):
			logger.Warn("Hold state rejects cancellation", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to cancel hold", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel hold"})
		}
		return
	}

	logger.Info("Hold cancelled")
	c.JSON(http.StatusOK, dto.ToHoldResponse(hold))
}
