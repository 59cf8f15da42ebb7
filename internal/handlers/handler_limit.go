package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nimbusbank/corebank/internal/apperrors"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/middleware"
)

// limitHandler serves limit utilization queries.
type limitHandler struct {
	limitService portssvc.LimitSvcFacade
}

func newLimitHandler(ls portssvc.LimitSvcFacade) *limitHandler {
	return &limitHandler{limitService: ls}
}

func registerLimitRoutes(rg *gin.RouterGroup, limitService portssvc.LimitSvcFacade) {
	h := newLimitHandler(limitService)

	limits := rg.Group("/limits")
	{
		limits.GET("/terminals/:terminalID", h.getUtilization)
	}
}

func (h *limitHandler) getUtilization(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	terminalID := c.Param("terminalID")

	chain, err := h.limitService.GetUtilization(c.Request.Context(), terminalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Terminal has no limit chain", slog.String("terminal_id", terminalID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Terminal not found"})
		} else {
			logger.Error("Failed to get limit utilization", slog.String("terminal_id", terminalID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve limit utilization"})
		}
		return
	}

	c.JSON(http.StatusOK, chain)
}
