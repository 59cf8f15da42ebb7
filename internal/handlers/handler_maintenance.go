package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/middleware"
)

// maintenanceHandler exposes the periodic jobs for manual triggering by
// operations. The scheduler calls the same service methods; both paths are
// idempotent so an overlap is harmless.
type maintenanceHandler struct {
	holdService  portssvc.HoldSvcFacade
	limitService portssvc.LimitSvcFacade
}

func newMaintenanceHandler(hs portssvc.HoldSvcFacade, ls portssvc.LimitSvcFacade) *maintenanceHandler {
	return &maintenanceHandler{holdService: hs, limitService: ls}
}

func registerMaintenanceRoutes(rg *gin.RouterGroup, holdService portssvc.HoldSvcFacade, limitService portssvc.LimitSvcFacade) {
	h := newMaintenanceHandler(holdService, limitService)

	maintenance := rg.Group("/maintenance")
	{
		maintenance.POST("/sweep-expired-holds", h.sweepExpiredHolds)
		maintenance.POST("/reset-daily-volumes", h.resetDailyVolumes)
	}
}

func (h *maintenanceHandler) sweepExpiredHolds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Manual expired hold sweep triggered")

	result, err := h.holdService.SweepExpired(c.Request.Context(), time.Now().UTC())
	if err != nil {
		logger.Error("Expired hold sweep failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sweep expired holds"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *maintenanceHandler) resetDailyVolumes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Manual daily volume reset triggered")

	if err := h.limitService.ResetDaily(c.Request.Context()); err != nil {
		logger.Error("Daily volume reset failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset daily volumes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset complete"})
}
