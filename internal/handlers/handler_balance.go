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

// accountHandler handles account-scoped queries and hold placement.
type accountHandler struct {
	balanceService portssvc.BalanceSvcFacade
}

func newAccountHandler(bs portssvc.BalanceSvcFacade) *accountHandler {
	return &accountHandler{balanceService: bs}
}

// registerAccountRoutes registers routes under /accounts. Hold placement and
// listing live here because they are addressed by account.
func registerAccountRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade, holdService portssvc.HoldSvcFacade) {
	ah := newAccountHandler(balanceService)
	hh := newHoldHandler(holdService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/:accountID/balance", ah.getBalance)
		accounts.POST("/:accountID/holds", hh.placeHold)
		accounts.GET("/:accountID/holds", hh.listHolds)
	}
}

func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	summary, err := h.balanceService.GetBalanceSummary(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for balance query", slog.String("account_id", accountID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get balance", slog.String("account_id", accountID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}
