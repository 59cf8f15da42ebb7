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

// transactionHandler handles HTTP requests for the posting state machine.
type transactionHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newTransactionHandler(ps portssvc.PostingSvcFacade) *transactionHandler {
	return &transactionHandler{postingService: ps}
}

// registerTransactionRoutes registers posting routes. Only the posting endpoint
// is rate limited; queries and decisions are not.
func registerTransactionRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade, postingRateLimit gin.HandlerFunc) {
	h := newTransactionHandler(postingService)

	transactions := rg.Group("/transactions")
	{
		if postingRateLimit != nil {
			transactions.POST("", postingRateLimit, h.postTransaction)
		} else {
			transactions.POST("", h.postTransaction)
		}
		transactions.GET("/:reference", h.getTransaction)
		transactions.POST("/:reference/approval", h.decideApproval)
		transactions.POST("/:reference/reverse", h.reverseTransaction)
	}
}

// respondPostingError maps service rejections onto HTTP statuses. Limit breaches
// and funding failures are unprocessable rather than bad requests: the request
// was well-formed, the book said no.
func respondPostingError(c *gin.Context, logger *slog.Logger, err error, action string) {
	var limitErr *apperrors.LimitExceededError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStateInvalid):
		logger.Warn("State conflict", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &limitErr):
		logger.Warn("Limit exceeded", slog.String("action", action), slog.String("level", limitErr.Level),
			slog.String("requested", limitErr.Requested.String()), slog.String("remaining", limitErr.Remaining.String()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     limitErr.Error(),
			"level":     limitErr.Level,
			"requested": limitErr.Requested,
			"remaining": limitErr.Remaining,
		})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		logger.Warn("Insufficient funds", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error("Posting operation failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func (h *transactionHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("account_id", req.AccountID))
	logger.Info("Received posting request",
		slog.String("type", string(req.TransactionType)),
		slog.String("amount", req.Amount.String()),
		slog.String("channel", string(req.Channel)))

	result, err := h.postingService.PostTransaction(c.Request.Context(), req, domain.UserActor(actorID))
	if err != nil {
		respondPostingError(c, logger, err, "post transaction")
		return
	}

	status := http.StatusCreated
	if result.Status == domain.TxnAwaitingApproval {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	txn, err := h.postingService.GetTransaction(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found", slog.String("reference", reference))
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction", slog.String("reference", reference), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, txn)
}

func (h *transactionHandler) decideApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	var req dto.ApprovalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for approval decision", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("reference", reference))
	logger.Info("Received approval decision", slog.String("decision", string(req.Decision)))

	result, err := h.postingService.ApproveTransaction(c.Request.Context(), reference, req, domain.UserActor(actorID))
	if err != nil {
		respondPostingError(c, logger, err, "apply approval decision")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reversal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("reference", reference))
	logger.Info("Received reversal request")

	result, err := h.postingService.ReverseTransaction(c.Request.Context(), reference, req, domain.UserActor(actorID))
	if err != nil {
		respondPostingError(c, logger, err, "reverse transaction")
		return
	}

	c.JSON(http.StatusCreated, result)
}
