package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/core/domain"
	"github.com/nimbusbank/corebank/internal/dto"
)

// LimitSvcFacade is the limit hierarchy registry: per-terminal, per-branch and
// per-network daily volume ceilings with running totals.
type LimitSvcFacade interface {
	// CheckAndReserveInTx walks terminal→branch→network bottom-up inside the
	// caller's unit of work, rejecting with LimitExceededError at the first level
	// lacking capacity, then increments all three counters. The increments commit
	// or roll back with the caller's transaction as a unit.
	CheckAndReserveInTx(ctx context.Context, tx pgx.Tx, terminalID string, amount decimal.Decimal) (*domain.LimitChain, error)

	// ResetDaily zeroes every current daily volume. Intended to run once per
	// business day; re-running is a no-op by value.
	ResetDaily(ctx context.Context) error

	// GetUtilization reports limits and running totals for a terminal's chain.
	GetUtilization(ctx context.Context, terminalID string) (*dto.LimitChainResponse, error)
}
