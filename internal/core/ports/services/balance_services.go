package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/core/domain"
	"github.com/nimbusbank/corebank/internal/dto"
)

// BalanceSvcFacade is the single authority for reading and mutating an account's
// balances. All mutation happens inside a caller-held unit of work with the
// account row locked.
type BalanceSvcFacade interface {
	// GetBalanceSummary answers a balance query: current, available, overdraft,
	// active hold count and total held.
	GetBalanceSummary(ctx context.Context, accountID string) (*dto.BalanceResponse, error)

	// ApplyPostingInTx atomically adjusts the locked account's current balance by
	// signedAmount and re-derives available balance from the live hold set. Fails
	// with ErrInsufficientFunds when the post-adjustment position breaches the
	// account-type rule; nothing is persisted in that case. On success the updated
	// balances are persisted and reflected on account.
	ApplyPostingInTx(ctx context.Context, tx pgx.Tx, account *domain.Account, signedAmount decimal.Decimal, updatedBy string) error

	// RederiveAvailableInTx recomputes and persists available balance for the
	// locked account from the live hold set, leaving current balance untouched.
	// Used after hold mutations.
	RederiveAvailableInTx(ctx context.Context, tx pgx.Tx, account *domain.Account, updatedBy string) error
}
