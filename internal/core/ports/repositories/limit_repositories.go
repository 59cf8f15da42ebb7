package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// LimitReader defines read operations for the limit hierarchy.
type LimitReader interface {
	// FindChain resolves the terminal→branch→network chain for a terminal without
	// locking, for reporting.
	FindChain(ctx context.Context, terminalID string) (*domain.LimitChain, error)
}

// LimitTransactionSupport defines limit operations that participate in a posting
// unit of work. The three counters commit together or not at all.
type LimitTransactionSupport interface {
	// FindChainForUpdate resolves the chain and locks all three rows for update,
	// in terminal→branch→network order.
	FindChainForUpdate(ctx context.Context, tx pgx.Tx, terminalID string) (*domain.LimitChain, error)

	// IncrementDailyVolumesInTx adds amount to the current daily volume at every
	// level of the chain within the given transaction.
	IncrementDailyVolumesInTx(ctx context.Context, tx pgx.Tx, chain *domain.LimitChain, amount decimal.Decimal, now time.Time) error
}

// LimitWriter defines maintenance writes on the hierarchy.
type LimitWriter interface {
	// ResetDailyVolumes zeroes current daily volume at every level. Idempotent.
	ResetDailyVolumes(ctx context.Context, now time.Time) error
}

// LimitRepositoryFacade combines all limit-related repository interfaces.
type LimitRepositoryFacade interface {
	LimitReader
	LimitTransactionSupport
	LimitWriter
}
