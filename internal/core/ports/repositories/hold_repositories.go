package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// SweptHold reports one hold transitioned by an expiry sweep.
type SweptHold struct {
	HoldID    string
	AccountID string
	Amount    decimal.Decimal
}

// HoldReader defines read operations for hold data.
type HoldReader interface {
	// FindHoldByID retrieves a hold by its unique identifier.
	FindHoldByID(ctx context.Context, holdID string) (*domain.AccountHold, error)

	// ListHoldsByAccount retrieves all holds against an account, ordered by
	// priority then placement time. Ordering is for display only.
	ListHoldsByAccount(ctx context.Context, accountID string) ([]domain.AccountHold, error)

	// CountActiveHolds returns the number of Active/PartiallyReleased holds and
	// the sum of their remaining amounts for an account.
	CountActiveHolds(ctx context.Context, accountID string) (int, decimal.Decimal, error)
}

// HoldTransactionSupport defines hold operations that participate in a unit of work
// holding the account row lock.
type HoldTransactionSupport interface {
	// SaveHoldInTx persists a new hold within the given transaction.
	SaveHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.AccountHold) error

	// FindHoldByIDForUpdate selects a hold row and locks it for update.
	FindHoldByIDForUpdate(ctx context.Context, tx pgx.Tx, holdID string) (*domain.AccountHold, error)

	// UpdateHoldInTx persists a hold state transition. The UPDATE is guarded by the
	// expected source statuses; zero rows affected means a concurrent transition won
	// and the caller receives ErrAlreadyTerminal.
	UpdateHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.AccountHold, fromStatuses []domain.HoldStatus) error

	// SumActiveHoldAmountsInTx sums remaining amounts of Active/PartiallyReleased
	// holds for an account within the given transaction.
	SumActiveHoldAmountsInTx(ctx context.Context, tx pgx.Tx, accountID string) (decimal.Decimal, error)

	// FindExpiredHoldCandidates lists automatic-release holds whose expiry has
	// passed and which are still Active/PartiallyReleased. A snapshot only; the
	// transition itself is re-guarded per account under the account lock.
	FindExpiredHoldCandidates(ctx context.Context, asOf time.Time) ([]SweptHold, error)

	// SweepAccountExpiredInTx transitions the account's expired automatic-release
	// holds into Released under releasedBy, guarded by status (compare-and-swap),
	// and returns the holds it actually transitioned. Holds concurrently released
	// elsewhere are left untouched.
	SweepAccountExpiredInTx(ctx context.Context, tx pgx.Tx, accountID string, asOf time.Time, releasedBy string) ([]SweptHold, error)
}

// HoldRepositoryFacade combines all hold-related repository interfaces.
type HoldRepositoryFacade interface {
	HoldReader
	HoldTransactionSupport
}
