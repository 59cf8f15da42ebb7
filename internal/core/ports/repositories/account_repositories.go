package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Account opening itself is driven by an
	// external collaborator; this engine only records the row.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines operations that participate in a posting or
// hold unit of work.
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate selects the account row and locks it for update
	// within the given transaction, serializing balance-affecting operations.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// UpdateBalancesInTx persists current and available balance for the account
	// within the given transaction.
	UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accountID string, currentBalance, availableBalance decimal.Decimal, updatedBy string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
