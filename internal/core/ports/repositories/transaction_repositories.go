package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// TransactionReader defines read operations for transaction data.
type TransactionReader interface {
	// FindTransactionByReference retrieves a transaction by its unique reference number.
	FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error)

	// ListAuditEntries retrieves the append-only audit trail for a transaction in
	// occurrence order.
	ListAuditEntries(ctx context.Context, transactionID string) ([]domain.TransactionAuditEntry, error)
}

// TransactionWriter defines write operations for transaction data. All writes run
// within the caller's unit of work.
type TransactionWriter interface {
	// SaveTransactionInTx persists a new transaction row.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// UpdateTransactionStatusInTx persists a status transition on an existing
	// transaction, together with approval state when present. The UPDATE is guarded
	// by fromStatus: when the row has already moved on (a concurrent approval or
	// reversal won), no row matches and the caller receives ErrStateInvalid.
	UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, fromStatus domain.TransactionStatus) error

	// SaveAuditEntriesInTx appends audit entries. Entries are never updated or deleted.
	SaveAuditEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.TransactionAuditEntry) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
