package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines the interface for managing database transactions.
// Every balance-affecting unit of work (posting, hold mutation, limit reservation)
// runs inside one transaction obtained here.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction. Safe to call after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
