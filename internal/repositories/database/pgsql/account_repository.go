package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, customer_id, account_type, status, currency_code,
	current_balance, available_balance, accrued_interest, overdraft_limit, original_principal,
	signing_condition, branch_id, created_at, created_by, last_updated_at, last_updated_by`

// scanAccount scans one account row in accountColumns order.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.CustomerID,
		&acc.AccountType,
		&acc.Status,
		&acc.CurrencyCode,
		&acc.CurrentBalance,
		&acc.AvailableBalance,
		&acc.AccruedInterest,
		&acc.OverdraftLimit,
		&acc.OriginalPrincipal,
		&acc.SigningCondition,
		&acc.BranchID,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// SaveAccount inserts a new account row. Account opening is driven externally;
// this only records the row.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.CustomerID,
		account.AccountType,
		account.Status,
		account.CurrencyCode,
		account.CurrentBalance,
		account.AvailableBalance,
		account.AccruedInterest,
		account.OverdraftLimit,
		account.OriginalPrincipal,
		account.SigningCondition,
		account.BranchID,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	acc, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountByIDForUpdate retrieves an account and locks the row for update.
// Must be called within a transaction; this lock serializes all balance-affecting
// operations against the account.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`

	acc, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return acc, nil
}

// UpdateBalancesInTx persists current and available balance within a transaction.
func (r *PgxAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accountID string, currentBalance, availableBalance decimal.Decimal, updatedBy string, now time.Time) error {
	query := `
		UPDATE accounts
		SET current_balance = $2, available_balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, accountID, currentBalance, availableBalance, now, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update balances for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountID)
	}
	return nil
}
