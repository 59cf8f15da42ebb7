package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
)

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{pool: pool}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, account_id, transaction_type, amount, currency_code,
	channel, terminal_id, status, reference_number, requires_approval, approval_status, risk_score,
	transaction_code, original_transaction_id, external_reference,
	created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var code *string
	err := row.Scan(
		&t.TransactionID,
		&t.AccountID,
		&t.TransactionType,
		&t.Amount,
		&t.CurrencyCode,
		&t.Channel,
		&t.TerminalID,
		&t.Status,
		&t.ReferenceNumber,
		&t.RequiresApproval,
		&t.ApprovalStatus,
		&t.RiskScore,
		&code,
		&t.OriginalTransactionID,
		&t.ExternalReference,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if code != nil {
		t.TransactionCode = domain.TransactionCode(*code)
	}
	return &t, nil
}

// FindTransactionByReference retrieves a transaction by its unique reference number.
func (r *PgxTransactionRepository) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference_number = $1;`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find transaction by reference %s: %w", reference, err)
	}
	return t, nil
}

// ListAuditEntries retrieves the audit trail for a transaction in occurrence order.
func (r *PgxTransactionRepository) ListAuditEntries(ctx context.Context, transactionID string) ([]domain.TransactionAuditEntry, error) {
	query := `
		SELECT entry_id, transaction_id, from_status, to_status, actor_kind, actor_id, occurred_at, reason_id, digest
		FROM transaction_audit_entries
		WHERE transaction_id = $1
		ORDER BY occurred_at, entry_id;
	`
	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	entries := []domain.TransactionAuditEntry{}
	for rows.Next() {
		var e domain.TransactionAuditEntry
		var actorID *string
		err := rows.Scan(
			&e.EntryID,
			&e.TransactionID,
			&e.FromStatus,
			&e.ToStatus,
			&e.Actor.Kind,
			&actorID,
			&e.OccurredAt,
			&e.ReasonID,
			&e.Digest,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry for transaction %s: %w", transactionID, err)
		}
		if actorID != nil {
			e.Actor.ID = *actorID
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries for transaction %s: %w", transactionID, err)
	}
	return entries, nil
}

// SaveTransactionInTx inserts a new transaction row within a transaction.
func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	var code *string
	if txn.TransactionCode != domain.CodeNone {
		c := string(txn.TransactionCode)
		code = &c
	}

	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.AccountID,
		txn.TransactionType,
		txn.Amount,
		txn.CurrencyCode,
		txn.Channel,
		txn.TerminalID,
		txn.Status,
		txn.ReferenceNumber,
		txn.RequiresApproval,
		txn.ApprovalStatus,
		txn.RiskScore,
		code,
		txn.OriginalTransactionID,
		txn.ExternalReference,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transaction reference %s already exists", apperrors.ErrDuplicate, txn.ReferenceNumber)
		}
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// UpdateTransactionStatusInTx persists a status transition together with approval
// state. The UPDATE is guarded by the expected source status so two units of work
// racing on the same transaction cannot both transition it: the loser matches no
// row and gets ErrStateInvalid, rolling its whole unit of work back.
func (r *PgxTransactionRepository) UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, fromStatus domain.TransactionStatus) error {
	query := `
		UPDATE transactions
		SET status = $2, approval_status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1 AND status = $6;
	`
	cmdTag, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.Status,
		txn.ApprovalStatus,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
		fromStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is no longer %s", apperrors.ErrStateInvalid, txn.TransactionID, fromStatus)
	}
	return nil
}

// SaveAuditEntriesInTx appends audit entries in one batch. Entries are append-only.
func (r *PgxTransactionRepository) SaveAuditEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.TransactionAuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO transaction_audit_entries (entry_id, transaction_id, from_status, to_status, actor_kind, actor_id, occurred_at, reason_id, digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		var actorID *string
		if e.Actor.ID != "" {
			id := e.Actor.ID
			actorID = &id
		}
		batch.Queue(query, e.EntryID, e.TransactionID, e.FromStatus, e.ToStatus, e.Actor.Kind, actorID, e.OccurredAt, e.ReasonID, e.Digest)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to save audit entry %s: %w", entries[i].EntryID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close audit entry batch: %w", err)
	}
	return batchErr
}
