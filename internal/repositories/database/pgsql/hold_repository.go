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

type PgxHoldRepository struct {
	pool *pgxpool.Pool
}

// newPgxHoldRepository creates a new repository for account hold data.
func newPgxHoldRepository(pool *pgxpool.Pool) portsrepo.HoldRepositoryFacade {
	return &PgxHoldRepository{pool: pool}
}

var _ portsrepo.HoldRepositoryFacade = (*PgxHoldRepository)(nil)

const holdColumns = `hold_id, account_id, amount, original_amount, hold_type, priority, status,
	placed_at, expires_at, automatic_release, released_at, released_by, reason_id, source_reference,
	created_at, created_by, last_updated_at, last_updated_by`

func scanHold(row pgx.Row) (*domain.AccountHold, error) {
	var h domain.AccountHold
	err := row.Scan(
		&h.HoldID,
		&h.AccountID,
		&h.Amount,
		&h.OriginalAmount,
		&h.HoldType,
		&h.Priority,
		&h.Status,
		&h.PlacedAt,
		&h.ExpiresAt,
		&h.AutomaticRelease,
		&h.ReleasedAt,
		&h.ReleasedBy,
		&h.ReasonID,
		&h.SourceReference,
		&h.CreatedAt,
		&h.CreatedBy,
		&h.LastUpdatedAt,
		&h.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// FindHoldByID retrieves a hold by its ID.
func (r *PgxHoldRepository) FindHoldByID(ctx context.Context, holdID string) (*domain.AccountHold, error) {
	query := `SELECT ` + holdColumns + ` FROM account_holds WHERE hold_id = $1;`

	h, err := scanHold(r.pool.QueryRow(ctx, query, holdID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find hold by ID %s: %w", holdID, err)
	}
	return h, nil
}

// ListHoldsByAccount retrieves all holds against an account, ordered by priority
// rank then placement time. Ordering is for presentation only.
func (r *PgxHoldRepository) ListHoldsByAccount(ctx context.Context, accountID string) ([]domain.AccountHold, error) {
	query := `
		SELECT ` + holdColumns + `
		FROM account_holds
		WHERE account_id = $1
		ORDER BY CASE priority
			WHEN 'CRITICAL' THEN 0
			WHEN 'HIGH' THEN 1
			WHEN 'MEDIUM' THEN 2
			WHEN 'LOW' THEN 3
			ELSE 4 END,
			placed_at;
	`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holds for account %s: %w", accountID, err)
	}
	defer rows.Close()

	holds := []domain.AccountHold{}
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hold row for account %s: %w", accountID, err)
		}
		holds = append(holds, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hold rows for account %s: %w", accountID, err)
	}
	return holds, nil
}

// CountActiveHolds returns the number of holds still encumbering funds and the sum
// of their remaining amounts.
func (r *PgxHoldRepository) CountActiveHolds(ctx context.Context, accountID string) (int, decimal.Decimal, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM account_holds
		WHERE account_id = $1 AND status IN ('ACTIVE', 'PARTIALLY_RELEASED');
	`
	var count int
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&count, &total); err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to count active holds for account %s: %w", accountID, err)
	}
	return count, total, nil
}

// SaveHoldInTx inserts a new hold row within a transaction.
func (r *PgxHoldRepository) SaveHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.AccountHold) error {
	query := `
		INSERT INTO account_holds (` + holdColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		hold.HoldID,
		hold.AccountID,
		hold.Amount,
		hold.OriginalAmount,
		hold.HoldType,
		hold.Priority,
		hold.Status,
		hold.PlacedAt,
		hold.ExpiresAt,
		hold.AutomaticRelease,
		hold.ReleasedAt,
		hold.ReleasedBy,
		hold.ReasonID,
		hold.SourceReference,
		hold.CreatedAt,
		hold.CreatedBy,
		hold.LastUpdatedAt,
		hold.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: hold with ID %s already exists", apperrors.ErrDuplicate, hold.HoldID)
		}
		return fmt.Errorf("failed to save hold %s: %w", hold.HoldID, err)
	}
	return nil
}

// FindHoldByIDForUpdate retrieves a hold and locks the row. Callers must already
// hold the owning account's row lock; account before hold is the lock order
// everywhere.
func (r *PgxHoldRepository) FindHoldByIDForUpdate(ctx context.Context, tx pgx.Tx, holdID string) (*domain.AccountHold, error) {
	query := `SELECT ` + holdColumns + ` FROM account_holds WHERE hold_id = $1 FOR UPDATE;`

	h, err := scanHold(tx.QueryRow(ctx, query, holdID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock hold %s: %w", holdID, err)
	}
	return h, nil
}

// UpdateHoldInTx persists a hold transition guarded by the expected source
// statuses. Zero rows affected means a concurrent transition won.
func (r *PgxHoldRepository) UpdateHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.AccountHold, fromStatuses []domain.HoldStatus) error {
	if len(fromStatuses) == 0 {
		return fmt.Errorf("%w: hold update requires expected source statuses", apperrors.ErrValidation)
	}
	from := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		from[i] = string(s)
	}

	query := `
		UPDATE account_holds
		SET amount = $2, status = $3, released_at = $4, released_by = $5, last_updated_at = $6, last_updated_by = $7
		WHERE hold_id = $1 AND status = ANY($8);
	`
	cmdTag, err := tx.Exec(ctx, query,
		hold.HoldID,
		hold.Amount,
		hold.Status,
		hold.ReleasedAt,
		hold.ReleasedBy,
		hold.LastUpdatedAt,
		hold.LastUpdatedBy,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to update hold %s: %w", hold.HoldID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: hold %s already transitioned", apperrors.ErrAlreadyTerminal, hold.HoldID)
	}
	return nil
}

// SumActiveHoldAmountsInTx sums remaining held amounts for an account within a
// transaction.
func (r *PgxHoldRepository) SumActiveHoldAmountsInTx(ctx context.Context, tx pgx.Tx, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM account_holds
		WHERE account_id = $1 AND status IN ('ACTIVE', 'PARTIALLY_RELEASED');
	`
	var total decimal.Decimal
	if err := tx.QueryRow(ctx, query, accountID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum active holds for account %s: %w", accountID, err)
	}
	return total, nil
}

// FindExpiredHoldCandidates lists automatic-release holds past expiry. A snapshot
// without locks; the actual transition is re-guarded under the account lock.
func (r *PgxHoldRepository) FindExpiredHoldCandidates(ctx context.Context, asOf time.Time) ([]portsrepo.SweptHold, error) {
	query := `
		SELECT hold_id, account_id, amount
		FROM account_holds
		WHERE automatic_release = TRUE
		  AND expires_at IS NOT NULL AND expires_at <= $1
		  AND status IN ('ACTIVE', 'PARTIALLY_RELEASED')
		ORDER BY account_id, placed_at;
	`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired hold candidates: %w", err)
	}
	defer rows.Close()

	candidates := []portsrepo.SweptHold{}
	for rows.Next() {
		var c portsrepo.SweptHold
		if err := rows.Scan(&c.HoldID, &c.AccountID, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expired hold candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expired hold candidates: %w", err)
	}
	return candidates, nil
}

// SweepAccountExpiredInTx releases the account's lapsed automatic-release holds in
// one status-guarded UPDATE and returns what actually transitioned. Holds released
// concurrently between the candidate snapshot and this call are skipped.
func (r *PgxHoldRepository) SweepAccountExpiredInTx(ctx context.Context, tx pgx.Tx, accountID string, asOf time.Time, releasedBy string) ([]portsrepo.SweptHold, error) {
	// The CTE snapshots the pre-update remaining amount; RETURNING alone would
	// only see the zeroed value.
	query := `
		WITH lapsed AS (
			SELECT hold_id, amount
			FROM account_holds
			WHERE account_id = $1
			  AND automatic_release = TRUE
			  AND expires_at IS NOT NULL AND expires_at <= $4
			  AND status IN ('ACTIVE', 'PARTIALLY_RELEASED')
			FOR UPDATE
		)
		UPDATE account_holds h
		SET status = 'RELEASED', amount = 0, released_at = $2, released_by = $3, last_updated_at = $2, last_updated_by = $3
		FROM lapsed l
		WHERE h.hold_id = l.hold_id
		RETURNING h.hold_id, h.account_id, l.amount;
	`
	now := time.Now().UTC()
	rows, err := tx.Query(ctx, query, accountID, now, releasedBy, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep expired holds for account %s: %w", accountID, err)
	}
	defer rows.Close()

	swept := []portsrepo.SweptHold{}
	for rows.Next() {
		var s portsrepo.SweptHold
		if err := rows.Scan(&s.HoldID, &s.AccountID, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan swept hold for account %s: %w", accountID, err)
		}
		swept = append(swept, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating swept holds for account %s: %w", accountID, err)
	}
	return swept, nil
}
