package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
)

type PgxLimitRepository struct {
	pool *pgxpool.Pool
}

// newPgxLimitRepository creates a new repository for the limit hierarchy.
func newPgxLimitRepository(pool *pgxpool.Pool) portsrepo.LimitRepositoryFacade {
	return &PgxLimitRepository{pool: pool}
}

var _ portsrepo.LimitRepositoryFacade = (*PgxLimitRepository)(nil)

const chainColumns = `
	t.terminal_id, t.branch_id, t.daily_limit, t.current_daily_volume,
	b.branch_id, b.network_id, b.daily_limit, b.current_daily_volume,
	n.network_id, n.daily_limit, n.current_daily_volume`

const chainFrom = `
	FROM terminal_limits t
	JOIN branch_limits b ON b.branch_id = t.branch_id
	JOIN network_limits n ON n.network_id = b.network_id
	WHERE t.terminal_id = $1`

func scanChain(row pgx.Row) (*domain.LimitChain, error) {
	var c domain.LimitChain
	err := row.Scan(
		&c.Terminal.TerminalID,
		&c.Terminal.BranchID,
		&c.Terminal.DailyLimit,
		&c.Terminal.CurrentDailyVolume,
		&c.Branch.BranchID,
		&c.Branch.NetworkID,
		&c.Branch.DailyLimit,
		&c.Branch.CurrentDailyVolume,
		&c.Network.NetworkID,
		&c.Network.DailyLimit,
		&c.Network.CurrentDailyVolume,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindChain resolves the terminal→branch→network chain without locking.
func (r *PgxLimitRepository) FindChain(ctx context.Context, terminalID string) (*domain.LimitChain, error) {
	query := `SELECT` + chainColumns + chainFrom + `;`

	chain, err := scanChain(r.pool.QueryRow(ctx, query, terminalID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no limit chain for terminal %s", apperrors.ErrNotFound, terminalID)
		}
		return nil, fmt.Errorf("failed to resolve limit chain for terminal %s: %w", terminalID, err)
	}
	return chain, nil
}

// FindChainForUpdate resolves the chain and locks all three rows. The fixed
// terminal→branch→network lock order prevents deadlock between concurrent
// postings on terminals sharing a branch or network.
func (r *PgxLimitRepository) FindChainForUpdate(ctx context.Context, tx pgx.Tx, terminalID string) (*domain.LimitChain, error) {
	query := `SELECT` + chainColumns + chainFrom + `
	FOR UPDATE OF t, b, n;`

	chain, err := scanChain(tx.QueryRow(ctx, query, terminalID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no limit chain for terminal %s", apperrors.ErrNotFound, terminalID)
		}
		return nil, fmt.Errorf("failed to lock limit chain for terminal %s: %w", terminalID, err)
	}
	return chain, nil
}

// IncrementDailyVolumesInTx adds amount to the counter at every level of the
// locked chain. All three move in the caller's transaction or none do.
func (r *PgxLimitRepository) IncrementDailyVolumesInTx(ctx context.Context, tx pgx.Tx, chain *domain.LimitChain, amount decimal.Decimal, now time.Time) error {
	steps := []struct {
		query string
		id    string
	}{
		{`UPDATE terminal_limits SET current_daily_volume = current_daily_volume + $2, last_updated_at = $3 WHERE terminal_id = $1;`, chain.Terminal.TerminalID},
		{`UPDATE branch_limits SET current_daily_volume = current_daily_volume + $2, last_updated_at = $3 WHERE branch_id = $1;`, chain.Branch.BranchID},
		{`UPDATE network_limits SET current_daily_volume = current_daily_volume + $2, last_updated_at = $3 WHERE network_id = $1;`, chain.Network.NetworkID},
	}
	for _, step := range steps {
		cmdTag, err := tx.Exec(ctx, step.query, step.id, amount, now)
		if err != nil {
			return fmt.Errorf("failed to increment daily volume for %s: %w", step.id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: limit row %s disappeared during increment", apperrors.ErrNotFound, step.id)
		}
	}
	return nil
}

// ResetDailyVolumes zeroes the counter at every level. Idempotent; re-running on
// an already-reset day touches rows but changes nothing.
func (r *PgxLimitRepository) ResetDailyVolumes(ctx context.Context, now time.Time) error {
	for _, query := range []string{
		`UPDATE terminal_limits SET current_daily_volume = 0, last_updated_at = $1;`,
		`UPDATE branch_limits SET current_daily_volume = 0, last_updated_at = $1;`,
		`UPDATE network_limits SET current_daily_volume = 0, last_updated_at = $1;`,
	} {
		if _, err := r.pool.Exec(ctx, query, now); err != nil {
			return fmt.Errorf("failed to reset daily volumes: %w", err)
		}
	}
	return nil
}
