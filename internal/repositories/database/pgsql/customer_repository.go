package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
)

// PgxCustomerRepository reads the customer projection maintained by the customer
// management system. This engine never writes customer rows.
type PgxCustomerRepository struct {
	pool *pgxpool.Pool
}

func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerReader {
	return &PgxCustomerRepository{pool: pool}
}

var _ portsrepo.CustomerReader = (*PgxCustomerRepository)(nil)

// FindCustomerByID retrieves a customer by its ID.
func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `
		SELECT customer_id, status, created_at, created_by, last_updated_at, last_updated_by
		FROM customers
		WHERE customer_id = $1;
	`
	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, customerID).Scan(
		&c.CustomerID,
		&c.Status,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID %s: %w", customerID, err)
	}
	return &c, nil
}
