package repositories

import (
	"context"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// CustomerReader exposes the read-only customer projection consulted at posting
// validation time. Customer lifecycle is owned by an external collaborator.
type CustomerReader interface {
	// FindCustomerByID retrieves a customer by its unique identifier.
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
}
