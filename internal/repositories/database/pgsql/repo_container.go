package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
)

// NewRepositoryContainer wires the pgsql repositories over a shared pool.
func NewRepositoryContainer(dbPool *pgxpool.Pool) *portsrepo.RepositoryContainer {
	return &portsrepo.RepositoryContainer{
		TxManager:   &BaseRepository{Pool: dbPool},
		Account:     newPgxAccountRepository(dbPool),
		Hold:        newPgxHoldRepository(dbPool),
		Transaction: newPgxTransactionRepository(dbPool),
		Limit:       newPgxLimitRepository(dbPool),
		Customer:    newPgxCustomerRepository(dbPool),
	}
}
