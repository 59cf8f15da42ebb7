package services

import (
	"github.com/shopspring/decimal"

	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
)

// NewServiceContainer wires the service layer on top of the repository container.
func NewServiceContainer(repos *portsrepo.RepositoryContainer, approvalThreshold decimal.Decimal) *portssvc.ServiceContainer {
	balanceSvc := NewBalanceService(repos.Account, repos.Hold)
	limitSvc := NewLimitService(repos.Limit)
	holdSvc := NewHoldService(repos.TxManager, repos.Account, repos.Hold, balanceSvc)
	postingSvc := NewPostingService(repos.TxManager, repos.Account, repos.Customer, repos.Transaction, limitSvc, balanceSvc, approvalThreshold)

	return &portssvc.ServiceContainer{
		Balance: balanceSvc,
		Hold:    holdSvc,
		Posting: postingSvc,
		Limit:   limitSvc,
	}
}
