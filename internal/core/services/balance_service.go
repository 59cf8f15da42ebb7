package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/dto"
)

// balanceService is the single authority for reading and mutating account
// balances. Every mutation re-derives available balance from the live hold set;
// a cached value is never trusted across a mutation.
type balanceService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	holdRepo    portsrepo.HoldRepositoryFacade
}

// NewBalanceService creates a new balance service.
func NewBalanceService(accountRepo portsrepo.AccountRepositoryFacade, holdRepo portsrepo.HoldRepositoryFacade) portssvc.BalanceSvcFacade {
	return &balanceService{
		accountRepo: accountRepo,
		holdRepo:    holdRepo,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

func (s *balanceService) GetBalanceSummary(ctx context.Context, accountID string) (*dto.BalanceResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	holdCount, totalHeld, err := s.holdRepo.CountActiveHolds(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count active holds", slog.String("account_id", accountID))
		return nil, err
	}

	available := account.CurrentBalance.Add(account.EffectiveOverdraft()).Sub(totalHeld)

	return &dto.BalanceResponse{
		AccountID:        account.AccountID,
		CurrencyCode:     account.CurrencyCode,
		CurrentBalance:   account.CurrentBalance,
		AvailableBalance: available,
		OverdraftLimit:   account.EffectiveOverdraft(),
		ActiveHoldCount:  holdCount,
		TotalHeld:        totalHeld,
	}, nil
}

// ApplyPostingInTx adjusts the locked account's current balance by signedAmount
// and re-derives available balance from the live hold set, enforcing the
// account-type funding rule before anything is persisted.
func (s *balanceService) ApplyPostingInTx(ctx context.Context, tx pgx.Tx, account *domain.Account, signedAmount decimal.Decimal, updatedBy string) error {
	newCurrent := account.CurrentBalance.Add(signedAmount)

	totalHeld, err := s.holdRepo.SumActiveHoldAmountsInTx(ctx, tx, account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to sum active holds for account %s: %w", account.AccountID, err)
	}

	overdraft := account.EffectiveOverdraft()
	newAvailable := newCurrent.Add(overdraft).Sub(totalHeld)

	if account.AccountType == domain.Loan {
		// Outstanding principal must stay within [0, original principal].
		if newCurrent.IsNegative() || newCurrent.GreaterThan(account.OriginalPrincipal) {
			return fmt.Errorf("%w: loan principal would move to %s, outside [0, %s]",
				apperrors.ErrInsufficientFunds, newCurrent.String(), account.OriginalPrincipal.String())
		}
	}

	if newAvailable.IsNegative() {
		return fmt.Errorf("%w: posting of %s would leave available balance %s on account %s",
			apperrors.ErrInsufficientFunds, signedAmount.String(), newAvailable.String(), account.AccountID)
	}

	// Derivation guarantees available ≤ current + overdraft while holds are
	// non-negative; a breach here means corrupted hold data.
	if newAvailable.GreaterThan(newCurrent.Add(overdraft)) {
		return apperrors.NewAppError(500, "available balance invariant violated for account "+account.AccountID, nil)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateBalancesInTx(ctx, tx, account.AccountID, newCurrent, newAvailable, updatedBy, now); err != nil {
		return err
	}

	account.CurrentBalance = newCurrent
	account.AvailableBalance = newAvailable
	account.LastUpdatedAt = now
	account.LastUpdatedBy = updatedBy
	return nil
}

// RederiveAvailableInTx recomputes and persists available balance after a hold
// mutation, leaving current balance untouched.
func (s *balanceService) RederiveAvailableInTx(ctx context.Context, tx pgx.Tx, account *domain.Account, updatedBy string) error {
	totalHeld, err := s.holdRepo.SumActiveHoldAmountsInTx(ctx, tx, account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to sum active holds for account %s: %w", account.AccountID, err)
	}

	newAvailable := account.CurrentBalance.Add(account.EffectiveOverdraft()).Sub(totalHeld)

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateBalancesInTx(ctx, tx, account.AccountID, account.CurrentBalance, newAvailable, updatedBy, now); err != nil {
		return err
	}

	account.AvailableBalance = newAvailable
	account.LastUpdatedAt = now
	account.LastUpdatedBy = updatedBy
	return nil
}
