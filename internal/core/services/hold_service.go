package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/dto"
)

// holdService owns the hold lifecycle. Every mutation runs inside one DB
// transaction with the account row locked, so holds and postings against the
// same account are serialized.
type holdService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	holdRepo    portsrepo.HoldRepositoryFacade
	balanceSvc  portssvc.BalanceSvcFacade
}

// NewHoldService creates a new hold service.
func NewHoldService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	holdRepo portsrepo.HoldRepositoryFacade,
	balanceSvc portssvc.BalanceSvcFacade,
) portssvc.HoldSvcFacade {
	return &holdService{
		txManager:   txManager,
		accountRepo: accountRepo,
		holdRepo:    holdRepo,
		balanceSvc:  balanceSvc,
	}
}

var _ portssvc.HoldSvcFacade = (*holdService)(nil)

func (s *holdService) PlaceHold(ctx context.Context, accountID string, req dto.PlaceHoldRequest, actor domain.Actor) (*domain.AccountHold, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: hold amount must be positive, got %s", apperrors.ErrValidation, req.Amount.String())
	}
	if req.AutomaticRelease && req.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: expiry timestamp is required when automatic release is requested", apperrors.ErrValidation)
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.IsTransactable() {
		return nil, fmt.Errorf("%w: cannot place hold on account in status %s", apperrors.ErrStateInvalid, account.Status)
	}

	totalHeld, err := s.holdRepo.SumActiveHoldAmountsInTx(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	// Active holds may never earmark more than the account could actually fund.
	capacity := account.CurrentBalance.Add(account.EffectiveOverdraft())
	if totalHeld.Add(req.Amount).GreaterThan(capacity) {
		return nil, fmt.Errorf("%w: hold of %s exceeds remaining capacity %s on account %s",
			apperrors.ErrInsufficientFunds, req.Amount.String(), capacity.Sub(totalHeld).String(), accountID)
	}

	now := time.Now().UTC()
	hold := domain.AccountHold{
		HoldID:           uuid.NewString(),
		AccountID:        accountID,
		Amount:           req.Amount,
		OriginalAmount:   req.Amount,
		HoldType:         req.HoldType,
		Priority:         priority,
		Status:           domain.HoldActive,
		PlacedAt:         now,
		ExpiresAt:        req.ExpiresAt,
		AutomaticRelease: req.AutomaticRelease,
		ReasonID:         req.ReasonID,
		SourceReference:  req.SourceReference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.Ref(),
			LastUpdatedAt: now,
			LastUpdatedBy: actor.Ref(),
		},
	}

	if err := s.holdRepo.SaveHoldInTx(ctx, tx, hold); err != nil {
		return nil, err
	}

	if err := s.balanceSvc.RederiveAvailableInTx(ctx, tx, account, actor.Ref()); err != nil {
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Hold placed",
		slog.String("hold_id", hold.HoldID),
		slog.String("account_id", accountID),
		slog.String("amount", hold.Amount.String()),
		slog.String("hold_type", string(hold.HoldType)))
	return &hold, nil
}

func (s *holdService) ReleaseHold(ctx context.Context, holdID string, req dto.ReleaseHoldRequest, actor domain.Actor) (*domain.AccountHold, error) {
	// Snapshot read to learn the owning account; the authoritative status check
	// happens again under the account lock.
	snapshot, err := s.holdRepo.FindHoldByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if snapshot.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: hold %s is %s", apperrors.ErrAlreadyTerminal, holdID, snapshot.Status)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, snapshot.AccountID)
	if err != nil {
		return nil, err
	}

	hold, err := s.holdRepo.FindHoldByIDForUpdate(ctx, tx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: hold %s is %s", apperrors.ErrAlreadyTerminal, holdID, hold.Status)
	}

	remaining := hold.Amount
	releaseAmount := remaining
	if req.ReleaseAmount != nil {
		releaseAmount = *req.ReleaseAmount
	}
	if releaseAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: release amount must be positive, got %s", apperrors.ErrValidation, releaseAmount.String())
	}
	if releaseAmount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: release amount %s exceeds remaining hold amount %s",
			apperrors.ErrValidation, releaseAmount.String(), remaining.String())
	}

	now := time.Now().UTC()
	actorRef := actor.Ref()
	fromStatuses := []domain.HoldStatus{domain.HoldActive, domain.HoldPartiallyReleased}

	hold.Amount = remaining.Sub(releaseAmount)
	if hold.Amount.IsZero() {
		hold.Status = domain.HoldReleased
	} else {
		hold.Status = domain.HoldPartiallyReleased
	}
	hold.ReleasedAt = &now
	hold.ReleasedBy = &actorRef
	hold.LastUpdatedAt = now
	hold.LastUpdatedBy = actorRef

	if err := s.holdRepo.UpdateHoldInTx(ctx, tx, *hold, fromStatuses); err != nil {
		return nil, err
	}

	if err := s.balanceSvc.RederiveAvailableInTx(ctx, tx, account, actorRef); err != nil {
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Hold released",
		slog.String("hold_id", hold.HoldID),
		slog.String("account_id", hold.AccountID),
		slog.String("released_amount", releaseAmount.String()),
		slog.String("status", string(hold.Status)))
	return hold, nil
}

func (s *holdService) CancelHold(ctx context.Context, holdID string, reasonID string, actor domain.Actor) (*domain.AccountHold, error) {
	snapshot, err := s.holdRepo.FindHoldByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if snapshot.Status != domain.HoldActive {
		return nil, fmt.Errorf("%w: only active holds can be cancelled, hold %s is %s",
			apperrors.ErrStateInvalid, holdID, snapshot.Status)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, snapshot.AccountID)
	if err != nil {
		return nil, err
	}

	hold, err := s.holdRepo.FindHoldByIDForUpdate(ctx, tx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.Status != domain.HoldActive {
		return nil, fmt.Errorf("%w: only active holds can be cancelled, hold %s is %s",
			apperrors.ErrStateInvalid, holdID, hold.Status)
	}

	now := time.Now().UTC()
	hold.Status = domain.HoldCancelled
	hold.Amount = decimal.Zero
	hold.LastUpdatedAt = now
	hold.LastUpdatedBy = actor.Ref()

	if err := s.holdRepo.UpdateHoldInTx(ctx, tx, *hold, []domain.HoldStatus{domain.HoldActive}); err != nil {
		return nil, err
	}

	if err := s.balanceSvc.RederiveAvailableInTx(ctx, tx, account, actor.Ref()); err != nil {
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Hold cancelled",
		slog.String("hold_id", hold.HoldID),
		slog.String("account_id", hold.AccountID),
		slog.String("reason_id", reasonID))
	return hold, nil
}

func (s *holdService) ListHolds(ctx context.Context, accountID string) ([]domain.AccountHold, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	holds, err := s.holdRepo.ListHoldsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if holds == nil {
		holds = []domain.AccountHold{}
	}
	return holds, nil
}

// SweepExpired processes expired holds account by account, taking the account
// lock first like every other balance-affecting path. It may run concurrently
// with live traffic: the status-guarded UPDATE leaves concurrently released
// holds untouched, and re-running against already-terminal holds is a no-op.
func (s *holdService) SweepExpired(ctx context.Context, asOf time.Time) (*dto.SweepResult, error) {
	candidates, err := s.holdRepo.FindExpiredHoldCandidates(ctx, asOf)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if !seen[c.AccountID] {
			seen[c.AccountID] = true
			accountIDs = append(accountIDs, c.AccountID)
		}
	}

	result := &dto.SweepResult{TotalReleased: decimal.Zero, AsOf: asOf}
	systemRef := domain.SystemActor().Ref()

	for _, accountID := range accountIDs {
		swept, err := s.sweepAccount(ctx, accountID, asOf, systemRef)
		if err != nil {
			s.LogError(ctx, err, "Failed to sweep expired holds for account", slog.String("account_id", accountID))
			return nil, err
		}
		for _, h := range swept {
			result.SweptCount++
			result.TotalReleased = result.TotalReleased.Add(h.Amount)
		}
	}

	s.LogInfo(ctx, "Expired hold sweep completed",
		slog.Int("swept_count", result.SweptCount),
		slog.String("total_released", result.TotalReleased.String()),
		slog.Time("as_of", asOf))
	return result, nil
}

func (s *holdService) sweepAccount(ctx context.Context, accountID string, asOf time.Time, releasedBy string) ([]portsrepo.SweptHold, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	swept, err := s.holdRepo.SweepAccountExpiredInTx(ctx, tx, accountID, asOf, releasedBy)
	if err != nil {
		return nil, err
	}
	if len(swept) == 0 {
		// Everything expired here was released by someone else in the meantime.
		return nil, s.txManager.Rollback(ctx, tx)
	}

	if err := s.balanceSvc.RederiveAvailableInTx(ctx, tx, account, releasedBy); err != nil {
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return swept, nil
}
