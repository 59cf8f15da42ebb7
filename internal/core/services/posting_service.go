package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/dto"
	"github.com/nimbusbank/corebank/internal/utils"
)

// postingService drives transactions through the posting state machine.
//
// A posting is one unit of work: the account row is locked, validations run in
// order with the first failure winning, the limit chain is reserved, the balance
// is mutated, and the transaction plus its audit entries are written — all
// committed together. A rejection rolls the whole unit back and records only the
// Failed transaction with its Created/Rejected audit pair.
type postingService struct {
	BaseService
	txManager         portsrepo.TransactionManager
	accountRepo       portsrepo.AccountRepositoryFacade
	customerRepo      portsrepo.CustomerReader
	txnRepo           portsrepo.TransactionRepositoryFacade
	limitSvc          portssvc.LimitSvcFacade
	balanceSvc        portssvc.BalanceSvcFacade
	approvalThreshold decimal.Decimal
}

// NewPostingService creates a new posting service. approvalThreshold is the
// amount above which AllOwners-signed accounts require workflow approval.
func NewPostingService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	customerRepo portsrepo.CustomerReader,
	txnRepo portsrepo.TransactionRepositoryFacade,
	limitSvc portssvc.LimitSvcFacade,
	balanceSvc portssvc.BalanceSvcFacade,
	approvalThreshold decimal.Decimal,
) portssvc.PostingSvcFacade {
	return &postingService{
		txManager:         txManager,
		accountRepo:       accountRepo,
		customerRepo:      customerRepo,
		txnRepo:           txnRepo,
		limitSvc:          limitSvc,
		balanceSvc:        balanceSvc,
		approvalThreshold: approvalThreshold,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

func (s *postingService) PostTransaction(ctx context.Context, req dto.TransactionRequest, actor domain.Actor) (*dto.TransactionResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transaction amount must be positive, got %s", apperrors.ErrValidation, req.Amount.String())
	}

	now := time.Now().UTC()
	reference, err := utils.GenerateReferenceNumber(now)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate reference number", err)
	}

	txn := domain.Transaction{
		TransactionID:     uuid.NewString(),
		AccountID:         req.AccountID,
		TransactionType:   req.TransactionType,
		Amount:            req.Amount,
		CurrencyCode:      req.CurrencyCode,
		Channel:           req.Channel,
		TerminalID:        req.TerminalID,
		Status:            domain.TxnPending,
		ReferenceNumber:   reference,
		TransactionCode:   req.TransactionCode,
		ExternalReference: req.ExternalReference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.Ref(),
			LastUpdatedAt: now,
			LastUpdatedBy: actor.Ref(),
		},
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	account, validationErr := s.validateAndLockAccount(ctx, tx, &txn)
	if validationErr == nil {
		validationErr = s.checkSigningCondition(&txn, account)
		if validationErr == nil && txn.RequiresApproval {
			// Approval gate: park the transaction before any balance or counter
			// effect; the unit of work above is discarded untouched.
			_ = s.txManager.Rollback(ctx, tx)
			return s.parkAwaitingApproval(ctx, &txn, actor)
		}
	}
	if validationErr == nil {
		validationErr = s.reserveAndApply(ctx, tx, &txn, account, actor)
	}

	if validationErr != nil {
		_ = s.txManager.Rollback(ctx, tx)
		if recErr := s.recordRejection(ctx, &txn, actor); recErr != nil {
			s.LogError(ctx, recErr, "Failed to record rejected transaction", slog.String("reference", reference))
		}
		return nil, validationErr
	}

	if err := s.advanceStatus(&txn, domain.TxnPosted); err != nil {
		return nil, err
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}
	entries := []domain.TransactionAuditEntry{
		s.newAuditEntry(&txn, "", domain.TxnPending, actor, ""),
		s.newAuditEntry(&txn, domain.TxnPending, domain.TxnPosted, actor, ""),
	}
	if err := s.txnRepo.SaveAuditEntriesInTx(ctx, tx, entries); err != nil {
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("reference", reference),
		slog.String("account_id", txn.AccountID),
		slog.String("type", string(txn.TransactionType)),
		slog.String("amount", txn.Amount.String()))
	return &dto.TransactionResult{ReferenceNumber: reference, Status: domain.TxnPosted}, nil
}

// validateAndLockAccount performs validation steps 1–2 under the account lock:
// account exists and is transactable, owning customer may transact. Override
// transaction codes (closure settlement, frozen reversal) bypass both.
func (s *postingService) validateAndLockAccount(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, txn.AccountID)
	if err != nil {
		return nil, err
	}

	if txn.CurrencyCode != account.CurrencyCode {
		return nil, fmt.Errorf("%w: transaction currency %s does not match account currency %s",
			apperrors.ErrValidation, txn.CurrencyCode, account.CurrencyCode)
	}

	if !account.IsTransactable() && !txn.TransactionCode.IsOverride() {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrStateInvalid, account.AccountID, account.Status)
	}

	customer, err := s.customerRepo.FindCustomerByID(ctx, account.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.CanTransact() && !txn.TransactionCode.IsOverride() {
		return nil, fmt.Errorf("%w: customer %s is %s", apperrors.ErrStateInvalid, customer.CustomerID, customer.Status)
	}

	return account, nil
}

// checkSigningCondition performs validation step 3: AllOwners accounts route
// large transactions through the approval workflow.
func (s *postingService) checkSigningCondition(txn *domain.Transaction, account *domain.Account) error {
	if account.SigningCondition == domain.SigningAllOwners && txn.Amount.GreaterThan(s.approvalThreshold) {
		pending := domain.ApprovalPending
		txn.RequiresApproval = true
		txn.ApprovalStatus = &pending
	}
	return nil
}

// reserveAndApply performs validation steps 4–5: limit chain reservation when a
// terminal is present, then the balance mutation.
func (s *postingService) reserveAndApply(ctx context.Context, tx pgx.Tx, txn *domain.Transaction, account *domain.Account, actor domain.Actor) error {
	if txn.TerminalID != nil {
		if _, err := s.limitSvc.CheckAndReserveInTx(ctx, tx, *txn.TerminalID, txn.Amount); err != nil {
			return err
		}
	}

	signed := txn.TransactionType.SignedAmount(txn.Amount)
	return s.balanceSvc.ApplyPostingInTx(ctx, tx, account, signed, actor.Ref())
}

// parkAwaitingApproval persists the transaction in AwaitingApproval with its
// Created and transition audit entries. No balance or counter effects.
func (s *postingService) parkAwaitingApproval(ctx context.Context, txn *domain.Transaction, actor domain.Actor) (*dto.TransactionResult, error) {
	if err := s.advanceStatus(txn, domain.TxnAwaitingApproval); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, *txn); err != nil {
		return nil, err
	}
	entries := []domain.TransactionAuditEntry{
		s.newAuditEntry(txn, "", domain.TxnPending, actor, ""),
		s.newAuditEntry(txn, domain.TxnPending, domain.TxnAwaitingApproval, actor, ""),
	}
	if err := s.txnRepo.SaveAuditEntriesInTx(ctx, tx, entries); err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction awaiting approval",
		slog.String("reference", txn.ReferenceNumber),
		slog.String("account_id", txn.AccountID),
		slog.String("amount", txn.Amount.String()))
	return &dto.TransactionResult{ReferenceNumber: txn.ReferenceNumber, Status: domain.TxnAwaitingApproval}, nil
}

// recordRejection persists the Failed transaction and its Created/Rejected audit
// pair in a fresh unit of work, after the posting transaction was rolled back.
// Balances, holds and limit counters are untouched.
func (s *postingService) recordRejection(ctx context.Context, txn *domain.Transaction, actor domain.Actor) error {
	if err := s.advanceStatus(txn, domain.TxnFailed); err != nil {
		return err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.txManager.Rollback(ctx, tx)

	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, *txn); err != nil {
		return err
	}
	entries := []domain.TransactionAuditEntry{
		s.newAuditEntry(txn, "", domain.TxnPending, actor, ""),
		s.newAuditEntry(txn, domain.TxnPending, domain.TxnFailed, actor, ""),
	}
	if err := s.txnRepo.SaveAuditEntriesInTx(ctx, tx, entries); err != nil {
		return err
	}
	return s.txManager.Commit(ctx, tx)
}

func (s *postingService) ApproveTransaction(ctx context.Context, reference string, req dto.ApprovalDecisionRequest, actor domain.Actor) (*dto.TransactionResult, error) {
	txn, err := s.txnRepo.FindTransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TxnAwaitingApproval {
		return nil, fmt.Errorf("%w: transaction %s is %s, expected %s",
			apperrors.ErrStateInvalid, reference, txn.Status, domain.TxnAwaitingApproval)
	}

	now := time.Now().UTC()
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = actor.Ref()

	if req.Decision == domain.ApprovalRejected {
		rejected := domain.ApprovalRejected
		txn.ApprovalStatus = &rejected
		if err := s.advanceStatus(txn, domain.TxnApprovalRejected); err != nil {
			return nil, err
		}

		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer s.txManager.Rollback(ctx, tx)

		if err := s.txnRepo.UpdateTransactionStatusInTx(ctx, tx, *txn, domain.TxnAwaitingApproval); err != nil {
			return nil, err
		}
		entry := s.newAuditEntry(txn, domain.TxnAwaitingApproval, domain.TxnApprovalRejected, actor, req.ReasonID)
		if err := s.txnRepo.SaveAuditEntriesInTx(ctx, tx, []domain.TransactionAuditEntry{entry}); err != nil {
			return nil, err
		}
		if err := s.txManager.Commit(ctx, tx); err != nil {
			return nil, err
		}

		s.LogInfo(ctx, "Transaction approval rejected", slog.String("reference", reference))
		return &dto.TransactionResult{ReferenceNumber: reference, Status: domain.TxnApprovalRejected}, nil
	}

	// Approved: resume the state machine and run the posting steps now. A funding
	// or limit rejection leaves the transaction awaiting approval so the decision
	// can be re-applied once capacity exists.
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	account, err := s.validateAndLockAccount(ctx, tx, txn)
	if err != nil {
		return nil, err
	}
	if err := s.reserveAndApply(ctx, tx, txn, account, actor); err != nil {
		return nil, err
	}

	approved := domain.ApprovalApproved
	txn.ApprovalStatus = &approved
	if err := s.advanceStatus(txn, domain.TxnPosted); err != nil {
		return nil, err
	}

	if err := s.txnRepo.UpdateTransactionStatusInTx(ctx, tx, *txn, domain.TxnAwaitingApproval); err != nil {
		return nil, err
	}
	entry := s.newAuditEntry(txn, domain.TxnAwaitingApproval, domain.TxnPosted, actor, req.ReasonID)
	if err := s.txnRepo.SaveAuditEntriesInTx(ctx, tx, []domain.TransactionAuditEntry{entry}); err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction approved and posted", slog.String("reference", reference))
	return &dto.TransactionResult{ReferenceNumber: reference, Status: domain.TxnPosted}, nil
}

func (s *postingService) ReverseTransaction(ctx context.Context, reference string, req dto.ReverseTransactionRequest, actor domain.Actor) (*dto.TransactionResult, error) {
	original, err := s.txnRepo.FindTransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.TxnPosted {
		return nil, fmt.Errorf("%w: only posted transactions can be reversed, %s is %s",
			apperrors.ErrStateInvalid, reference, original.Status)
	}

	now := time.Now().UTC()
	reversalRef, err := utils.GenerateReferenceNumber(now)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate reference number", err)
	}

	reversal := domain.Transaction{
		TransactionID:         uuid.NewString(),
		AccountID:             original.AccountID,
		TransactionType:       original.TransactionType.Opposite(),
		Amount:                original.Amount,
		CurrencyCode:          original.CurrencyCode,
		Channel:               original.Channel,
		Status:                domain.TxnPending,
		ReferenceNumber:       reversalRef,
		TransactionCode:       domain.CodeFrozenReversal,
		OriginalTransactionID: &original.TransactionID,
		ExternalReference:     original.ExternalReference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.Ref(),
			LastUpdatedAt: now,
			LastUpdatedBy: actor.Ref(),
		},
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	account, err := s.validateAndLockAccount(ctx, tx, &reversal)
	if err != nil {
		return nil, err
	}

	// Claim the original before any balance effect. The status check above ran on
	// an unlocked snapshot; the guarded UPDATE is the authoritative one, so of two
	// concurrent reversals only the first can post a compensating entry.
	if err := s.advanceStatus(original, domain.TxnReversed); err != nil {
		return nil, err
	}
	original.LastUpdatedAt = now
	original.LastUpdatedBy = actor.Ref()
	if err := s.txnRepo.UpdateTransactionStatusInTx(ctx, tx, *original, domain.TxnPosted); err != nil {
		return nil, err
	}

	signed := reversal.TransactionType.SignedAmount(reversal.Amount)
	if err := s.balanceSvc.ApplyPostingInTx(ctx, tx, account, signed, actor.Ref()); err != nil {
		return nil, err
	}

	if err := s.advanceStatus(&reversal, domain.TxnPosted); err != nil {
		return nil, err
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, reversal); err != nil {
		return nil, err
	}

	entries := []domain.TransactionAuditEntry{
		s.newAuditEntry(&reversal, "", domain.TxnPending, actor, req.ReasonID),
		s.newAuditEntry(&reversal, domain.TxnPending, domain.TxnPosted, actor, req.ReasonID),
		s.newAuditEntry(original, domain.TxnPosted, domain.TxnReversed, actor, req.ReasonID),
	}
	if err := s.txnRepo.SaveAuditEntriesInTx(ctx, tx, entries); err != nil {
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Transaction reversed",
		slog.String("original_reference", reference),
		slog.String("reversal_reference", reversalRef))
	return &dto.TransactionResult{ReferenceNumber: reversalRef, Status: domain.TxnPosted}, nil
}

func (s *postingService) GetTransaction(ctx context.Context, reference string) (*dto.TransactionResponse, error) {
	txn, err := s.txnRepo.FindTransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	trail, err := s.txnRepo.ListAuditEntries(ctx, txn.TransactionID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToTransactionResponse(txn, trail)
	return &resp, nil
}

// advanceStatus moves txn to next after checking the state machine matrix. The
// matrix check runs on in-memory state; the persisted transition is additionally
// guarded by the expected source status in the repository, so a stale snapshot
// that passes here still loses the race at the UPDATE.
func (s *postingService) advanceStatus(txn *domain.Transaction, next domain.TransactionStatus) error {
	if !txn.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: transaction %s cannot move from %s to %s",
			apperrors.ErrStateInvalid, txn.ReferenceNumber, txn.Status, next)
	}
	txn.Status = next
	return nil
}

func (s *postingService) newAuditEntry(txn *domain.Transaction, from, to domain.TransactionStatus, actor domain.Actor, reasonID string) domain.TransactionAuditEntry {
	occurredAt := time.Now().UTC()
	return domain.TransactionAuditEntry{
		EntryID:       uuid.NewString(),
		TransactionID: txn.TransactionID,
		FromStatus:    from,
		ToStatus:      to,
		Actor:         actor,
		OccurredAt:    occurredAt,
		ReasonID:      reasonID,
		Digest:        utils.ComputeAuditDigest(txn.TransactionID, string(from), string(to), actor.Ref(), reasonID, occurredAt),
	}
}
