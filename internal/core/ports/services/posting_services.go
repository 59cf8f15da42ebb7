package services

import (
	"context"

	"github.com/nimbusbank/corebank/internal/core/domain"
	"github.com/nimbusbank/corebank/internal/dto"
)

// PostingSvcFacade drives transactions through the posting state machine.
type PostingSvcFacade interface {
	// PostTransaction validates and posts a transaction request. Rejections are
	// synchronous, typed, and leave balances, holds and limit counters untouched.
	PostTransaction(ctx context.Context, req dto.TransactionRequest, actor domain.Actor) (*dto.TransactionResult, error)

	// ApproveTransaction consumes the external approval decision for a transaction
	// in AwaitingApproval and resumes the state machine.
	ApproveTransaction(ctx context.Context, reference string, req dto.ApprovalDecisionRequest, actor domain.Actor) (*dto.TransactionResult, error)

	// ReverseTransaction posts a new transaction that undoes a Posted one and
	// marks the original Reversed. The original is never mutated in place.
	ReverseTransaction(ctx context.Context, reference string, req dto.ReverseTransactionRequest, actor domain.Actor) (*dto.TransactionResult, error)

	// GetTransaction returns a transaction with its audit trail.
	GetTransaction(ctx context.Context, reference string) (*dto.TransactionResponse, error)
}
