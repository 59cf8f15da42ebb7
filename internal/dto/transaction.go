package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// TransactionRequest defines an inbound posting request from any channel.
type TransactionRequest struct {
	AccountID         string                 `json:"accountID" binding:"required,uuid"`
	TransactionType   domain.TransactionType `json:"transactionType" binding:"required,oneof=CREDIT DEBIT"`
	Amount            decimal.Decimal        `json:"amount" binding:"required"`
	CurrencyCode      string                 `json:"currencyCode" binding:"required,len=3"`
	Channel           domain.Channel         `json:"channel" binding:"required,channel"`
	TerminalID        *string                `json:"terminalID"`
	TransactionCode   domain.TransactionCode `json:"transactionCode" binding:"omitempty,oneof=CLOSURE_SETTLEMENT FROZEN_REVERSAL"`
	ExternalReference string                 `json:"externalReference"`
}

// TransactionResult is the synchronous outcome of a posting request.
type TransactionResult struct {
	ReferenceNumber string                   `json:"referenceNumber"`
	Status          domain.TransactionStatus `json:"status"`
}

// ApprovalDecisionRequest carries the external approval workflow's decision for a
// transaction in AwaitingApproval.
type ApprovalDecisionRequest struct {
	Decision domain.ApprovalStatus `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	ReasonID string                `json:"reasonID"`
}

// ReverseTransactionRequest asks for a posted transaction to be reversed via a new
// linked transaction.
type ReverseTransactionRequest struct {
	ReasonID string `json:"reasonID" binding:"required"`
}

// AuditEntryResponse mirrors one audit trail record.
type AuditEntryResponse struct {
	FromStatus domain.TransactionStatus `json:"fromStatus,omitempty"`
	ToStatus   domain.TransactionStatus `json:"toStatus"`
	ActorKind  domain.ActorKind         `json:"actorKind"`
	ActorID    string                   `json:"actorID,omitempty"`
	OccurredAt time.Time                `json:"occurredAt"`
	ReasonID   string                   `json:"reasonID,omitempty"`
	Digest     string                   `json:"digest"`
}

// TransactionResponse mirrors a transaction plus its audit trail.
type TransactionResponse struct {
	TransactionID         string                   `json:"transactionID"`
	AccountID             string                   `json:"accountID"`
	TransactionType       domain.TransactionType   `json:"transactionType"`
	Amount                decimal.Decimal          `json:"amount"`
	CurrencyCode          string                   `json:"currencyCode"`
	Channel               domain.Channel           `json:"channel"`
	TerminalID            *string                  `json:"terminalID,omitempty"`
	Status                domain.TransactionStatus `json:"status"`
	ReferenceNumber       string                   `json:"referenceNumber"`
	RequiresApproval      bool                     `json:"requiresApproval"`
	ApprovalStatus        *domain.ApprovalStatus   `json:"approvalStatus,omitempty"`
	RiskScore             int                      `json:"riskScore"`
	OriginalTransactionID *string                  `json:"originalTransactionID,omitempty"`
	ExternalReference     string                   `json:"externalReference,omitempty"`
	CreatedAt             time.Time                `json:"createdAt"`
	AuditTrail            []AuditEntryResponse     `json:"auditTrail,omitempty"`
}

// ToTransactionResponse converts a domain transaction and its audit trail.
func ToTransactionResponse(txn *domain.Transaction, trail []domain.TransactionAuditEntry) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:         txn.TransactionID,
		AccountID:             txn.AccountID,
		TransactionType:       txn.TransactionType,
		Amount:                txn.Amount,
		CurrencyCode:          txn.CurrencyCode,
		Channel:               txn.Channel,
		TerminalID:            txn.TerminalID,
		Status:                txn.Status,
		ReferenceNumber:       txn.ReferenceNumber,
		RequiresApproval:      txn.RequiresApproval,
		ApprovalStatus:        txn.ApprovalStatus,
		RiskScore:             txn.RiskScore,
		OriginalTransactionID: txn.OriginalTransactionID,
		ExternalReference:     txn.ExternalReference,
		CreatedAt:             txn.CreatedAt,
	}
	for _, e := range trail {
		resp.AuditTrail = append(resp.AuditTrail, AuditEntryResponse{
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ActorKind:  e.Actor.Kind,
			ActorID:    e.Actor.ID,
			OccurredAt: e.OccurredAt,
			ReasonID:   e.ReasonID,
			Digest:     e.Digest,
		})
	}
	return resp
}
