package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates the direction of a transaction against the account.
type TransactionType string

const (
	Credit TransactionType = "CREDIT"
	Debit  TransactionType = "DEBIT"
)

// SignedAmount applies the direction to the transaction amount: credits increase
// the current balance, debits decrease it.
func (t TransactionType) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	if t == Debit {
		return amount.Neg()
	}
	return amount
}

// Opposite returns the reversing direction.
func (t TransactionType) Opposite() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// Channel identifies the origin of a transaction request.
type Channel string

const (
	ChannelTeller Channel = "TELLER"
	ChannelATM    Channel = "ATM"
	ChannelAgent  Channel = "AGENT"
	ChannelOnline Channel = "ONLINE"
)

// TransactionStatus is the posting state machine state.
type TransactionStatus string

const (
	TxnPending          TransactionStatus = "PENDING"
	TxnAwaitingApproval TransactionStatus = "AWAITING_APPROVAL"
	TxnPosted           TransactionStatus = "POSTED"
	TxnFailed           TransactionStatus = "FAILED"
	TxnApprovalRejected TransactionStatus = "APPROVAL_REJECTED"
	TxnReversed         TransactionStatus = "REVERSED"
	TxnOnHold           TransactionStatus = "ON_HOLD"
)

// CanTransitionTo reports whether the state machine permits moving from s to next.
// Posted→Reversed is the marker set when a linked reversal posts; a reversal is
// always a new transaction, never an in-place mutation of the original's effects.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TxnPending:
		return next == TxnAwaitingApproval || next == TxnPosted || next == TxnFailed || next == TxnOnHold
	case TxnAwaitingApproval:
		return next == TxnPosted || next == TxnApprovalRejected
	case TxnOnHold:
		return next == TxnPosted || next == TxnFailed
	case TxnPosted:
		return next == TxnReversed
	case TxnFailed, TxnApprovalRejected, TxnReversed:
		return false
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions other than
// the Posted→Reversed marker.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TxnFailed, TxnApprovalRejected, TxnReversed:
		return true
	}
	return false
}

// ApprovalStatus is the decision supplied by the external approval workflow.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// TransactionCode marks recognized override flows that relax status validation.
type TransactionCode string

const (
	CodeNone              TransactionCode = ""
	CodeClosureSettlement TransactionCode = "CLOSURE_SETTLEMENT"
	CodeFrozenReversal    TransactionCode = "FROZEN_REVERSAL"
)

// IsOverride reports whether the code bypasses the account/customer status checks.
func (c TransactionCode) IsOverride() bool {
	return c == CodeClosureSettlement || c == CodeFrozenReversal
}

// Transaction is a single financial movement against an account. Immutable once
// Posted; reversal creates a new transaction referencing the original.
type Transaction struct {
	TransactionID         string            `json:"transactionID"`
	AccountID             string            `json:"accountID"`
	TransactionType       TransactionType   `json:"transactionType"`
	Amount                decimal.Decimal   `json:"amount"` // always positive
	CurrencyCode          string            `json:"currencyCode"`
	Channel               Channel           `json:"channel"`
	TerminalID            *string           `json:"terminalID,omitempty"`
	Status                TransactionStatus `json:"status"`
	ReferenceNumber       string            `json:"referenceNumber"` // unique
	RequiresApproval      bool              `json:"requiresApproval"`
	ApprovalStatus        *ApprovalStatus   `json:"approvalStatus,omitempty"` // required iff RequiresApproval
	RiskScore             int               `json:"riskScore"`
	TransactionCode       TransactionCode   `json:"transactionCode,omitempty"`
	OriginalTransactionID *string           `json:"originalTransactionID,omitempty"` // set on reversals
	ExternalReference     string            `json:"externalReference,omitempty"`
	AuditFields
}

// TransactionAuditEntry is an append-only record of a single status transition.
// Entries are written only for committed transitions and never updated or deleted.
type TransactionAuditEntry struct {
	EntryID       string            `json:"entryID"`
	TransactionID string            `json:"transactionID"`
	FromStatus    TransactionStatus `json:"fromStatus"` // empty on the Created entry
	ToStatus      TransactionStatus `json:"toStatus"`
	Actor         Actor             `json:"actor"`
	OccurredAt    time.Time         `json:"occurredAt"`
	ReasonID      string            `json:"reasonID"` // opaque reference
	Digest        string            `json:"digest"`   // tamper-evident content hash
}
