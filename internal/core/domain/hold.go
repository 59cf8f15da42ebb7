package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldType tags the business origin of a hold.
type HoldType string

const (
	HoldUnclearedFunds    HoldType = "UNCLEARED_FUNDS"
	HoldJudicialLien      HoldType = "JUDICIAL_LIEN"
	HoldCompliance        HoldType = "COMPLIANCE"
	HoldCardAuthorization HoldType = "CARD_AUTHORIZATION"
	HoldOverdraftReserve  HoldType = "OVERDRAFT_RESERVE"
)

// HoldPriority orders holds for display and reporting only; it never changes
// release precedence, which is always explicit and caller-directed.
type HoldPriority string

const (
	PriorityCritical HoldPriority = "CRITICAL"
	PriorityHigh     HoldPriority = "HIGH"
	PriorityMedium   HoldPriority = "MEDIUM"
	PriorityLow      HoldPriority = "LOW"
)

// SortRank maps a priority to its display ordering position.
func (p HoldPriority) SortRank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// HoldStatus is the lifecycle state of a hold.
type HoldStatus string

const (
	HoldActive            HoldStatus = "ACTIVE"
	HoldPartiallyReleased HoldStatus = "PARTIALLY_RELEASED"
	HoldReleased          HoldStatus = "RELEASED"
	HoldExpired           HoldStatus = "EXPIRED"
	HoldCancelled         HoldStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are permitted from this status.
// PartiallyReleased can transition again until the remaining amount reaches zero.
func (s HoldStatus) IsTerminal() bool {
	switch s {
	case HoldReleased, HoldExpired, HoldCancelled:
		return true
	case HoldActive, HoldPartiallyReleased:
		return false
	}
	return true
}

// AccountHold earmarks funds against an account, reducing available balance
// without changing current balance.
type AccountHold struct {
	HoldID           string          `json:"holdID"`
	AccountID        string          `json:"accountID"`
	Amount           decimal.Decimal `json:"amount"` // remaining amount; > 0 until terminal
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	HoldType         HoldType        `json:"holdType"`
	Priority         HoldPriority    `json:"priority"`
	Status           HoldStatus      `json:"status"`
	PlacedAt         time.Time       `json:"placedAt"`
	ExpiresAt        *time.Time      `json:"expiresAt,omitempty"` // required iff AutomaticRelease
	AutomaticRelease bool            `json:"automaticRelease"`
	ReleasedAt       *time.Time      `json:"releasedAt,omitempty"` // set iff Released or PartiallyReleased
	ReleasedBy       *string         `json:"releasedBy,omitempty"`
	ReasonID         string          `json:"reasonID"` // opaque reference, resolved by an external lookup
	SourceReference  string          `json:"sourceReference,omitempty"`
	AuditFields
}

// Remaining returns the amount still held. Zero once the hold is terminal.
func (h *AccountHold) Remaining() decimal.Decimal {
	if h.Status.IsTerminal() {
		return decimal.Zero
	}
	return h.Amount
}
