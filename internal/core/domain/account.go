package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the product type of an account.
type AccountType string

const (
	Savings AccountType = "SAVINGS"
	Current AccountType = "CURRENT"
	Loan    AccountType = "LOAN"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive         AccountStatus = "ACTIVE"
	AccountDormant        AccountStatus = "DORMANT"
	AccountFrozen         AccountStatus = "FROZEN"
	AccountPendingClosure AccountStatus = "PENDING_CLOSURE"
	AccountClosed         AccountStatus = "CLOSED"
)

// SigningCondition is the ownership-approval rule for an account.
type SigningCondition string

const (
	SigningSingle    SigningCondition = "SINGLE"
	SigningAnyOwner  SigningCondition = "ANY_OWNER"
	SigningAllOwners SigningCondition = "ALL_OWNERS"
)

// Account is the system-of-record view of a customer account. Balances are mutated
// exclusively through the balance service; AvailableBalance is re-derived and
// persisted on every committed mutation, never trusted across one.
type Account struct {
	AccountID         string           `json:"accountID"`
	CustomerID        string           `json:"customerID"`
	AccountType       AccountType      `json:"accountType"`
	Status            AccountStatus    `json:"status"`
	CurrencyCode      string           `json:"currencyCode"`
	CurrentBalance    decimal.Decimal  `json:"currentBalance"`
	AvailableBalance  decimal.Decimal  `json:"availableBalance"`
	AccruedInterest   decimal.Decimal  `json:"accruedInterest"`
	OverdraftLimit    decimal.Decimal  `json:"overdraftLimit"`    // meaningful only for Current accounts
	OriginalPrincipal decimal.Decimal  `json:"originalPrincipal"` // meaningful only for Loan accounts
	SigningCondition  SigningCondition `json:"signingCondition"`
	BranchID          string           `json:"branchID"` // domicile branch
	AuditFields
}

// EffectiveOverdraft returns the overdraft allowance that participates in the
// available balance derivation. Only Current accounts may draw past zero.
func (a *Account) EffectiveOverdraft() decimal.Decimal {
	if a.AccountType == Current {
		return a.OverdraftLimit
	}
	return decimal.Zero
}

// IsTransactable reports whether postings and holds are accepted for the account's
// current status. Override codes (closure settlement, frozen reversal) are handled
// by the posting engine, not here.
func (a *Account) IsTransactable() bool {
	switch a.Status {
	case AccountActive, AccountDormant:
		return true
	case AccountFrozen, AccountPendingClosure, AccountClosed:
		return false
	}
	return false
}
