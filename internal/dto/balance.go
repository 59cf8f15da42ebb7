package dto

import (
	"github.com/shopspring/decimal"
)

// BalanceResponse answers a balance query for one account.
type BalanceResponse struct {
	AccountID        string          `json:"accountID"`
	CurrencyCode     string          `json:"currencyCode"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	OverdraftLimit   decimal.Decimal `json:"overdraftLimit"`
	ActiveHoldCount  int             `json:"activeHoldCount"`
	TotalHeld        decimal.Decimal `json:"totalHeld"`
}

// LimitLevelResponse reports one level of the hierarchy for utilization queries.
type LimitLevelResponse struct {
	Level              string          `json:"level"`
	NodeID             string          `json:"nodeID"`
	DailyLimit         decimal.Decimal `json:"dailyLimit"`
	CurrentDailyVolume decimal.Decimal `json:"currentDailyVolume"`
	Remaining          decimal.Decimal `json:"remaining"`
}

// LimitChainResponse reports the whole terminal→branch→network chain.
type LimitChainResponse struct {
	Levels []LimitLevelResponse `json:"levels"`
}
