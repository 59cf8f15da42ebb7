package domain

import (
	"github.com/shopspring/decimal"
)

// LimitLevel names a tier of the daily volume hierarchy.
type LimitLevel string

const (
	LevelTerminal LimitLevel = "TERMINAL"
	LevelBranch   LimitLevel = "BRANCH"
	LevelNetwork  LimitLevel = "NETWORK"
)

// TerminalLimit caps daily transaction volume through one terminal. A terminal
// belongs to a branch, a branch to a network; the chain is walked bottom-up and
// all three counters move together or not at all.
type TerminalLimit struct {
	TerminalID         string          `json:"terminalID"`
	BranchID           string          `json:"branchID"`
	DailyLimit         decimal.Decimal `json:"dailyLimit"`
	CurrentDailyVolume decimal.Decimal `json:"currentDailyVolume"`
	AuditFields
}

// BranchLimit caps daily transaction volume through one branch.
type BranchLimit struct {
	BranchID           string          `json:"branchID"`
	NetworkID          string          `json:"networkID"`
	DailyLimit         decimal.Decimal `json:"dailyLimit"`
	CurrentDailyVolume decimal.Decimal `json:"currentDailyVolume"`
	AuditFields
}

// NetworkLimit caps daily transaction volume across the whole network.
type NetworkLimit struct {
	NetworkID          string          `json:"networkID"`
	DailyLimit         decimal.Decimal `json:"dailyLimit"`
	CurrentDailyVolume decimal.Decimal `json:"currentDailyVolume"`
	AuditFields
}

// LimitChain is the resolved terminal→branch→network ownership chain for one
// terminal, loaded and locked as a unit.
type LimitChain struct {
	Terminal TerminalLimit `json:"terminal"`
	Branch   BranchLimit   `json:"branch"`
	Network  NetworkLimit  `json:"network"`
}

// Remaining returns the unused capacity at the given level.
func (c *LimitChain) Remaining(level LimitLevel) decimal.Decimal {
	switch level {
	case LevelTerminal:
		return c.Terminal.DailyLimit.Sub(c.Terminal.CurrentDailyVolume)
	case LevelBranch:
		return c.Branch.DailyLimit.Sub(c.Branch.CurrentDailyVolume)
	case LevelNetwork:
		return c.Network.DailyLimit.Sub(c.Network.CurrentDailyVolume)
	}
	return decimal.Zero
}

// FirstBreach walks the chain bottom-up and returns the first level whose
// remaining capacity cannot absorb amount, or "" when the whole chain can.
func (c *LimitChain) FirstBreach(amount decimal.Decimal) LimitLevel {
	for _, level := range []LimitLevel{LevelTerminal, LevelBranch, LevelNetwork} {
		if amount.GreaterThan(c.Remaining(level)) {
			return level
		}
	}
	return ""
}
