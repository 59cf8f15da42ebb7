package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testChain(terminalUsed, branchUsed, networkUsed int64) *LimitChain {
	return &LimitChain{
		Terminal: TerminalLimit{
			DailyLimit:         decimal.NewFromInt(5000),
			CurrentDailyVolume: decimal.NewFromInt(terminalUsed),
		},
		Branch: BranchLimit{
			DailyLimit:         decimal.NewFromInt(50000),
			CurrentDailyVolume: decimal.NewFromInt(branchUsed),
		},
		Network: NetworkLimit{
			DailyLimit:         decimal.NewFromInt(500000),
			CurrentDailyVolume: decimal.NewFromInt(networkUsed),
		},
	}
}

func TestLimitChainFirstBreach(t *testing.T) {
	testCases := []struct {
		name     string
		chain    *LimitChain
		amount   int64
		expected LimitLevel
	}{
		{"fits everywhere", testChain(0, 0, 0), 5000, LimitLevel("")},
		{"exact terminal capacity fits", testChain(4800, 0, 0), 200, LimitLevel("")},
		{"terminal breached first", testChain(4800, 0, 0), 300, LevelTerminal},
		{"branch breached when terminal fits", testChain(0, 49900, 0), 300, LevelBranch},
		{"network breached last", testChain(0, 0, 499950), 300, LevelNetwork},
		{"terminal reported before branch when both breach", testChain(4900, 49900, 0), 300, LevelTerminal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.chain.FirstBreach(decimal.NewFromInt(tc.amount)))
		})
	}
}

func TestLimitChainRemaining(t *testing.T) {
	chain := testChain(1000, 10000, 100000)

	assert.True(t, chain.Remaining(LevelTerminal).Equal(decimal.NewFromInt(4000)))
	assert.True(t, chain.Remaining(LevelBranch).Equal(decimal.NewFromInt(40000)))
	assert.True(t, chain.Remaining(LevelNetwork).Equal(decimal.NewFromInt(400000)))
	assert.True(t, chain.Remaining(LimitLevel("OTHER")).IsZero())
}
