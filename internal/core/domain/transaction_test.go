package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusCanTransitionTo(t *testing.T) {
	testCases := []struct {
		name     string
		from     TransactionStatus
		to       TransactionStatus
		expected bool
	}{
		{"Pending to AwaitingApproval", TxnPending, TxnAwaitingApproval, true},
		{"Pending to Posted", TxnPending, TxnPosted, true},
		{"Pending to Failed", TxnPending, TxnFailed, true},
		{"Pending to OnHold", TxnPending, TxnOnHold, true},
		{"Pending to Reversed", TxnPending, TxnReversed, false},
		{"AwaitingApproval to Posted", TxnAwaitingApproval, TxnPosted, true},
		{"AwaitingApproval to ApprovalRejected", TxnAwaitingApproval, TxnApprovalRejected, true},
		{"AwaitingApproval to Failed", TxnAwaitingApproval, TxnFailed, false},
		{"OnHold to Posted", TxnOnHold, TxnPosted, true},
		{"OnHold to Failed", TxnOnHold, TxnFailed, true},
		{"OnHold to AwaitingApproval", TxnOnHold, TxnAwaitingApproval, false},
		{"Posted to Reversed", TxnPosted, TxnReversed, true},
		{"Posted to Failed", TxnPosted, TxnFailed, false},
		{"Failed is terminal", TxnFailed, TxnPosted, false},
		{"ApprovalRejected is terminal", TxnApprovalRejected, TxnPosted, false},
		{"Reversed is terminal", TxnReversed, TxnPosted, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestTransactionStatusIsTerminal(t *testing.T) {
	assert.True(t, TxnFailed.IsTerminal())
	assert.True(t, TxnApprovalRejected.IsTerminal())
	assert.True(t, TxnReversed.IsTerminal())

	assert.False(t, TxnPending.IsTerminal())
	assert.False(t, TxnAwaitingApproval.IsTerminal())
	assert.False(t, TxnOnHold.IsTerminal())
	// Posted still accepts the Reversed marker.
	assert.False(t, TxnPosted.IsTerminal())
}

func TestTransactionTypeSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(250)

	assert.True(t, Credit.SignedAmount(amount).Equal(decimal.NewFromInt(250)))
	assert.True(t, Debit.SignedAmount(amount).Equal(decimal.NewFromInt(-250)))
}

func TestTransactionTypeOpposite(t *testing.T) {
	assert.Equal(t, Credit, Debit.Opposite())
	assert.Equal(t, Debit, Credit.Opposite())
}

func TestTransactionCodeIsOverride(t *testing.T) {
	assert.True(t, CodeClosureSettlement.IsOverride())
	assert.True(t, CodeFrozenReversal.IsOverride())

	assert.False(t, CodeNone.IsOverride())
	assert.False(t, TransactionCode("SOMETHING_ELSE").IsOverride())
}
