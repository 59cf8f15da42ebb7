package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/core/services"
)

type BalanceServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockHoldRepo    *MockHoldRepository
	service         portssvc.BalanceSvcFacade
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockHoldRepo = new(MockHoldRepository)
	suite.service = services.NewBalanceService(suite.mockAccountRepo, suite.mockHoldRepo)
}

func currentAccount(balance, overdraft int64) *domain.Account {
	return &domain.Account{
		AccountID:      uuid.NewString(),
		CustomerID:     uuid.NewString(),
		AccountType:    domain.Current,
		Status:         domain.AccountActive,
		CurrencyCode:   "USD",
		CurrentBalance: decimal.NewFromInt(balance),
		OverdraftLimit: decimal.NewFromInt(overdraft),
	}
}

func (suite *BalanceServiceTestSuite) TestGetBalanceSummary_DerivesAvailableFromHolds() {
	ctx := context.Background()
	account := currentAccount(1000, 500)

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockHoldRepo.On("CountActiveHolds", ctx, account.AccountID).
		Return(2, decimal.NewFromInt(300), nil).Once()

	summary, err := suite.service.GetBalanceSummary(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.True(summary.AvailableBalance.Equal(decimal.NewFromInt(1200))) // 1000 + 500 - 300
	suite.Equal(2, summary.ActiveHoldCount)
	suite.True(summary.TotalHeld.Equal(decimal.NewFromInt(300)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockHoldRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestGetBalanceSummary_SavingsIgnoresOverdraft() {
	ctx := context.Background()
	account := currentAccount(1000, 500)
	account.AccountType = domain.Savings

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockHoldRepo.On("CountActiveHolds", ctx, account.AccountID).
		Return(0, decimal.Zero, nil).Once()

	summary, err := suite.service.GetBalanceSummary(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.True(summary.AvailableBalance.Equal(decimal.NewFromInt(1000)))
	suite.True(summary.OverdraftLimit.IsZero())
}

func (suite *BalanceServiceTestSuite) TestApplyPosting_DebitWithinAvailable() {
	ctx := context.Background()
	tx := &fakeTx{}
	account := currentAccount(1000, 0)

	suite.mockHoldRepo.On("SumActiveHoldAmountsInTx", ctx, tx, account.AccountID).
		Return(decimal.NewFromInt(300), nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, tx, account.AccountID,
		decimal.NewFromInt(500), decimal.NewFromInt(200), "teller-1", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.ApplyPostingInTx(ctx, tx, account, decimal.NewFromInt(-500), "teller-1")

	suite.Require().NoError(err)
	suite.True(account.CurrentBalance.Equal(decimal.NewFromInt(500)))
	suite.True(account.AvailableBalance.Equal(decimal.NewFromInt(200)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestApplyPosting_DebitBlockedByHolds() {
	ctx := context.Background()
	tx := &fakeTx{}
	account := currentAccount(1000, 0)

	// 1000 on the book, 300 held: an 800 debit would leave available at -100.
	suite.mockHoldRepo.On("SumActiveHoldAmountsInTx", ctx, tx, account.AccountID).
		Return(decimal.NewFromInt(300), nil).Once()

	err := suite.service.ApplyPostingInTx(ctx, tx, account, decimal.NewFromInt(-800), "teller-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.True(account.CurrentBalance.Equal(decimal.NewFromInt(1000)), "balance must be untouched on rejection")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalancesInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestApplyPosting_OverdraftCoversDebit() {
	ctx := context.Background()
	tx := &fakeTx{}
	account := currentAccount(100, 500)

	suite.mockHoldRepo.On("SumActiveHoldAmountsInTx", ctx, tx, account.AccountID).
		Return(decimal.Zero, nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, tx, account.AccountID,
		decimal.NewFromInt(-300), decimal.NewFromInt(200), "teller-1", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.ApplyPostingInTx(ctx, tx, account, decimal.NewFromInt(-400), "teller-1")

	suite.Require().NoError(err)
	suite.True(account.CurrentBalance.Equal(decimal.NewFromInt(-300)))
}

func (suite *BalanceServiceTestSuite) TestApplyPosting_LoanPrincipalCannotOverpay() {
	ctx := context.Background()
	tx := &fakeTx{}
	account := &domain.Account{
		AccountID:         uuid.NewString(),
		AccountType:       domain.Loan,
		Status:            domain.AccountActive,
		CurrencyCode:      "USD",
		CurrentBalance:    decimal.NewFromInt(200),
		OriginalPrincipal: decimal.NewFromInt(5000),
	}

	suite.mockHoldRepo.On("SumActiveHoldAmountsInTx", ctx, tx, account.AccountID).
		Return(decimal.Zero, nil).Once()

	// A 300 repayment against 200 outstanding would take principal negative.
	err := suite.service.ApplyPostingInTx(ctx, tx, account, decimal.NewFromInt(-300), "teller-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *BalanceServiceTestSuite) TestApplyPosting_LoanDrawCannotExceedPrincipal() {
	ctx := context.Background()
	tx := &fakeTx{}
	account := &domain.Account{
		AccountID:         uuid.NewString(),
		AccountType:       domain.Loan,
		Status:            domain.AccountActive,
		CurrencyCode:      "USD",
		CurrentBalance:    decimal.NewFromInt(4800),
		OriginalPrincipal: decimal.NewFromInt(5000),
	}

	suite.mockHoldRepo.On("SumActiveHoldAmountsInTx", ctx, tx, account.AccountID).
		Return(decimal.Zero, nil).Once()

	err := suite.service.ApplyPostingInTx(ctx, tx, account, decimal.NewFromInt(500), "teller-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *BalanceServiceTestSuite) TestRederiveAvailable_PersistsNewAvailable() {
	ctx := context.Background()
	tx := &fakeTx{}
	account := currentAccount(500, 0)

	suite.mockHoldRepo.On("SumActiveHoldAmountsInTx", ctx, tx, account.AccountID).
		Return(decimal.NewFromInt(200), nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, tx, account.AccountID,
		decimal.NewFromInt(500), decimal.NewFromInt(300), "system", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.RederiveAvailableInTx(ctx, tx, account, "system")

	suite.Require().NoError(err)
	suite.True(account.AvailableBalance.Equal(decimal.NewFromInt(300)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
