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

type LimitServiceTestSuite struct {
	suite.Suite
	mockLimitRepo *MockLimitRepository
	service       portssvc.LimitSvcFacade
	tx            *fakeTx
}

func (suite *LimitServiceTestSuite) SetupTest() {
	suite.mockLimitRepo = new(MockLimitRepository)
	suite.service = services.NewLimitService(suite.mockLimitRepo)
	suite.tx = &fakeTx{}
}

// limitChain builds a resolved chain with the given used volume at each level.
func limitChain(terminalUsed, branchUsed, networkUsed int64) *domain.LimitChain {
	return &domain.LimitChain{
		Terminal: domain.TerminalLimit{
			TerminalID:         uuid.NewString(),
			BranchID:           uuid.NewString(),
			DailyLimit:         decimal.NewFromInt(5000),
			CurrentDailyVolume: decimal.NewFromInt(terminalUsed),
		},
		Branch: domain.BranchLimit{
			BranchID:           uuid.NewString(),
			NetworkID:          uuid.NewString(),
			DailyLimit:         decimal.NewFromInt(50000),
			CurrentDailyVolume: decimal.NewFromInt(branchUsed),
		},
		Network: domain.NetworkLimit{
			NetworkID:          uuid.NewString(),
			DailyLimit:         decimal.NewFromInt(500000),
			CurrentDailyVolume: decimal.NewFromInt(networkUsed),
		},
	}
}

func (suite *LimitServiceTestSuite) TestCheckAndReserve_IncrementsAllThreeLevels() {
	ctx := context.Background()
	chain := limitChain(1000, 10000, 100000)
	terminalID := chain.Terminal.TerminalID

	suite.mockLimitRepo.On("FindChainForUpdate", ctx, suite.tx, terminalID).Return(chain, nil).Once()
	suite.mockLimitRepo.On("IncrementDailyVolumesInTx", ctx, suite.tx, chain,
		decimal.NewFromInt(300), mock.AnythingOfType("time.Time")).Return(nil).Once()

	reserved, err := suite.service.CheckAndReserveInTx(ctx, suite.tx, terminalID, decimal.NewFromInt(300))

	suite.Require().NoError(err)
	suite.True(reserved.Terminal.CurrentDailyVolume.Equal(decimal.NewFromInt(1300)))
	suite.True(reserved.Branch.CurrentDailyVolume.Equal(decimal.NewFromInt(10300)))
	suite.True(reserved.Network.CurrentDailyVolume.Equal(decimal.NewFromInt(100300)))
	suite.mockLimitRepo.AssertExpectations(suite.T())
}

func (suite *LimitServiceTestSuite) TestCheckAndReserve_TerminalBreachReportsRemaining() {
	ctx := context.Background()
	// Terminal has used 4800 of 5000; a 300 reservation must not fit.
	chain := limitChain(4800, 10000, 100000)
	terminalID := chain.Terminal.TerminalID

	suite.mockLimitRepo.On("FindChainForUpdate", ctx, suite.tx, terminalID).Return(chain, nil).Once()

	reserved, err := suite.service.CheckAndReserveInTx(ctx, suite.tx, terminalID, decimal.NewFromInt(300))

	suite.Require().Error(err)
	suite.Nil(reserved)
	suite.ErrorIs(err, apperrors.ErrLimitExceeded)
	var limitErr *apperrors.LimitExceededError
	suite.Require().ErrorAs(err, &limitErr)
	suite.Equal("TERMINAL", limitErr.Level)
	suite.True(limitErr.Requested.Equal(decimal.NewFromInt(300)))
	suite.True(limitErr.Remaining.Equal(decimal.NewFromInt(200)))
	suite.mockLimitRepo.AssertNotCalled(suite.T(), "IncrementDailyVolumesInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LimitServiceTestSuite) TestCheckAndReserve_BranchBreachAfterTerminalFits() {
	ctx := context.Background()
	chain := limitChain(1000, 49900, 100000)
	terminalID := chain.Terminal.TerminalID

	suite.mockLimitRepo.On("FindChainForUpdate", ctx, suite.tx, terminalID).Return(chain, nil).Once()

	_, err := suite.service.CheckAndReserveInTx(ctx, suite.tx, terminalID, decimal.NewFromInt(300))

	var limitErr *apperrors.LimitExceededError
	suite.Require().ErrorAs(err, &limitErr)
	suite.Equal("BRANCH", limitErr.Level)
	suite.True(limitErr.Remaining.Equal(decimal.NewFromInt(100)))
}

func (suite *LimitServiceTestSuite) TestCheckAndReserve_NetworkBreachLast() {
	ctx := context.Background()
	chain := limitChain(1000, 10000, 499950)
	terminalID := chain.Terminal.TerminalID

	suite.mockLimitRepo.On("FindChainForUpdate", ctx, suite.tx, terminalID).Return(chain, nil).Once()

	_, err := suite.service.CheckAndReserveInTx(ctx, suite.tx, terminalID, decimal.NewFromInt(300))

	var limitErr *apperrors.LimitExceededError
	suite.Require().ErrorAs(err, &limitErr)
	suite.Equal("NETWORK", limitErr.Level)
	suite.True(limitErr.Remaining.Equal(decimal.NewFromInt(50)))
}

func (suite *LimitServiceTestSuite) TestCheckAndReserve_ExactRemainingFits() {
	ctx := context.Background()
	chain := limitChain(4800, 10000, 100000)
	terminalID := chain.Terminal.TerminalID

	suite.mockLimitRepo.On("FindChainForUpdate", ctx, suite.tx, terminalID).Return(chain, nil).Once()
	suite.mockLimitRepo.On("IncrementDailyVolumesInTx", ctx, suite.tx, chain,
		decimal.NewFromInt(200), mock.AnythingOfType("time.Time")).Return(nil).Once()

	reserved, err := suite.service.CheckAndReserveInTx(ctx, suite.tx, terminalID, decimal.NewFromInt(200))

	suite.Require().NoError(err)
	suite.True(reserved.Terminal.CurrentDailyVolume.Equal(decimal.NewFromInt(5000)))
}

func (suite *LimitServiceTestSuite) TestGetUtilization_ReportsAllLevels() {
	ctx := context.Background()
	chain := limitChain(1000, 10000, 100000)
	terminalID := chain.Terminal.TerminalID

	suite.mockLimitRepo.On("FindChain", ctx, terminalID).Return(chain, nil).Once()

	resp, err := suite.service.GetUtilization(ctx, terminalID)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Levels, 3)
	suite.Equal("TERMINAL", resp.Levels[0].Level)
	suite.True(resp.Levels[0].Remaining.Equal(decimal.NewFromInt(4000)))
	suite.Equal("BRANCH", resp.Levels[1].Level)
	suite.True(resp.Levels[1].Remaining.Equal(decimal.NewFromInt(40000)))
	suite.Equal("NETWORK", resp.Levels[2].Level)
	suite.True(resp.Levels[2].Remaining.Equal(decimal.NewFromInt(400000)))
}

func (suite *LimitServiceTestSuite) TestGetUtilization_UnknownTerminal() {
	ctx := context.Background()
	terminalID := uuid.NewString()

	suite.mockLimitRepo.On("FindChain", ctx, terminalID).Return(nil, apperrors.ErrNotFound).Once()

	resp, err := suite.service.GetUtilization(ctx, terminalID)

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LimitServiceTestSuite) TestResetDaily_ZeroesCounters() {
	ctx := context.Background()

	suite.mockLimitRepo.On("ResetDailyVolumes", ctx, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.ResetDaily(ctx)

	suite.Require().NoError(err)
	suite.mockLimitRepo.AssertExpectations(suite.T())
}

func TestLimitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LimitServiceTestSuite))
}
