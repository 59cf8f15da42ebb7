package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/apperrors"
	"github.com/nimbusbank/corebank/internal/core/domain"
	portsrepo "github.com/nimbusbank/corebank/internal/core/ports/repositories"
	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/dto"
)

// limitService is the limit hierarchy registry. The terminal→branch→network
// chain is loaded and locked as a unit, checked bottom-up, and incremented as a
// unit inside the caller's transaction, so a branch counter can never move while
// the network check fails afterwards.
type limitService struct {
	BaseService
	limitRepo portsrepo.LimitRepositoryFacade
}

// NewLimitService creates a new limit service.
func NewLimitService(limitRepo portsrepo.LimitRepositoryFacade) portssvc.LimitSvcFacade {
	return &limitService{limitRepo: limitRepo}
}

var _ portssvc.LimitSvcFacade = (*limitService)(nil)

func (s *limitService) CheckAndReserveInTx(ctx context.Context, tx pgx.Tx, terminalID string, amount decimal.Decimal) (*domain.LimitChain, error) {
	chain, err := s.limitRepo.FindChainForUpdate(ctx, tx, terminalID)
	if err != nil {
		return nil, err
	}

	if level := chain.FirstBreach(amount); level != "" {
		return nil, apperrors.NewLimitExceededError(string(level), amount, chain.Remaining(level))
	}

	now := time.Now().UTC()
	if err := s.limitRepo.IncrementDailyVolumesInTx(ctx, tx, chain, amount, now); err != nil {
		return nil, err
	}

	chain.Terminal.CurrentDailyVolume = chain.Terminal.CurrentDailyVolume.Add(amount)
	chain.Branch.CurrentDailyVolume = chain.Branch.CurrentDailyVolume.Add(amount)
	chain.Network.CurrentDailyVolume = chain.Network.CurrentDailyVolume.Add(amount)
	return chain, nil
}

func (s *limitService) ResetDaily(ctx context.Context) error {
	now := time.Now().UTC()
	if err := s.limitRepo.ResetDailyVolumes(ctx, now); err != nil {
		s.LogError(ctx, err, "Failed to reset daily volumes")
		return err
	}
	s.LogInfo(ctx, "Daily volume counters reset", slog.Time("at", now))
	return nil
}

func (s *limitService) GetUtilization(ctx context.Context, terminalID string) (*dto.LimitChainResponse, error) {
	chain, err := s.limitRepo.FindChain(ctx, terminalID)
	if err != nil {
		return nil, err
	}

	return &dto.LimitChainResponse{
		Levels: []dto.LimitLevelResponse{
			{
				Level:              string(domain.LevelTerminal),
				NodeID:             chain.Terminal.TerminalID,
				DailyLimit:         chain.Terminal.DailyLimit,
				CurrentDailyVolume: chain.Terminal.CurrentDailyVolume,
				Remaining:          chain.Remaining(domain.LevelTerminal),
			},
			{
				Level:              string(domain.LevelBranch),
				NodeID:             chain.Branch.BranchID,
				DailyLimit:         chain.Branch.DailyLimit,
				CurrentDailyVolume: chain.Branch.CurrentDailyVolume,
				Remaining:          chain.Remaining(domain.LevelBranch),
			},
			{
				Level:              string(domain.LevelNetwork),
				NodeID:             chain.Network.NetworkID,
				DailyLimit:         chain.Network.DailyLimit,
				CurrentDailyVolume: chain.Network.CurrentDailyVolume,
				Remaining:          chain.Remaining(domain.LevelNetwork),
			},
		},
	}, nil
}
