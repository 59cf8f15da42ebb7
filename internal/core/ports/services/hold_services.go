package services

import (
	"context"
	"time"

	"github.com/nimbusbank/corebank/internal/core/domain"
	"github.com/nimbusbank/corebank/internal/dto"
)

// HoldSvcFacade owns the hold lifecycle for an account.
type HoldSvcFacade interface {
	// PlaceHold creates an Active hold after validating the request and the
	// account's capacity, and re-derives the account's available balance.
	PlaceHold(ctx context.Context, accountID string, req dto.PlaceHoldRequest, actor domain.Actor) (*domain.AccountHold, error)

	// ReleaseHold releases a hold fully or partially. A partial amount below the
	// remaining amount moves the hold to PartiallyReleased; otherwise Released.
	ReleaseHold(ctx context.Context, holdID string, req dto.ReleaseHoldRequest, actor domain.Actor) (*domain.AccountHold, error)

	// CancelHold voids an Active hold without release semantics.
	CancelHold(ctx context.Context, holdID string, reasonID string, actor domain.Actor) (*domain.AccountHold, error)

	// ListHolds returns all holds for an account ordered by priority then
	// placement time, for display and reporting.
	ListHolds(ctx context.Context, accountID string) ([]domain.AccountHold, error)

	// SweepExpired transitions every expired automatic-release hold into Released
	// under the system identity and reports the aggregate. Idempotent; concurrent
	// releases win over the sweep.
	SweepExpired(ctx context.Context, asOf time.Time) (*dto.SweepResult, error)
}
