package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// PlaceHoldRequest defines the data needed to place a hold against an account.
type PlaceHoldRequest struct {
	HoldType         domain.HoldType     `json:"holdType" binding:"required,holdtype"`
	Amount           decimal.Decimal     `json:"amount" binding:"required"`
	ReasonID         string              `json:"reasonID" binding:"required"`
	Priority         domain.HoldPriority `json:"priority" binding:"omitempty,holdpriority"`
	ExpiresAt        *time.Time          `json:"expiresAt"` // required when automaticRelease is true
	AutomaticRelease bool                `json:"automaticRelease"`
	SourceReference  string              `json:"sourceReference"`
}

// ReleaseHoldRequest defines the data needed to release a hold, fully or partially.
type ReleaseHoldRequest struct {
	ReleaseAmount         *decimal.Decimal `json:"releaseAmount"` // absent means full release
	ReasonID              string           `json:"reasonID" binding:"required"`
	OverrideAuthorization bool             `json:"overrideAuthorization"`
}

// HoldResponse mirrors domain.AccountHold for API consumers.
type HoldResponse struct {
	HoldID           string              `json:"holdID"`
	AccountID        string              `json:"accountID"`
	Amount           decimal.Decimal     `json:"amount"`
	OriginalAmount   decimal.Decimal     `json:"originalAmount"`
	HoldType         domain.HoldType     `json:"holdType"`
	Priority         domain.HoldPriority `json:"priority"`
	Status           domain.HoldStatus   `json:"status"`
	PlacedAt         time.Time           `json:"placedAt"`
	ExpiresAt        *time.Time          `json:"expiresAt,omitempty"`
	AutomaticRelease bool                `json:"automaticRelease"`
	ReleasedAt       *time.Time          `json:"releasedAt,omitempty"`
	ReleasedBy       *string             `json:"releasedBy,omitempty"`
	ReasonID         string              `json:"reasonID"`
	SourceReference  string              `json:"sourceReference,omitempty"`
}

// ToHoldResponse converts a domain.AccountHold to its response DTO.
func ToHoldResponse(h *domain.AccountHold) HoldResponse {
	return HoldResponse{
		HoldID:           h.HoldID,
		AccountID:        h.AccountID,
		Amount:           h.Amount,
		OriginalAmount:   h.OriginalAmount,
		HoldType:         h.HoldType,
		Priority:         h.Priority,
		Status:           h.Status,
		PlacedAt:         h.PlacedAt,
		ExpiresAt:        h.ExpiresAt,
		AutomaticRelease: h.AutomaticRelease,
		ReleasedAt:       h.ReleasedAt,
		ReleasedBy:       h.ReleasedBy,
		ReasonID:         h.ReasonID,
		SourceReference:  h.SourceReference,
	}
}

// ToListHoldResponse converts a slice of holds.
func ToListHoldResponse(holds []domain.AccountHold) []HoldResponse {
	res := make([]HoldResponse, len(holds))
	for i := range holds {
		res[i] = ToHoldResponse(&holds[i])
	}
	return res
}

// SweepResult aggregates what an expiry sweep released, for reporting.
type SweepResult struct {
	SweptCount    int             `json:"sweptCount"`
	TotalReleased decimal.Decimal `json:"totalReleased"`
	AsOf          time.Time       `json:"asOf"`
}
