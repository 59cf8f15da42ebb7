package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that a posting or hold would take the account's
// available balance outside its permitted range.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAlreadyTerminal indicates an operation on a hold that has already reached a
// terminal state (Released, Expired, Cancelled).
var ErrAlreadyTerminal = errors.New("hold is already in a terminal state")

// ErrStateInvalid indicates an operation attempted on an account, hold, or
// transaction that is not in a valid source state for that operation.
var ErrStateInvalid = errors.New("entity is not in a valid state for this operation")

// ErrApprovalRequired indicates the transaction must pass through the approval
// workflow before it can post.
var ErrApprovalRequired = errors.New("transaction requires approval")

// ErrLimitExceeded indicates a daily volume limit was breached at some hierarchy level.
// Use LimitExceededError to carry the level and amounts.
var ErrLimitExceeded = errors.New("daily volume limit exceeded")

// LimitExceededError reports which hierarchy level rejected a posting and with what
// remaining capacity, so the calling layer can render an actionable message.
type LimitExceededError struct {
	Level     string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("daily volume limit exceeded at %s level: requested %s, remaining %s",
		e.Level, e.Requested.String(), e.Remaining.String())
}

func (e *LimitExceededError) Unwrap() error {
	return ErrLimitExceeded
}

// NewLimitExceededError builds a LimitExceededError for the given level.
func NewLimitExceededError(level string, requested, remaining decimal.Decimal) *LimitExceededError {
	return &LimitExceededError{Level: level, Requested: requested, Remaining: remaining}
}

// AppError wraps lower-level failures (usually infrastructure) with a status code
// and a human-readable message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
