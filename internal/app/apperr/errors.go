package apperr

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayMisconfigured = errors.New("gateway configuration not found")
	ErrValidationFailed     = errors.New("ipn validation failed")
	ErrAmountMismatch       = errors.New("amount mismatch")
)
