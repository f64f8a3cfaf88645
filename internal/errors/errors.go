// Package errors provides custom error types for the Crowdbond API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Round errors.
var (
	ErrRoundNotFound     = &AppError{Code: "ROUND_NOT_FOUND", Message: "Round not found", StatusCode: http.StatusNotFound}
	ErrInvalidParameters = &AppError{Code: "INVALID_PARAMETERS", Message: "Invalid round or investment parameters", StatusCode: http.StatusBadRequest}
	ErrRoundInactive     = &AppError{Code: "ROUND_INACTIVE", Message: "Round is not active", StatusCode: http.StatusBadRequest}
	ErrSupplyExhausted   = &AppError{Code: "SUPPLY_EXHAUSTED", Message: "Requested quantity exceeds remaining supply", StatusCode: http.StatusConflict}
	ErrWindowClosed      = &AppError{Code: "WINDOW_CLOSED", Message: "Operation attempted outside its valid time window", StatusCode: http.StatusBadRequest}
)

// Arithmetic errors.
var (
	ErrArithmeticOverflow = &AppError{Code: "ARITHMETIC_OVERFLOW", Message: "Amount computation overflowed", StatusCode: http.StatusBadRequest}
)

// Treasury & wallet errors.
var (
	ErrInsufficientBalance = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "Insufficient balance", StatusCode: http.StatusBadRequest}
	ErrInsufficientPool    = &AppError{Code: "INSUFFICIENT_POOL", Message: "Reward pool cannot cover the requested payout", StatusCode: http.StatusConflict}
	ErrTreasuryNotFound    = &AppError{Code: "TREASURY_NOT_FOUND", Message: "Round treasury not found", StatusCode: http.StatusNotFound}
	ErrWalletNotFound      = &AppError{Code: "WALLET_NOT_FOUND", Message: "Wallet not found", StatusCode: http.StatusNotFound}
)

// Certificate & claim errors.
var (
	ErrCertificateNotFound  = &AppError{Code: "CERTIFICATE_NOT_FOUND", Message: "Certificate not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCertificate = &AppError{Code: "DUPLICATE_CERTIFICATE", Message: "Duplicate certificate id in claim set", StatusCode: http.StatusBadRequest}
	ErrNothingToClaim       = &AppError{Code: "NOTHING_TO_CLAIM", Message: "No certificate in the claim set has a payable entitlement", StatusCode: http.StatusConflict}
	ErrTransferLocked       = &AppError{Code: "TRANSFER_LOCKED", Message: "Certificate is locked pending claim settlement", StatusCode: http.StatusConflict}
)
