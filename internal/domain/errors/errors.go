package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrValidation is bad caller input. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrInvalidReference and ErrInvalidAmount are the gateway's validation failures.
	ErrInvalidReference = fmt.Errorf("%w: invalid startup reference", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrWalletNotOwned   = fmt.Errorf("%w: connected wallet is associated with another identity", ErrValidation)

	// ErrConnectionRejected means the user declined a provider prompt.
	ErrConnectionRejected = errors.New("connection rejected by user")
	// ErrUserRejected is the gateway-facing name of the same condition.
	ErrUserRejected = ErrConnectionRejected

	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrNetworkMismatch        = errors.New("wallet is connected to the wrong network")
	ErrRecipientNotConfigured = errors.New("recipient has no payment target configured")
	ErrStoreUnavailable       = errors.New("record store unavailable")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrNotConnected           = errors.New("wallet not connected")
)

// GenericRevertReason is used when no reason can be extracted from a revert
const GenericRevertReason = "transaction reverted by the contract"

// ContractRevertedError is a terminal on-chain failure. Reason is advisory.
type ContractRevertedError struct {
	Reason string
}

func (e *ContractRevertedError) Error() string {
	return "contract reverted: " + e.Reason
}

// UnknownProviderError carries an unclassifiable provider message
type UnknownProviderError struct {
	Raw string
}

func (e *UnknownProviderError) Error() string {
	return "provider error: " + e.Raw
}

// Error codes
const (
	CodeBadRequest             = "ERR_BAD_REQUEST"
	CodeValidation             = "ERR_VALIDATION"
	CodeNotFound               = "ERR_NOT_FOUND"
	CodeConflict               = "ERR_CONFLICT"
	CodeUnauthorized           = "ERR_UNAUTHORIZED"
	CodeForbidden              = "ERR_FORBIDDEN"
	CodeInternalError          = "ERR_INTERNAL"
	CodeConnectionRejected     = "ERR_CONNECTION_REJECTED"
	CodeInsufficientFunds      = "ERR_INSUFFICIENT_FUNDS"
	CodeContractReverted       = "ERR_CONTRACT_REVERTED"
	CodeNetworkMismatch        = "ERR_NETWORK_MISMATCH"
	CodeRecipientNotConfigured = "ERR_RECIPIENT_NOT_CONFIGURED"
	CodeStoreUnavailable       = "ERR_STORE_UNAVAILABLE"
	CodeIllegalTransition      = "ERR_ILLEGAL_TRANSITION"
	CodeWalletNotConnected     = "ERR_WALLET_NOT_CONNECTED"
	CodeUnknownProviderError   = "ERR_PROVIDER"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrBadRequest)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrIllegalTransition)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// Validation wraps a message as a ValidationError
func Validation(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// StoreUnavailable wraps a raw store failure
func StoreUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

// Classify maps any error produced by the core onto an AppError for presentation.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var reverted *ContractRevertedError
	if errors.As(err, &reverted) {
		return NewAppError(http.StatusUnprocessableEntity, CodeContractReverted, reverted.Reason, err)
	}
	var unknown *UnknownProviderError
	if errors.As(err, &unknown) {
		return NewAppError(http.StatusBadGateway, CodeUnknownProviderError, unknown.Raw, err)
	}

	switch {
	case errors.Is(err, ErrValidation):
		return NewAppError(http.StatusBadRequest, CodeValidation, err.Error(), err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "resource not found", err)
	case errors.Is(err, ErrConnectionRejected):
		return NewAppError(http.StatusConflict, CodeConnectionRejected, "request was rejected in the wallet", err)
	case errors.Is(err, ErrInsufficientFunds):
		return NewAppError(http.StatusPaymentRequired, CodeInsufficientFunds, "insufficient funds for this investment", err)
	case errors.Is(err, ErrNetworkMismatch):
		return NewAppError(http.StatusConflict, CodeNetworkMismatch, "switch to the supported network and retry", err)
	case errors.Is(err, ErrRecipientNotConfigured):
		return NewAppError(http.StatusUnprocessableEntity, CodeRecipientNotConfigured, "recipient has not configured a payment method", err)
	case errors.Is(err, ErrStoreUnavailable):
		return NewAppError(http.StatusServiceUnavailable, CodeStoreUnavailable, "record store unavailable", err)
	case errors.Is(err, ErrIllegalTransition):
		return NewAppError(http.StatusConflict, CodeIllegalTransition, "transaction is already final", err)
	case errors.Is(err, ErrNotConnected):
		return NewAppError(http.StatusConflict, CodeWalletNotConnected, "connect a wallet first", err)
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized("unauthorized")
	case errors.Is(err, ErrForbidden):
		return Forbidden("forbidden")
	}
	return InternalError(err)
}
