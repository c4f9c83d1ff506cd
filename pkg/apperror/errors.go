package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind groups error codes into the failure classes callers branch on.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindSession           Kind = "SESSION"
	KindLimitExceeded     Kind = "LIMIT_EXCEEDED"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindState             Kind = "STATE"
	KindNotFound          Kind = "NOT_FOUND"
	KindSystem            Kind = "SYSTEM"
)

var kindByPrefix = map[string]Kind{
	"VAL": KindValidation,
	"SES": KindSession,
	"LIM": KindLimitExceeded,
	"FND": KindInsufficientFunds,
	"STA": KindState,
	"NF":  KindNotFound,
	"SYS": KindSystem,
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code, so constructor results
// can be used with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Kind derives the error class from the code family.
func (e *AppError) Kind() Kind {
	prefix, _, _ := strings.Cut(e.Code, "_")
	if k, ok := kindByPrefix[prefix]; ok {
		return k
	}
	return KindSystem
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// KindOf returns the Kind of the first AppError in err's chain.
// Errors outside the taxonomy are reported as KindSystem.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindSystem
}

// ---- Validation (VAL) ----

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrCardNotAccepted(cardType string) *AppError {
	return New("VAL_002", fmt.Sprintf("%s is not accepted at this terminal", cardType), http.StatusBadRequest)
}

// Validation returns a VAL_003 invalid-argument error.
func Validation(message string) *AppError {
	return New("VAL_003", message, http.StatusBadRequest)
}

// ---- Session (SES) ----

func ErrNoSession() *AppError {
	return New("SES_001", "Channel has no active session", http.StatusUnauthorized)
}

func ErrSessionMismatch() *AppError {
	return New("SES_002", "Session does not belong to this account", http.StatusForbidden)
}

func ErrAuthenticationFailed() *AppError {
	return New("SES_003", "Authentication failed", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("SES_004", "Invalid or expired session token", http.StatusUnauthorized)
}

func ErrOperatorRequired() *AppError {
	return New("SES_005", "Operator credentials required", http.StatusForbidden)
}

// ---- Limits (LIM) ----

func ErrTransactionLimitExceeded() *AppError {
	return New("LIM_001", "Per-transaction limit exceeded", http.StatusUnprocessableEntity)
}

func ErrDailyLimitExceeded() *AppError {
	return New("LIM_002", "Daily limit exceeded", http.StatusUnprocessableEntity)
}

func ErrChannelLimitExceeded() *AppError {
	return New("LIM_003", "Channel transaction limit exceeded", http.StatusUnprocessableEntity)
}

// ---- Funds (FND) ----

func ErrInsufficientFunds() *AppError {
	return New("FND_001", "Insufficient balance", http.StatusPaymentRequired)
}

func ErrFeeHeadroom() *AppError {
	return New("FND_002", "Balance must cover the card annual fee after withdrawal", http.StatusPaymentRequired)
}

func ErrInsufficientCash() *AppError {
	return New("FND_003", "ATM has insufficient cash", http.StatusPaymentRequired)
}

// ---- State (STA) ----

func ErrCardAlreadyAttached() *AppError {
	return New("STA_001", "Account already has a card attached", http.StatusConflict)
}

func ErrNoSessionToClear() *AppError {
	return New("STA_002", "Channel is already idle", http.StatusConflict)
}

func ErrDuplicate(entity string) *AppError {
	return New("STA_003", fmt.Sprintf("%s already registered", entity), http.StatusConflict)
}

func ErrSessionActive() *AppError {
	return New("STA_004", "Channel already has an active session", http.StatusConflict)
}

func ErrIdempotencyConflict() *AppError {
	return New("STA_005", "Idempotency key was already used for a different request", http.StatusConflict)
}

// ---- Lookup (NF) ----

func ErrNotFound(entity string) *AppError {
	return New("NF_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrRateLimitExceeded() *AppError {
	return New("SYS_002", "Rate limit exceeded", http.StatusTooManyRequests)
}
