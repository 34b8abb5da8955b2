package apperror

import (
	"fmt"
	"net/http"
)

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

// ---- Market Ledger (MKT) ----
// Every market operation fails with exactly one of these kinds;
// the core never returns an untyped failure.

func ErrNotAdmin() *AppError {
	return New("MKT_001", "Caller is not the market admin", http.StatusForbidden)
}

func ErrAlreadyExists() *AppError {
	return New("MKT_002", "Product name already exists", http.StatusConflict)
}

func ErrNoSuchProduct() *AppError {
	return New("MKT_003", "There is no product with this name", http.StatusNotFound)
}

func ErrZeroQuantity() *AppError {
	return New("MKT_004", "Requested quantity is zero", http.StatusBadRequest)
}

func ErrQuantityExceeded() *AppError {
	return New("MKT_005", "Requested quantity exceeds available stock", http.StatusUnprocessableEntity)
}

func ErrInsufficientValue() *AppError {
	return New("MKT_006", "Attached value is less than the total price", http.StatusPaymentRequired)
}

func ErrPriceBelowMinimum() *AppError {
	return New("MKT_007", "Price is below the minimum transferable value", http.StatusUnprocessableEntity)
}

func ErrAmountOverflow() *AppError {
	return New("MKT_008", "Price and quantity overflow the value range", http.StatusUnprocessableEntity)
}

// ---- Value Ledger (LED) ----

func ErrInsufficientFunds() *AppError {
	return New("LED_001", "Insufficient balance for transfer", http.StatusPaymentRequired)
}

func ErrAccountNotFound(entity string) *AppError {
	return New("LED_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrBalanceOverflow() *AppError {
	return New("LED_003", "Balance would overflow", http.StatusUnprocessableEntity)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}
