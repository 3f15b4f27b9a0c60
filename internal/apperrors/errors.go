package apperrors

import (
	"errors"
	"fmt"
)

// Generic error kinds shared by all layers.
var (
	// ErrNotFound indicates that a requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates that input data failed validation checks.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrConflict indicates the operation conflicts with the current state of a resource,
	// e.g. deleting a currency that is still referenced by accounts or ledger entries.
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized indicates a failed credential check.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = errors.New("internal error")
)

// Ledger error kinds. These are the outcomes the transfer engine is allowed
// to surface to callers.
var (
	// ErrInvalidAmount indicates an amount that is not positive or carries
	// more than two decimal places.
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")

	// ErrInsufficientFunds indicates the debit side does not hold enough balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSelfTransfer indicates sender and recipient are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrCurrencyNotFound indicates an unregistered currency code.
	ErrCurrencyNotFound = errors.New("currency not found")

	// ErrAccountNotFound indicates an unknown account reference.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInactive indicates the account has been deactivated.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrTimeout indicates the caller-supplied deadline expired before the
	// operation committed. No partial mutation is left behind.
	ErrTimeout = errors.New("operation timed out")

	// ErrConcurrentModification indicates an optimistic retry was exhausted
	// or the database aborted the unit due to a concurrent conflict.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInconsistentSettlement indicates a ledger entry whose success flag
	// and status disagree. This is an internal invariant violation and must
	// be surfaced to operators, never swallowed.
	ErrInconsistentSettlement = errors.New("inconsistent settlement state")

	// ErrAccountNumberCollision indicates the generated account number is
	// already taken; callers regenerate and retry.
	ErrAccountNumberCollision = errors.New("account number collision")

	// ErrPhoneNumberDuplicate indicates the phone number is already attached
	// to another account.
	ErrPhoneNumberDuplicate = errors.New("phone number already in use")
)

// AppError carries an HTTP-ish status code alongside a message and cause.
// Repositories use it for infrastructure failures that have no sentinel.
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

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
