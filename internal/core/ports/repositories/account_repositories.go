package repositories

import (
	"context"
	"time"

	"github.com/bankaroo/banking_app/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves an account by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByUserID retrieves the single account owned by a user.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its account number.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data.
// Balance columns are deliberately absent here: balances mutate only through
// the transaction repository's settle unit.
type AccountWriter interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates mutable account fields (phone number, active flag).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account inactive. Accounts are never deleted.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error

	// ChangeHomeCurrency switches a zero-balance account to a new home
	// currency. Non-zero balances go through the exchange settle unit instead.
	ChangeHomeCurrency(ctx context.Context, accountID string, currencyCode string, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
