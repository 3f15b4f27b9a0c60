package services

import (
	"context"

	"github.com/bankaroo/banking_app/internal/core/domain"
	"github.com/bankaroo/banking_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByUserID retrieves the account owned by a user.
	GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its public account number.
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// GetBalance returns the account balance, re-denominated into the
	// requested display currency when one is given. An unknown display
	// currency is an error, never a silent zero.
	GetBalance(ctx context.Context, accountID string, displayCurrency string) (*dto.BalanceResponse, error)
}

// AccountWriterSvc defines write operations for account data.
type AccountWriterSvc interface {
	// OpenAccount provisions a new account with a zero balance and a fresh
	// account number. Account provisioning is always an explicit call.
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Inactive accounts
	// reject all money movement.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
