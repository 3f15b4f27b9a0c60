package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/core/domain"
	"github.com/bankaroo/banking_app/internal/dto"
)

// TransferSvc defines the money movement operations. Every operation records
// a ledger entry; failed attempts that passed validation are recorded with
// their failed status rather than discarded.
type TransferSvc interface {
	// Transfer moves funds between two accounts atomically. The amount is
	// denominated in currencyCode and converted into each account's home
	// currency. Exactly one ledger entry is written per attempt.
	Transfer(ctx context.Context, senderAccountID, recipientAccountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error)

	// Deposit credits an account. The amount must be denominated in the
	// account's home currency.
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error)

	// Withdraw debits an account, subject to the non-negative balance rule.
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error)

	// ExchangeCurrency re-denominates an account's entire balance into a new
	// home currency at the current rates.
	ExchangeCurrency(ctx context.Context, accountID string, newCurrencyCode string) (*domain.Transaction, error)

	// GetTransactionByID retrieves a single ledger entry.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListEntries retrieves the ledger entries touching an account, newest
	// first, with keyset pagination.
	ListEntries(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)
}

// ReconcilerSvc periodically sweeps the ledger for entries stuck in flight
// and for settlement records that contradict themselves.
type ReconcilerSvc interface {
	// ReconcileOnce runs a single sweep and returns the number of stale
	// pending entries it failed out.
	ReconcileOnce(ctx context.Context) (int, error)

	// Run sweeps on the configured interval until the context is cancelled.
	Run(ctx context.Context)
}
