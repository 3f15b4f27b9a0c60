package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/core/domain"
	"github.com/bankaroo/banking_app/internal/dto"
)

// TransactionReader defines read operations for ledger entries.
type TransactionReader interface {
	// FindTransactionByID retrieves a ledger entry by its ID.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves entries where the account is sender
	// or recipient, newest first, with keyset pagination and the optional
	// kind / success / date-range filters. Returns the next page token when
	// more entries remain.
	ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)

	// FindStalePending retrieves pending entries created before the cutoff,
	// oldest first, for the reconciliation sweep.
	FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Transaction, error)

	// FindInconsistentSettlements retrieves entries whose success flag and
	// status disagree. Any result is an invariant violation.
	FindInconsistentSettlements(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// TransactionWriter defines the mutation operations for ledger entries and
// the atomic settle units that are the only balance mutation paths.
type TransactionWriter interface {
	// SaveTransaction persists a new pending ledger entry. No balance is
	// touched yet.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// SettleTransaction applies the given signed balance deltas and marks the
	// entry settled, all in one database transaction. Account rows are locked
	// in ascending ID order; the non-negativity check runs under the lock and
	// aborts the whole unit with ErrInsufficientFunds. Either every mutation
	// commits or none does.
	SettleTransaction(ctx context.Context, transactionID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// SettleExchange re-denominates an account's balance in one unit: under
	// the row lock the current balance must still equal expectedBalance,
	// otherwise the unit aborts with ErrConcurrentModification and the caller
	// recomputes and retries.
	SettleExchange(ctx context.Context, transactionID string, accountID string, expectedBalance, newBalance decimal.Decimal, newCurrencyCode string, userID string, now time.Time) error

	// MarkTransactionFailed moves a pending entry to its failed terminal
	// state. Settled entries are never failed.
	MarkTransactionFailed(ctx context.Context, transactionID string, now time.Time) error
}

// TransactionRepositoryFacade combines all ledger entry repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
