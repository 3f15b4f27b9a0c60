package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/apperrors"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindTransfer         TransactionKind = "TRANSFER"
	KindDeposit          TransactionKind = "DEPOSIT"
	KindWithdrawal       TransactionKind = "WITHDRAWAL"
	KindCurrencyExchange TransactionKind = "CURRENCY_EXCHANGE"
)

// TransactionStatus is the state of a ledger entry.
// Entries move Pending -> Settled or Pending -> Failed; both are terminal.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSettled TransactionStatus = "SETTLED"
	StatusFailed  TransactionStatus = "FAILED"
)

// Transaction is an immutable record of one attempted money movement.
// At least one of SenderAccountID / RecipientAccountID is set; deposits have
// no sender, withdrawals no recipient. A settled entry implies both balance
// mutations were applied exactly once; IsSuccessful is never unset once true.
type Transaction struct {
	TransactionID      string            `json:"transactionID"` // Primary key (UUID)
	SenderAccountID    *string           `json:"senderAccountID,omitempty"`
	RecipientAccountID *string           `json:"recipientAccountID,omitempty"`
	Amount             decimal.Decimal   `json:"amount"` // > 0, two decimal places
	CurrencyCode       string            `json:"currencyCode"`
	Kind               TransactionKind   `json:"kind"`
	Description        string            `json:"description"`
	Status             TransactionStatus `json:"status"`
	IsSuccessful       bool              `json:"isSuccessful"`
	CreatedAt          time.Time         `json:"createdAt"` // Immutable, set once
	SettledAt          *time.Time        `json:"settledAt,omitempty"`
}

// Settle marks the entry successful. Settling is idempotent; a failed entry
// can never become settled.
func (t *Transaction) Settle(now time.Time) error {
	if t.Status == StatusFailed {
		return apperrors.ErrInconsistentSettlement
	}
	if t.Status == StatusSettled {
		return nil
	}
	t.Status = StatusSettled
	t.IsSuccessful = true
	t.SettledAt = &now
	return nil
}

// Fail marks the entry as terminally unsuccessful. An already settled entry
// cannot fail; the success flag is never reset.
func (t *Transaction) Fail() error {
	if t.IsSuccessful || t.Status == StatusSettled {
		return apperrors.ErrInconsistentSettlement
	}
	t.Status = StatusFailed
	return nil
}

// ValidAmount reports whether an amount is positive with at most two
// decimal places, the fixed precision of all monetary values. The check is
// value-wise: 10.120 is the same amount as 10.12 and passes, regardless of
// how many trailing zeros its representation carries.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}
