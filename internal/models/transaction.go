package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the database representation of a ledger entry.
// Sender and recipient columns are nullable; at least one is set.
type Transaction struct {
	TransactionID      string          `db:"transaction_id"`
	SenderAccountID    *string         `db:"sender_account_id"`
	RecipientAccountID *string         `db:"recipient_account_id"`
	Amount             decimal.Decimal `db:"amount"`
	CurrencyCode       string          `db:"currency_code"`
	Kind               string          `db:"kind"`
	Description        string          `db:"description"`
	Status             string          `db:"status"`
	IsSuccessful       bool            `db:"is_successful"`
	CreatedAt          time.Time       `db:"created_at"`
	SettledAt          *time.Time      `db:"settled_at"`
}
