package domain

import "github.com/shopspring/decimal"

// Account is a user's single money holding. Each user owns exactly one
// account; its balance is always the sum of its settled ledger entries and
// never goes negative. Balance mutations happen only through the transfer
// engine's settle path, never by direct assignment.
type Account struct {
	AccountID     string          `json:"accountID"`     // Primary key (UUID)
	UserID        string          `json:"userID"`        // FK -> users, 1:1
	AccountNumber string          `json:"accountNumber"` // Generated, immutable, unique
	PhoneNumber   string          `json:"phoneNumber"`   // Unique contact identifier
	CurrencyCode  string          `json:"currencyCode"`  // Home currency, FK -> currencies
	Balance       decimal.Decimal `json:"balance"`       // >= 0, two decimal places
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// HasSufficientBalance reports whether the balance covers the given amount.
// This check is advisory outside the settle path; the authoritative check
// runs again under the account's row lock.
func (a Account) HasSufficientBalance(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
