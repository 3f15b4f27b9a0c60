package models

import "github.com/shopspring/decimal"

// Currency is the database representation of a currency.
type Currency struct {
	CurrencyCode string          `db:"currency_code"`
	Name         string          `db:"name"`
	Symbol       string          `db:"symbol"`
	ExchangeRate decimal.Decimal `db:"exchange_rate"`
	IsActive     bool            `db:"is_active"`
	AuditFields
}
