package domain

import "github.com/shopspring/decimal"

// ReferenceCurrencyCode is the common unit all exchange rates are expressed
// against. Any-to-any conversion normalizes through it.
const ReferenceCurrencyCode = "USD"

// Currency represents a supported currency in the domain.
// ExchangeRate is the amount of this currency equal to one reference unit,
// so the reference currency itself carries a rate of 1.
type Currency struct {
	CurrencyCode string          `json:"currencyCode"` // Primary key (e.g. "USD")
	Name         string          `json:"name"`         // e.g. "US Dollar"
	Symbol       string          `json:"symbol"`       // e.g. "$"
	ExchangeRate decimal.Decimal `json:"exchangeRate"` // Units per 1 reference unit, > 0
	IsActive     bool            `json:"isActive"`
	AuditFields
}
