package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/core/domain"
	"github.com/bankaroo/banking_app/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data.
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves currencies, optionally restricted to active ones.
	ListCurrencies(ctx context.Context, activeOnly bool) ([]domain.Currency, error)

	// Convert re-denominates an amount from one currency to another through
	// the reference currency. Identity conversions return the amount
	// unchanged; everything else is rounded to two decimal places.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error)

	// RateBetween returns the effective rate from one currency to another.
	RateBetween(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)
}

// CurrencyWriterSvc defines write operations for currency data.
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// UpdateExchangeRate reprices a currency against the reference currency.
	// Existing balances are untouched; only future conversions see the rate.
	UpdateExchangeRate(ctx context.Context, currencyCode string, rate decimal.Decimal, updaterUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces.
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
