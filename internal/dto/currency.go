package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/core/domain"
)

// CreateCurrencyRequest defines the payload for registering a new currency.
type CreateCurrencyRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Name         string          `json:"name" binding:"required"`
	Symbol       string          `json:"symbol" binding:"required"`
	ExchangeRate decimal.Decimal `json:"exchangeRate" binding:"required"`
}

// UpdateExchangeRateRequest defines the payload for repricing a currency.
type UpdateExchangeRateRequest struct {
	ExchangeRate decimal.Decimal `json:"exchangeRate" binding:"required"`
}

// ConvertAmountRequest defines the payload for a quote-only conversion.
type ConvertAmountRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	FromCurrency string          `json:"fromCurrency" binding:"required,len=3,uppercase"`
	ToCurrency   string          `json:"toCurrency" binding:"required,len=3,uppercase"`
}

// ConvertAmountResponse carries the converted amount and the effective rate.
type ConvertAmountResponse struct {
	Amount          decimal.Decimal `json:"amount"`
	FromCurrency    string          `json:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Rate            decimal.Decimal `json:"rate"`
}

// CurrencyResponse defines the API representation of a currency.
type CurrencyResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Name         string          `json:"name"`
	Symbol       string          `json:"symbol"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ToCurrencyResponse converts a domain.Currency to its API representation.
func ToCurrencyResponse(c domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode: c.CurrencyCode,
		Name:         c.Name,
		Symbol:       c.Symbol,
		ExchangeRate: c.ExchangeRate,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.LastUpdatedAt,
	}
}

// ToListCurrenciesResponse converts a slice of domain currencies.
func ToListCurrenciesResponse(currencies []domain.Currency) []CurrencyResponse {
	resp := make([]CurrencyResponse, 0, len(currencies))
	for _, c := range currencies {
		resp = append(resp, ToCurrencyResponse(c))
	}
	return resp
}
