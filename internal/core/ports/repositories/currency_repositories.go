package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/core/domain"
)

// CurrencyReader defines read operations for currency data.
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a currency by its 3-letter code.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves currencies, optionally only active ones.
	ListCurrencies(ctx context.Context, activeOnly bool) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data.
type CurrencyWriter interface {
	// SaveCurrency inserts a new currency.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// UpdateExchangeRate sets a currency's rate to the reference unit.
	UpdateExchangeRate(ctx context.Context, currencyCode string, rate decimal.Decimal, userID string, now time.Time) error

	// DeleteCurrency removes a currency. Deletion is refused with ErrConflict
	// while any account or ledger entry references the code.
	DeleteCurrency(ctx context.Context, currencyCode string) error
}

// CurrencyRepositoryFacade combines all currency repository interfaces.
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
