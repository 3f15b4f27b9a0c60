package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	portsrepo "github.com/bankaroo/banking_app/internal/core/ports/repositories"
	"github.com/bankaroo/banking_app/internal/dto"
)

// roundingPlaces is the fixed scale of all monetary amounts.
const roundingPlaces = 2

// CurrencyService manages the currency table and performs conversions.
// Rates are read far more often than written, so a snapshot of the table is
// kept in memory under a RWMutex and refreshed after every write.
type CurrencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade

	mu    sync.RWMutex
	cache map[string]domain.Currency
}

func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) *CurrencyService {
	return &CurrencyService{
		currencyRepo: currencyRepo,
		cache:        make(map[string]domain.Currency),
	}
}

// CreateCurrency persists a new currency and refreshes the rate snapshot.
func (s *CurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	code := strings.ToUpper(req.CurrencyCode)
	if !req.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("exchange rate must be positive: %w", apperrors.ErrValidation)
	}
	if code == domain.ReferenceCurrencyCode && !req.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("reference currency rate must be 1: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	currency := domain.Currency{
		CurrencyCode: code,
		Name:         req.Name,
		Symbol:       req.Symbol,
		ExchangeRate: req.ExchangeRate,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		s.LogError(ctx, err, "Failed to save currency", "currency_code", code)
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}

	s.storeInCache(currency)
	s.LogInfo(ctx, "Currency created", "currency_code", code)
	return &currency, nil
}

// UpdateExchangeRate reprices a currency. Balances already denominated in it
// are untouched; only conversions after the update see the new rate.
func (s *CurrencyService) UpdateExchangeRate(ctx context.Context, currencyCode string, rate decimal.Decimal, updaterUserID string) (*domain.Currency, error) {
	code := strings.ToUpper(currencyCode)
	if !rate.IsPositive() {
		return nil, fmt.Errorf("exchange rate must be positive: %w", apperrors.ErrValidation)
	}
	if code == domain.ReferenceCurrencyCode {
		return nil, fmt.Errorf("reference currency rate is fixed at 1: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	if err := s.currencyRepo.UpdateExchangeRate(ctx, code, rate, updaterUserID, now); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrCurrencyNotFound
		}
		s.LogError(ctx, err, "Failed to update exchange rate", "currency_code", code)
		return nil, fmt.Errorf("failed to update exchange rate: %w", err)
	}

	updated, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to reload currency after rate update: %w", err)
	}

	s.storeInCache(*updated)
	s.LogInfo(ctx, "Exchange rate updated", "currency_code", code, "rate", rate.String())
	return updated, nil
}

// GetCurrencyByCode retrieves a currency, preferring the in-memory snapshot.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	code := strings.ToUpper(currencyCode)

	s.mu.RLock()
	cached, ok := s.cache[code]
	s.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrCurrencyNotFound
		}
		s.LogError(ctx, err, "Failed to find currency", "currency_code", code)
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}

	s.storeInCache(*currency)
	return currency, nil
}

// ListCurrencies retrieves currencies from the repository.
func (s *CurrencyService) ListCurrencies(ctx context.Context, activeOnly bool) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// Convert re-denominates amount from one currency to another through the
// reference currency: amount / fromRate * toRate, rounded half-up to two
// decimal places. Identity conversions return the amount unchanged without
// rounding.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	from := strings.ToUpper(fromCode)
	to := strings.ToUpper(toCode)
	if from == to {
		// Still reject unknown codes even when no arithmetic happens.
		if _, err := s.GetCurrencyByCode(ctx, from); err != nil {
			return decimal.Zero, err
		}
		return amount, nil
	}

	fromCurrency, err := s.GetCurrencyByCode(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	toCurrency, err := s.GetCurrencyByCode(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}

	converted := amount.Div(fromCurrency.ExchangeRate).Mul(toCurrency.ExchangeRate)
	return converted.Round(roundingPlaces), nil
}

// RateBetween returns the effective conversion rate from one currency to
// another, carried at a higher precision than monetary amounts.
func (s *CurrencyService) RateBetween(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	fromCurrency, err := s.GetCurrencyByCode(ctx, fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	toCurrency, err := s.GetCurrencyByCode(ctx, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return toCurrency.ExchangeRate.DivRound(fromCurrency.ExchangeRate, 8), nil
}

func (s *CurrencyService) storeInCache(currency domain.Currency) {
	s.mu.Lock()
	s.cache[currency.CurrencyCode] = currency
	s.mu.Unlock()
}
