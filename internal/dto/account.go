package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/core/domain"
)

// OpenAccountRequest defines the payload for provisioning a new account.
type OpenAccountRequest struct {
	UserID       string `json:"userID" binding:"required"`
	PhoneNumber  string `json:"phoneNumber" binding:"omitempty,e164"`
	CurrencyCode string `json:"currencyCode" binding:"required,len=3,uppercase"`
}

// UpdateAccountRequest defines the mutable account details.
type UpdateAccountRequest struct {
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,e164"`
}

// AccountResponse defines the API representation of an account.
type AccountResponse struct {
	AccountID     string          `json:"accountID"`
	UserID        string          `json:"userID"`
	AccountNumber string          `json:"accountNumber"`
	PhoneNumber   string          `json:"phoneNumber,omitempty"`
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// BalanceResponse carries an account balance, optionally re-denominated in a
// requested display currency.
type BalanceResponse struct {
	AccountID    string          `json:"accountID"`
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currencyCode"`
	HomeCurrency string          `json:"homeCurrency"`
	AsOf         time.Time       `json:"asOf"`
}

// ToAccountResponse converts a domain.Account to its API representation.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		PhoneNumber:   a.PhoneNumber,
		CurrencyCode:  a.CurrencyCode,
		Balance:       a.Balance,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		LastUpdatedAt: a.LastUpdatedAt,
	}
}
