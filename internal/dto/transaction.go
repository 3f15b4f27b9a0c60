package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/core/domain"
)

// TransferRequest defines the payload for moving funds between accounts.
type TransferRequest struct {
	RecipientAccountNumber string          `json:"recipientAccountNumber" binding:"required"`
	Amount                 decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode           string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Description            string          `json:"description" binding:"max=255"`
}

// DepositRequest defines the payload for crediting an account.
type DepositRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Description  string          `json:"description" binding:"max=255"`
}

// WithdrawRequest defines the payload for debiting an account.
type WithdrawRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Description  string          `json:"description" binding:"max=255"`
}

// ExchangeCurrencyRequest defines the payload for re-denominating an account
// into a new home currency.
type ExchangeCurrencyRequest struct {
	NewCurrencyCode string `json:"newCurrencyCode" binding:"required,len=3,uppercase"`
}

// ListTransactionsParams carries the filters for the ledger listing queries.
// All fields are optional; zero values mean no filtering.
type ListTransactionsParams struct {
	Kind        *domain.TransactionKind   `form:"kind" binding:"omitempty,oneof=TRANSFER DEPOSIT WITHDRAWAL CURRENCY_EXCHANGE"`
	Status      *domain.TransactionStatus `form:"status" binding:"omitempty,oneof=PENDING SETTLED FAILED"`
	SuccessOnly bool                      `form:"successOnly"`
	From        *time.Time                `form:"from" time_format:"2006-01-02"`
	To          *time.Time                `form:"to" time_format:"2006-01-02"`
	Limit       int                       `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken   *string                   `form:"nextToken"`
}

// TransactionResponse defines the API representation of a ledger entry.
type TransactionResponse struct {
	TransactionID      string          `json:"transactionID"`
	SenderAccountID    *string         `json:"senderAccountID,omitempty"`
	RecipientAccountID *string         `json:"recipientAccountID,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	CurrencyCode       string          `json:"currencyCode"`
	Kind               string          `json:"kind"`
	Description        string          `json:"description,omitempty"`
	Status             string          `json:"status"`
	IsSuccessful       bool            `json:"isSuccessful"`
	CreatedAt          time.Time       `json:"createdAt"`
	SettledAt          *time.Time      `json:"settledAt,omitempty"`
}

// ListTransactionsResponse defines the paginated ledger listing payload.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its API representation.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:      t.TransactionID,
		SenderAccountID:    t.SenderAccountID,
		RecipientAccountID: t.RecipientAccountID,
		Amount:             t.Amount,
		CurrencyCode:       t.CurrencyCode,
		Kind:               string(t.Kind),
		Description:        t.Description,
		Status:             string(t.Status),
		IsSuccessful:       t.IsSuccessful,
		CreatedAt:          t.CreatedAt,
		SettledAt:          t.SettledAt,
	}
}

// ToListTransactionsResponse converts a page of domain transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	resp := ListTransactionsResponse{
		Transactions: make([]TransactionResponse, 0, len(txns)),
		NextToken:    nextToken,
	}
	for _, t := range txns {
		resp.Transactions = append(resp.Transactions, ToTransactionResponse(t))
	}
	return resp
}
