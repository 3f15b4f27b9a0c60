package mapping

import (
	"github.com/bankaroo/banking_app/internal/core/domain"
	"github.com/bankaroo/banking_app/internal/models"
)

// ToModelTransaction converts a domain.Transaction to its database model.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:      d.TransactionID,
		SenderAccountID:    d.SenderAccountID,
		RecipientAccountID: d.RecipientAccountID,
		Amount:             d.Amount,
		CurrencyCode:       d.CurrencyCode,
		Kind:               string(d.Kind),
		Description:        d.Description,
		Status:             string(d.Status),
		IsSuccessful:       d.IsSuccessful,
		CreatedAt:          d.CreatedAt,
		SettledAt:          d.SettledAt,
	}
}

// ToDomainTransaction converts a models.Transaction to its domain representation.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:      m.TransactionID,
		SenderAccountID:    m.SenderAccountID,
		RecipientAccountID: m.RecipientAccountID,
		Amount:             m.Amount,
		CurrencyCode:       m.CurrencyCode,
		Kind:               domain.TransactionKind(m.Kind),
		Description:        m.Description,
		Status:             domain.TransactionStatus(m.Status),
		IsSuccessful:       m.IsSuccessful,
		CreatedAt:          m.CreatedAt,
		SettledAt:          m.SettledAt,
	}
}
