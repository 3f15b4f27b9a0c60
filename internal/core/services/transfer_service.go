package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	portsrepo "github.com/bankaroo/banking_app/internal/core/ports/repositories"
	portssvc "github.com/bankaroo/banking_app/internal/core/ports/services"
	"github.com/bankaroo/banking_app/internal/dto"
)

// exchangeRetries bounds the optimistic retry loop when a concurrent
// settlement moves an account's balance between snapshot and lock.
const exchangeRetries = 3

// TransferService is the ledger engine. Every money movement flows through
// here: validation happens up front with no side effects, then a pending
// ledger entry is written, then the balance mutations and the settle run in
// one atomic database unit. A movement that fails after its entry was
// created leaves the entry behind in its failed state; entries are never
// deleted.
type TransferService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	currencySvc portssvc.CurrencyReaderSvc
}

func NewTransferService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, currencySvc portssvc.CurrencyReaderSvc) *TransferService {
	return &TransferService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		currencySvc: currencySvc,
	}
}

// Transfer moves funds between two accounts. The amount is denominated in
// currencyCode; the sender is debited its converted equivalent and the
// recipient credited theirs, both in the same atomic unit. The ledger entry
// is returned even when the transfer fails so callers can report the
// outcome.
func (s *TransferService) Transfer(ctx context.Context, senderAccountID, recipientAccountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error) {
	if senderAccountID == recipientAccountID {
		return nil, apperrors.ErrSelfTransfer
	}
	if !domain.ValidAmount(amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	sender, err := s.loadActiveAccount(ctx, senderAccountID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.loadActiveAccount(ctx, recipientAccountID)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(currencyCode)
	debitAmount, err := s.currencySvc.Convert(ctx, amount, code, sender.CurrencyCode)
	if err != nil {
		return nil, err
	}
	creditAmount, err := s.currencySvc.Convert(ctx, amount, code, recipient.CurrencyCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := domain.Transaction{
		TransactionID:      uuid.NewString(),
		SenderAccountID:    &sender.AccountID,
		RecipientAccountID: &recipient.AccountID,
		Amount:             amount,
		CurrencyCode:       code,
		Kind:               domain.KindTransfer,
		Description:        description,
		Status:             domain.StatusPending,
		CreatedAt:          now,
	}

	// Advisory fast-fail on a balance snapshot. Unlike pure validation
	// errors this one is recorded: the attempt got far enough to deserve a
	// ledger entry. The authoritative check runs again under the row lock.
	if !sender.HasSufficientBalance(debitAmount) {
		return s.recordRejected(ctx, entry, apperrors.ErrInsufficientFunds)
	}

	if err := s.txnRepo.SaveTransaction(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save ledger entry", "transaction_id", entry.TransactionID)
		return nil, err
	}

	changes := map[string]decimal.Decimal{
		sender.AccountID:    debitAmount.Neg(),
		recipient.AccountID: creditAmount,
	}
	if err := s.txnRepo.SettleTransaction(ctx, entry.TransactionID, changes, sender.UserID, now); err != nil {
		return s.failEntry(ctx, entry, err)
	}

	if err := entry.Settle(now); err != nil {
		return &entry, err
	}
	s.LogInfo(ctx, "Transfer settled",
		"transaction_id", entry.TransactionID,
		"sender_account_id", sender.AccountID,
		"recipient_account_id", recipient.AccountID,
		"amount", amount.String(),
		"currency_code", code,
	)
	return &entry, nil
}

// Deposit credits an account. Deposits must be denominated in the account's
// home currency; conversion is the sender's concern, not the teller's.
func (s *TransferService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error) {
	if !domain.ValidAmount(amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	account, err := s.loadActiveAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(currencyCode)
	if code != account.CurrencyCode {
		return nil, fmt.Errorf("deposit currency %s does not match account currency %s: %w", code, account.CurrencyCode, apperrors.ErrValidation)
	}

	now := time.Now()
	entry := domain.Transaction{
		TransactionID:      uuid.NewString(),
		RecipientAccountID: &account.AccountID,
		Amount:             amount,
		CurrencyCode:       code,
		Kind:               domain.KindDeposit,
		Description:        description,
		Status:             domain.StatusPending,
		CreatedAt:          now,
	}

	if err := s.txnRepo.SaveTransaction(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save ledger entry", "transaction_id", entry.TransactionID)
		return nil, err
	}

	changes := map[string]decimal.Decimal{account.AccountID: amount}
	if err := s.txnRepo.SettleTransaction(ctx, entry.TransactionID, changes, account.UserID, now); err != nil {
		return s.failEntry(ctx, entry, err)
	}

	if err := entry.Settle(now); err != nil {
		return &entry, err
	}
	s.LogInfo(ctx, "Deposit settled", "transaction_id", entry.TransactionID, "account_id", account.AccountID, "amount", amount.String())
	return &entry, nil
}

// Withdraw debits an account, subject to the non-negative balance rule. Like
// transfers, the amount may be denominated in any registered currency and is
// converted into the account's home currency for the debit.
func (s *TransferService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error) {
	if !domain.ValidAmount(amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	account, err := s.loadActiveAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(currencyCode)
	debitAmount, err := s.currencySvc.Convert(ctx, amount, code, account.CurrencyCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := domain.Transaction{
		TransactionID:   uuid.NewString(),
		SenderAccountID: &account.AccountID,
		Amount:          amount,
		CurrencyCode:    code,
		Kind:            domain.KindWithdrawal,
		Description:     description,
		Status:          domain.StatusPending,
		CreatedAt:       now,
	}

	if !account.HasSufficientBalance(debitAmount) {
		return s.recordRejected(ctx, entry, apperrors.ErrInsufficientFunds)
	}

	if err := s.txnRepo.SaveTransaction(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save ledger entry", "transaction_id", entry.TransactionID)
		return nil, err
	}

	changes := map[string]decimal.Decimal{account.AccountID: debitAmount.Neg()}
	if err := s.txnRepo.SettleTransaction(ctx, entry.TransactionID, changes, account.UserID, now); err != nil {
		return s.failEntry(ctx, entry, err)
	}

	if err := entry.Settle(now); err != nil {
		return &entry, err
	}
	s.LogInfo(ctx, "Withdrawal settled", "transaction_id", entry.TransactionID, "account_id", account.AccountID, "amount", amount.String())
	return &entry, nil
}

// ExchangeCurrency re-denominates an account's entire balance into a new
// home currency at current rates. The balance snapshot is re-verified under
// the row lock; a concurrent settlement between snapshot and lock aborts the
// unit and the whole operation retries from a fresh snapshot.
//
// A zero-balance account switches currency directly with no ledger entry to
// write; the returned entry is nil in that case.
func (s *TransferService) ExchangeCurrency(ctx context.Context, accountID string, newCurrencyCode string) (*domain.Transaction, error) {
	newCode := strings.ToUpper(newCurrencyCode)
	newCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, newCode)
	if err != nil {
		return nil, err
	}
	if !newCurrency.IsActive {
		return nil, fmt.Errorf("currency %s is not active: %w", newCode, apperrors.ErrValidation)
	}

	var lastErr error
	for attempt := 0; attempt < exchangeRetries; attempt++ {
		account, err := s.loadActiveAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if account.CurrencyCode == newCode {
			return nil, fmt.Errorf("account already denominated in %s: %w", newCode, apperrors.ErrValidation)
		}

		now := time.Now()
		if account.Balance.IsZero() {
			if err := s.accountRepo.ChangeHomeCurrency(ctx, account.AccountID, newCode, account.UserID, now); err != nil {
				s.LogError(ctx, err, "Failed to change home currency", "account_id", accountID)
				return nil, err
			}
			s.LogInfo(ctx, "Home currency changed", "account_id", accountID, "currency_code", newCode)
			return nil, nil
		}

		newBalance, err := s.currencySvc.Convert(ctx, account.Balance, account.CurrencyCode, newCode)
		if err != nil {
			return nil, err
		}

		entry := domain.Transaction{
			TransactionID:      uuid.NewString(),
			RecipientAccountID: &account.AccountID,
			Amount:             account.Balance,
			CurrencyCode:       account.CurrencyCode,
			Kind:               domain.KindCurrencyExchange,
			Description:        fmt.Sprintf("Exchange %s to %s", account.CurrencyCode, newCode),
			Status:             domain.StatusPending,
			CreatedAt:          now,
		}
		if err := s.txnRepo.SaveTransaction(ctx, entry); err != nil {
			s.LogError(ctx, err, "Failed to save ledger entry", "transaction_id", entry.TransactionID)
			return nil, err
		}

		err = s.txnRepo.SettleExchange(ctx, entry.TransactionID, account.AccountID, account.Balance, newBalance, newCode, account.UserID, now)
		if err == nil {
			if err := entry.Settle(now); err != nil {
				return &entry, err
			}
			s.LogInfo(ctx, "Currency exchange settled", "transaction_id", entry.TransactionID, "account_id", accountID, "currency_code", newCode)
			return &entry, nil
		}

		if errors.Is(err, apperrors.ErrConcurrentModification) {
			s.LogWarn(ctx, "Balance moved during exchange, retrying", "account_id", accountID, "attempt", attempt+1)
			s.markFailed(ctx, &entry)
			lastErr = err
			continue
		}
		return s.failEntry(ctx, entry, err)
	}
	return nil, lastErr
}

// GetTransactionByID retrieves a single ledger entry.
func (s *TransferService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find ledger entry", "transaction_id", transactionID)
		}
		return nil, err
	}
	return txn, nil
}

// ListEntries retrieves the ledger entries touching an account, newest
// first, with keyset pagination.
func (s *TransferService) ListEntries(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	if _, err := s.loadAccount(ctx, accountID); err != nil {
		return nil, nil, err
	}
	txns, nextToken, err := s.txnRepo.ListTransactionsByAccount(ctx, accountID, params)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries", "account_id", accountID)
		return nil, nil, err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nextToken, nil
}

func (s *TransferService) loadAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *TransferService) loadActiveAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return account, nil
}

// recordRejected persists an entry straight into its failed state for
// attempts that were rejected after getting far enough to deserve a record.
func (s *TransferService) recordRejected(ctx context.Context, entry domain.Transaction, cause error) (*domain.Transaction, error) {
	entry.Status = domain.StatusFailed
	if err := s.txnRepo.SaveTransaction(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to record rejected entry", "transaction_id", entry.TransactionID)
		return nil, err
	}
	return &entry, cause
}

// failEntry marks an already-persisted pending entry failed and translates
// the settle error for the caller. The entry is returned alongside the error
// so the outcome stays reportable.
func (s *TransferService) failEntry(ctx context.Context, entry domain.Transaction, cause error) (*domain.Transaction, error) {
	s.markFailed(ctx, &entry)
	return &entry, s.translateSettleErr(ctx, cause)
}

// markFailed moves the persisted entry to FAILED using a context that
// survives caller cancellation, so a timed-out request still leaves an
// accurate record behind.
func (s *TransferService) markFailed(ctx context.Context, entry *domain.Transaction) {
	detached := context.WithoutCancel(ctx)
	if err := s.txnRepo.MarkTransactionFailed(detached, entry.TransactionID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark entry failed, reconciliation will catch it", "transaction_id", entry.TransactionID)
	}
	entry.Status = domain.StatusFailed
}

func (s *TransferService) translateSettleErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("settle aborted: %w", apperrors.ErrTimeout)
	}
	return err
}
