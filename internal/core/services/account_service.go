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
	"github.com/bankaroo/banking_app/internal/utils"
)

// accountNumberRetries bounds regeneration attempts when a freshly generated
// account number collides with an existing one.
const accountNumberRetries = 3

type AccountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	currencySvc portssvc.CurrencyReaderSvc
}

func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, currencySvc portssvc.CurrencyReaderSvc) *AccountService {
	return &AccountService{accountRepo: accountRepo, currencySvc: currencySvc}
}

// OpenAccount provisions a new account with a zero balance. Provisioning is
// always an explicit call; nothing creates accounts as a side effect.
func (s *AccountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, creatorUserID string) (*domain.Account, error) {
	code := strings.ToUpper(req.CurrencyCode)
	currency, err := s.currencySvc.GetCurrencyByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("currency %s is not active: %w", code, apperrors.ErrValidation)
	}

	phone := req.PhoneNumber
	if phone == "" {
		phone, err = utils.GeneratePlaceholderPhone()
		if err != nil {
			s.LogError(ctx, err, "Failed to generate placeholder phone")
			return nil, fmt.Errorf("failed to generate placeholder phone: %w", err)
		}
	}

	now := time.Now()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		UserID:       req.UserID,
		PhoneNumber:  phone,
		CurrencyCode: code,
		Balance:      decimal.Zero,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(creatorUserID, now),
	}

	for attempt := 0; ; attempt++ {
		number, err := utils.GenerateAccountNumber()
		if err != nil {
			s.LogError(ctx, err, "Failed to generate account number")
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}
		account.AccountNumber = number

		err = s.accountRepo.SaveAccount(ctx, account)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrAccountNumberCollision) && attempt < accountNumberRetries {
			s.LogWarn(ctx, "Account number collision, regenerating", "attempt", attempt+1)
			continue
		}
		s.LogError(ctx, err, "Failed to save account", "user_id", req.UserID)
		return nil, err
	}

	s.LogInfo(ctx, "Account opened", "account_id", account.AccountID, "currency_code", code)
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		s.LogError(ctx, err, "Failed to find account by ID", "account_id", accountID)
		return nil, err
	}
	return account, nil
}

// GetAccountByUserID retrieves the account owned by a user.
func (s *AccountService) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		s.LogError(ctx, err, "Failed to find account by user ID", "user_id", userID)
		return nil, err
	}
	return account, nil
}

// GetAccountByNumber retrieves an account by its public account number.
func (s *AccountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		s.LogError(ctx, err, "Failed to find account by number")
		return nil, err
	}
	return account, nil
}

// GetBalance returns the account balance, re-denominated into the requested
// display currency when one is given. An unknown display currency is an
// error, never a silent zero.
func (s *AccountService) GetBalance(ctx context.Context, accountID string, displayCurrency string) (*dto.BalanceResponse, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := &dto.BalanceResponse{
		AccountID:    account.AccountID,
		Balance:      account.Balance,
		CurrencyCode: account.CurrencyCode,
		HomeCurrency: account.CurrencyCode,
		AsOf:         time.Now(),
	}

	if displayCurrency == "" || strings.EqualFold(displayCurrency, account.CurrencyCode) {
		return resp, nil
	}

	converted, err := s.currencySvc.Convert(ctx, account.Balance, account.CurrencyCode, displayCurrency)
	if err != nil {
		return nil, err
	}
	resp.Balance = converted
	resp.CurrencyCode = strings.ToUpper(displayCurrency)
	return resp, nil
}

// UpdateAccount updates an existing account's mutable details.
func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.PhoneNumber != nil {
		account.PhoneNumber = *req.PhoneNumber
	}
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", "account_id", accountID)
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive. Inactive accounts reject
// all money movement but their history stays readable.
func (s *AccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	now := time.Now()
	err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrAccountNotFound
		}
		s.LogError(ctx, err, "Failed to deactivate account", "account_id", accountID)
		return err
	}
	s.LogInfo(ctx, "Account deactivated", "account_id", accountID)
	return nil
}
