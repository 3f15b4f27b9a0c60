package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	"github.com/bankaroo/banking_app/internal/core/services"
	"github.com/bankaroo/banking_app/internal/dto"
)

type TransferServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	mockCurrency    *MockCurrencyReader
	service         *services.TransferService

	sender    *domain.Account
	recipient *domain.Account
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrency = new(MockCurrencyReader)
	suite.service = services.NewTransferService(suite.mockTxnRepo, suite.mockAccountRepo, suite.mockCurrency)

	suite.sender = &domain.Account{
		AccountID:    uuid.NewString(),
		UserID:       uuid.NewString(),
		CurrencyCode: "USD",
		Balance:      decimal.RequireFromString("100.00"),
		IsActive:     true,
	}
	suite.recipient = &domain.Account{
		AccountID:    uuid.NewString(),
		UserID:       uuid.NewString(),
		CurrencyCode: "USD",
		Balance:      decimal.RequireFromString("50.00"),
		IsActive:     true,
	}
}

func (suite *TransferServiceTestSuite) expectAccounts() {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.sender.AccountID).Return(suite.sender, nil)
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.recipient.AccountID).Return(suite.recipient, nil)
}

// identityConvert wires the currency reader to pass a same-currency amount
// through unchanged, which is all a USD-to-USD test needs.
func (suite *TransferServiceTestSuite) identityConvert(amount decimal.Decimal) {
	suite.mockCurrency.On("Convert", mock.Anything, amount, "USD", "USD").Return(amount, nil)
}

func (suite *TransferServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	amount := decimal.RequireFromString("30.00")

	suite.expectAccounts()
	suite.identityConvert(amount)

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(e domain.Transaction) bool {
		return e.Status == domain.StatusPending && e.Kind == domain.KindTransfer
	})).Return(nil).Once()
	suite.mockTxnRepo.On("SettleTransaction", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		debit, ok := changes[suite.sender.AccountID]
		if !ok || !debit.Equal(decimal.RequireFromString("-30.00")) {
			return false
		}
		credit, ok := changes[suite.recipient.AccountID]
		return ok && credit.Equal(decimal.RequireFromString("30.00"))
	}), suite.sender.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, amount, "USD", "rent")

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusSettled, entry.Status)
	suite.True(entry.IsSuccessful)
	suite.Require().NotNil(entry.SettledAt)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_InsufficientFundsRecordsFailedEntry() {
	ctx := context.Background()
	amount := decimal.RequireFromString("130.00")

	suite.expectAccounts()
	suite.identityConvert(amount)

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(e domain.Transaction) bool {
		return e.Status == domain.StatusFailed
	})).Return(nil).Once()

	entry, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, amount, "USD", "")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusFailed, entry.Status)
	suite.False(entry.IsSuccessful)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SettleTransaction")
}

func (suite *TransferServiceTestSuite) TestTransfer_SelfTransferLeavesNoTrace() {
	ctx := context.Background()

	_, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.sender.AccountID, decimal.RequireFromString("10.00"), "USD", "")

	suite.Require().ErrorIs(err, apperrors.ErrSelfTransfer)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByID")
}

func (suite *TransferServiceTestSuite) TestTransfer_InvalidAmount() {
	ctx := context.Background()

	for _, raw := range []string{"0", "-5.00", "1.005"} {
		_, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, decimal.RequireFromString(raw), "USD", "")
		suite.Require().ErrorIs(err, apperrors.ErrInvalidAmount, "amount %s", raw)
	}
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransferServiceTestSuite) TestTransfer_InactiveRecipient() {
	ctx := context.Background()
	suite.recipient.IsActive = false
	suite.expectAccounts()

	_, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, decimal.RequireFromString("10.00"), "USD", "")

	suite.Require().ErrorIs(err, apperrors.ErrAccountInactive)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransferServiceTestSuite) TestTransfer_UnknownCurrency() {
	ctx := context.Background()
	suite.expectAccounts()
	suite.mockCurrency.On("Convert", mock.Anything, mock.AnythingOfType("decimal.Decimal"), "XXX", "USD").
		Return(decimal.Zero, apperrors.ErrCurrencyNotFound)

	_, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, decimal.RequireFromString("10.00"), "XXX", "")

	suite.Require().ErrorIs(err, apperrors.ErrCurrencyNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransferServiceTestSuite) TestTransfer_CrossCurrencyConvertsBothLegs() {
	ctx := context.Background()
	suite.recipient.CurrencyCode = "EUR"
	amount := decimal.RequireFromString("10.00")

	suite.expectAccounts()
	suite.mockCurrency.On("Convert", ctx, amount, "USD", "USD").Return(amount, nil).Once()
	suite.mockCurrency.On("Convert", ctx, amount, "USD", "EUR").Return(decimal.RequireFromString("9.20"), nil).Once()

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("SettleTransaction", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.sender.AccountID].Equal(decimal.RequireFromString("-10.00")) &&
			changes[suite.recipient.AccountID].Equal(decimal.RequireFromString("9.20"))
	}), suite.sender.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, amount, "USD", "")

	suite.Require().NoError(err)
	// The entry records the requested amount and currency, not the converted legs.
	suite.True(entry.Amount.Equal(amount))
	suite.Equal("USD", entry.CurrencyCode)
	suite.mockCurrency.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_SettleFailureMarksEntryFailed() {
	ctx := context.Background()
	amount := decimal.RequireFromString("30.00")

	suite.expectAccounts()
	suite.identityConvert(amount)

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("SettleTransaction", ctx, mock.AnythingOfType("string"), mock.Anything, suite.sender.UserID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrInsufficientFunds).Once()
	suite.mockTxnRepo.On("MarkTransactionFailed", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, amount, "USD", "")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusFailed, entry.Status)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_DeadlineTranslatesToTimeout() {
	ctx := context.Background()
	amount := decimal.RequireFromString("30.00")

	suite.expectAccounts()
	suite.identityConvert(amount)

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("SettleTransaction", ctx, mock.AnythingOfType("string"), mock.Anything, suite.sender.UserID, mock.AnythingOfType("time.Time")).
		Return(context.DeadlineExceeded).Once()
	suite.mockTxnRepo.On("MarkTransactionFailed", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.Transfer(ctx, suite.sender.AccountID, suite.recipient.AccountID, amount, "USD", "")

	suite.Require().ErrorIs(err, apperrors.ErrTimeout)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusFailed, entry.Status)
}

func (suite *TransferServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	amount := decimal.RequireFromString("25.00")

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.recipient.AccountID).Return(suite.recipient, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(e domain.Transaction) bool {
		return e.Kind == domain.KindDeposit && e.SenderAccountID == nil
	})).Return(nil).Once()
	suite.mockTxnRepo.On("SettleTransaction", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.recipient.AccountID].Equal(amount)
	}), suite.recipient.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.Deposit(ctx, suite.recipient.AccountID, amount, "USD", "payroll")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusSettled, entry.Status)
}

func (suite *TransferServiceTestSuite) TestDeposit_WrongCurrencyRejected() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.recipient.AccountID).Return(suite.recipient, nil)

	_, err := suite.service.Deposit(ctx, suite.recipient.AccountID, decimal.RequireFromString("25.00"), "EUR", "")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransferServiceTestSuite) TestWithdraw_Success() {
	ctx := context.Background()
	amount := decimal.RequireFromString("40.00")

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.sender.AccountID).Return(suite.sender, nil)
	suite.identityConvert(amount)

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(e domain.Transaction) bool {
		return e.Kind == domain.KindWithdrawal && e.RecipientAccountID == nil
	})).Return(nil).Once()
	suite.mockTxnRepo.On("SettleTransaction", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.sender.AccountID].Equal(decimal.RequireFromString("-40.00"))
	}), suite.sender.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.Withdraw(ctx, suite.sender.AccountID, amount, "USD", "atm")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusSettled, entry.Status)
}

func (suite *TransferServiceTestSuite) TestWithdraw_InsufficientFundsRecordsFailedEntry() {
	ctx := context.Background()
	amount := decimal.RequireFromString("100.01")

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.sender.AccountID).Return(suite.sender, nil)
	suite.identityConvert(amount)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(e domain.Transaction) bool {
		return e.Status == domain.StatusFailed
	})).Return(nil).Once()

	entry, err := suite.service.Withdraw(ctx, suite.sender.AccountID, amount, "USD", "")

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusFailed, entry.Status)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SettleTransaction")
}

func (suite *TransferServiceTestSuite) TestExchangeCurrency_Success() {
	ctx := context.Background()
	eur := &domain.Currency{CurrencyCode: "EUR", Name: "Euro", Symbol: "€", ExchangeRate: decimal.RequireFromString("0.92"), IsActive: true}

	suite.mockCurrency.On("GetCurrencyByCode", ctx, "EUR").Return(eur, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.sender.AccountID).Return(suite.sender, nil)
	suite.mockCurrency.On("Convert", ctx, suite.sender.Balance, "USD", "EUR").
		Return(decimal.RequireFromString("92.00"), nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(e domain.Transaction) bool {
		return e.Kind == domain.KindCurrencyExchange && e.Amount.Equal(suite.sender.Balance)
	})).Return(nil).Once()
	suite.mockTxnRepo.On("SettleExchange", ctx, mock.AnythingOfType("string"), suite.sender.AccountID,
		suite.sender.Balance, decimal.RequireFromString("92.00"), "EUR", suite.sender.UserID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	entry, err := suite.service.ExchangeCurrency(ctx, suite.sender.AccountID, "EUR")

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusSettled, entry.Status)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestExchangeCurrency_ZeroBalanceSwitchesDirectly() {
	ctx := context.Background()
	suite.sender.Balance = decimal.Zero
	eur := &domain.Currency{CurrencyCode: "EUR", Name: "Euro", Symbol: "€", ExchangeRate: decimal.RequireFromString("0.92"), IsActive: true}

	suite.mockCurrency.On("GetCurrencyByCode", ctx, "EUR").Return(eur, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.sender.AccountID).Return(suite.sender, nil)
	suite.mockAccountRepo.On("ChangeHomeCurrency", ctx, suite.sender.AccountID, "EUR", suite.sender.UserID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	entry, err := suite.service.ExchangeCurrency(ctx, suite.sender.AccountID, "EUR")

	suite.Require().NoError(err)
	suite.Nil(entry)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransferServiceTestSuite) TestExchangeCurrency_SameCurrencyRejected() {
	ctx := context.Background()
	usd := &domain.Currency{CurrencyCode: "USD", Name: "US Dollar", Symbol: "$", ExchangeRate: decimal.NewFromInt(1), IsActive: true}

	suite.mockCurrency.On("GetCurrencyByCode", ctx, "USD").Return(usd, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.sender.AccountID).Return(suite.sender, nil)

	_, err := suite.service.ExchangeCurrency(ctx, suite.sender.AccountID, "usd")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransferServiceTestSuite) TestExchangeCurrency_RetriesOnConcurrentModification() {
	ctx := context.Background()
	eur := &domain.Currency{CurrencyCode: "EUR", Name: "Euro", Symbol: "€", ExchangeRate: decimal.RequireFromString("0.92"), IsActive: true}

	suite.mockCurrency.On("GetCurrencyByCode", ctx, "EUR").Return(eur, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.sender.AccountID).Return(suite.sender, nil)
	suite.mockCurrency.On("Convert", ctx, suite.sender.Balance, "USD", "EUR").
		Return(decimal.RequireFromString("92.00"), nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.Anything).Return(nil)

	// First attempt loses the race; the retry settles from a fresh snapshot.
	suite.mockTxnRepo.On("SettleExchange", ctx, mock.AnythingOfType("string"), suite.sender.AccountID,
		suite.sender.Balance, decimal.RequireFromString("92.00"), "EUR", suite.sender.UserID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrConcurrentModification).Once()
	suite.mockTxnRepo.On("MarkTransactionFailed", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTxnRepo.On("SettleExchange", ctx, mock.AnythingOfType("string"), suite.sender.AccountID,
		suite.sender.Balance, decimal.RequireFromString("92.00"), "EUR", suite.sender.UserID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	entry, err := suite.service.ExchangeCurrency(ctx, suite.sender.AccountID, "EUR")

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusSettled, entry.Status)
	suite.mockTxnRepo.AssertNumberOfCalls(suite.T(), "SaveTransaction", 2)
	suite.mockTxnRepo.AssertNumberOfCalls(suite.T(), "MarkTransactionFailed", 1)
}

func (suite *TransferServiceTestSuite) TestListEntries_UnknownAccount() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.ListEntries(ctx, accountID, dto.ListTransactionsParams{Limit: 20})

	suite.Require().ErrorIs(err, apperrors.ErrAccountNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ListTransactionsByAccount")
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

func TestValidAmount(t *testing.T) {
	valid := []string{"0.01", "1", "10.50", "10.120", "999999.99"}
	for _, raw := range valid {
		if !domain.ValidAmount(decimal.RequireFromString(raw)) {
			t.Errorf("expected %s to be a valid amount", raw)
		}
	}
	invalid := []string{"0", "-0.01", "0.001", "10.505"}
	for _, raw := range invalid {
		if domain.ValidAmount(decimal.RequireFromString(raw)) {
			t.Errorf("expected %s to be rejected", raw)
		}
	}
}
