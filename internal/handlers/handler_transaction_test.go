package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	portssvc "github.com/bankaroo/banking_app/internal/core/ports/services"
	"github.com/bankaroo/banking_app/internal/dto"
	"github.com/bankaroo/banking_app/internal/handlers"
	"github.com/bankaroo/banking_app/internal/middleware"
	"github.com/bankaroo/banking_app/pkg/config"
)

// --- Mock TransferSvc ---

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Transfer(ctx context.Context, senderAccountID, recipientAccountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, senderAccountID, recipientAccountID, amount, currencyCode, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransferService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, amount, currencyCode, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransferService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, currencyCode string, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, amount, currencyCode, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransferService) ExchangeCurrency(ctx context.Context, accountID string, newCurrencyCode string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, newCurrencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransferService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransferService) ListEntries(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, params)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

var _ portssvc.TransferSvc = (*MockTransferService)(nil)

// --- Mock AccountSvcFacade ---

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetBalance(ctx context.Context, accountID string, displayCurrency string) (*dto.BalanceResponse, error) {
	args := m.Called(ctx, accountID, displayCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BalanceResponse), args.Error(1)
}

func (m *MockAccountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Test Suite ---

type TransactionHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockTransferService *MockTransferService
	mockAccountService  *MockAccountService
	jwtSecret           string

	userID  string
	account *domain.Account
}

func (suite *TransactionHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "banking-app-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockTransferService = new(MockTransferService)
	suite.mockAccountService = new(MockAccountService)

	suite.userID = uuid.NewString()
	suite.account = &domain.Account{
		AccountID:     uuid.NewString(),
		UserID:        suite.userID,
		AccountNumber: "ACC0123456789ABCDEF",
		CurrencyCode:  "USD",
		Balance:       decimal.RequireFromString("100.00"),
		IsActive:      true,
	}

	cfg := &config.Config{IsProduction: false}
	v1 := suite.router.Group("/api/v1")
	handlers.RegisterTransactionRoutes(v1, cfg, suite.mockTransferService, suite.mockAccountService)
}

func (suite *TransactionHandlerTestSuite) doRequest(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TransactionHandlerTestSuite) TestTransfer_Success() {
	recipient := &domain.Account{
		AccountID:     uuid.NewString(),
		UserID:        uuid.NewString(),
		AccountNumber: "ACCFEDCBA9876543210",
		CurrencyCode:  "EUR",
		IsActive:      true,
	}
	amount := decimal.RequireFromString("30.00")
	settledAt := time.Now()
	entry := &domain.Transaction{
		TransactionID:      uuid.NewString(),
		SenderAccountID:    &suite.account.AccountID,
		RecipientAccountID: &recipient.AccountID,
		Amount:             amount,
		CurrencyCode:       "USD",
		Kind:               domain.KindTransfer,
		Status:             domain.StatusSettled,
		IsSuccessful:       true,
		CreatedAt:          settledAt,
		SettledAt:          &settledAt,
	}

	suite.mockAccountService.On("GetAccountByUserID", mock.Anything, suite.userID).Return(suite.account, nil).Once()
	suite.mockAccountService.On("GetAccountByNumber", mock.Anything, recipient.AccountNumber).Return(recipient, nil).Once()
	suite.mockTransferService.On("Transfer", mock.Anything, suite.account.AccountID, recipient.AccountID, amount, "USD", "rent").
		Return(entry, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/transfer", dto.TransferRequest{
		RecipientAccountNumber: recipient.AccountNumber,
		Amount:                 amount,
		CurrencyCode:           "USD",
		Description:            "rent",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(entry.TransactionID, resp.TransactionID)
	suite.Equal(string(domain.StatusSettled), resp.Status)
	suite.mockTransferService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestTransfer_InsufficientFundsReturns422WithEntry() {
	recipientNumber := "ACCFEDCBA9876543210"
	recipient := &domain.Account{AccountID: uuid.NewString(), AccountNumber: recipientNumber, CurrencyCode: "USD", IsActive: true}
	failedEntry := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		SenderAccountID: &suite.account.AccountID,
		Amount:          decimal.RequireFromString("130.00"),
		CurrencyCode:    "USD",
		Kind:            domain.KindTransfer,
		Status:          domain.StatusFailed,
		CreatedAt:       time.Now(),
	}

	suite.mockAccountService.On("GetAccountByUserID", mock.Anything, suite.userID).Return(suite.account, nil).Once()
	suite.mockAccountService.On("GetAccountByNumber", mock.Anything, recipientNumber).Return(recipient, nil).Once()
	suite.mockTransferService.On("Transfer", mock.Anything, suite.account.AccountID, recipient.AccountID,
		failedEntry.Amount, "USD", "").Return(failedEntry, apperrors.ErrInsufficientFunds).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/transfer", dto.TransferRequest{
		RecipientAccountNumber: recipientNumber,
		Amount:                 failedEntry.Amount,
		CurrencyCode:           "USD",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var body map[string]json.RawMessage
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Contains(body, "error")
	// The failed ledger entry rides along in the error response.
	suite.Require().Contains(body, "transaction")
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(body["transaction"], &resp))
	suite.Equal(string(domain.StatusFailed), resp.Status)
}

func (suite *TransactionHandlerTestSuite) TestTransfer_UnknownRecipientReturns404() {
	suite.mockAccountService.On("GetAccountByUserID", mock.Anything, suite.userID).Return(suite.account, nil).Once()
	suite.mockAccountService.On("GetAccountByNumber", mock.Anything, "ACC0000000000000000").
		Return(nil, apperrors.ErrAccountNotFound).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/transfer", dto.TransferRequest{
		RecipientAccountNumber: "ACC0000000000000000",
		Amount:                 decimal.RequireFromString("10.00"),
		CurrencyCode:           "USD",
	})

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "Transfer")
}

func (suite *TransactionHandlerTestSuite) TestTransfer_MissingTokenRejected() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/transactions/transfer", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "GetAccountByUserID")
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_Success() {
	entries := []domain.Transaction{
		{
			TransactionID:   uuid.NewString(),
			SenderAccountID: &suite.account.AccountID,
			Amount:          decimal.RequireFromString("5.00"),
			CurrencyCode:    "USD",
			Kind:            domain.KindWithdrawal,
			Status:          domain.StatusSettled,
			IsSuccessful:    true,
			CreatedAt:       time.Now(),
		},
	}
	nextToken := "opaque-token"

	suite.mockAccountService.On("GetAccountByUserID", mock.Anything, suite.userID).Return(suite.account, nil).Once()
	suite.mockTransferService.On("ListEntries", mock.Anything, suite.account.AccountID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool { return p.Limit == 5 }),
	).Return(entries, &nextToken, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions?limit=5", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(nextToken, *resp.NextToken)
}

func (suite *TransactionHandlerTestSuite) TestDeposit_AbsentInProduction() {
	prodRouter := gin.New()
	prodRouter.Use(middleware.AuthMiddleware(suite.jwtSecret))
	v1 := prodRouter.Group("/api/v1")
	handlers.RegisterTransactionRoutes(v1, &config.Config{IsProduction: true}, suite.mockTransferService, suite.mockAccountService)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/transactions/deposit", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	w := httptest.NewRecorder()
	prodRouter.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "Deposit")
}

func (suite *TransactionHandlerTestSuite) TestGetTransactionByID_NotFound() {
	transactionID := uuid.NewString()
	suite.mockTransferService.On("GetTransactionByID", mock.Anything, transactionID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions/"+transactionID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestTransactionHandler(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
