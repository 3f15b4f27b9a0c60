package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	portssvc "github.com/bankaroo/banking_app/internal/core/ports/services"
	"github.com/bankaroo/banking_app/internal/dto"
	"github.com/bankaroo/banking_app/internal/middleware"
	"github.com/bankaroo/banking_app/pkg/config"
)

// recentWindow and recentCap bound the /transactions/recent view.
const (
	recentWindow = 30 * 24 * time.Hour
	recentCap    = 10
)

// transactionHandler handles HTTP requests related to ledger entries.
type transactionHandler struct {
	transferService portssvc.TransferSvc
	accountService  portssvc.AccountSvcFacade
}

func newTransactionHandler(ts portssvc.TransferSvc, as portssvc.AccountSvcFacade) *transactionHandler {
	return &transactionHandler{transferService: ts, accountService: as}
}

// RegisterTransactionRoutes registers routes related to ledger entries.
// Exported so handler tests can mount the group on their own router.
func RegisterTransactionRoutes(rg *gin.RouterGroup, cfg *config.Config, transferService portssvc.TransferSvc, accountService portssvc.AccountSvcFacade) {
	h := newTransactionHandler(transferService, accountService)

	txns := rg.Group("/transactions")
	{
		txns.POST("/transfer", h.transfer)
		txns.POST("/withdraw", h.withdraw)
		txns.POST("/exchange", h.exchangeCurrency)
		txns.GET("", h.listTransactions)
		txns.GET("/recent", h.recentTransactions)
		txns.GET("/:id", h.getTransactionByID)

		// Self-service deposits mint money, so they only exist outside
		// production deployments.
		if !cfg.IsProduction {
			txns.POST("/deposit", h.deposit)
		}
	}
}

// ownAccount resolves the caller's account from the authenticated user ID.
func (h *transactionHandler) ownAccount(c *gin.Context) (*domain.Account, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}
	account, err := h.accountService.GetAccountByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve account"})
		return nil, false
	}
	return account, true
}

// respondLedgerError translates engine errors into HTTP responses. The entry,
// when present, rides along so clients can see the failed record.
func respondLedgerError(c *gin.Context, entry *domain.Transaction, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := http.StatusInternalServerError
	msg := "Operation failed"
	switch {
	case errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrSelfTransfer),
		errors.Is(err, apperrors.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrCurrencyNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		status, msg = http.StatusUnprocessableEntity, "Insufficient funds"
	case errors.Is(err, apperrors.ErrAccountInactive):
		status, msg = http.StatusConflict, "Account is inactive"
	case errors.Is(err, apperrors.ErrConcurrentModification):
		status, msg = http.StatusConflict, "Concurrent modification, please retry"
	case errors.Is(err, apperrors.ErrTimeout):
		status, msg = http.StatusGatewayTimeout, "Operation timed out"
	default:
		logger.Error("Ledger operation failed", slog.String("error", err.Error()))
	}

	body := gin.H{"error": msg}
	if entry != nil {
		body["transaction"] = dto.ToTransactionResponse(*entry)
	}
	c.JSON(status, body)
}

// transfer godoc
// @Summary Transfer funds to another account
// @Description Moves funds from the caller's account to the recipient, converting currencies atomically.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 504 {object} ErrorResponse "Timed out"
// @Security BearerAuth
// @Router /transactions/transfer [post]
func (h *transactionHandler) transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	sender, ok := h.ownAccount(c)
	if !ok {
		return
	}

	recipient, err := h.accountService.GetAccountByNumber(c.Request.Context(), req.RecipientAccountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Recipient account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve recipient"})
		return
	}

	entry, err := h.transferService.Transfer(c.Request.Context(), sender.AccountID, recipient.AccountID, req.Amount, req.CurrencyCode, req.Description)
	if err != nil {
		respondLedgerError(c, entry, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(*entry))
}

// deposit godoc
// @Summary Deposit funds into the caller's account
// @Description Development-only endpoint; the amount must be in the account's home currency.
// @Tags transactions
// @Accept json
// @Produce json
// @Param deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/deposit [post]
func (h *transactionHandler) deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	account, ok := h.ownAccount(c)
	if !ok {
		return
	}

	entry, err := h.transferService.Deposit(c.Request.Context(), account.AccountID, req.Amount, req.CurrencyCode, req.Description)
	if err != nil {
		respondLedgerError(c, entry, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(*entry))
}

// withdraw godoc
// @Summary Withdraw funds from the caller's account
// @Tags transactions
// @Accept json
// @Produce json
// @Param withdrawal body dto.WithdrawRequest true "Withdrawal details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /transactions/withdraw [post]
func (h *transactionHandler) withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	account, ok := h.ownAccount(c)
	if !ok {
		return
	}

	entry, err := h.transferService.Withdraw(c.Request.Context(), account.AccountID, req.Amount, req.CurrencyCode, req.Description)
	if err != nil {
		respondLedgerError(c, entry, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(*entry))
}

// exchangeCurrency godoc
// @Summary Exchange the account's home currency
// @Description Re-denominates the caller's entire balance into a new home currency at current rates.
// @Tags transactions
// @Accept json
// @Produce json
// @Param exchange body dto.ExchangeCurrencyRequest true "Exchange details"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent modification"
// @Security BearerAuth
// @Router /transactions/exchange [post]
func (h *transactionHandler) exchangeCurrency(c *gin.Context) {
	var req dto.ExchangeCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	account, ok := h.ownAccount(c)
	if !ok {
		return
	}

	entry, err := h.transferService.ExchangeCurrency(c.Request.Context(), account.AccountID, req.NewCurrencyCode)
	if err != nil {
		respondLedgerError(c, entry, err)
		return
	}

	updated, err := h.accountService.GetAccountByID(c.Request.Context(), account.AccountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Exchange settled but account reload failed"})
		return
	}

	body := gin.H{"account": dto.ToAccountResponse(*updated)}
	if entry != nil {
		body["transaction"] = dto.ToTransactionResponse(*entry)
	}
	c.JSON(http.StatusOK, body)
}

// listTransactions godoc
// @Summary List the caller's ledger entries
// @Description Newest first with keyset pagination and optional kind/status/date filters.
// @Tags transactions
// @Produce json
// @Param kind query string false "Entry kind" Enums(TRANSFER, DEPOSIT, WITHDRAWAL, CURRENCY_EXCHANGE)
// @Param status query string false "Entry status" Enums(PENDING, SETTLED, FAILED)
// @Param successOnly query bool false "Only successful entries"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	account, ok := h.ownAccount(c)
	if !ok {
		return
	}

	txns, nextToken, err := h.transferService.ListEntries(c.Request.Context(), account.AccountID, params)
	if err != nil {
		respondLedgerError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, nextToken))
}

// recentTransactions godoc
// @Summary Recent activity for the caller's account
// @Description Successful entries from the last 30 days, capped at 10.
// @Tags transactions
// @Produce json
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/recent [get]
func (h *transactionHandler) recentTransactions(c *gin.Context) {
	account, ok := h.ownAccount(c)
	if !ok {
		return
	}

	from := time.Now().Add(-recentWindow)
	params := dto.ListTransactionsParams{
		SuccessOnly: true,
		From:        &from,
		Limit:       recentCap,
	}

	txns, _, err := h.transferService.ListEntries(c.Request.Context(), account.AccountID, params)
	if err != nil {
		respondLedgerError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, nil))
}

// getTransactionByID godoc
// @Summary Get a ledger entry by ID
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransactionByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	txn, err := h.transferService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transaction not found"})
			return
		}
		logger.Error("Failed to get transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve transaction"})
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}
