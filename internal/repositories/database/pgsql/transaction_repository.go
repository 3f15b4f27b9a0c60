package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	portsrepo "github.com/bankaroo/banking_app/internal/core/ports/repositories"
	"github.com/bankaroo/banking_app/internal/dto"
	"github.com/bankaroo/banking_app/internal/models"
	"github.com/bankaroo/banking_app/internal/utils/mapping"
	"github.com/bankaroo/banking_app/internal/utils/pagination"
)

const defaultListLimit = 20

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, sender_account_id, recipient_account_id, amount, currency_code, kind, description, status, is_successful, created_at, settled_at`

func scanTransaction(row interface{ Scan(dest ...any) error }) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.SenderAccountID,
		&m.RecipientAccountID,
		&m.Amount,
		&m.CurrencyCode,
		&m.Kind,
		&m.Description,
		&m.Status,
		&m.IsSuccessful,
		&m.CreatedAt,
		&m.SettledAt,
	)
	return m, err
}

// SaveTransaction persists a ledger entry in whatever state it carries.
// Entries are append-only; nothing here ever updates an existing row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.SenderAccountID,
		m.RecipientAccountID,
		m.Amount,
		m.CurrencyCode,
		m.Kind,
		m.Description,
		m.Status,
		m.IsSuccessful,
		m.CreatedAt,
		m.SettledAt,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return fmt.Errorf("ledger entry %s already exists: %w", m.TransactionID, apperrors.ErrDuplicate)
		}
		if errors.Is(mapped, apperrors.ErrConflict) {
			return fmt.Errorf("ledger entry references missing account or currency: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to save ledger entry %s: %w", m.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a ledger entry by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger entry %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// SettleTransaction is the only path that mutates balances for transfers,
// deposits and withdrawals. Everything runs in one database transaction:
// the touched account rows are locked in ascending ID order, the resulting
// balances are verified non-negative under the lock, the balance updates are
// applied, and the entry is flipped to SETTLED. Any failure rolls the whole
// unit back.
func (r *PgxTransactionRepository) SettleTransaction(ctx context.Context, transactionID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Ascending ID order here and in every other settle unit, so two
	// concurrent settlements touching the same pair cannot deadlock.
	lockQuery := `
		SELECT account_id, balance, is_active
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, lockQuery, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock account rows: %w", mapPgError(err))
	}

	type lockedAccount struct {
		balance  decimal.Decimal
		isActive bool
	}
	locked := make(map[string]lockedAccount, len(accountIDs))
	for rows.Next() {
		var id string
		var acc lockedAccount
		if err := rows.Scan(&id, &acc.balance, &acc.isActive); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked account row: %w", err)
		}
		locked[id] = acc
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating locked account rows: %w", mapPgError(err))
	}

	for _, id := range accountIDs {
		acc, found := locked[id]
		if !found {
			return fmt.Errorf("account %s missing during settle: %w", id, apperrors.ErrAccountNotFound)
		}
		if !acc.isActive {
			return fmt.Errorf("account %s inactive during settle: %w", id, apperrors.ErrAccountInactive)
		}
		// Authoritative sufficiency check. The advisory one in the service
		// ran on an unlocked snapshot and may be stale by now.
		if acc.balance.Add(balanceChanges[id]).IsNegative() {
			return fmt.Errorf("settle would overdraw account %s: %w", id, apperrors.ErrInsufficientFunds)
		}
	}

	updateBalance := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	for _, id := range accountIDs {
		if _, err := tx.Exec(ctx, updateBalance, id, balanceChanges[id], now, userID); err != nil {
			return fmt.Errorf("failed to update balance for %s: %w", id, mapPgError(err))
		}
	}

	if err := r.settleEntryInTx(ctx, tx, transactionID, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settle unit: %w", mapPgError(err))
	}
	return nil
}

// SettleExchange re-denominates an account's balance in one unit. The
// balance observed at snapshot time must still hold under the row lock,
// otherwise a settlement slipped in between and the caller retries from a
// fresh snapshot.
func (r *PgxTransactionRepository) SettleExchange(ctx context.Context, transactionID string, accountID string, expectedBalance, newBalance decimal.Decimal, newCurrencyCode string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var currentBalance decimal.Decimal
	var isActive bool
	lockQuery := `SELECT balance, is_active FROM accounts WHERE account_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, accountID).Scan(&currentBalance, &isActive); err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, apperrors.ErrNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return fmt.Errorf("failed to lock account %s: %w", accountID, mapPgError(err))
	}
	if !isActive {
		return apperrors.ErrAccountInactive
	}
	if !currentBalance.Equal(expectedBalance) {
		return fmt.Errorf("balance moved from %s to %s during exchange: %w", expectedBalance, currentBalance, apperrors.ErrConcurrentModification)
	}

	updateQuery := `
		UPDATE accounts
		SET balance = $2, currency_code = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, accountID, newBalance, newCurrencyCode, now, userID); err != nil {
		return fmt.Errorf("failed to re-denominate account %s: %w", accountID, mapPgError(err))
	}

	if err := r.settleEntryInTx(ctx, tx, transactionID, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit exchange unit: %w", mapPgError(err))
	}
	return nil
}

// settleEntryInTx flips a pending entry to SETTLED. The status guard in the
// WHERE clause makes settling idempotent-safe: a second settle of the same
// entry, or a settle racing the reconciliation sweep, changes nothing and is
// reported as a concurrent modification.
func (r *PgxTransactionRepository) settleEntryInTx(ctx context.Context, tx pgx.Tx, transactionID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, is_successful = TRUE, settled_at = $3
		WHERE transaction_id = $1 AND status = $4;
	`
	tag, err := tx.Exec(ctx, query, transactionID, domain.StatusSettled, now, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to settle ledger entry %s: %w", transactionID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry %s no longer pending: %w", transactionID, apperrors.ErrConcurrentModification)
	}
	return nil
}

// MarkTransactionFailed moves a pending entry to FAILED. Settled entries are
// untouched; the status guard refuses to rewrite history.
func (r *PgxTransactionRepository) MarkTransactionFailed(ctx context.Context, transactionID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2
		WHERE transaction_id = $1 AND status = $3;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, domain.StatusFailed, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark ledger entry %s failed: %w", transactionID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		// Already terminal. Failing a failed entry is a no-op; failing a
		// settled one would be an inconsistency, so refuse loudly.
		existing, err := r.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if existing.Status == domain.StatusSettled {
			return apperrors.ErrInconsistentSettlement
		}
	}
	return nil
}

// ListTransactionsByAccount retrieves entries touching an account, newest
// first, using keyset pagination on (created_at, transaction_id).
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE (sender_account_id = $1 OR recipient_account_id = $1)`)
	args := []any{accountID}

	addFilter := func(clause string, value any) {
		args = append(args, value)
		sb.WriteString(" AND " + clause + "$" + strconv.Itoa(len(args)))
	}

	if params.Kind != nil {
		addFilter("kind = ", string(*params.Kind))
	}
	if params.Status != nil {
		addFilter("status = ", string(*params.Status))
	}
	if params.SuccessOnly {
		sb.WriteString(" AND is_successful = TRUE")
	}
	if params.From != nil {
		addFilter("created_at >= ", *params.From)
	}
	if params.To != nil {
		addFilter("created_at < ", *params.To)
	}
	if params.NextToken != nil {
		tokenTime, tokenID, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", apperrors.ErrValidation)
		}
		args = append(args, tokenTime, tokenID)
		sb.WriteString(fmt.Sprintf(" AND (created_at, transaction_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, limit+1)
	sb.WriteString(" ORDER BY created_at DESC, transaction_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";")

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}

	var nextToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextToken = &token
	}
	return txns, nextToken, nil
}

// FindStalePending retrieves pending entries created before the cutoff.
func (r *PgxTransactionRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3;
	`
	return r.queryTransactions(ctx, query, domain.StatusPending, createdBefore, limit)
}

// FindInconsistentSettlements retrieves entries whose success flag and
// status disagree.
func (r *PgxTransactionRepository) FindInconsistentSettlements(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (is_successful = TRUE AND status <> $1)
		   OR (is_successful = FALSE AND status = $1)
		ORDER BY created_at
		LIMIT $2;
	`
	return r.queryTransactions(ctx, query, domain.StatusSettled, limit)
}

func (r *PgxTransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return txns, nil
}
