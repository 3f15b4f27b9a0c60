package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	portsrepo "github.com/bankaroo/banking_app/internal/core/ports/repositories"
	"github.com/bankaroo/banking_app/internal/models"
	"github.com/bankaroo/banking_app/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, user_id, account_number, phone_number, currency_code, balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row interface{ Scan(dest ...any) error }) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.UserID,
		&m.AccountNumber,
		&m.PhoneNumber,
		&m.CurrencyCode,
		&m.Balance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account. A unique violation on the generated
// account number is distinguished from the other unique columns so the
// service can regenerate and retry.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.UserID,
		m.AccountNumber,
		m.PhoneNumber,
		m.CurrencyCode,
		m.Balance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case "accounts_account_number_key":
				return fmt.Errorf("account number %s taken: %w", m.AccountNumber, apperrors.ErrAccountNumberCollision)
			case "accounts_phone_number_key":
				return fmt.Errorf("phone number taken: %w", apperrors.ErrPhoneNumberDuplicate)
			}
			return fmt.Errorf("account for user %s already exists: %w", m.UserID, apperrors.ErrDuplicate)
		}
		if mapped := mapPgError(err); errors.Is(mapped, apperrors.ErrConflict) {
			return fmt.Errorf("account references missing user or currency: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	return r.findOne(ctx, query, accountID)
}

// FindAccountByUserID retrieves the single account owned by a user.
func (r *PgxAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1;`
	return r.findOne(ctx, query, userID)
}

// FindAccountByNumber retrieves an account by its account number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1;`
	return r.findOne(ctx, query, accountNumber)
}

func (r *PgxAccountRepository) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// UpdateAccount updates mutable account fields. Balance and account number
// are deliberately not in the column list.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET phone_number = $2, is_active = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.PhoneNumber,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "accounts_phone_number_key" {
			return fmt.Errorf("phone number taken: %w", apperrors.ErrPhoneNumberDuplicate)
		}
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account inactive. Accounts are never deleted;
// their ledger history must stay resolvable.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ChangeHomeCurrency switches a zero-balance account to a new home currency.
// The balance guard in the WHERE clause keeps this path safe from racing a
// settlement; non-zero balances go through the exchange settle unit.
func (r *PgxAccountRepository) ChangeHomeCurrency(ctx context.Context, accountID string, currencyCode string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET currency_code = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1 AND balance = 0;
	`
	tag, err := r.Pool.Exec(ctx, query, accountID, currencyCode, now, userID)
	if err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, apperrors.ErrConflict) {
			return fmt.Errorf("unknown currency %s: %w", currencyCode, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to change home currency for %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConcurrentModification
	}
	return nil
}
