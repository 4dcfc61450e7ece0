// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/database/schema"
	"github.com/taibuivan/vidora/internal/platform/dberr"
)

var (
	accountTable = schema.UserAccount

	// publicColumns is the projection returned to callers; it never includes secrets.
	publicColumns = schema.List(accountTable.PublicColumns()...)
)

// PostgresAccountRepository implements [AccountRepository] and [SessionStore]
// on the users.account table.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// scanPublic hydrates an account from the [publicColumns] projection.
func scanPublic(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

/*
FindByID retrieves an account by primary key, password hash included.

Returns:
  - *Account: Hydrated account entity
  - error: dberr.ErrNotFound or STORAGE_FAILURE
*/
func (repository *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s = $1`,
		publicColumns, accountTable.Password, accountTable.Table, accountTable.ID,
	)

	return repository.findOne(ctx, "account_find_by_id", query, id)
}

/*
FindByIdentifier resolves a login identifier against username or email.

Both columns are stored normalised, so the comparison is exact.
*/
func (repository *PostgresAccountRepository) FindByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s = $1 OR %s = $1
		LIMIT 1`,
		publicColumns, accountTable.Password, accountTable.Table, accountTable.Username, accountTable.Email,
	)

	return repository.findOne(ctx, "account_find_by_identifier", query, identifier)
}

func (repository *PostgresAccountRepository) findOne(ctx context.Context, action, query string, arg string) (*Account, error) {
	account := &Account{}
	err := repository.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.PasswordHash,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return account, nil
}

// ExistsByUsernameOrEmail reports whether the username or email is taken.
func (repository *PostgresAccountRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE %s = $1 OR %s = $2
		)`,
		accountTable.Table, accountTable.Username, accountTable.Email,
	)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "account_exists")
	}
	return exists, nil
}

/*
Create inserts a new account. The refresh token column starts NULL.

Returns:
  - error: CONFLICT if username or email collide (unique index), STORAGE_FAILURE otherwise
*/
func (repository *PostgresAccountRepository) Create(ctx context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		accountTable.Table,
		schema.List(
			accountTable.ID, accountTable.Username, accountTable.Email, accountTable.FullName, accountTable.AvatarURL,
			accountTable.CoverImageURL, accountTable.Password, accountTable.CreatedAt, accountTable.UpdatedAt,
		),
	)

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.AvatarURL,
		account.CoverImageURL,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return dberr.Wrap(err, "account_create")
}

// # Session Slot

/*
SetRefreshToken overwrites the session slot and returns the public projection.

Passing nil clears the slot (logout).
*/
func (repository *PostgresAccountRepository) SetRefreshToken(ctx context.Context, accountID string, token *string) (*Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		accountTable.Table, accountTable.RefreshToken, accountTable.UpdatedAt, accountTable.ID, publicColumns,
	)

	account, err := scanPublic(repository.pool.QueryRow(ctx, query, accountID, token))
	if err != nil {
		return nil, dberr.Wrap(err, "account_set_refresh_token")
	}
	return account, nil
}

// GetRefreshToken returns the stored refresh token or nil for no session.
func (repository *PostgresAccountRepository) GetRefreshToken(ctx context.Context, accountID string) (*string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountTable.RefreshToken, accountTable.Table, accountTable.ID)

	var token *string
	if err := repository.pool.QueryRow(ctx, query, accountID).Scan(&token); err != nil {
		return nil, dberr.Wrap(err, "account_get_refresh_token")
	}
	return token, nil
}

/*
SwapRefreshToken rotates the session slot only if it still holds expected.

Two concurrent refreshes presenting the same token race on this statement;
exactly one sees a row updated.
*/
func (repository *PostgresAccountRepository) SwapRefreshToken(ctx context.Context, accountID, expected, next string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = NOW()
		WHERE %s = $1 AND %s = $2`,
		accountTable.Table, accountTable.RefreshToken, accountTable.UpdatedAt, accountTable.ID, accountTable.RefreshToken,
	)

	tag, err := repository.pool.Exec(ctx, query, accountID, expected, next)
	if err != nil {
		return false, dberr.Wrap(err, "account_swap_refresh_token")
	}
	return tag.RowsAffected() == 1, nil
}
