package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/dbx"
)

// SQLRepository works against any of the supported storage adapters; the
// dialect only matters for placeholder style and id retrieval.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, account *Account) (*Account, error) {
	query := `INSERT INTO accounts (name, email, password_hash, created_at)
	          VALUES (?, ?, ?, ?)`

	if r.dialect == dbx.DialectPostgres {
		err := r.db.QueryRowContext(ctx, dbx.Rebind(r.dialect, query+` RETURNING id`),
			account.Name, account.Email, account.PasswordHash, account.CreatedAt,
		).Scan(&account.ID)
		if err != nil {
			return nil, mapCreateErr(err)
		}
		return account, nil
	}

	res, err := r.db.ExecContext(ctx, query,
		account.Name, account.Email, account.PasswordHash, account.CreatedAt)
	if err != nil {
		return nil, mapCreateErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	account.ID = id
	return account, nil
}

func mapCreateErr(err error) error {
	if dbx.IsUniqueViolation(err) {
		return common.ErrConflict
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT id, name, email, password_hash, created_at FROM accounts WHERE email = ?`)

	account := &Account{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}
