package accounts

import "context"

type Repository interface {
	// Create inserts the account and fills in the generated ID.
	// A duplicate email yields common.ErrConflict.
	Create(ctx context.Context, account *Account) (*Account, error)

	// GetByEmail returns common.ErrNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
