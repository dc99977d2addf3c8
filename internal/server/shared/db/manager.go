// Package db owns the storage connection and hands out repositories.
// The relational backend is interchangeable: SQLite, MySQL, and PostgreSQL
// adapters sit behind the one RepositoryManager interface, and none of them
// is authoritative.
package db

import (
	"context"
	"database/sql"

	"github.com/avelichko/formdesk/internal/server/accounts"
	"github.com/avelichko/formdesk/internal/server/submissions"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Close() error
	Accounts() accounts.Repository
	Submissions() submissions.Repository
}
