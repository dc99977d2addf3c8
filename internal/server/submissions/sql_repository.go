package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Insert(ctx context.Context, record *Record) (int64, error) {
	query := `INSERT INTO submissions (created_at, kind, source_ip, name, email, subject, body, user_agent, status)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{
		record.CreatedAt, record.Kind, record.SourceIP, record.Name,
		record.Email, record.Subject, record.Body, record.UserAgent, record.Status,
	}

	if r.dialect == dbx.DialectPostgres {
		err := r.db.QueryRowContext(ctx, dbx.Rebind(r.dialect, query+` RETURNING id`), args...).
			Scan(&record.ID)
		if err != nil {
			return 0, fmt.Errorf("db error: %w", err)
		}
		return record.ID, nil
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	record.ID = id
	return id, nil
}

// whereClause builds the filter condition shared by the count and list
// queries. All values are bound parameters.
func whereClause(filter Filter) (string, []any) {
	var conds []string
	var args []any

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds,
			`(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Status != "" && filter.Status.Valid() {
		conds = append(conds, `status = ?`)
		args = append(args, filter.Status)
	}
	if filter.Kind != "" {
		conds = append(conds, `kind = ?`)
		args = append(args, filter.Kind)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *SQLRepository) List(ctx context.Context, filter Filter, page, pageSize int) ([]*Record, int, error) {
	if page < 1 {
		page = 1
	}

	where, args := whereClause(filter)

	var total int
	countQuery := dbx.Rebind(r.dialect, `SELECT COUNT(*) FROM submissions`+where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	// page and pageSize are validated integers; interpolating them keeps the
	// query portable across drivers.
	listQuery := dbx.Rebind(r.dialect, fmt.Sprintf(
		`SELECT id, created_at, kind, source_ip, name, email, subject, body, user_agent, status
		 FROM submissions%s ORDER BY id DESC LIMIT %d OFFSET %d`,
		where, pageSize, (page-1)*pageSize))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Kind, &rec.SourceIP,
			&rec.Name, &rec.Email, &rec.Subject, &rec.Body, &rec.UserAgent, &rec.Status); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return records, total, nil
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (*Record, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT id, created_at, kind, source_ip, name, email, subject, body, user_agent, status
		 FROM submissions WHERE id = ?`)

	rec := &Record{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.CreatedAt, &rec.Kind,
		&rec.SourceIP, &rec.Name, &rec.Email, &rec.Subject, &rec.Body, &rec.UserAgent, &rec.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// ToggleStatus flips the status with a read-modify-write. When the handle is
// a plain connection the flip runs in its own transaction so concurrent
// toggles serialize at the storage layer; inside an existing transaction the
// caller owns the boundary.
func (r *SQLRepository) ToggleStatus(ctx context.Context, id int64) error {
	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return r.toggleStatus(ctx, tx, id)
		})
	}
	return r.toggleStatus(ctx, r.db, id)
}

func (r *SQLRepository) toggleStatus(ctx context.Context, db dbx.DBTX, id int64) error {
	sel := dbx.Rebind(r.dialect, `SELECT status FROM submissions WHERE id = ?`)

	var status Status
	if err := db.QueryRowContext(ctx, sel, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	upd := dbx.Rebind(r.dialect, `UPDATE submissions SET status = ? WHERE id = ?`)
	res, err := db.ExecContext(ctx, upd, status.Toggled(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	query := dbx.Rebind(r.dialect, `DELETE FROM submissions WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
