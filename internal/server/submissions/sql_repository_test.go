package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/dbx"
)

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE submissions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		kind       TEXT NOT NULL DEFAULT 'contact',
		source_ip  TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		subject    TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL,
		user_agent TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'new'
	)`)
	require.NoError(t, err)

	return NewSQLRepository(db, dbx.DialectSQLite)
}

func seed(t *testing.T, repo *SQLRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		kind := KindContact
		if i%2 == 0 {
			kind = KindGuestbook
		}
		_, err := repo.Insert(context.Background(), &Record{
			CreatedAt: time.Now().UTC(),
			Kind:      kind,
			Name:      fmt.Sprintf("Visitor %02d", i),
			Email:     fmt.Sprintf("visitor%02d@example.com", i),
			Subject:   fmt.Sprintf("Subject %02d", i),
			Body:      "body text",
			Status:    StatusNew,
		})
		require.NoError(t, err)
	}
}

func TestSQLRepository_InsertAndGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	rec := &Record{
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Kind:      KindContact,
		SourceIP:  "203.0.113.9",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Subject:   "Hello",
		Body:      "A long enough message.",
		UserAgent: "test-agent",
		Status:    StatusNew,
	}
	id, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, id, rec.ID)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.SourceIP, got.SourceIP)
	assert.Equal(t, rec.Status, got.Status)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLRepository_ListPagination(t *testing.T) {
	repo := newSQLiteRepo(t)
	seed(t, repo, 15)

	records, total, err := repo.List(context.Background(), Filter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, records, 10)
	assert.Equal(t, int64(15), records[0].ID, "newest first")
	assert.Equal(t, int64(6), records[9].ID)

	records, total, err = repo.List(context.Background(), Filter{}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, records, 5)
	assert.Equal(t, int64(5), records[0].ID)

	// out-of-range pages are empty, not an error
	records, total, err = repo.List(context.Background(), Filter{}, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Empty(t, records)
}

func TestSQLRepository_ListFilters(t *testing.T) {
	repo := newSQLiteRepo(t)
	seed(t, repo, 10)
	ctx := context.Background()

	require.NoError(t, repo.ToggleStatus(ctx, 3))

	tests := []struct {
		name   string
		filter Filter
		total  int
	}{
		{name: "search name case-insensitive", filter: Filter{Search: "VISITOR 03"}, total: 1},
		{name: "search email", filter: Filter{Search: "visitor07@"}, total: 1},
		{name: "search subject", filter: Filter{Search: "subject 0"}, total: 9},
		{name: "status read", filter: Filter{Status: StatusRead}, total: 1},
		{name: "status new", filter: Filter{Status: StatusNew}, total: 9},
		{name: "kind guestbook", filter: Filter{Kind: KindGuestbook}, total: 5},
		{name: "combined", filter: Filter{Search: "visitor 03", Status: StatusRead}, total: 1},
		{name: "no match", filter: Filter{Search: "zzz"}, total: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := repo.List(ctx, tt.filter, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestSQLRepository_ToggleStatus(t *testing.T) {
	repo := newSQLiteRepo(t)
	seed(t, repo, 1)
	ctx := context.Background()

	require.NoError(t, repo.ToggleStatus(ctx, 1))
	rec, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusRead, rec.Status)

	require.NoError(t, repo.ToggleStatus(ctx, 1))
	rec, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, rec.Status)

	assert.ErrorIs(t, repo.ToggleStatus(ctx, 999), common.ErrNotFound)
}

func TestSQLRepository_Delete(t *testing.T) {
	repo := newSQLiteRepo(t)
	seed(t, repo, 2)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 1))

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 1), common.ErrNotFound)

	_, total, err := repo.List(ctx, Filter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSQLRepository_Insert_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	repo := NewSQLRepository(db, dbx.DialectPostgres)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+submissions\s*\(.*\)\s*VALUES\s*\(\$1,.*\$9\)\s*RETURNING\s+id\s*$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.Insert(context.Background(), &Record{
		CreatedAt: time.Now().UTC(), Kind: KindContact, Name: "Jane", Body: "body", Status: StatusNew,
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if id != 7 {
		t.Fatalf("unexpected id: %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLRepository_ToggleStatus_RunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	repo := NewSQLRepository(db, dbx.DialectPostgres)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT\s+status\s+FROM\s+submissions\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("new"))
	mock.ExpectExec(`UPDATE\s+submissions\s+SET\s+status\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2`).
		WithArgs("read", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.ToggleStatus(context.Background(), 7); err != nil {
		t.Fatalf("ToggleStatus error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLRepository_ToggleStatus_MissingRowRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	repo := NewSQLRepository(db, dbx.DialectPostgres)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT\s+status\s+FROM\s+submissions`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if err := repo.ToggleStatus(context.Background(), 99); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLRepository_List_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	repo := NewSQLRepository(db, dbx.DialectPostgres)

	mock.ExpectQuery(`SELECT\s+COUNT`).WillReturnError(errors.New("db down"))

	_, _, err = repo.List(context.Background(), Filter{}, 1, 10)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
