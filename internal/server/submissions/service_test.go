package submissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/logging"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeRepo struct {
	inserted  []*Record
	total     int
	insertErr error
	listErr   error
	getErr    error
	mutateErr error
}

func (f *fakeRepo) Insert(_ context.Context, record *Record) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, record)
	record.ID = int64(len(f.inserted))
	return record.ID, nil
}

func (f *fakeRepo) List(_ context.Context, _ Filter, page, pageSize int) ([]*Record, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	remaining := f.total - (page-1)*pageSize
	if remaining < 0 {
		remaining = 0
	}
	if remaining > pageSize {
		remaining = pageSize
	}
	return make([]*Record, remaining), f.total, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &Record{ID: id}, nil
}

func (f *fakeRepo) ToggleStatus(_ context.Context, _ int64) error { return f.mutateErr }
func (f *fakeRepo) Delete(_ context.Context, _ int64) error       { return f.mutateErr }

type failingArchive struct{ calls int }

func (a *failingArchive) Archive(*Record) error {
	a.calls++
	return errors.New("disk full")
}

func TestSubmit_StampsRecord(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nopLogger{})

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	id, err := svc.Submit(context.Background(), &Record{
		Kind:   KindContact,
		Name:   "Jane",
		Body:   "message body",
		Status: StatusRead, // caller-supplied status is overwritten
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	stored := repo.inserted[0]
	assert.Equal(t, fixed, stored.CreatedAt)
	assert.Equal(t, StatusNew, stored.Status)
}

func TestSubmit_ArchiveFailureIsNonFatal(t *testing.T) {
	repo := &fakeRepo{}
	archive := &failingArchive{}
	svc := NewService(repo, archive, nopLogger{})

	_, err := svc.Submit(context.Background(), &Record{Kind: KindContact, Name: "Jane", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, archive.calls)
}

func TestSubmit_StorageFault(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("db down")}
	svc := NewService(repo, nil, nopLogger{})

	_, err := svc.Submit(context.Background(), &Record{Name: "Jane", Body: "b"})
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestQuery_Paging(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		wantPage  int
		wantPages int
		wantLen   int
	}{
		{name: "empty set still has one page", total: 0, page: 1, wantPage: 1, wantPages: 1, wantLen: 0},
		{name: "page clamped up from zero", total: 5, page: 0, wantPage: 1, wantPages: 1, wantLen: 5},
		{name: "exact multiple", total: 20, page: 2, wantPage: 2, wantPages: 2, wantLen: 10},
		{name: "partial last page", total: 15, page: 2, wantPage: 2, wantPages: 2, wantLen: 5},
		{name: "negative page", total: 15, page: -3, wantPage: 1, wantPages: 2, wantLen: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeRepo{total: tt.total}, nil, nopLogger{})

			page, err := svc.Query(context.Background(), Filter{}, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPages, page.Pages)
			assert.Len(t, page.Records, tt.wantLen)
		})
	}
}

func TestQuery_StorageFault(t *testing.T) {
	svc := NewService(&fakeRepo{listErr: errors.New("db down")}, nil, nopLogger{})

	_, err := svc.Query(context.Background(), Filter{}, 1)
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestMutations_ErrorMapping(t *testing.T) {
	t.Run("not found passes through", func(t *testing.T) {
		svc := NewService(&fakeRepo{mutateErr: common.ErrNotFound, getErr: common.ErrNotFound}, nil, nopLogger{})

		assert.ErrorIs(t, svc.ToggleStatus(context.Background(), 1), common.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(context.Background(), 1), common.ErrNotFound)
		_, err := svc.Get(context.Background(), 1)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("other faults become storage errors", func(t *testing.T) {
		svc := NewService(&fakeRepo{mutateErr: errors.New("db down"), getErr: errors.New("db down")}, nil, nopLogger{})

		assert.ErrorIs(t, svc.ToggleStatus(context.Background(), 1), common.ErrStorage)
		assert.ErrorIs(t, svc.Delete(context.Background(), 1), common.ErrStorage)
		_, err := svc.Get(context.Background(), 1)
		assert.ErrorIs(t, err, common.ErrStorage)
	})
}
