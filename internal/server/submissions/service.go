package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/logging"
)

// AdminPageSize is the fixed page size of the admin listing.
const AdminPageSize = 10

// Archiver receives a copy of every accepted record; used for the optional
// append-only JSONL archive. Archive failures never fail the request.
type Archiver interface {
	Archive(record *Record) error
}

// Page is one page of a filtered listing plus the pager numbers derived from
// the filtered total.
type Page struct {
	Records []*Record
	Total   int
	Page    int
	Pages   int
}

type Service struct {
	repo    Repository
	archive Archiver
	logger  logging.Logger
	now     func() time.Time
}

func NewService(repo Repository, archive Archiver, logger logging.Logger) *Service {
	return &Service{
		repo:    repo,
		archive: archive,
		logger:  logger.With("module", "submissions"),
		now:     time.Now,
	}
}

// Submit stores a new record, stamping created_at and the default status;
// whatever the caller put there is overwritten. Storage faults surface as
// common.ErrStorage.
func (s *Service) Submit(ctx context.Context, record *Record) (int64, error) {
	record.CreatedAt = s.now().UTC()
	record.Status = StatusNew

	id, err := s.repo.Insert(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting submission: %v", common.ErrStorage, err)
	}

	if s.archive != nil {
		if err := s.archive.Archive(record); err != nil {
			s.logger.Warn(ctx, "archive write failed", "id", id, "error", err.Error())
		}
	}

	return id, nil
}

// Query returns the requested admin page. page values below 1 are clamped;
// the page count is at least 1 even for an empty set.
func (s *Service) Query(ctx context.Context, filter Filter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	records, total, err := s.repo.List(ctx, filter, page, AdminPageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: listing submissions: %v", common.ErrStorage, err)
	}

	pages := (total + AdminPageSize - 1) / AdminPageSize
	if pages < 1 {
		pages = 1
	}

	return &Page{Records: records, Total: total, Page: page, Pages: pages}, nil
}

// Get fetches one record for the admin detail view.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading submission: %v", common.ErrStorage, err)
	}
	return rec, nil
}

// ToggleStatus flips new↔read for id.
func (s *Service) ToggleStatus(ctx context.Context, id int64) error {
	return s.mapMutation(s.repo.ToggleStatus(ctx, id), "toggling status")
}

// Delete removes the record with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.mapMutation(s.repo.Delete(ctx, id), "deleting submission")
}

func (s *Service) mapMutation(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", common.ErrStorage, op, err)
}
