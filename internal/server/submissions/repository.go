package submissions

import "context"

// Filter narrows a listing. Search matches case-insensitively against name,
// email, and subject substrings; Status, when set, must be exactly one of
// the known statuses; Kind restricts to one record kind (the public
// guestbook listing uses it).
type Filter struct {
	Search string
	Status Status
	Kind   Kind
}

type Repository interface {
	// Insert persists the record and fills in the generated ID. The store
	// owns id and created_at; caller-supplied values are ignored.
	Insert(ctx context.Context, record *Record) (int64, error)

	// List returns one page of matching records, newest-first by id, along
	// with the total count of the filtered set. page is 1-indexed.
	List(ctx context.Context, filter Filter, page, pageSize int) ([]*Record, int, error)

	// Get returns common.ErrNotFound when id is absent.
	Get(ctx context.Context, id int64) (*Record, error)

	// ToggleStatus flips new↔read. common.ErrNotFound when id is absent.
	ToggleStatus(ctx context.Context, id int64) error

	// Delete removes the record. common.ErrNotFound when id is absent.
	Delete(ctx context.Context, id int64) error
}
