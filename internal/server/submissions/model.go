package submissions

import "time"

// Status marks whether an operator has looked at a record yet.
type Status string

const (
	StatusNew  Status = "new"
	StatusRead Status = "read"
)

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusNew {
		return StatusRead
	}
	return StatusNew
}

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool { return s == StatusNew || s == StatusRead }

// Kind distinguishes the record kinds sharing the submissions table.
type Kind string

const (
	KindContact   Kind = "contact"
	KindGuestbook Kind = "guestbook"
)

// Record is a persisted user submission. ID and CreatedAt are assigned by
// the store; Status defaults to new and changes only through an explicit
// toggle. Email and Subject may be empty depending on the kind.
type Record struct {
	ID        int64
	CreatedAt time.Time
	Kind      Kind
	SourceIP  string
	Name      string
	Email     string
	Subject   string
	Body      string
	UserAgent string
	Status    Status
}
