package attendance

import (
	"context"
	"time"
)

// Ledger persists attendance records. Records are only ever inserted or
// completed with a check-out time.
type Ledger interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	// Get returns ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (Record, error)
	// SetCheckOut overwrites the check-out time; it returns ErrNotFound when id is unknown.
	SetCheckOut(ctx context.Context, id, checkOut string, at time.Time) (Record, error)
	List(ctx context.Context, f Filter) ([]Record, error)
}

// Filter narrows a List call. Zero values mean "no constraint".
type Filter struct {
	UserID string
	// From and To bound createdAt as the half-open range [From, To).
	From time.Time
	To   time.Time
	// Oldest sorts ascending by createdAt; the default is newest first.
	Oldest bool
}

func (f Filter) match(r Record) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if !f.From.IsZero() && r.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !r.CreatedAt.Before(f.To) {
		return false
	}
	return true
}
