package attendance

import (
	"time"

	"jjc-attendance/internal/apperror"
)

// Status is the attendance state stored on a record.
type Status string

// StatusPresent is persisted as "Hadir" for compatibility with existing data
// and exported reports. Every other status counts as absent.
const StatusPresent Status = "Hadir"

const (
	// TimeLayout renders check-in/check-out wall-clock times, 24h with dots.
	TimeLayout = "15.04.05"
	// DateLayout renders the calendar day shown on records and reports.
	DateLayout = "2/1/2006"
)

// ErrNotFound is returned by ledgers when no record matches an id.
var ErrNotFound = apperror.New(apperror.NotFound, "attendance.notFound")

// Record is one check-in event, optionally completed by a check-out.
type Record struct {
	ID string `json:"id"`
	// UserID is a weak reference to the owning user; empty for records
	// written without an owner.
	UserID string `json:"user,omitempty"`
	// Name is the user's name at check-in time, kept even if the user is
	// later renamed.
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	CheckIn   *string   `json:"checkIn"`
	CheckOut  *string   `json:"checkOut"`
	Status    Status    `json:"status"`
	PhotoURL  string    `json:"photoUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Present reports whether the record counts towards attendance.
func (r Record) Present() bool {
	return r.Status == StatusPresent
}

// OwnedBy reports whether userID may act on the record. Records without an
// owner are open to any authenticated caller.
func (r Record) OwnedBy(userID string) bool {
	return r.UserID == "" || r.UserID == userID
}
