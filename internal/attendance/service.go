package attendance

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/metrics"
)

// DefaultFolder is the archive folder check-in photos are stored under.
const DefaultFolder = "jjc-attendance"

var (
	errPhotoRequired  = apperror.New(apperror.Validation, "attendance.photoRequired")
	errLoginRequired  = apperror.New(apperror.Auth, "auth.loginRequired")
	errCheckInWindow  = apperror.New(apperror.Policy, "attendance.checkInWindow")
	errCheckOutWindow = apperror.New(apperror.Policy, "attendance.checkOutWindow")
	errNotOwner       = apperror.New(apperror.Forbidden, "attendance.notOwner")
	errNoArchive      = apperror.New(apperror.Internal, "attendance.archiveUnavailable")
)

// Archiver stores a photo payload and returns a stable URL for it.
type Archiver interface {
	Store(ctx context.Context, payload, folder, key string) (string, error)
}

// Notifier is told about every record written by check-in or check-out.
// Notifiers must not fail the operation; they log their own errors.
type Notifier interface {
	Recorded(ctx context.Context, rec Record)
}

// Service enforces the attendance workflow: time windows, record ownership
// and status on check-in/check-out.
type Service struct {
	ledger    Ledger
	archiver  Archiver
	now       func() time.Time
	loc       *time.Location
	checkIn   Window
	checkOut  Window
	folder    string
	notifiers []Notifier
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone the windows and display strings use.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithFolder sets the archive folder for photos.
func WithFolder(folder string) Option {
	return func(s *Service) {
		if folder != "" {
			s.folder = folder
		}
	}
}

// WithNotifier registers n to be called after each successful write.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifiers = append(s.notifiers, n) }
}

// NewService creates a service backed by a ledger. archiver may be nil, in
// which case every check-in fails until photo storage is configured.
func NewService(ledger Ledger, archiver Archiver, opts ...Option) *Service {
	s := &Service{
		ledger:   ledger,
		archiver: archiver,
		now:      time.Now,
		loc:      time.Local,
		checkIn:  CheckInWindow,
		checkOut: CheckOutWindow,
		folder:   DefaultFolder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn archives the photo and records a present check-in for id. Nothing
// is written when the archive upload fails.
func (s *Service) CheckIn(ctx context.Context, id *auth.Identity, photo string) (rec Record, err error) {
	defer func() { metrics.CheckIns.WithLabelValues(metrics.Result(err)).Inc() }()

	if strings.TrimSpace(photo) == "" {
		return Record{}, errPhotoRequired
	}
	if id == nil {
		return Record{}, errLoginRequired
	}
	now := s.now().In(s.loc)
	if !s.checkIn.Contains(now) {
		return Record{}, errCheckInWindow
	}
	if s.archiver == nil {
		return Record{}, errNoArchive
	}

	started := time.Now()
	url, err := s.archiver.Store(ctx, photo, s.folder, archiveKey(id.Name, now))
	metrics.ArchiveDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return Record{}, apperror.Wrap(apperror.Internal, "attendance.checkInFailed", err)
	}

	checkIn := now.Format(TimeLayout)
	rec, err = s.ledger.Insert(ctx, Record{
		UserID:    id.ID,
		Name:      id.Name,
		Date:      now.Format(DateLayout),
		CheckIn:   &checkIn,
		Status:    StatusPresent,
		PhotoURL:  url,
		CreatedAt: now.UTC(),
	})
	if err != nil {
		return Record{}, apperror.Wrap(apperror.Internal, "attendance.checkInFailed", err)
	}
	logger.Infof("check-in %s by user %s at %s", rec.ID, id.ID, checkIn)
	s.notify(ctx, rec)
	return rec, nil
}

// CheckOut sets the check-out time on a record owned by id. Calling it again
// overwrites the previous check-out time.
func (s *Service) CheckOut(ctx context.Context, id *auth.Identity, recordID string) (rec Record, err error) {
	defer func() { metrics.CheckOuts.WithLabelValues(metrics.Result(err)).Inc() }()

	if id == nil {
		return Record{}, errLoginRequired
	}
	now := s.now().In(s.loc)
	if !s.checkOut.Contains(now) {
		return Record{}, errCheckOutWindow
	}

	existing, err := s.ledger.Get(ctx, recordID)
	if err != nil {
		return Record{}, ledgerErr(err, "attendance.checkOutFailed")
	}
	if !existing.OwnedBy(id.ID) {
		return Record{}, errNotOwner
	}

	rec, err = s.ledger.SetCheckOut(ctx, recordID, now.Format(TimeLayout), now.UTC())
	if err != nil {
		return Record{}, ledgerErr(err, "attendance.checkOutFailed")
	}
	logger.Infof("check-out %s by user %s at %s", rec.ID, id.ID, *rec.CheckOut)
	s.notify(ctx, rec)
	return rec, nil
}

// GetAll lists every record, newest first. Callers gate it to admins.
func (s *Service) GetAll(ctx context.Context) ([]Record, error) {
	recs, err := s.ledger.List(ctx, Filter{})
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "attendance.listFailed", err)
	}
	return recs, nil
}

// GetMine lists the caller's records, newest first.
func (s *Service) GetMine(ctx context.Context, id *auth.Identity) ([]Record, error) {
	if id == nil {
		return nil, errLoginRequired
	}
	recs, err := s.ledger.List(ctx, Filter{UserID: id.ID})
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "attendance.listFailed", err)
	}
	return recs, nil
}

func (s *Service) notify(ctx context.Context, rec Record) {
	for _, n := range s.notifiers {
		n.Recorded(ctx, rec)
	}
}

func ledgerErr(err error, key string) error {
	if apperror.KindOf(err) != apperror.Internal {
		return err
	}
	return apperror.Wrap(apperror.Internal, key, err)
}

var whitespace = regexp.MustCompile(`\s`)

// archiveKey names the archived photo after the user and the upload instant.
func archiveKey(name string, now time.Time) string {
	if name == "" {
		name = "user"
	}
	return whitespace.ReplaceAllString(name, "_") + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}
