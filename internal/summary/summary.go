// Package summary aggregates attendance records by calendar month and
// renders the per-user monthly CSV report.
package summary

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/attendance"
	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/logger"
)

// ReportHeader is the first line of every exported report.
const ReportHeader = "Tanggal,Check-in,Check-out,Status"

var (
	errLoginRequired = apperror.New(apperror.Auth, "auth.loginRequired")
	unsafeFilename   = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// MonthSummary counts present and absent records in one month.
type MonthSummary struct {
	Key     MonthKey `json:"key"`
	Present int      `json:"present"`
	Absent  int      `json:"absent"`
}

// Report is a rendered CSV download.
type Report struct {
	Filename string
	CSV      string
}

// Service aggregates records read from a ledger.
type Service struct {
	ledger attendance.Ledger
	loc    *time.Location
	cache  *Cache
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the time zone used to assign records to months and to
// render report dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCache enables the per-user summary cache.
func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

// NewService creates an aggregation service over ledger.
func NewService(ledger attendance.Ledger, opts ...Option) *Service {
	s := &Service{ledger: ledger, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize groups recs by the month of their creation time in loc. Months
// appear in the order they are first seen.
func Summarize(recs []attendance.Record, loc *time.Location) []MonthSummary {
	out := []MonthSummary{}
	index := make(map[MonthKey]int)
	for _, r := range recs {
		key := KeyOf(r.CreatedAt.In(loc))
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, MonthSummary{Key: key})
		}
		if r.Present() {
			out[i].Present++
		} else {
			out[i].Absent++
		}
	}
	return out
}

// SummarizeAll summarizes every record in the ledger.
func (s *Service) SummarizeAll(ctx context.Context) ([]MonthSummary, error) {
	recs, err := s.ledger.List(ctx, attendance.Filter{Oldest: true})
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "summary.failed", err)
	}
	return Summarize(recs, s.loc), nil
}

// SummarizeMine summarizes the caller's records, latest month first.
func (s *Service) SummarizeMine(ctx context.Context, id *auth.Identity) ([]MonthSummary, error) {
	if id == nil {
		return nil, errLoginRequired
	}
	if s.cache == nil {
		return s.summarizeUser(ctx, id.ID)
	}
	if cached, ok := s.cache.Get(ctx, id.ID); ok {
		return cached, nil
	}
	return s.fill(ctx, id.ID)
}

// Warm recomputes and caches the summary of userID.
func (s *Service) Warm(ctx context.Context, userID string) error {
	if s.cache == nil || userID == "" {
		return nil
	}
	_, err := s.fill(ctx, userID)
	return err
}

// fill computes the summary of userID and caches it unless a write landed
// while the ledger was being read.
func (s *Service) fill(ctx context.Context, userID string) ([]MonthSummary, error) {
	gen, cacheable := s.cache.Generation(ctx, userID)
	res, err := s.summarizeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.Set(ctx, userID, gen, res)
	}
	return res, nil
}

func (s *Service) summarizeUser(ctx context.Context, userID string) ([]MonthSummary, error) {
	recs, err := s.ledger.List(ctx, attendance.Filter{UserID: userID})
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "summary.failed", err)
	}
	res := Summarize(recs, s.loc)
	sort.SliceStable(res, func(i, j int) bool { return res[j].Key.Less(res[i].Key) })
	return res, nil
}

// ExportMonthlyReport renders the caller's records created in monthKey as
// CSV, oldest first. The month boundaries are taken in UTC.
func (s *Service) ExportMonthlyReport(ctx context.Context, id *auth.Identity, monthKey string) (Report, error) {
	if id == nil {
		return Report{}, errLoginRequired
	}
	key, err := ParseMonthKey(monthKey)
	if err != nil {
		return Report{}, err
	}
	from, to := key.Range(time.UTC)
	recs, err := s.ledger.List(ctx, attendance.Filter{UserID: id.ID, From: from, To: to, Oldest: true})
	if err != nil {
		return Report{}, apperror.Wrap(apperror.Internal, "summary.exportFailed", err)
	}

	var b strings.Builder
	b.WriteString(ReportHeader)
	b.WriteByte('\n')
	for _, r := range recs {
		b.WriteString(r.CreatedAt.In(s.loc).Format(attendance.DateLayout))
		b.WriteByte(',')
		b.WriteString(deref(r.CheckIn))
		b.WriteByte(',')
		b.WriteString(deref(r.CheckOut))
		b.WriteByte(',')
		b.WriteString(string(r.Status))
		b.WriteByte('\n')
	}
	logger.Debugf("report %s for user %s: %d rows", key, id.ID, len(recs))
	return Report{Filename: ReportFilename(id.Name, key), CSV: b.String()}, nil
}

// ReportFilename builds rekap-<name>-<YYYY-MM>.csv with every run of
// characters outside [A-Za-z0-9_-] in the name replaced by "_".
func ReportFilename(name string, key MonthKey) string {
	if name == "" {
		name = "user"
	}
	return "rekap-" + unsafeFilename.ReplaceAllString(name, "_") + "-" + key.String() + ".csv"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
