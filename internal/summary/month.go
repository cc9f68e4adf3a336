package summary

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"jjc-attendance/internal/apperror"
)

var (
	monthKeyPattern    = regexp.MustCompile(`^\d{4}-\d{2}$`)
	errInvalidMonthKey = apperror.New(apperror.Validation, "summary.invalidMonthKey")
)

// MonthKey identifies a calendar month. Its string form is YYYY-MM, which
// sorts lexicographically in chronological order.
type MonthKey struct {
	Year  int
	Month time.Month
}

// KeyOf returns the month t falls in, in t's location.
func KeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses YYYY-MM. Anything else, including month 00 or 13, is a
// validation error.
func ParseMonthKey(s string) (MonthKey, error) {
	if !monthKeyPattern.MatchString(s) {
		return MonthKey{}, errInvalidMonthKey
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:])
	if month < 1 || month > 12 {
		return MonthKey{}, errInvalidMonthKey
	}
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Range returns [start of month, start of next month) in loc.
func (k MonthKey) Range(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Less orders keys chronologically.
func (k MonthKey) Less(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MonthKey) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
