package deadline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	isoLayout     = "2006-01-02"
	displayLayout = "02/01/2006"
	day           = 24 * time.Hour
)

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day without time of day or zone. It is kept as midnight
// UTC so that day arithmetic never crosses a DST change. The zero value
// means "no date".
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today is DateOf(now) in the local zone.
func Today(now time.Time) Date {
	return DateOf(now.Local())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(isoLayout)
}

// Display formats the date as dd/mm/yyyy.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(displayLayout)
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddYears adds n calendar years; Feb 29 rolls over to Mar 1 on non-leap years.
func (d Date) AddYears(n int) Date {
	return Date{t: d.t.AddDate(n, 0, 0)}
}

// DaysUntil returns the number of calendar days from d to other, negative
// when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / day)
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
