package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day without a time of day or a zone. The record store
// exchanges plain "2006-01-02" strings, and the classic off-by-one-day bug
// (a midnight-local value shifting a day when serialized through UTC)
// cannot occur with a value that never carries a zone in the first place.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar day of t in t's location. Formatting a
// display value back to the wire always goes through this, so the wire sees
// the local calendar day, never the UTC one.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts the store's date strings: a bare "2006-01-02", or a full
// timestamp, in which case the calendar day is taken in local time.
func ParseDate(s string) (Date, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t.In(time.Local)), nil
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of d in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// formatDatePtr renders an optional date for the wire; nil stays null.
func formatDatePtr(d *Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// parseDatePtr parses an optional wire date; empty or absent maps to nil,
// never to an invalid-date sentinel.
func parseDatePtr(s string) (*Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
