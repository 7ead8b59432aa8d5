// Package timezone maps stored UTC instants onto civil days of the hotel's
// operational timezone. Every "same day" comparison between a caller supplied
// date and a stored check-in or check-out instant goes through a Normalizer.
package timezone

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-frontdesk/failure"
)

// DateLayout is the civil date format accepted on the wire.
const DateLayout = "2006-01-02"

// ErrInvalidDateFormat is wrapped by every date parsing failure.
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

type Normalizer struct {
	loc *time.Location
}

// New loads the named IANA location. An empty name means UTC.
func New(name string) (*Normalizer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return &Normalizer{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return &Normalizer{loc: loc}, nil
}

// NewFromLocation builds a Normalizer around an already resolved location.
func NewFromLocation(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ParseDate returns midnight of the given civil day in the operational zone.
func (n *Normalizer) ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, failure.BadRequest(fmt.Errorf("%w: date is required", ErrInvalidDateFormat))
	}
	t, err := time.ParseInLocation(DateLayout, value, n.loc)
	if err != nil {
		return time.Time{}, failure.BadRequest(fmt.Errorf("%w: %q", ErrInvalidDateFormat, value))
	}
	return t, nil
}

// ParseInstant accepts either RFC3339 or a civil date. Civil dates resolve to
// midnight in the operational zone.
func (n *Normalizer) ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := n.ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Day truncates t to midnight of its civil day in the operational zone.
func (n *Normalizer) Day(t time.Time) time.Time {
	local := t.In(n.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, n.loc)
}

// DayBounds returns the first and last instant of the civil day containing t.
func (n *Normalizer) DayBounds(t time.Time) (start, end time.Time) {
	start = n.Day(t)
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

func (n *Normalizer) Today(now time.Time) time.Time {
	return n.Day(now)
}

func (n *Normalizer) SameDay(a, b time.Time) bool {
	return n.Day(a).Equal(n.Day(b))
}

func (n *Normalizer) FormatDate(t time.Time) string {
	return t.In(n.loc).Format(DateLayout)
}
