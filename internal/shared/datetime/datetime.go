// Package datetime models the composite date/time value edited by the portal's pickers.
package datetime

import (
	"errors"
	"strings"
	"time"
)

// LocalLayout is the wall-clock layout the pet-care backend expects for appointment starts.
const LocalLayout = "2006-01-02T15:04:05"

var ErrInvalidDateTime = errors.New("date/time is not in a supported format")

// Formatter renders a composite value for the wire.
type Formatter func(time.Time) string

// LocalFormatter renders t as zone-less local wall-clock time.
func LocalFormatter(t time.Time) string {
	return t.Local().Format(LocalLayout)
}

// Value is a single point in time edited through separate date and time pickers.
type Value struct {
	t time.Time
}

// NewValue wraps t.
func NewValue(t time.Time) Value {
	return Value{t: t}
}

// Now returns a Value at the clock's current moment.
func Now(clock func() time.Time) Value {
	if clock == nil {
		clock = time.Now
	}
	return Value{t: clock()}
}

// Time returns the wrapped time.
func (v Value) Time() time.Time {
	return v.t
}

// IsZero reports whether the value was never set.
func (v Value) IsZero() bool {
	return v.t.IsZero()
}

// WithDate takes the calendar date from d and keeps the current time-of-day.
func (v Value) WithDate(d time.Time) Value {
	d = d.In(v.location())
	return Value{t: time.Date(d.Year(), d.Month(), d.Day(),
		v.t.Hour(), v.t.Minute(), v.t.Second(), v.t.Nanosecond(), v.location())}
}

// WithTime takes the time-of-day from tod and keeps the current calendar date.
func (v Value) WithTime(tod time.Time) Value {
	tod = tod.In(v.location())
	return Value{t: time.Date(v.t.Year(), v.t.Month(), v.t.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond(), v.location())}
}

// Format renders the value with f, falling back to LocalFormatter.
func (v Value) Format(f Formatter) string {
	if f == nil {
		f = LocalFormatter
	}
	return f(v.t)
}

func (v Value) location() *time.Location {
	if loc := v.t.Location(); loc != nil {
		return loc
	}
	return time.Local
}

var parseLayouts = []string{
	LocalLayout,
	"2006-01-02T15:04",
	time.RFC3339Nano,
	time.RFC3339,
}

// Parse reads mobile input. Zone-less layouts are interpreted in local time.
func Parse(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDateTime
	}
	for _, layout := range parseLayouts {
		var (
			t   time.Time
			err error
		)
		if strings.Contains(layout, "Z07") {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, time.Local)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}
