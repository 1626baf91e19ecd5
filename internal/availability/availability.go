// Package availability resolves per-weekday hour windows into concrete time ranges.
package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/interval"
)

// EndOfDay is the End hour meaning midnight at the end of the calendar day.
const EndOfDay = 24

// Validation errors.
var (
	ErrInvalidHourRange = errors.New("hour range must satisfy 0 <= start < end <= 24")
	ErrInvalidWeekday   = errors.New("unknown weekday")
)

// HourRange is a whole-hour window within a single day.
// Start is 0..23 and End is 1..EndOfDay.
type HourRange struct {
	Start int `toml:"start" json:"start"`
	End   int `toml:"end" json:"end"`
}

// Validate checks the range bounds.
func (h HourRange) Validate() error {
	if h.Start < 0 || h.Start > 23 || h.End < 1 || h.End > EndOfDay || h.Start >= h.End {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidHourRange, h.Start, h.End)
	}
	return nil
}

// AwakeHours maps lowercase weekday names to an hour range.
// A nil entry or a missing key means no availability that day.
type AwakeHours map[string]*HourRange

// Validate checks every key is a weekday name and every range is valid.
func (a AwakeHours) Validate() error {
	for day, r := range a {
		if _, ok := dateutil.ParseWeekday(day); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidWeekday, day)
		}
		if r == nil {
			continue
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
	}
	return nil
}

// For returns the range configured for the weekday, or nil.
func (a AwakeHours) For(weekday time.Weekday) *HourRange {
	if a == nil {
		return nil
	}
	if r, ok := a[dateutil.WeekdayKey(weekday)]; ok {
		return r
	}
	// Tolerate keys stored with different casing.
	for day, r := range a {
		if strings.EqualFold(day, weekday.String()) {
			return r
		}
	}
	return nil
}

// Resolve returns the window for the calendar date of date, expressed in loc.
// The calendar date is read from date as-is (its own location), so callers should
// pass a value already converted to the user's timezone.
// Returns false if the weekday has no entry or the entry is invalid.
func Resolve(hours AwakeHours, date time.Time, loc *time.Location) (interval.Interval, bool) {
	if loc == nil {
		loc = time.UTC
	}
	r := hours.For(date.Weekday())
	if r == nil || r.Validate() != nil {
		return interval.Interval{}, false
	}

	y, m, d := date.Date()
	start := time.Date(y, m, d, r.Start, 0, 0, 0, loc)
	var end time.Time
	if r.End == EndOfDay {
		end = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	} else {
		end = time.Date(y, m, d, r.End, 0, 0, 0, loc)
	}
	return interval.New(start, end), true
}

// LoadLocation resolves an IANA timezone name. An empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// ResolveForGroup returns the window for date using the group's own hours
// when it has any, falling back to the user's awake hours otherwise.
func ResolveForGroup(group, user AwakeHours, date time.Time, loc *time.Location) (interval.Interval, bool) {
	if group != nil {
		return Resolve(group, date, loc)
	}
	return Resolve(user, date, loc)
}
