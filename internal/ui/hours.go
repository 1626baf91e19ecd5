package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/dateutil"
)

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// parseHours parses "monday=9-17,friday=9-12". The keys "weekdays",
// "weekend" and "daily" expand to several days; later entries win.
func parseHours(s string) (availability.AwakeHours, error) {
	hours := availability.AwakeHours{}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid hours %q: use day=start-end", entry)
		}
		days, err := expandDays(key)
		if err != nil {
			return nil, err
		}
		r, err := parseHourRange(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		for _, wd := range days {
			rc := r
			hours[dateutil.WeekdayKey(wd)] = &rc
		}
	}
	if err := hours.Validate(); err != nil {
		return nil, err
	}
	return hours, nil
}

func expandDays(key string) ([]time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "weekdays":
		return weekOrder[:5], nil
	case "weekend":
		return weekOrder[5:], nil
	case "daily":
		return weekOrder, nil
	}
	wd, ok := dateutil.ParseWeekday(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", availability.ErrInvalidWeekday, key)
	}
	return []time.Weekday{wd}, nil
}

func parseHourRange(s string) (availability.HourRange, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return availability.HourRange{}, fmt.Errorf("invalid range %q: use start-end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return availability.HourRange{}, fmt.Errorf("invalid start hour %q", from)
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return availability.HourRange{}, fmt.Errorf("invalid end hour %q", to)
	}
	r := availability.HourRange{Start: start, End: end}
	return r, r.Validate()
}

// formatHours renders hours Monday first, one day per entry.
func formatHours(hours availability.AwakeHours) string {
	if len(hours) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(weekOrder))
	for _, wd := range weekOrder {
		if r := hours.For(wd); r != nil {
			parts = append(parts, fmt.Sprintf("%s %d-%d", wd.String()[:3], r.Start, r.End))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
