// Package interval provides half-open [start, end) time interval operations.
package interval

import (
	"slices"
	"time"
)

// Interval is a half-open time range. A zero Start or End means the bound is missing.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New returns the interval [start, end).
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// FromPtrs builds an interval from optional bounds. Nil bounds stay missing.
func FromPtrs(start, end *time.Time) Interval {
	var i Interval
	if start != nil {
		i.Start = *start
	}
	if end != nil {
		i.End = *end
	}
	return i
}

// Complete returns true if both bounds are set.
func (i Interval) Complete() bool {
	return !i.Start.IsZero() && !i.End.IsZero()
}

// Valid returns true if both bounds are set and Start is before End.
func (i Interval) Valid() bool {
	return i.Complete() && i.Start.Before(i.End)
}

// Duration returns the length of the interval, or 0 if it is not valid.
func (i Interval) Duration() time.Duration {
	if !i.Valid() {
		return 0
	}
	return i.End.Sub(i.Start)
}

// Equal returns true if both intervals have identical bounds.
func (i Interval) Equal(other Interval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

// Overlaps returns true if a and b share any instant.
// Two ranges overlap if: a.Start < b.End AND a.End > b.Start.
// Intervals with a missing bound never overlap.
func Overlaps(a, b Interval) bool {
	if !a.Complete() || !b.Complete() {
		return false
	}
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// IsNestedInside returns true if inner lies within outer.
// Identical intervals are not nested, so an interval is never nested inside itself.
func IsNestedInside(inner, outer Interval) bool {
	if !inner.Complete() || !outer.Complete() {
		return false
	}
	if inner.Equal(outer) {
		return false
	}
	return !inner.Start.Before(outer.Start) && !inner.End.After(outer.End)
}

// Clamp returns the part of i that lies inside bounds.
// The second return value is false when nothing remains.
func Clamp(i, bounds Interval) (Interval, bool) {
	if !Overlaps(i, bounds) {
		return Interval{}, false
	}
	out := i
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	return out, out.Valid()
}

// Subtract removes busy from every interval in free and returns the remainder,
// sorted by start. Empty remainders are dropped.
func Subtract(free []Interval, busy Interval) []Interval {
	result := make([]Interval, 0, len(free)+1)
	for _, f := range free {
		if !Overlaps(f, busy) {
			result = append(result, f)
			continue
		}
		if f.Start.Before(busy.Start) {
			result = append(result, New(f.Start, busy.Start))
		}
		if f.End.After(busy.End) {
			result = append(result, New(busy.End, f.End))
		}
	}
	SortByStart(result)
	return result
}

// SortByStart sorts intervals by start, then by end.
func SortByStart(xs []Interval) {
	slices.SortFunc(xs, func(a, b Interval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})
}

// Merge returns the union of xs as a sorted list of disjoint intervals.
// Touching intervals are merged. Incomplete intervals are ignored.
func Merge(xs []Interval) []Interval {
	sorted := make([]Interval, 0, len(xs))
	for _, x := range xs {
		if x.Valid() {
			sorted = append(sorted, x)
		}
	}
	SortByStart(sorted)

	var merged []Interval
	for _, x := range sorted {
		if n := len(merged); n > 0 && !x.Start.After(merged[n-1].End) {
			if x.End.After(merged[n-1].End) {
				merged[n-1].End = x.End
			}
			continue
		}
		merged = append(merged, x)
	}
	return merged
}
