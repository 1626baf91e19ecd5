package interval

// Segment is one visible piece of a host interval that is not covered by a guest.
type Segment struct {
	Interval
	Index         int
	TotalSegments int
	IsFirst       bool
	IsLast        bool
}

// SplitBySubIntervals returns the parts of host not covered by any guest.
// Guests are clipped to the host and merged first, so overlapping or unsorted
// guests are handled. Zero-length gaps are omitted.
// With no guests the whole host is returned as a single segment.
func SplitBySubIntervals(host Interval, guests []Interval) []Segment {
	if !host.Valid() {
		return nil
	}

	clipped := make([]Interval, 0, len(guests))
	for _, g := range guests {
		if c, ok := Clamp(g, host); ok {
			clipped = append(clipped, c)
		}
	}

	var gaps []Interval
	cursor := host.Start
	for _, g := range Merge(clipped) {
		if g.Start.After(cursor) {
			gaps = append(gaps, New(cursor, g.Start))
		}
		if g.End.After(cursor) {
			cursor = g.End
		}
	}
	if host.End.After(cursor) {
		gaps = append(gaps, New(cursor, host.End))
	}

	segments := make([]Segment, len(gaps))
	for i, gap := range gaps {
		segments[i] = Segment{
			Interval:      gap,
			Index:         i,
			TotalSegments: len(gaps),
			IsFirst:       i == 0,
			IsLast:        i == len(gaps)-1,
		}
	}
	return segments
}
