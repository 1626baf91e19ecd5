// Package layout computes overlap and nesting relationships between scheduled
// tasks so a calendar view can draw them.
//
// Everything in this package is a pure function of its input. Tasks with a
// missing start or end never overlap or nest, so noisy data is safe to pass.
package layout

import (
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/interval"
	"github.com/javiermolinar/daybook/internal/task"
)

// DetectOverlaps returns, for each active task that overlaps at least one
// reference task, the overlapping reference tasks in reference order.
// A task is never reported as overlapping itself.
func DetectOverlaps(active, reference []*task.Task) map[string][]*task.Task {
	result := make(map[string][]*task.Task)
	for _, a := range active {
		ai := a.Interval()
		for _, r := range reference {
			if r.ID == a.ID {
				continue
			}
			if interval.Overlaps(ai, r.Interval()) {
				result[a.ID] = append(result[a.ID], r)
			}
		}
	}
	return result
}

// Nesting describes which active tasks are drawn inside which others.
type Nesting struct {
	// Hosts maps a host task id to its guests, sorted by start.
	Hosts map[string][]*task.Task
	// Guests holds the ids of every task nested inside a host.
	Guests map[string]bool
	// HostOf maps a guest id to its host id.
	HostOf map[string]string
}

// DetectNestedTasks finds the tasks whose span lies inside another task's span.
// Each guest is assigned to exactly one host: the smallest task that encloses it.
// Equal-length candidates are resolved by the later start, then the lower id,
// so the result does not depend on input order.
func DetectNestedTasks(active []*task.Task) Nesting {
	n := Nesting{
		Hosts:  make(map[string][]*task.Task),
		Guests: make(map[string]bool),
		HostOf: make(map[string]string),
	}

	for _, candidate := range active {
		ci := candidate.Interval()
		var host *task.Task
		for _, other := range active {
			if other == candidate || other.ID == candidate.ID {
				continue
			}
			if !interval.IsNestedInside(ci, other.Interval()) {
				continue
			}
			if host == nil || tighterHost(other, host) {
				host = other
			}
		}
		if host == nil {
			continue
		}
		n.Hosts[host.ID] = append(n.Hosts[host.ID], candidate)
		n.Guests[candidate.ID] = true
		n.HostOf[candidate.ID] = host.ID
	}

	for _, guests := range n.Hosts {
		task.SortByStart(guests)
	}
	return n
}

// tighterHost reports whether a is a better host than b for the same guest.
func tighterHost(a, b *task.Task) bool {
	ad, bd := a.Interval().Duration(), b.Interval().Duration()
	if ad != bd {
		return ad < bd
	}
	if c := a.ScheduledStart.Compare(*b.ScheduledStart); c != 0 {
		return c > 0
	}
	return strings.Compare(a.ID, b.ID) < 0
}

// CalculateHostSegments splits a host task into the visible blocks left
// between its guests.
func CalculateHostSegments(host *task.Task, guests []*task.Task) []interval.Segment {
	spans := make([]interval.Interval, 0, len(guests))
	for _, g := range guests {
		spans = append(spans, g.Interval())
	}
	return interval.SplitBySubIntervals(host.Interval(), spans)
}

// Block is a drawable piece of a task.
type Block struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Index         int       `json:"index"`
	TotalSegments int       `json:"total_segments"`
	IsFirst       bool      `json:"is_first"`
	IsLast        bool      `json:"is_last"`
}

func blocksFromSegments(segs []interval.Segment) []Block {
	blocks := make([]Block, len(segs))
	for i, s := range segs {
		blocks[i] = Block{
			Start:         s.Start,
			End:           s.End,
			Index:         s.Index,
			TotalSegments: s.TotalSegments,
			IsFirst:       s.IsFirst,
			IsLast:        s.IsLast,
		}
	}
	return blocks
}
