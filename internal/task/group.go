package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
)

// Group errors.
var (
	ErrEmptyGroupName      = errors.New("group name cannot be empty")
	ErrGroupNotFound       = errors.New("group not found")
	ErrNoLeafGroups        = errors.New("group has no schedulable child groups")
	ErrParentGroupSchedule = errors.New("parent groups cannot carry auto-schedule settings")
)

// Group organizes tasks. A parent group is an organizational bucket that
// holds other groups and never holds schedulable tasks itself.
type Group struct {
	ID                  string                  `json:"id"`
	UserID              string                  `json:"user_id"`
	Name                string                  `json:"name"`
	Color               string                  `json:"color"`
	ParentGroupID       *string                 `json:"parent_group_id,omitempty"`
	IsParentGroup       bool                    `json:"is_parent_group"`
	AutoScheduleEnabled bool                    `json:"auto_schedule_enabled"`
	AutoScheduleHours   availability.AwakeHours `json:"auto_schedule_hours,omitempty"`
	Priority            *int                    `json:"priority,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
}

// Validate checks the group invariants.
func (g *Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGroupName
	}
	if g.UserID == "" {
		return ErrMissingUserID
	}
	if g.IsParentGroup && (g.AutoScheduleEnabled || g.AutoScheduleHours != nil) {
		return ErrParentGroupSchedule
	}
	if g.AutoScheduleHours != nil {
		if err := g.AutoScheduleHours.Validate(); err != nil {
			return fmt.Errorf("auto_schedule_hours: %w", err)
		}
	}
	return nil
}

// ScheduleHours returns the group's own placement hours, or nil if the group
// does not auto-schedule or defines no hours.
func (g *Group) ScheduleHours() availability.AwakeHours {
	if g.IsParentGroup || !g.AutoScheduleEnabled {
		return nil
	}
	return g.AutoScheduleHours
}

// PriorityOr returns the group's tie-break weight, or def when unset.
func (g *Group) PriorityOr(def int) int {
	if g.Priority == nil {
		return def
	}
	return *g.Priority
}

// FindGroup returns the group with the given id, or nil.
func FindGroup(groups []*Group, id string) *Group {
	for _, g := range groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// ChildGroups returns the direct children of parentID, in input order.
func ChildGroups(groups []*Group, parentID string) []*Group {
	var children []*Group
	for _, g := range groups {
		if g.ParentGroupID != nil && *g.ParentGroupID == parentID {
			children = append(children, g)
		}
	}
	return children
}

// ResolveLeafGroups returns the ids of the leaf groups an operation on
// targetID applies to. A leaf target resolves to itself; a parent target
// resolves to its direct children that are not parent groups themselves.
// Deeper descendants are not visited.
func ResolveLeafGroups(groups []*Group, targetID string) ([]string, error) {
	target := FindGroup(groups, targetID)
	if target == nil {
		return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, targetID)
	}
	if !target.IsParentGroup {
		return []string{target.ID}, nil
	}

	var leaves []string
	for _, child := range ChildGroups(groups, target.ID) {
		if !child.IsParentGroup {
			leaves = append(leaves, child.ID)
		}
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoLeafGroups, target.Name)
	}
	slices.Sort(leaves)
	return leaves, nil
}

// GroupSet turns a list of ids into a membership set.
func GroupSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
