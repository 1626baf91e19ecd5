package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/task"
)

func (a *App) groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List task groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			groups, err := svc.ListGroups(context.Background(), a.user)
			if err != nil {
				return fmt.Errorf("listing groups: %w", err)
			}
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No groups yet. Create one with 'daybook groups add'.")
				return nil
			}
			printGroupTree(cmd.OutOrStdout(), groups, nil, 0)
			return nil
		},
	}

	cmd.AddCommand(a.groupsAddCmd())
	return cmd
}

func (a *App) groupsAddCmd() *cobra.Command {
	var (
		color    string
		parentID string
		isParent bool
		auto     bool
		hours    string
		priority int
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a task group",
		Long: `Create a task group.

A parent group (--parent-group) only holds other groups. Groups with
--auto take part in auto-scheduling, optionally within their own --hours.`,
		Example: `  daybook groups add Work --parent-group
  daybook groups add "Deep work" --parent=<work-id> --auto --hours=weekdays=8-12 --color=#5f87ff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}

			g := &task.Group{
				UserID:              a.user,
				Name:                args[0],
				Color:               color,
				IsParentGroup:       isParent,
				AutoScheduleEnabled: auto,
			}
			if parentID != "" {
				g.ParentGroupID = &parentID
			}
			if hours != "" {
				h, err := parseHours(hours)
				if err != nil {
					return err
				}
				g.AutoScheduleHours = h
			}
			if cmd.Flags().Changed("priority") {
				g.Priority = &priority
			}

			if err := svc.CreateGroup(context.Background(), g); err != nil {
				return fmt.Errorf("creating group: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created group %s: %s\n", g.ID, g.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Display color (hex or ANSI number)")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent group id")
	cmd.Flags().BoolVar(&isParent, "parent-group", false, "Make this an organizational parent group")
	cmd.Flags().BoolVar(&auto, "auto", false, "Enable auto-scheduling")
	cmd.Flags().StringVar(&hours, "hours", "", "Scheduling hours, e.g. weekdays=8-12,friday=8-10")
	cmd.Flags().IntVar(&priority, "priority", 0, "Tie-break weight among groups (lower goes first)")

	return cmd
}

// printGroupTree prints the children of parentID, then recurses.
func printGroupTree(w io.Writer, groups []*task.Group, parentID *string, depth int) {
	for _, g := range groups {
		if !sameParent(g.ParentGroupID, parentID) {
			continue
		}
		line := fmt.Sprintf("%*s%s", depth*2+2, "", groupStyle(g.Color).Bold(g.IsParentGroup).Render(g.Name))
		switch {
		case g.IsParentGroup:
			line += formatMuted(" (parent)")
		case g.AutoScheduleEnabled && g.AutoScheduleHours == nil:
			line += formatMuted(" (auto)")
		case g.AutoScheduleEnabled:
			line += formatMuted(" (auto: " + formatHours(g.AutoScheduleHours) + ")")
		}
		fmt.Fprintf(w, "%s  %s\n", line, formatMuted(g.ID))
		id := g.ID
		printGroupTree(w, groups, &id, depth+1)
	}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
