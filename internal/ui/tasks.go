package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/task"
)

func (a *App) addCmd() *cobra.Command {
	var (
		priority int
		duration int
		energy   int
		groupID  string
		parentID string
		date     string
		start    string
		locked   bool
		ignored  bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Long: `Add a new task.

Without --start the task is left unscheduled so auto-schedule or
pull-forward can place it. With --start it is scheduled on --date for
--duration minutes.`,
		Example: `  daybook add "Write documentation" --duration=90 --group=<group-id>
  daybook add "Standup" --date=tomorrow --start=09:30 --duration=15 --locked`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			ctx := context.Background()

			t, err := task.New(a.user, args[0])
			if err != nil {
				return err
			}
			t.Priority = priority
			t.EnergyLevelRequired = energy
			t.Locked = locked
			t.Ignored = ignored
			if duration > 0 {
				t.Duration = &duration
			}
			if groupID != "" {
				t.GroupID = &groupID
			}
			if parentID != "" {
				t.ParentTaskID = &parentID
			}

			if start != "" {
				if duration <= 0 {
					return fmt.Errorf("--duration is required with --start")
				}
				day, err := a.parseDate(ctx, svc, date, true)
				if err != nil {
					return err
				}
				begin, err := clockOn(day, start)
				if err != nil {
					return err
				}
				t.Schedule(begin, begin.Add(time.Duration(duration)*time.Minute))
			}

			if err := svc.CreateTask(ctx, t); err != nil {
				return fmt.Errorf("creating task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().IntVar(&priority, "priority", task.DefaultPriority, "Priority from 1 (highest) to 5")
	cmd.Flags().IntVar(&duration, "duration", 0, "Planned duration in minutes")
	cmd.Flags().IntVar(&energy, "energy", task.DefaultEnergy, "Energy level required from 1 to 5")
	cmd.Flags().StringVar(&groupID, "group", "", "Group id")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent task id (makes this a subtask)")
	cmd.Flags().StringVar(&date, "date", "", "Scheduled date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().BoolVar(&locked, "locked", false, "Never move this task automatically")
	cmd.Flags().BoolVar(&ignored, "ignored", false, "Leave this task out of auto-scheduling")

	return cmd
}

func (a *App) listCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks, scheduled ones first in time order.

Completed and cancelled tasks are hidden unless --all is given.`,
		Example: `  daybook list
  daybook list --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			ctx := context.Background()

			loc, err := a.location(ctx, svc)
			if err != nil {
				return err
			}
			tasks, err := svc.ListTasks(ctx, a.user)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}
			groups, err := svc.ListGroups(ctx, a.user)
			if err != nil {
				return fmt.Errorf("listing groups: %w", err)
			}
			names := make(map[string]string, len(groups))
			for _, g := range groups {
				names[g.ID] = g.Name
			}

			shown := 0
			width := termWidth()
			for _, t := range tasks {
				if !all && !t.IsOpen() {
					continue
				}
				groupName := ""
				if t.GroupID != nil {
					groupName = names[*t.GroupID]
				}
				printTaskRow(cmd.OutOrStdout(), t, groupName, loc, width)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include completed and cancelled tasks")
	return cmd
}
