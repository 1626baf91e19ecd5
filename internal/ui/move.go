package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/dateutil"
)

func (a *App) moveCmd() *cobra.Command {
	var (
		date  string
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to a new date/time",
		Long: `Schedule a task at an explicit date and time.

Unlike pull-forward and auto-schedule this also moves locked tasks.
Tasks with subtasks cannot be scheduled.`,
		Example: `  daybook move <task-id> --date=2025-01-16 --start=14:00 --end=16:00
  daybook move <task-id> --start=09:00 --end=11:00  # defaults to today`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			ctx := context.Background()

			day, err := a.parseDate(ctx, svc, date, false)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			from, err := clockOn(day, start)
			if err != nil {
				return err
			}
			to, err := clockOn(day, end)
			if err != nil {
				return err
			}

			t, err := svc.MoveTask(ctx, a.user, args[0], from, to)
			if err != nil {
				return fmt.Errorf("moving task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s: %s %s %s\n",
				t.ID,
				t.Title,
				day.Format(dateutil.DateLayout),
				formatRange(*t.ScheduledStart, *t.ScheduledEnd, day.Location()),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM or 24:00, required)")

	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

// clockOn returns the HH:MM wall-clock time on day. "24:00" is the end of day.
func clockOn(day time.Time, hhmm string) (time.Time, error) {
	if hhmm == "24:00" {
		return day.AddDate(0, 0, 1), nil
	}
	clock, err := time.Parse(clockLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use HH:MM", hhmm)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location()), nil
}
