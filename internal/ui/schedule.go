package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/planner"
)

func (a *App) pullForwardCmd() *cobra.Command {
	var (
		groupID string
		date    string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "pull-forward",
		Short: "Pull future tasks of a group onto a day",
		Long: `Move open tasks of a group that are scheduled after the target day into
its free time, highest priority first.

A parent group pulls from all of its child groups. Locked, ignored and
completed tasks are never moved.`,
		Example: `  daybook pull-forward --group=<group-id>
  daybook pull-forward --group=<group-id> --date=tomorrow --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			ctx := context.Background()

			target, err := a.parseDate(ctx, svc, date, false)
			if err != nil {
				return err
			}

			out, err := svc.PullForward(ctx, a.user, planner.PullForwardInput{
				TargetDate: target,
				GroupID:    groupID,
				Timezone:   a.timezone,
				DryRun:     dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "=== %s ===\n\n", formatHeader("Pull forward "+target.Format(dateutil.DateLayout)))
			printResult(cmd.OutOrStdout(), out.Result, target.Location(), termWidth())
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), formatMuted("Dry run: nothing was saved."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "Group to pull tasks from (required)")
	cmd.Flags().StringVar(&date, "date", "", "Target date (today, tomorrow, monday, YYYY-MM-DD)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without saving it")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}

func (a *App) autoScheduleCmd() *cobra.Command {
	var (
		groupID string
		date    string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "auto-schedule",
		Short: "Place unscheduled tasks into free time",
		Long: `Place unscheduled tasks of groups with auto-scheduling enabled into the
free time of a day. Each group uses its own hours when it has them.`,
		Example: `  daybook auto-schedule
  daybook auto-schedule --date=monday --group=<group-id>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			ctx := context.Background()

			day, err := a.parseDate(ctx, svc, date, false)
			if err != nil {
				return err
			}

			out, err := svc.AutoSchedule(ctx, a.user, planner.AutoScheduleInput{
				Date:     day,
				GroupID:  groupID,
				Timezone: a.timezone,
				DryRun:   dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "=== %s ===\n\n", formatHeader("Auto-schedule "+day.Format(dateutil.DateLayout)))
			printResult(cmd.OutOrStdout(), out.Result, day.Location(), termWidth())
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), formatMuted("Dry run: nothing was saved."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "Only schedule this group (and its children)")
	cmd.Flags().StringVar(&date, "date", "", "Date to fill (today, tomorrow, monday, YYYY-MM-DD)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without saving it")

	return cmd
}

func (a *App) dayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the time blocks of a day",
		Long: `Display the scheduled time blocks of a day.

Tasks that fall inside a longer task are drawn under it, and the longer
task is split around them. Overlaps with completed work are flagged.`,
		Example: `  daybook day
  daybook day --date=tomorrow`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			ctx := context.Background()

			day, err := a.parseDate(ctx, svc, date, true)
			if err != nil {
				return err
			}

			dl, err := svc.DayLayout(ctx, a.user, day, a.timezone)
			if err != nil {
				return fmt.Errorf("building day layout: %w", err)
			}
			groups, err := svc.ListGroups(ctx, a.user)
			if err != nil {
				return fmt.Errorf("listing groups: %w", err)
			}

			renderDay(cmd.OutOrStdout(), dl, groups, day.Location(), termWidth())
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to show (today, tomorrow, monday, YYYY-MM-DD)")
	return cmd
}
