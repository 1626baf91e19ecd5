package ui

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/daybook/internal/llm"
	"github.com/javiermolinar/daybook/internal/summary"
	"github.com/javiermolinar/daybook/internal/task"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		date   string
		review bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Summarize planned time for a week",
		Long: `Show planned, completed and free time for each day of the week
containing --date, plus the time spent per group.

With --review the week is also sent to the LLM provider configured in
the [llm] section for a short review.`,
		Example: `  daybook week
  daybook week --date=2025-01-15
  daybook week --review`,
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
			week, err := svc.WeekSummary(ctx, a.user, day, a.timezone)
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}
			groups, err := svc.ListGroups(ctx, a.user)
			if err != nil {
				return fmt.Errorf("listing groups: %w", err)
			}

			printWeek(cmd.OutOrStdout(), week, groups)
			if !review || len(week.Tasks) == 0 {
				return nil
			}

			client, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.Model, a.config.LLM.BaseURL)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}
			names := make(map[string]string, len(groups))
			for _, g := range groups {
				names[g.ID] = g.Name
			}
			result, err := llm.NewReviewer(client).ReviewWeek(ctx, week, names)
			if err != nil {
				return err
			}
			a.log.Debug("week reviewed", zap.String("provider", a.config.LLM.Provider), zap.String("model", a.config.LLM.Model))
			printReview(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day of the week (today, monday, YYYY-MM-DD)")
	cmd.Flags().BoolVar(&review, "review", false, "Ask the configured LLM to review the week")
	return cmd
}

func printReview(w io.Writer, review *llm.Review) {
	fmt.Fprintf(w, "\n  %s\n", formatHeader("REVIEW: "+review.Theme))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, o := range review.Observations {
		fmt.Fprintf(w, "  • %s\n", o)
	}
	if len(review.NextWeek) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  NEXT WEEK:")
		for _, n := range review.NextWeek {
			fmt.Fprintf(w, "  ➜  %s\n", formatMoved(n))
		}
	}
}

func printWeek(w io.Writer, week *summary.WeekSummary, groups []*task.Group) {
	header := fmt.Sprintf("WEEK: %s - %s (%s)",
		week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"), week.Timezone)
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	stats := week.Stats
	for _, ds := range stats.Days {
		line := fmt.Sprintf("  %-10s planned %-7s done %-7s free %s",
			ds.Date.Format("Mon 02"),
			FormatDuration(ds.PlannedMinutes),
			FormatDuration(ds.CompletedMinutes),
			FormatDuration(ds.FreeMinutes()))
		if ds.TotalBlocks == 0 && ds.AvailableMinutes == 0 {
			line = formatMuted(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if stats.TotalMinutes() == 0 {
		fmt.Fprintln(w, "  No time blocks scheduled for this week.")
		return
	}

	fmt.Fprintf(w, "  Scheduled: %s of %s awake (%d%%)\n",
		FormatDuration(stats.TotalMinutes()), FormatDuration(stats.AvailableMinutes), stats.LoadPercent())
	fmt.Fprintf(w, "  Done:      %s\n", loadBar(stats.CompletedMinutes, stats.TotalMinutes(), 20))
	if stats.CancelledBlocks > 0 || stats.RescheduledBlocks > 0 {
		fmt.Fprintf(w, "  Dropped:   %d cancelled, %d rescheduled\n", stats.CancelledBlocks, stats.RescheduledBlocks)
	}
	if day, minutes := stats.BusiestDay(); day >= 0 {
		fmt.Fprintf(w, "  Busiest:   %s (%s)\n", stats.Days[day].Date.Format("Monday"), FormatDuration(minutes))
	}

	names := make(map[string]*task.Group, len(groups))
	for _, g := range groups {
		names[g.ID] = g
	}
	ids := make([]string, 0, len(stats.GroupMinutes))
	for id := range stats.GroupMinutes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		mi, mj := stats.GroupMinutes[ids[i]], stats.GroupMinutes[ids[j]]
		if mi != mj {
			return mi > mj
		}
		return ids[i] < ids[j]
	})

	fmt.Fprintf(w, "\n  %s\n", formatHeader("BY GROUP"))
	for _, id := range ids {
		label := "(no group)"
		if g, ok := names[id]; ok {
			label = groupStyle(g.Color).Render(g.Name)
		}
		fmt.Fprintf(w, "  %-7s %s\n", FormatDuration(stats.GroupMinutes[id]), label)
	}
}

// loadBar draws done/total as a fixed-width bar.
func loadBar(done, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", width) + "] 0%"
	}
	filled := min(width, (done*width)/total)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d%%", formatMoved(bar), (done*100)/total)
}
