package ui

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/tui"
	"github.com/javiermolinar/daybook/internal/tui/commands"
)

func (a *App) tuiCmd() *cobra.Command {
	var (
		date      string
		themeName string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive day view",
		Long: `Open the interactive day view.

Browse days, mark tasks done, and run pull-forward (p) or auto-schedule (a)
on the day shown. Press / for the command prompt and q to quit.`,
		Example: `  daybook tui
  daybook tui --date=tomorrow --theme=latte`,
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
			day, err := a.parseDate(ctx, svc, date, true)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("theme") {
				themeName = a.config.UI.Theme
			}

			return tui.Run(tui.Options{
				Session: commands.Session{
					Planner:  svc,
					UserID:   a.user,
					Timezone: a.timezone,
				},
				Location: loc,
				Theme:    themeName,
				Now:      a.now,
				Date:     day,
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "First day to show (default: today)")
	cmd.Flags().StringVar(&themeName, "theme", "", "Color theme: mocha, frappe or latte")
	return cmd
}
