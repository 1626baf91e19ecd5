package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) settingsCmd() *cobra.Command {
	var (
		timezone string
		hours    string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View or change your timezone and awake hours",
		Long: `Without flags, prints the effective settings of the current user.
Users without stored settings use the [schedule] section of the config file.

With --timezone or --hours, stores new settings for the current user.`,
		Example: `  daybook settings
  daybook settings --timezone=Europe/Madrid --hours=weekdays=8-18,saturday=10-14`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			ctx := context.Background()

			st, err := svc.Settings(ctx, a.user, "")
			if err != nil {
				return err
			}

			if timezone != "" || hours != "" {
				if timezone != "" {
					st.Timezone = timezone
				}
				if hours != "" {
					h, err := parseHours(hours)
					if err != nil {
						return err
					}
					st.AwakeHours = h
				}
				if err := svc.SaveSettings(ctx, st); err != nil {
					return fmt.Errorf("saving settings: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user        = %s\n", st.UserID)
			fmt.Fprintf(out, "timezone    = %s\n", st.Timezone)
			fmt.Fprintf(out, "awake_hours = %s\n", formatHours(st.AwakeHours))
			return nil
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone, e.g. Europe/Madrid")
	cmd.Flags().StringVar(&hours, "hours", "", "Awake hours, e.g. weekdays=9-17,saturday=10-13")
	return cmd
}
