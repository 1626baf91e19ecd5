package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/config"
	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/db"
	"github.com/javiermolinar/daybook/internal/logger"
	"github.com/javiermolinar/daybook/internal/planner"
	"github.com/javiermolinar/daybook/internal/task"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    task.Repository
	config  *config.Config
	root    *cobra.Command
	log     *zap.Logger
	service *planner.Service
	now     func() time.Time

	// Global flags
	user     string
	timezone string
	logLevel string
	noColor  bool
}

// NewApp creates a new CLI application with the given repository and config.
// A nil repository is opened lazily from the configured database path.
func NewApp(repo task.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg, now: time.Now}

	a.root = &cobra.Command{
		Use:   "daybook",
		Short: "A day planner that fills your calendar for you",
		Long: `Daybook keeps tasks, groups and availability in a local database and
places tasks into free time.

Use 'daybook pull-forward' to bring future work of a group onto a day,
'daybook auto-schedule' to place unscheduled tasks, and 'daybook day'
to see the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			return a.initLogger()
		},
	}

	flags := a.root.PersistentFlags()
	flags.StringVar(&a.user, "user", cfg.Schedule.User, "User id to act as")
	flags.StringVar(&a.timezone, "tz", "", "Timezone override (IANA name, default: stored setting)")
	flags.StringVar(&a.logLevel, "log-level", cfg.Log.Level, "Log level: debug, info, warn or error")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.pullForwardCmd())
	a.root.AddCommand(a.autoScheduleCmd())
	a.root.AddCommand(a.dayCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.tuiCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.statusCmd())
	a.root.AddCommand(a.doneCmd())
	a.root.AddCommand(a.cancelCmd())
	a.root.AddCommand(a.groupsCmd())
	a.root.AddCommand(a.settingsCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "daybook %s (commit: %s)\n", Version, Commit)
		},
	}
}

func (a *App) initLogger() error {
	if a.log != nil {
		return nil
	}
	log, err := logger.New(a.logLevel, a.config.Log.Development)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.log = log
	return nil
}

// ensureRepo opens the database on first use.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	repo, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.repo = repo
	return nil
}

// plannerService returns the scheduling service, opening the database if needed.
func (a *App) plannerService() (*planner.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	if err := a.ensureRepo(); err != nil {
		return nil, err
	}
	if err := a.initLogger(); err != nil {
		return nil, err
	}
	a.service = planner.New(a.repo, a.log, planner.Defaults{
		Timezone:   a.config.Schedule.Timezone,
		AwakeHours: a.config.Schedule.AwakeHours,
	}).WithClock(a.now)
	return a.service, nil
}

// location returns the effective timezone of the current user, used to
// interpret dates typed on the command line.
func (a *App) location(ctx context.Context, svc *planner.Service) (*time.Location, error) {
	st, err := svc.Settings(ctx, a.user, a.timezone)
	if err != nil {
		return nil, err
	}
	return availability.LoadLocation(st.Timezone)
}

// parseDate resolves a relative or absolute date in the user's timezone.
// Past dates are rejected unless allowPast is set.
func (a *App) parseDate(ctx context.Context, svc *planner.Service, s string, allowPast bool) (time.Time, error) {
	loc, err := a.location(ctx, svc)
	if err != nil {
		return time.Time{}, err
	}
	d, err := dateutil.ParseRelativeDate(s, a.now().In(loc))
	if allowPast && errors.Is(err, dateutil.ErrDateInPast) {
		return dateutil.ParseDateIn(s, loc)
	}
	return d, err
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}
