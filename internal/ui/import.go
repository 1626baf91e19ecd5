package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/db"
	"github.com/javiermolinar/daybook/internal/task"
)

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [database_path]",
		Short: "Import groups, tasks and settings from another database",
		Long: `Import the current user's groups, tasks and settings from another
Daybook database into the current one. Ids are kept, so importing the
same database twice fails on the first duplicate.

Example:
  daybook import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			destPath, err := resolvePath(a.config.Storage.DBPath)
			if err != nil {
				return err
			}

			if sourcePath == destPath {
				return fmt.Errorf("source database matches current database")
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source database does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source database: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source database path is a directory: %s", sourcePath)
			}

			stats, err := importUser(context.Background(), a.repo, sourcePath, a.user)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d groups and %d tasks from %s\n", stats.groups, stats.tasks, sourcePath)
			return nil
		},
	}

	return cmd
}

type importStats struct {
	groups int
	tasks  int
}

// importUser copies userID's data from the database at sourcePath into dest.
// Parents are written before their children so references stay valid.
func importUser(ctx context.Context, dest task.Repository, sourcePath, userID string) (importStats, error) {
	var stats importStats

	sourceRepo, err := db.New(sourcePath)
	if err != nil {
		return stats, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = sourceRepo.Close() }()

	groups, err := sourceRepo.ListGroups(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("listing source groups: %w", err)
	}
	created := make(map[string]bool, len(groups))
	for len(created) < len(groups) {
		progress := false
		for _, g := range groups {
			if created[g.ID] || (g.ParentGroupID != nil && !created[*g.ParentGroupID]) {
				continue
			}
			if err := dest.CreateGroup(ctx, g); err != nil {
				return stats, fmt.Errorf("importing group %q: %w", g.Name, err)
			}
			created[g.ID] = true
			stats.groups++
			progress = true
		}
		if !progress {
			return stats, fmt.Errorf("source groups reference missing parents")
		}
	}

	tasks, err := sourceRepo.ListTasks(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("listing source tasks: %w", err)
	}
	// Subtasks are one level deep: top-level tasks first, then subtasks.
	for _, subtasks := range []bool{false, true} {
		for _, t := range tasks {
			if t.IsSubtask() != subtasks {
				continue
			}
			if err := dest.CreateTask(ctx, t); err != nil {
				return stats, fmt.Errorf("importing task %q: %w", t.Title, err)
			}
			stats.tasks++
		}
	}

	st, err := sourceRepo.GetSettings(ctx, userID)
	switch {
	case errors.Is(err, task.ErrSettingsNotFound):
	case err != nil:
		return stats, fmt.Errorf("reading source settings: %w", err)
	default:
		if err := dest.SaveSettings(ctx, st); err != nil {
			return stats, fmt.Errorf("importing settings: %w", err)
		}
	}

	return stats, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
