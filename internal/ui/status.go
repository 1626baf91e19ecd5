package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/task"
)

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [task-id] [status]",
		Short: "Set the status of a task",
		Long: `Set the status of a task.

Statuses:
  pending      - Not started
  in_progress  - Being worked on
  completed    - Done; keeps its time block
  cancelled    - Dropped; frees its time block
  rescheduled  - Moved elsewhere; frees its time block`,
		Example: `  daybook status <task-id> in_progress`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := task.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return a.setStatus(cmd, args[0], status)
		},
	}
}

func (a *App) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done [task-id]",
		Short:   "Mark a task as completed",
		Example: `  daybook done <task-id>`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setStatus(cmd, args[0], task.StatusCompleted)
		},
	}
}

func (a *App) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [task-id]",
		Short: "Cancel a task",
		Long: `Cancel a task by its ID. Its time block becomes free for scheduling.

Example:
  daybook cancel <task-id>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setStatus(cmd, args[0], task.StatusCancelled)
		},
	}
}

func (a *App) setStatus(cmd *cobra.Command, id string, status task.Status) error {
	svc, err := a.plannerService()
	if err != nil {
		return err
	}
	if err := svc.SetStatus(context.Background(), a.user, id, status); err != nil {
		return fmt.Errorf("setting status: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", id, status)
	return nil
}
