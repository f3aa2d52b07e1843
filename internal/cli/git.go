package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/git"
	"github.com/jakoblorz/go-codebuilder/internal/task"
)

// NewGitCommand creates the git command with its subcommands
func NewGitCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git",
		Short: "Simulated version control for the workspace",
		Long: `Tracks modified and staged files and the last commit. Nothing is written to a
real repository; use deploy to push the files to GitHub.`,
	}

	cmd.AddCommand(
		newGitStatusCommand(app),
		newGitStageCommand(app),
		newGitCommitCommand(app),
		newGitPushCommand(app),
		newGitLogCommand(app),
	)

	return cmd
}

func newGitStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show modified and staged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			git.WriteStatus(cmd.OutOrStdout(), store.Snapshot().Git)
			return nil
		},
	}
}

func newGitStageCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "stage",
		Aliases: []string{"add"},
		Short:   "Stage every modified file",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			store.StageAll()
			fmt.Fprintln(cmd.OutOrStdout(), "Staged all changes")
			return nil
		},
	}
}

func newGitCommitCommand(app *App) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit the modified and staged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("message") && app.Interactive {
				message, err = app.Prompter.AskText("Commit message", git.DefaultCommitMessage)
				if err != nil {
					return err
				}
			}

			head, err := store.Commit(strings.TrimSpace(message))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed: %s\n", head.Message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")

	return cmd
}

func newGitPushCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push to origin/main",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			head := store.Snapshot().Git.Head
			if head == nil {
				return fmt.Errorf("nothing to push: no commits yet")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Pushing to origin/main...")
			_, err = task.Run(cmd.Context(), app.PushDelay, func() (struct{}, error) {
				return struct{}{}, nil
			})
			if err != nil {
				return fmt.Errorf("push cancelled: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pushed to origin/main")
			return nil
		},
	}
}

func newGitLogCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the last commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			git.WriteLog(cmd.OutOrStdout(), store.Snapshot().Git)
			return nil
		},
	}
}
