package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codebuilder",
		Short: "A workspace of files you can edit, run, search and deploy",
		Long: `codebuilder keeps a small project workspace: a file tree with contents,
open tabs, simulated git and package state.

The workspace is stored in the session directory of the current folder and
survives between invocations. Start from a template with "codebuilder new",
edit files, run them in the shell, preview them with "codebuilder serve"
and deploy them to GitHub.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Save()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/codebuilder/config.toml)")
	rootCmd.PersistentFlags().StringVar(&app.sessionDir, "session-dir", "", "Session directory (default from config, .codebuilder)")
	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	// Add subcommands
	rootCmd.AddCommand(NewNewCommand(app))
	rootCmd.AddCommand(NewAddCommand(app))
	rootCmd.AddCommand(NewRemoveCommand(app))
	rootCmd.AddCommand(NewWriteCommand(app))
	rootCmd.AddCommand(NewEditCommand(app))
	rootCmd.AddCommand(NewOpenCommand(app))
	rootCmd.AddCommand(NewCloseCommand(app))
	rootCmd.AddCommand(NewTabsCommand(app))
	rootCmd.AddCommand(NewCatCommand(app))
	rootCmd.AddCommand(NewTreeCommand(app))
	rootCmd.AddCommand(NewFilesCommand(app))
	rootCmd.AddCommand(NewSearchCommand(app))
	rootCmd.AddCommand(NewReplaceCommand(app))
	rootCmd.AddCommand(NewExportCommand(app))
	rootCmd.AddCommand(NewImportCommand(app))
	rootCmd.AddCommand(NewPreviewCommand(app))
	rootCmd.AddCommand(NewResetCommand(app))
	rootCmd.AddCommand(NewGitCommand(app))
	rootCmd.AddCommand(NewPkgCommand(app))
	rootCmd.AddCommand(NewAICommand(app))
	rootCmd.AddCommand(NewDeployCommand(app))
	rootCmd.AddCommand(NewShellCommand(app))
	rootCmd.AddCommand(NewSyncCommand(app))
	rootCmd.AddCommand(NewServeCommand(app))
	rootCmd.AddCommand(NewConfigCommand(app))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context, app *App, args []string) error {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
