package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/mirror"
)

// NewSyncCommand creates the sync command with its subcommands
func NewSyncCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy the workspace to or from a directory",
	}

	cmd.AddCommand(newSyncInCommand(app), newSyncOutCommand(app))

	return cmd
}

// newMirror roots a mirror at dir, skipping the session directory
func newMirror(app *App, dir string) (*mirror.Mirror, error) {
	root, err := app.Resolve(dir)
	if err != nil {
		return nil, err
	}
	sessions, err := app.Sessions()
	if err != nil {
		return nil, err
	}
	return mirror.New(app.FS, root, mirror.WithSkipDirs(filepath.Base(filepath.Dir(sessions.Path()))))
}

func newSyncInCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "in [dir]",
		Short: "Replace the workspace with the text files of a directory",
		Long: `Reads every text file below dir (default: the working directory) into the
workspace. .gitignore, .git, node_modules, vendor, binary and large files
are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			m, err := newMirror(app, dir)
			if err != nil {
				return err
			}
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			n, err := m.Import(store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d file(s) from %s\n", n, m.Root())
			return nil
		},
	}
}

func newSyncOutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "out <dir>",
		Short: "Write every folder and file of the workspace below a directory",
		Long:  `Writes the workspace below dir. Files on disk that are not in the workspace are left alone.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMirror(app, args[0])
			if err != nil {
				return err
			}
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			n, err := m.Write(store.Snapshot())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d file(s) to %s\n", n, m.Root())
			return nil
		},
	}
}
