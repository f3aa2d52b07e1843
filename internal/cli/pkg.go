package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/task"
	"github.com/jakoblorz/go-codebuilder/internal/terminal"
)

// NewPkgCommand creates the pkg command with its subcommands
func NewPkgCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pkg",
		Aliases: []string{"packages"},
		Short:   "Manage the package list of the workspace",
	}

	cmd.AddCommand(
		newPkgAddCommand(app),
		newPkgRemoveCommand(app),
		newPkgListCommand(app),
	)

	return cmd
}

// parsePackageArgs accepts "name", "name@version" or "name version". A
// leading @ belongs to a scoped package name.
func parsePackageArgs(args []string) (string, string) {
	if len(args) == 2 {
		return args[0], args[1]
	}
	return terminal.SplitPackageSpec(args[0])
}

func newPkgAddCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "add <name>[@version] [version]",
		Aliases: []string{"install"},
		Short:   "Install a package (default version: latest)",
		Example: `  codebuilder pkg add react
  codebuilder pkg add lodash@^4.17.21
  codebuilder pkg add @types/node 20.10.0`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			name, version := parsePackageArgs(args)
			fmt.Fprintf(cmd.OutOrStdout(), "Installing %s...\n", name)
			entry, err := task.Run(cmd.Context(), app.InstallDelay, func() (models.PackageEntry, error) {
				return store.InstallPackage(name, version)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Installed %s@%s\n", entry.Name, entry.Version)
			return nil
		},
	}
}

func newPkgRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove", "uninstall"},
		Short:   "Remove a package",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			if !store.RemovePackage(args[0]) {
				return models.NewError(models.KindNotFound, args[0], "package not installed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newPkgListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List installed packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			packages := store.Snapshot().Packages
			if len(packages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No packages installed")
				return nil
			}
			for _, p := range packages {
				fmt.Fprintf(cmd.OutOrStdout(), "%s@%s\n", p.Name, p.Version)
			}
			return nil
		},
	}
}
