package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/config"
	"github.com/jakoblorz/go-codebuilder/internal/github"
)

// NewConfigCommand creates the config command with its subcommands
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change settings",
		Long: `Settings are stored in a TOML file (see "config path"). OPENROUTER_API_KEY,
GH_TOKEN, GITHUB_TOKEN and CODEBUILDER_MODEL override the file.`,
	}

	cmd.AddCommand(
		newConfigGetCommand(app),
		newConfigSetCommand(app),
		newConfigListCommand(app),
		newConfigPathCommand(app),
	)

	return cmd
}

func newConfigGetCommand(app *App) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:       "get <key>",
		Short:     "Print the effective value of a setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0], reveal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print secrets unmasked")

	return cmd
}

func newConfigSetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Store a setting in the config file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.ConfigPath()
			if err != nil {
				return err
			}
			// the file without environment overrides, so they are not persisted
			cfg, err := config.Load(app.FS, path)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if key == "commit_template" {
				if _, err := github.NewDeployer(nil, github.WithMessageTemplate(value)); err != nil {
					return err
				}
			}
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := cfg.Save(app.FS, path); err != nil {
				return err
			}

			shown, _ := cfg.Get(key, false)
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, shown)
			return nil
		},
	}
}

func newConfigListCommand(app *App) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			for _, key := range config.Keys() {
				v, _ := cfg.Get(key, reveal)
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", key, v)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print secrets unmasked")

	return cmd
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
