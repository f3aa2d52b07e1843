package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/preview"
	"github.com/jakoblorz/go-codebuilder/internal/tui/prompt"
)

// NewNewCommand creates the new command
func NewNewCommand(app *App) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:     "new [template]",
		Aliases: []string{"template"},
		Short:   "Replace the workspace with a starter template",
		Long: `Replaces every file with the files of a starter template and opens them.

Run without an argument in a terminal to pick the template interactively.`,
		Example: `  codebuilder new react
  codebuilder new --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, tpl := range app.Catalog.List() {
					fmt.Fprintf(out, "%-14s %s: %s\n", tpl.ID, tpl.Name, tpl.Description)
				}
				return nil
			}

			id := ""
			if len(args) == 1 {
				id = args[0]
			} else {
				if !app.Interactive {
					return fmt.Errorf("template is required (one of: %s)", strings.Join(app.Catalog.IDs(), ", "))
				}
				picked, err := app.Prompter.PickTemplate(app.Catalog.List())
				if err != nil {
					return err
				}
				if picked == "" {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
				id = picked
			}

			store, err := app.Workspace()
			if err != nil {
				return err
			}
			tpl, err := store.ApplyTemplate(id)
			if err != nil {
				return err
			}

			fmt.Fprint(out, prompt.RenderTemplateApplied(tpl))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the available templates")

	return cmd
}

// NewExportCommand creates the export command
func NewExportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the project as a JSON document",
		Long: `Writes {"fileContents": {...}} with every file. Without a file, or with
"-", the document goes to standard output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			data, err := store.ExportProject()
			if err != nil {
				return err
			}

			if len(args) == 0 || args[0] == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}

			target, err := app.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := app.FS.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if err := app.FS.WriteFile(target, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d file(s) to %s\n", len(store.Snapshot().Files()), args[0])
			return nil
		},
	}
}

// NewImportCommand creates the import command
func NewImportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the workspace with an exported JSON document",
		Long:  `Reads a document written by export ("-" reads standard input) and replaces every file with its content.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if args[0] == "-" {
				b, err := io.ReadAll(app.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				data = b
			} else {
				source, err := app.Resolve(args[0])
				if err != nil {
					return err
				}
				b, err := app.FS.ReadFile(source)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				data = b
			}

			store, err := app.Workspace()
			if err != nil {
				return err
			}
			if err := store.ImportProject(data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d file(s)\n", len(store.Snapshot().Files()))
			return nil
		},
	}
}

// NewPreviewCommand creates the preview command
func NewPreviewCommand(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the live preview page",
		Long: `Renders the page the preview pane shows: index.html with the stylesheet and
script inlined, or a placeholder when there is no page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			page, kind := preview.Render(store.Snapshot().Table)
			if out == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), page)
				return err
			}

			target, err := app.Resolve(out)
			if err != nil {
				return err
			}
			if err := app.FS.WriteFile(target, []byte(page), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s preview to %s\n", kind, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the page to a file")

	return cmd
}

// NewResetCommand creates the reset command
func NewResetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the saved session and start from the seed workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.Sessions()
			if err != nil {
				return err
			}
			if err := sessions.Reset(); err != nil {
				return err
			}
			app.discard()
			fmt.Fprintln(cmd.OutOrStdout(), "Session reset")
			return nil
		},
	}
}
