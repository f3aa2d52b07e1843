package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/terminal"
	"github.com/jakoblorz/go-codebuilder/internal/tui"
)

// shellRunner runs an interactive terminal until the user quits
type shellRunner func(ctx context.Context, term *terminal.Terminal) error

// NewShellCommand creates the shell command
func NewShellCommand(app *App) *cobra.Command {
	var commands []string
	var logPath string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open the workspace terminal",
		Long: `Opens the simulated terminal: ls, cat, run, npm/bun install, git status and
more (type "help").

With -c, or when standard input is not a terminal, commands are read from
the flags or from standard input and their output is printed.`,
		Example: `  codebuilder shell
  codebuilder shell -c ls -c "run"
  echo "npm install react" | codebuilder shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}
			term := app.Terminal(store)

			switch {
			case len(commands) > 0:
				for _, line := range commands {
					writeLines(cmd.OutOrStdout(), term.Execute(cmd.Context(), line), app.Color)
				}
			case app.Interactive:
				if err := app.Shell(cmd.Context(), term); err != nil {
					return fmt.Errorf("shell failed: %w", err)
				}
			default:
				scanner := bufio.NewScanner(app.Stdin)
				for scanner.Scan() {
					line := scanner.Text()
					if strings.TrimSpace(line) == "exit" {
						break
					}
					writeLines(cmd.OutOrStdout(), term.Execute(cmd.Context(), line), app.Color)
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read commands: %w", err)
				}
			}

			if logPath == "" {
				return nil
			}
			return writeTerminalLog(app, logPath, term.Lines())
		},
	}

	cmd.Flags().StringArrayVarP(&commands, "exec", "c", nil, "Run a command and print its output (repeatable)")
	cmd.Flags().StringVar(&logPath, "log", "", "Save the terminal output to a file when done")

	return cmd
}

func writeLines(w io.Writer, lines []terminal.Line, color bool) {
	for _, l := range lines {
		if color {
			fmt.Fprintln(w, tui.LineStyle(l.Type).Render(l.Content))
			continue
		}
		fmt.Fprintln(w, l.Content)
	}
}

func writeTerminalLog(app *App, p string, lines []terminal.Line) error {
	target, err := app.Resolve(p)
	if err != nil {
		return err
	}
	var b strings.Builder
	if err := terminal.WriteLog(&b, lines); err != nil {
		return err
	}
	b.WriteString("\n")
	if err := app.FS.WriteFile(target, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write terminal log: %w", err)
	}
	return nil
}
