package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

func addSearchFlags(cmd *cobra.Command, opts *models.SearchOptions) {
	cmd.Flags().BoolVarP(&opts.MatchCase, "case", "c", false, "Match case")
	cmd.Flags().BoolVarP(&opts.UseRegex, "regex", "r", false, "Treat the query as a regular expression")
}

// NewSearchCommand creates the search command
func NewSearchCommand(app *App) *cobra.Command {
	var opts models.SearchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find matching lines across all files",
		Example: `  codebuilder search useState
  codebuilder search -r 'console\.(log|warn)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			results, err := store.SearchAcrossFiles(args[0], opts)
			if err != nil {
				return err
			}
			writeResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	addSearchFlags(cmd, &opts)

	return cmd
}

func writeResults(w io.Writer, results []models.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}

	total := 0
	for _, r := range results {
		fmt.Fprintln(w, r.Path)
		for _, m := range r.Matches {
			fmt.Fprintf(w, "  %4d: %s\n", m.Line, m.Preview)
		}
		total += len(r.Matches)
	}
	fmt.Fprintf(w, "%d match(es) in %d file(s)\n", total, len(results))
}

// NewReplaceCommand creates the replace command
func NewReplaceCommand(app *App) *cobra.Command {
	var opts models.SearchOptions

	cmd := &cobra.Command{
		Use:   "replace <query> <replacement>",
		Short: "Replace every match across all files",
		Long: `Replaces every match of the query in every file. Rewritten files are marked
modified. With --regex the replacement may reference groups as $1.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			summary, err := store.ReplaceAcrossFiles(args[0], args[1], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range summary.Files {
				fmt.Fprintf(out, "  %s\n", p)
			}
			fmt.Fprintf(out, "Replaced %d occurrence(s) in %d file(s)\n", summary.Replacements, len(summary.Files))
			return nil
		},
	}

	addSearchFlags(cmd, &opts)

	return cmd
}
