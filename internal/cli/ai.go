package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/ai"
	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// NewAICommand creates the ai command
func NewAICommand(app *App) *cobra.Command {
	var file string
	var apply bool

	cmd := &cobra.Command{
		Use:   "ai <suggest|explain|fix> [text...]",
		Short: "Ask the assistant about the active file",
		Long: `Sends the active file (or --file) to OpenRouter.

  suggest <request>  propose a change; --apply writes the returned code
  explain            explain the code
  fix [error]        fix the code, optionally given an error message`,
		Example: `  codebuilder ai suggest add input validation
  codebuilder ai fix --apply "TypeError: x is undefined"`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{string(ai.ActionSuggest), string(ai.ActionExplain), string(ai.ActionFix)},
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := ai.ParseAction(args[0])
			if err != nil {
				return err
			}
			if apply && action == ai.ActionExplain {
				return fmt.Errorf("--apply cannot be used with explain")
			}

			client, err := app.AIClient()
			if err != nil {
				return err
			}
			store, err := app.Workspace()
			if err != nil {
				return err
			}

			snap := store.Snapshot()
			req := ai.Request{Action: action, Prompt: strings.Join(args[1:], " ")}
			if file != "" {
				req.Path = strings.Trim(file, "/")
				content, ok := snap.Content(req.Path)
				if !ok {
					return models.NewError(models.KindNotFound, req.Path, "file not found")
				}
				req.Code = content
			} else if p, content, ok := snap.ActiveFile(); ok {
				req.Path, req.Code = p, content
			}

			answer, err := client.Do(cmd.Context(), req)
			if err != nil {
				return err
			}

			if !apply {
				fmt.Fprintln(cmd.OutOrStdout(), answer)
				return nil
			}

			store.UpdateContent(req.Path, ai.ExtractCode(answer))
			fmt.Fprintf(cmd.OutOrStdout(), "Applied suggestion to %s\n", req.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File to send instead of the active one")
	cmd.Flags().BoolVar(&apply, "apply", false, "Replace the file with the returned code")

	return cmd
}
