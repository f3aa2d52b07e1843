package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakoblorz/go-codebuilder/internal/github"
	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// NewDeployCommand creates the deploy command
func NewDeployCommand(app *App) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Push every file to a GitHub repository",
		Long: `Commits every file as one commit onto the default branch of a repository
owned by the token's user. The repository is created when it does not exist.

The token comes from github_token in the config, GH_TOKEN or GITHUB_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			if cfg.GitHubToken == "" {
				return models.NewError(models.KindMissingCredential, "", "Please set your GitHub token first")
			}
			if repo == "" {
				repo = cfg.RepoName
			}

			options := []github.DeployerOption{github.WithClock(app.Now)}
			if cfg.CommitTemplate != "" {
				options = append(options, github.WithMessageTemplate(cfg.CommitTemplate))
			}
			deployer, err := github.NewDeployer(app.GitHub(cfg.GitHubToken), options...)
			if err != nil {
				return err
			}

			store, err := app.Workspace()
			if err != nil {
				return err
			}
			files := store.Snapshot().FileEntries()

			fmt.Fprintf(cmd.OutOrStdout(), "Deploying %d file(s) to %s...\n", len(files), repo)
			result, err := deployer.Deploy(cmd.Context(), repo, files)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Created {
				fmt.Fprintf(out, "Created repository %s\n", result.URL)
			}
			fmt.Fprintln(out, result.Message)
			fmt.Fprintf(out, "  %s (commit %s)\n", result.URL, shortSHA(result.Commit))
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (default from config)")

	return cmd
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
