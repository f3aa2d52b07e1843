package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
)

const (
	// DefaultMessageTemplate renders the deploy commit message
	DefaultMessageTemplate = `Deploy from CodeBuilder Pro - {{ dateInZone "2006-01-02T15:04:05.000Z07:00" .Time "UTC" }}`

	// SuccessMessage is reported after a deploy
	SuccessMessage = "Successfully deployed to GitHub!"

	// DefaultConcurrency bounds parallel blob uploads
	DefaultConcurrency = 4

	fileMode = "100644"
)

// MessageData is passed to the commit message template
type MessageData struct {
	Time  time.Time
	Repo  string
	Owner string
	Files int
}

// Result describes a finished deploy
type Result struct {
	URL     string
	Message string
	Commit  string
	Created bool
}

// Deployer pushes a set of files as one commit onto the default branch of
// a repository owned by the authenticated user, creating the repository
// when it does not exist.
type Deployer struct {
	client      GitHubClient
	now         func() time.Time
	message     *template.Template
	concurrency int
}

// DeployerOption configures a Deployer
type DeployerOption func(*Deployer) error

// WithClock sets the time used in the commit message
func WithClock(now func() time.Time) DeployerOption {
	return func(d *Deployer) error {
		d.now = now
		return nil
	}
}

// WithMessageTemplate replaces DefaultMessageTemplate. Sprig functions are
// available.
func WithMessageTemplate(text string) DeployerOption {
	return func(d *Deployer) error {
		tmpl, err := parseMessageTemplate(text)
		if err != nil {
			return err
		}
		d.message = tmpl
		return nil
	}
}

// WithConcurrency bounds parallel blob uploads
func WithConcurrency(n int) DeployerOption {
	return func(d *Deployer) error {
		if n > 0 {
			d.concurrency = n
		}
		return nil
	}
}

// NewDeployer creates a Deployer using client
func NewDeployer(client GitHubClient, options ...DeployerOption) (*Deployer, error) {
	tmpl, err := parseMessageTemplate(DefaultMessageTemplate)
	if err != nil {
		return nil, err
	}

	d := &Deployer{
		client:      client,
		now:         time.Now,
		message:     tmpl,
		concurrency: DefaultConcurrency,
	}
	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func parseMessageTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("message").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse commit message template: %w", err)
	}
	return tmpl, nil
}

// Deploy commits files to repoName. Files keep their order in the created
// tree. Any API failure is returned as an ExternalCallFailed error.
func (d *Deployer) Deploy(ctx context.Context, repoName string, files []pathtable.Entry) (*Result, error) {
	repoName = strings.TrimSpace(repoName)
	if repoName == "" {
		return nil, models.NewError(models.KindInvalidFormat, "", "Please enter a repository name")
	}

	result, err := d.deploy(ctx, repoName, files)
	if err != nil {
		slog.WarnContext(ctx, "deploy failed", "repo", repoName, "err", err)
		return nil, models.WrapError(models.KindExternalCallFailed, "Failed to deploy to GitHub", err)
	}
	return result, nil
}

func (d *Deployer) deploy(ctx context.Context, repoName string, files []pathtable.Entry) (*Result, error) {
	owner, err := d.client.AuthenticatedUser(ctx)
	if err != nil {
		return nil, err
	}

	created := false
	repo, err := d.client.GetRepository(ctx, owner, repoName)
	if errors.Is(err, ErrRepositoryNotFound) {
		slog.InfoContext(ctx, "creating repository", "repo", repoName)
		repo, err = d.client.CreateRepository(ctx, &CreateRepositoryRequest{
			Name:     repoName,
			AutoInit: true,
			Private:  false,
		})
		created = true
	}
	if err != nil {
		return nil, err
	}

	branch := repo.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	head, err := d.client.GetBranchHead(ctx, owner, repoName, branch)
	if err != nil {
		return nil, err
	}
	baseTree, err := d.client.GetCommitTree(ctx, owner, repoName, head)
	if err != nil {
		return nil, err
	}

	entries, err := d.uploadBlobs(ctx, owner, repoName, files)
	if err != nil {
		return nil, err
	}

	tree, err := d.client.CreateTree(ctx, owner, repoName, baseTree, entries)
	if err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	if err := d.message.Execute(&msg, MessageData{Time: d.now(), Repo: repoName, Owner: owner, Files: len(files)}); err != nil {
		return nil, fmt.Errorf("failed to render commit message: %w", err)
	}

	commit, err := d.client.CreateCommit(ctx, owner, repoName, &CreateCommitRequest{
		Message: msg.String(),
		Tree:    tree,
		Parents: []string{head},
	})
	if err != nil {
		return nil, err
	}

	if err := d.client.UpdateBranch(ctx, owner, repoName, branch, commit); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "deployed", "repo", repo.FullName, "files", len(files), "commit", commit)
	return &Result{URL: repo.URL, Message: SuccessMessage, Commit: commit, Created: created}, nil
}

// uploadBlobs creates one blob per file in parallel and returns the tree
// entries in file order
func (d *Deployer) uploadBlobs(ctx context.Context, owner, repo string, files []pathtable.Entry) ([]TreeEntry, error) {
	entries := make([]TreeEntry, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, f := range files {
		g.Go(func() error {
			sha, err := d.client.CreateBlob(ctx, owner, repo, []byte(f.Content))
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", f.Path, err)
			}
			entries[i] = TreeEntry{Path: f.Path, Mode: fileMode, SHA: sha}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
