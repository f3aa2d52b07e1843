package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client implements GitHubClient using the real GitHub API
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// NewClientWithBaseURL creates a client talking to a GitHub Enterprise or
// test server at baseURL
func NewClientWithBaseURL(token, baseURL string) (*Client, error) {
	c := NewClient(token)

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	c.client.BaseURL = u
	return c, nil
}

var (
	ErrGitHubTokenNotFound = fmt.Errorf("GITHUB_TOKEN or GH_TOKEN environment variable not found")
)

// TokenFromEnv returns GH_TOKEN, falling back to GITHUB_TOKEN
func TokenFromEnv() string {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	return token
}

// NewClientFromEnv creates a GitHub client using the token from environment variables
func NewClientFromEnv() (*Client, error) {
	token := TokenFromEnv()
	if token == "" {
		return nil, ErrGitHubTokenNotFound
	}

	return NewClient(token), nil
}

func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	repository, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if isNotFound(resp, err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrRepositoryNotFound, owner, repo)
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return convertRepository(repository), nil
}

func (c *Client) CreateRepository(ctx context.Context, req *CreateRepositoryRequest) (*Repository, error) {
	repository, _, err := c.client.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(req.Name),
		Description: github.String(req.Description),
		Private:     github.Bool(req.Private),
		AutoInit:    github.Bool(req.AutoInit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repository %s: %w", req.Name, err)
	}
	return convertRepository(repository), nil
}

func (c *Client) GetBranchHead(ctx context.Context, owner, repo, branch string) (string, error) {
	ref, _, err := c.client.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("failed to get ref of branch %s: %w", branch, err)
	}
	return ref.GetObject().GetSHA(), nil
}

func (c *Client) GetCommitTree(ctx context.Context, owner, repo, commitSHA string) (string, error) {
	commit, _, err := c.client.Git.GetCommit(ctx, owner, repo, commitSHA)
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", commitSHA, err)
	}
	return commit.GetTree().GetSHA(), nil
}

func (c *Client) CreateBlob(ctx context.Context, owner, repo string, content []byte) (string, error) {
	blob, _, err := c.client.Git.CreateBlob(ctx, owner, repo, &github.Blob{
		Content:  github.String(base64.StdEncoding.EncodeToString(content)),
		Encoding: github.String("base64"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	return blob.GetSHA(), nil
}

func (c *Client) CreateTree(ctx context.Context, owner, repo, baseTree string, entries []TreeEntry) (string, error) {
	ghEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		ghEntries = append(ghEntries, &github.TreeEntry{
			Path: github.String(e.Path),
			Mode: github.String(e.Mode),
			Type: github.String("blob"),
			SHA:  github.String(e.SHA),
		})
	}

	tree, _, err := c.client.Git.CreateTree(ctx, owner, repo, baseTree, ghEntries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}
	return tree.GetSHA(), nil
}

func (c *Client) CreateCommit(ctx context.Context, owner, repo string, req *CreateCommitRequest) (string, error) {
	parents := make([]*github.Commit, 0, len(req.Parents))
	for _, p := range req.Parents {
		parents = append(parents, &github.Commit{SHA: github.String(p)})
	}

	commit, _, err := c.client.Git.CreateCommit(ctx, owner, repo, &github.Commit{
		Message: github.String(req.Message),
		Tree:    &github.Tree{SHA: github.String(req.Tree)},
		Parents: parents,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}
	return commit.GetSHA(), nil
}

func (c *Client) UpdateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	_, _, err := c.client.Git.UpdateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	}, false)
	if err != nil {
		return fmt.Errorf("failed to update branch %s: %w", branch, err)
	}
	return nil
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

func convertRepository(r *github.Repository) *Repository {
	return &Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		URL:           r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}
