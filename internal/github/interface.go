package github

import (
	"context"
	"errors"
)

// ErrRepositoryNotFound is returned by GetRepository when the repository
// does not exist
var ErrRepositoryNotFound = errors.New("repository not found")

// GitHubClient provides an abstraction over the GitHub API operations a
// deploy needs
type GitHubClient interface {
	// User operations
	AuthenticatedUser(ctx context.Context) (string, error)

	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
	CreateRepository(ctx context.Context, req *CreateRepositoryRequest) (*Repository, error)

	// Git data operations
	GetBranchHead(ctx context.Context, owner, repo, branch string) (string, error)
	GetCommitTree(ctx context.Context, owner, repo, commitSHA string) (string, error)
	CreateBlob(ctx context.Context, owner, repo string, content []byte) (string, error)
	CreateTree(ctx context.Context, owner, repo, baseTree string, entries []TreeEntry) (string, error)
	CreateCommit(ctx context.Context, owner, repo string, req *CreateCommitRequest) (string, error)
	UpdateBranch(ctx context.Context, owner, repo, branch, sha string) error
}

// Repository represents a GitHub repository
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	URL           string
	DefaultBranch string
}

// CreateRepositoryRequest represents a request to create a repository for
// the authenticated user
type CreateRepositoryRequest struct {
	Name        string
	Description string
	Private     bool
	AutoInit    bool
}

// TreeEntry is one file of a tree to create
type TreeEntry struct {
	Path string
	Mode string
	SHA  string
}

// CreateCommitRequest represents a request to create a commit object
type CreateCommitRequest struct {
	Message string
	Tree    string
	Parents []string
}
