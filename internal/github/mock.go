package github

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
)

// MockCommit is a commit stored by MockClient
type MockCommit struct {
	Message string
	Tree    string
	Parents []string
}

// MockClient implements GitHubClient for testing. It keeps an in-memory git
// object store: blobs, flattened trees, commits and branch heads.
type MockClient struct {
	mu           sync.RWMutex
	user         string
	repositories map[string]*Repository       // key: "owner/repo"
	blobs        map[string][]byte            // key: sha
	trees        map[string]map[string]string // key: sha, value: path -> blob sha
	commits      map[string]*MockCommit       // key: sha
	heads        map[string]string            // key: "owner/repo/branch"

	// BlobCalls counts CreateBlob calls
	BlobCalls int

	// Hooks for testing error scenarios
	AuthenticatedUserError error
	GetRepositoryError     error
	CreateRepositoryError  error
	CreateBlobError        error
	CreateTreeError        error
	CreateCommitError      error
	UpdateBranchError      error
}

// NewMockClient creates a new MockClient authenticated as user
func NewMockClient(user string) *MockClient {
	return &MockClient{
		user:         user,
		repositories: make(map[string]*Repository),
		blobs:        make(map[string][]byte),
		trees:        map[string]map[string]string{hashObject("tree", nil): {}},
		commits:      make(map[string]*MockCommit),
		heads:        make(map[string]string),
	}
}

// SetupRepository adds an initialized repository with one empty commit on
// its default branch
func (m *MockClient) SetupRepository(owner, repo string) *Repository {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setupRepository(owner, repo)
}

func (m *MockClient) setupRepository(owner, repo string) *Repository {
	key := fmt.Sprintf("%s/%s", owner, repo)
	r := &Repository{
		Owner:         owner,
		Name:          repo,
		FullName:      key,
		URL:           fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		DefaultBranch: "main",
	}
	m.repositories[key] = r

	commit := &MockCommit{Message: "Initial commit", Tree: hashObject("tree", nil)}
	sha := commitSHA(commit)
	m.commits[sha] = commit
	m.heads[key+"/main"] = sha
	return r
}

func (m *MockClient) AuthenticatedUser(ctx context.Context) (string, error) {
	if m.AuthenticatedUserError != nil {
		return "", m.AuthenticatedUserError
	}
	return m.user, nil
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	repository, exists := m.repositories[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, key)
	}

	return repository, nil
}

func (m *MockClient) CreateRepository(ctx context.Context, req *CreateRepositoryRequest) (*Repository, error) {
	if m.CreateRepositoryError != nil {
		return nil, m.CreateRepositoryError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", m.user, req.Name)
	if _, exists := m.repositories[key]; exists {
		return nil, fmt.Errorf("repository %s already exists", key)
	}
	if !req.AutoInit {
		return nil, fmt.Errorf("mock only supports initialized repositories")
	}
	return m.setupRepository(m.user, req.Name), nil
}

func (m *MockClient) GetBranchHead(ctx context.Context, owner, repo, branch string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sha, ok := m.heads[fmt.Sprintf("%s/%s/%s", owner, repo, branch)]
	if !ok {
		return "", fmt.Errorf("branch %s not found", branch)
	}
	return sha, nil
}

func (m *MockClient) GetCommitTree(ctx context.Context, owner, repo, sha string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commit, ok := m.commits[sha]
	if !ok {
		return "", fmt.Errorf("commit %s not found", sha)
	}
	return commit.Tree, nil
}

func (m *MockClient) CreateBlob(ctx context.Context, owner, repo string, content []byte) (string, error) {
	if m.CreateBlobError != nil {
		return "", m.CreateBlobError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.BlobCalls++
	sha := hashObject("blob", content)
	m.blobs[sha] = append([]byte(nil), content...)
	return sha, nil
}

func (m *MockClient) CreateTree(ctx context.Context, owner, repo, baseTree string, entries []TreeEntry) (string, error) {
	if m.CreateTreeError != nil {
		return "", m.CreateTreeError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	base, ok := m.trees[baseTree]
	if !ok {
		return "", fmt.Errorf("tree %s not found", baseTree)
	}

	files := maps.Clone(base)
	for _, e := range entries {
		if _, ok := m.blobs[e.SHA]; !ok {
			return "", fmt.Errorf("blob %s not found", e.SHA)
		}
		files[e.Path] = e.SHA
	}

	sha := treeSHA(files)
	m.trees[sha] = files
	return sha, nil
}

func (m *MockClient) CreateCommit(ctx context.Context, owner, repo string, req *CreateCommitRequest) (string, error) {
	if m.CreateCommitError != nil {
		return "", m.CreateCommitError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trees[req.Tree]; !ok {
		return "", fmt.Errorf("tree %s not found", req.Tree)
	}
	commit := &MockCommit{Message: req.Message, Tree: req.Tree, Parents: append([]string(nil), req.Parents...)}
	sha := commitSHA(commit)
	m.commits[sha] = commit
	return sha, nil
}

func (m *MockClient) UpdateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	if m.UpdateBranchError != nil {
		return m.UpdateBranchError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.commits[sha]; !ok {
		return fmt.Errorf("commit %s not found", sha)
	}
	m.heads[fmt.Sprintf("%s/%s/%s", owner, repo, branch)] = sha
	return nil
}

// Files returns the file contents at the head of branch (helper for testing)
func (m *MockClient) Files(owner, repo, branch string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	head, ok := m.heads[fmt.Sprintf("%s/%s/%s", owner, repo, branch)]
	if !ok {
		return nil
	}
	out := map[string]string{}
	for path, blob := range m.trees[m.commits[head].Tree] {
		out[path] = string(m.blobs[blob])
	}
	return out
}

// HeadCommit returns the commit at the head of branch (helper for testing)
func (m *MockClient) HeadCommit(owner, repo, branch string) *MockCommit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.commits[m.heads[fmt.Sprintf("%s/%s/%s", owner, repo, branch)]]
}

func hashObject(kind string, content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", kind, len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func treeSHA(files map[string]string) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "%s %s\n", p, files[p])
	}
	return hashObject("tree", []byte(b.String()))
}

func commitSHA(c *MockCommit) string {
	return hashObject("commit", []byte(fmt.Sprintf("tree %s\nparents %s\n\n%s", c.Tree, strings.Join(c.Parents, " "), c.Message)))
}
