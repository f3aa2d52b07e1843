// Package git simulates the version-control state of a workspace: which
// files are modified or staged and the last commit. Nothing is written to
// a real repository.
package git

import (
	"fmt"
	"slices"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const hashAlphabet = "0123456789abcdef"

// DefaultCommitMessage is used when a commit is made without a message
const DefaultCommitMessage = "Update workspace files"

// Commit is the record of the most recent simulated commit
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Files   int       `json:"files"`
}

// ShortHash returns the first seven characters of the hash
func (c *Commit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// Status holds two disjoint, ordered path sets plus the last commit.
//
// Status is a value type; methods return a modified copy.
type Status struct {
	Modified []string `json:"modified"`
	Staged   []string `json:"staged"`
	Head     *Commit  `json:"head,omitempty"`
}

// IsClean reports whether nothing is modified or staged
func (s Status) IsClean() bool {
	return len(s.Modified) == 0 && len(s.Staged) == 0
}

// MarkModified records a write to path. Staged paths stay staged.
func (s Status) MarkModified(path string) Status {
	if slices.Contains(s.Staged, path) || slices.Contains(s.Modified, path) {
		return s
	}
	next := s.clone()
	next.Modified = append(next.Modified, path)
	return next
}

// Forget drops path and everything under it from both sets
func (s Status) Forget(path string) Status {
	prefix := path + "/"
	match := func(p string) bool { return p == path || strings.HasPrefix(p, prefix) }

	next := s.clone()
	next.Modified = slices.DeleteFunc(next.Modified, match)
	next.Staged = slices.DeleteFunc(next.Staged, match)
	return next
}

// StageAll moves every modified path into the staged set
func (s Status) StageAll() Status {
	next := s.clone()
	for _, p := range next.Modified {
		if !slices.Contains(next.Staged, p) {
			next.Staged = append(next.Staged, p)
		}
	}
	next.Modified = []string{}
	return next
}

// Commit clears both sets and records a new head commit
func (s Status) Commit(message, author string, now time.Time) (Status, error) {
	if strings.TrimSpace(message) == "" {
		message = DefaultCommitMessage
	}

	hash, err := gonanoid.Generate(hashAlphabet, 40)
	if err != nil {
		return s, fmt.Errorf("failed to generate commit hash: %w", err)
	}

	return Status{
		Modified: []string{},
		Staged:   []string{},
		Head: &Commit{
			Hash:    hash,
			Message: strings.TrimSpace(message),
			Author:  author,
			Date:    now,
			Files:   len(s.Modified) + len(s.Staged),
		},
	}, nil
}

// Reset clears both sets and keeps the head commit
func (s Status) Reset() Status {
	return Status{Modified: []string{}, Staged: []string{}, Head: s.Head}
}

func (s Status) clone() Status {
	return Status{
		Modified: append([]string{}, s.Modified...),
		Staged:   append([]string{}, s.Staged...),
		Head:     s.Head,
	}
}
