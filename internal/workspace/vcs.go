package workspace

import (
	"log/slog"

	"github.com/jakoblorz/go-codebuilder/internal/git"
)

// StageAll moves every modified file to the staged set
func (s *Store) StageAll() {
	_ = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		if len(cur.Git.Modified) == 0 {
			return cur, false, nil
		}
		next := cur
		next.Git = cur.Git.StageAll()
		return next, true, nil
	})
}

// Commit clears the modified and staged sets and records a head commit.
// An empty message uses git.DefaultCommitMessage.
func (s *Store) Commit(message string) (*git.Commit, error) {
	var head *git.Commit
	err := s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		status, err := cur.Git.Commit(message, s.author, s.now())
		if err != nil {
			return cur, false, err
		}
		next := cur
		next.Git = status
		head = status.Head
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("committed", "hash", head.ShortHash(), "files", head.Files)
	return head, nil
}
