package git

import (
	"bytes"
	"testing"
	"time"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

func TestStatus_MarkModified(t *testing.T) {
	s := Status{}.MarkModified("a.js").MarkModified("a.js").MarkModified("b.js")
	require.Equal(t, []string{"a.js", "b.js"}, s.Modified)

	staged := s.StageAll()
	require.Equal(t, staged, staged.MarkModified("a.js"), "staged paths are not marked modified again")
}

func TestStatus_StageAll(t *testing.T) {
	s := Status{Staged: []string{"a.js"}, Modified: []string{"a.js", "b.js"}}

	next := s.StageAll()
	require.Empty(t, next.Modified)
	require.Equal(t, []string{"a.js", "b.js"}, next.Staged)

	// The receiver is untouched
	require.Equal(t, []string{"a.js", "b.js"}, s.Modified)
}

func TestStatus_Commit(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := Status{Modified: []string{"b.js"}, Staged: []string{"a.js"}}

	next, err := s.Commit("  add feature ", "Developer <dev@example.com>", now)
	require.NoError(t, err)
	require.True(t, next.IsClean())
	require.NotNil(t, next.Head)
	require.Len(t, next.Head.Hash, 40)
	require.Len(t, next.Head.ShortHash(), 7)
	require.Equal(t, "add feature", next.Head.Message)
	require.Equal(t, 2, next.Head.Files)
	require.Equal(t, now, next.Head.Date)
}

func TestStatus_CommitDefaultMessage(t *testing.T) {
	next, err := Status{}.Commit("", "dev", time.Now())
	require.NoError(t, err)
	require.Equal(t, DefaultCommitMessage, next.Head.Message)
}

func TestStatus_Forget(t *testing.T) {
	s := Status{
		Modified: []string{"src/a.js", "srcx.js"},
		Staged:   []string{"src/lib/b.js", "README.md"},
	}

	next := s.Forget("src")
	require.Equal(t, []string{"srcx.js"}, next.Modified)
	require.Equal(t, []string{"README.md"}, next.Staged)
	require.Len(t, s.Modified, 2)
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	WriteStatus(&buf, Status{Modified: []string{"src/index.js"}, Staged: []string{"index.html"}})

	snaps.MatchSnapshot(t, buf.String())
}

func TestWriteStatus_Clean(t *testing.T) {
	var buf bytes.Buffer
	WriteStatus(&buf, Status{})

	require.Contains(t, buf.String(), "nothing to commit, working tree clean")
}

func TestWriteLog(t *testing.T) {
	var buf bytes.Buffer
	WriteLog(&buf, Status{})
	require.Contains(t, buf.String(), "does not have any commits yet")

	buf.Reset()
	WriteLog(&buf, Status{Head: &Commit{
		Hash:    "abc1234def",
		Message: "Initial commit",
		Author:  "Developer <dev@example.com>",
		Date:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}})
	require.Contains(t, buf.String(), "commit abc1234def (HEAD -> main)")
	require.Contains(t, buf.String(), "Date:   Wed May 1 12:00:00 2024 +0000")
	require.Contains(t, buf.String(), "    Initial commit")
}
