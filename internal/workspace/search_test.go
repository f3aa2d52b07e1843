package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

func TestSearchAcrossFiles(t *testing.T) {
	s := NewBuilder().AddFile("a.js", "foo\nbar").Build()

	results, err := s.SearchAcrossFiles("foo", models.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []models.SearchResult{
		{Path: "a.js", Matches: []models.LineMatch{{Line: 1, Preview: "foo"}}},
	}, results)

}

func TestSearchAcrossFiles_ChangesNothing(t *testing.T) {
	s := NewBuilder().AddFile("a.js", "foo").Build()
	before := s.Snapshot()

	notified := 0
	s.Subscribe(func(Snapshot) { notified++ })

	_, err := s.SearchAcrossFiles("foo", models.SearchOptions{})
	require.NoError(t, err)
	_, err = s.SearchAcrossFiles("zzz", models.SearchOptions{})
	require.NoError(t, err)

	after := s.Snapshot()
	require.Equal(t, before.Version, after.Version)
	require.Nil(t, after.LastSearch)
	require.Zero(t, notified)
}

func TestSetSearchQuery(t *testing.T) {
	s := New()
	q := models.SearchQuery{Query: "foo", Options: models.SearchOptions{UseRegex: true}}

	s.SetSearchQuery(q)
	snap := s.Snapshot()
	require.Equal(t, &q, snap.LastSearch)
	require.Equal(t, uint64(1), snap.Version)

	s.SetSearchQuery(q)
	require.Equal(t, uint64(1), s.Snapshot().Version)
}

func TestSearchAcrossFiles_FileOrder(t *testing.T) {
	s := NewBuilder().
		AddFile("z.js", "const Foo = 1").
		AddFile("a.js", "nothing here").
		AddFile("m.js", "x\n  foo()  ").
		Build()

	results, err := s.SearchAcrossFiles("foo", models.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "z.js", results[0].Path)
	require.Equal(t, "m.js", results[1].Path)
	require.Equal(t, models.LineMatch{Line: 2, Preview: "foo()"}, results[1].Matches[0])
}

func TestSearchAcrossFiles_BlankQuery(t *testing.T) {
	s := New()

	results, err := s.SearchAcrossFiles("   ", models.SearchOptions{})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchAcrossFiles_InvalidRegex(t *testing.T) {
	s := New()

	_, err := s.SearchAcrossFiles("(unclosed", models.SearchOptions{UseRegex: true})
	require.ErrorIs(t, err, models.ErrInvalidFormat)
	require.Nil(t, s.Snapshot().LastSearch)
}

func TestReplaceAcrossFiles(t *testing.T) {
	s := NewBuilder().
		AddFile("a.js", "var x = 1;\nvar y = 2;").
		AddFile("b.js", "let z = 3;").
		Build()

	summary, err := s.ReplaceAcrossFiles(`var (\w+)`, "const $1", models.SearchOptions{UseRegex: true, MatchCase: true})
	require.NoError(t, err)
	require.Equal(t, models.ReplaceSummary{Files: []string{"a.js"}, Replacements: 2}, summary)

	snap := s.Snapshot()
	content, _ := snap.Content("a.js")
	require.Equal(t, "const x = 1;\nconst y = 2;", content)
	require.Equal(t, []string{"a.js"}, snap.Git.Modified)
	require.Equal(t, "const $1", snap.LastSearch.Replace)
}

func TestReplaceAcrossFiles_EmptyQueryIsNoop(t *testing.T) {
	s := NewBuilder().AddFile("a.js", "foo").Build()
	before := s.Snapshot()

	summary, err := s.ReplaceAcrossFiles("", "bar", models.SearchOptions{})
	require.NoError(t, err)
	require.Empty(t, summary.Files)
	require.Zero(t, summary.Replacements)

	after := s.Snapshot()
	require.Equal(t, before.Version, after.Version)
	content, _ := after.Content("a.js")
	require.Equal(t, "foo", content)
}

func TestReplaceAcrossFiles_LiteralIsVerbatim(t *testing.T) {
	s := NewBuilder().AddFile("a.js", "price: X").Build()

	_, err := s.ReplaceAcrossFiles("x", "$1.00", models.SearchOptions{})
	require.NoError(t, err)

	content, _ := s.Snapshot().Content("a.js")
	require.Equal(t, "price: $1.00", content)
}
