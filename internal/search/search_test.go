package search

import (
	"strings"
	"testing"

	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, query string, opts models.SearchOptions) *Pattern {
	t.Helper()
	p, err := Compile(query, opts)
	require.NoError(t, err)
	return p
}

func TestFind_CaseInsensitiveLiteral(t *testing.T) {
	entries := []pathtable.Entry{{Path: "a.js", Content: "foo\nbar"}}

	results, err := Find(entries, compile(t, "foo", models.SearchOptions{}))
	require.NoError(t, err)
	require.Equal(t, []models.SearchResult{
		{Path: "a.js", Matches: []models.LineMatch{{Line: 1, Preview: "foo"}}},
	}, results)
}

func TestFind_MatchCase(t *testing.T) {
	entries := []pathtable.Entry{{Path: "a.js", Content: "Foo\nfoo"}}

	results, err := Find(entries, compile(t, "Foo", models.SearchOptions{MatchCase: true}))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, []models.LineMatch{{Line: 1, Preview: "Foo"}}, results[0].Matches)

	results, err = Find(entries, compile(t, "Foo", models.SearchOptions{}))
	require.NoError(t, err)
	require.Len(t, results[0].Matches, 2)
}

func TestFind_LiteralEscapesSpecialCharacters(t *testing.T) {
	entries := []pathtable.Entry{{Path: "a.js", Content: "a.b\naxb\nfn(x) + 1"}}

	results, err := Find(entries, compile(t, "a.b", models.SearchOptions{}))
	require.NoError(t, err)
	require.Equal(t, []models.LineMatch{{Line: 1, Preview: "a.b"}}, results[0].Matches)

	results, err = Find(entries, compile(t, "fn(x) +", models.SearchOptions{}))
	require.NoError(t, err)
	require.Equal(t, 3, results[0].Matches[0].Line)
}

func TestFind_Regex(t *testing.T) {
	entries := []pathtable.Entry{
		{Path: "a.js", Content: "const x = 1;\nlet y = 2;"},
		{Path: "b.js", Content: "nothing here"},
		{Path: "c.js", Content: "  const z = 3;  "},
	}

	results, err := Find(entries, compile(t, `^\s*const \w+`, models.SearchOptions{UseRegex: true}))
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "a.js", results[0].Path)
	require.Equal(t, "c.js", results[1].Path)
	require.Equal(t, "const z = 3;", results[1].Matches[0].Preview)
}

func TestFind_PreviewIsTruncated(t *testing.T) {
	long := strings.Repeat("é", 200)
	entries := []pathtable.Entry{{Path: "a.txt", Content: long}}

	results, err := Find(entries, compile(t, "é", models.SearchOptions{}))
	require.NoError(t, err)
	require.Equal(t, PreviewLength, len([]rune(results[0].Matches[0].Preview)))
}

func TestCompile_BlankQuery(t *testing.T) {
	p, err := Compile("   ", models.SearchOptions{UseRegex: true})
	require.NoError(t, err)
	require.Nil(t, p)

	results, err := Find([]pathtable.Entry{{Path: "a.js", Content: "   "}}, p)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestCompile_InvalidRegex(t *testing.T) {
	_, err := Compile("(unclosed", models.SearchOptions{UseRegex: true})
	require.ErrorIs(t, err, models.ErrInvalidFormat)
}

func TestReplace_OnlyChangedFiles(t *testing.T) {
	entries := []pathtable.Entry{
		{Path: "a.js", Content: "foo foo"},
		{Path: "b.js", Content: "bar"},
		{Path: "c.js", Content: "FOO"},
	}

	changed, total, err := Replace(entries, compile(t, "foo", models.SearchOptions{}), "baz")
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []pathtable.Entry{
		{Path: "a.js", Content: "baz baz"},
		{Path: "c.js", Content: "baz"},
	}, changed)
}

func TestReplace_LiteralReplacementIsVerbatim(t *testing.T) {
	entries := []pathtable.Entry{{Path: "a.js", Content: "price"}}

	changed, _, err := Replace(entries, compile(t, "price", models.SearchOptions{MatchCase: true}), "$1 and $$")
	require.NoError(t, err)
	require.Equal(t, "$1 and $$", changed[0].Content)
}

func TestReplace_RegexGroups(t *testing.T) {
	entries := []pathtable.Entry{{Path: "a.js", Content: "var a = 1;\nvar b = 2;"}}

	changed, total, err := Replace(entries, compile(t, `var (\w+)`, models.SearchOptions{UseRegex: true, MatchCase: true}), "let $1")
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, "let a = 1;\nlet b = 2;", changed[0].Content)
}

func TestReplace_NamedGroups(t *testing.T) {
	tests := []struct {
		name        string
		replacement string
		want        string
	}{
		{name: "named reference", replacement: "[$<n>]", want: "[ab]c"},
		{name: "escaped dollar", replacement: "$$<n>", want: "$<n>c"},
		{name: "unknown name", replacement: "$<other>", want: "$<other>c"},
		{name: "mixed with numbered", replacement: "$1-$<n>", want: "ab-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []pathtable.Entry{{Path: "a.js", Content: "abc"}}
			pattern := compile(t, `(?<n>ab)`, models.SearchOptions{UseRegex: true, MatchCase: true})

			changed, total, err := Replace(entries, pattern, tt.replacement)
			require.NoError(t, err)
			require.Equal(t, 1, total)
			require.Equal(t, tt.want, changed[0].Content)
		})
	}
}

func TestReplace_NilPatternIsNoop(t *testing.T) {
	changed, total, err := Replace([]pathtable.Entry{{Path: "a.js", Content: "x"}}, nil, "y")
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, changed)
}

func TestReplace_SameContentIsSkipped(t *testing.T) {
	entries := []pathtable.Entry{{Path: "a.js", Content: "foo"}}

	changed, total, err := Replace(entries, compile(t, "foo", models.SearchOptions{MatchCase: true}), "foo")
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, changed)
}
