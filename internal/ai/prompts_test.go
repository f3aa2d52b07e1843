package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestMessages(t *testing.T) {
	msgs := SuggestMessages("let a = 1;", "rename a to b", "javascript")

	require.Len(t, msgs, 2)
	require.Equal(t, "system", msgs[0].Role)
	require.Equal(t, "You are an expert javascript developer. Help improve and write code based on user requests. Return only the code without explanations unless asked.", msgs[0].Content)
	require.Equal(t, "user", msgs[1].Role)
	require.Equal(t, "Current code:\n```javascript\nlet a = 1;\n```\n\nRequest: rename a to b", msgs[1].Content)
}

func TestFixMessages(t *testing.T) {
	msgs := FixMessages("x(", "Unexpected end of input", "javascript")

	require.Equal(t, "You are an expert debugger. Fix code errors and return the corrected code.", msgs[0].Content)
	require.Equal(t, "Fix this javascript code that has an error:\n\nCode:\n```javascript\nx(\n```\n\nError: Unexpected end of input", msgs[1].Content)
}

func TestExtractCode(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"fenced with language": {
			in:   "Here you go:\n```js\nconst b = 1;\n```\nEnjoy",
			want: "const b = 1;",
		},
		"fenced without language": {
			in:   "```\n  x\n```",
			want: "x",
		},
		"first block wins": {
			in:   "```py\none\n```\n```py\ntwo\n```",
			want: "one",
		},
		"no block": {
			in:   "  just text \n",
			want: "just text",
		},
		"unterminated": {
			in:   "```js\nopen",
			want: "```js\nopen",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractCode(tt.in))
		})
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("Explain")
	require.NoError(t, err)
	require.Equal(t, ActionExplain, a)

	_, err = ParseAction("refactor")
	require.Error(t, err)
}

func TestLanguageFor(t *testing.T) {
	require.Equal(t, "javascript", LanguageFor("src/App.jsx"))
	require.Equal(t, "python", LanguageFor("main.py"))
}
