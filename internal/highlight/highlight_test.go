package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLanguage(t *testing.T) {
	tests := map[string]string{
		"src/index.js":     "javascript",
		"src/App.JSX":      "javascript",
		"main.py":          "python",
		"style.css":        "css",
		"config.yml":       "yaml",
		"README.md":        "markdown",
		"notes":            "plaintext",
		"archive.unknown0": "plaintext",
	}

	for filename, want := range tests {
		require.Equal(t, want, Language(filename), filename)
	}
}

func TestLanguage_FallsBackToChroma(t *testing.T) {
	require.Equal(t, "makefile", Language("Makefile"))
}

func TestString_ColorsCode(t *testing.T) {
	out := String("index.js", "const answer = 42;\n")

	require.Contains(t, out, "\x1b[")
	require.Contains(t, out, "answer")
	require.Contains(t, out, "42")
}
