// Package highlight maps file names to languages and renders source code
// with terminal colours.
package highlight

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Plaintext is reported for files with no known language
const Plaintext = "plaintext"

// DefaultStyle is the chroma style used by Write
const DefaultStyle = "monokai"

var extLanguages = map[string]string{
	"js":    "javascript",
	"jsx":   "javascript",
	"ts":    "typescript",
	"tsx":   "typescript",
	"html":  "html",
	"css":   "css",
	"json":  "json",
	"md":    "markdown",
	"py":    "python",
	"java":  "java",
	"cpp":   "cpp",
	"c":     "c",
	"go":    "go",
	"rs":    "rust",
	"php":   "php",
	"rb":    "ruby",
	"swift": "swift",
	"kt":    "kotlin",
	"sql":   "sql",
	"sh":    "shell",
	"yml":   "yaml",
	"yaml":  "yaml",
	"xml":   "xml",
}

// Language returns the editor language for filename. Common extensions
// use a fixed table, anything else asks chroma's filename patterns.
func Language(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}
	if lexer := lexers.Match(path.Base(filename)); lexer != nil {
		return strings.ToLower(lexer.Config().Name)
	}
	return Plaintext
}

// lexerFor picks a lexer by file name, then by content
func lexerFor(filename, code string) chroma.Lexer {
	lexer := lexers.Match(path.Base(filename))
	if lexer == nil {
		lexer = lexers.Get(Language(filename))
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Write renders code to w with 256-colour terminal escapes
func Write(w io.Writer, filename, code string) error {
	style := styles.Get(DefaultStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexerFor(filename, code).Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("failed to tokenise %s: %w", filename, err)
	}
	if err := formatter.Format(w, style, iterator); err != nil {
		return fmt.Errorf("failed to format %s: %w", filename, err)
	}
	return nil
}

// String is Write into a string. On failure the code is returned as is.
func String(filename, code string) string {
	var b strings.Builder
	if err := Write(&b, filename, code); err != nil {
		return code
	}
	return b.String()
}
