// Package search finds and replaces text across workspace files.
package search

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
)

// PreviewLength is the maximum number of runes in a line preview
const PreviewLength = 120

// matchTimeout bounds a single regex evaluation on a line or file
const matchTimeout = 2 * time.Second

// Pattern is a compiled query
type Pattern struct {
	re      *regexp2.Regexp
	literal bool
}

// Compile builds the pattern for query. A blank query yields a nil pattern
// and no error; callers treat it as "nothing to do".
//
// Regex queries use JavaScript syntax. Literal queries are escaped and
// matched as plain text.
func Compile(query string, opts models.SearchOptions) (*Pattern, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	expr := query
	var flags regexp2.RegexOptions = regexp2.ECMAScript
	if !opts.UseRegex {
		expr = regexp2.Escape(query)
		flags = regexp2.None
	}
	if !opts.MatchCase {
		flags |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(expr, flags)
	if err != nil {
		return nil, models.WrapError(models.KindInvalidFormat, "invalid search pattern", err)
	}
	re.MatchTimeout = matchTimeout

	return &Pattern{re: re, literal: !opts.UseRegex}, nil
}

// Find returns, for every entry with at least one matching line, the
// 1-based line numbers and trimmed previews of the matching lines.
func Find(entries []pathtable.Entry, p *Pattern) ([]models.SearchResult, error) {
	results := []models.SearchResult{}
	if p == nil {
		return results, nil
	}

	for _, e := range entries {
		var matches []models.LineMatch
		for i, line := range strings.Split(e.Content, "\n") {
			ok, err := p.re.MatchString(line)
			if err != nil {
				return nil, models.WrapError(models.KindInvalidFormat, "search failed in "+e.Path, err)
			}
			if ok {
				matches = append(matches, models.LineMatch{Line: i + 1, Preview: preview(line)})
			}
		}
		if len(matches) > 0 {
			results = append(results, models.SearchResult{Path: e.Path, Matches: matches})
		}
	}

	return results, nil
}

// Replace substitutes every match in every entry and returns only the
// entries whose content changed, with the total number of replacements.
//
// Literal patterns insert replacement verbatim; regex patterns expand
// group references such as $1 and $<name>.
func Replace(entries []pathtable.Entry, p *Pattern, replacement string) ([]pathtable.Entry, int, error) {
	if p == nil {
		return nil, 0, nil
	}
	if !p.literal {
		replacement = p.namedRefs(replacement)
	}

	var changed []pathtable.Entry
	total := 0
	for _, e := range entries {
		count := 0
		var (
			out string
			err error
		)
		if p.literal {
			out, err = p.re.ReplaceFunc(e.Content, func(regexp2.Match) string {
				count++
				return replacement
			}, -1, -1)
		} else {
			count, err = p.count(e.Content)
			if err == nil && count > 0 {
				out, err = p.re.Replace(e.Content, replacement, -1, -1)
			}
		}
		if err != nil {
			return nil, 0, models.WrapError(models.KindInvalidFormat, "replace failed in "+e.Path, err)
		}
		if count == 0 || out == e.Content {
			continue
		}

		total += count
		changed = append(changed, pathtable.Entry{Path: e.Path, Content: out})
	}

	return changed, total, nil
}

// namedRefs rewrites $<name> references to groups of the pattern into the
// ${name} form regexp2 expands. Unknown names stay literal text.
func (p *Pattern) namedRefs(replacement string) string {
	var b strings.Builder
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c != '$' || i+1 >= len(replacement) {
			b.WriteByte(c)
			continue
		}
		switch replacement[i+1] {
		case '$':
			b.WriteString("$$")
			i++
			continue
		case '<':
			end := strings.IndexByte(replacement[i+2:], '>')
			if end > 0 {
				name := replacement[i+2 : i+2+end]
				if p.re.GroupNumberFromName(name) >= 0 {
					b.WriteString("${" + name + "}")
					i += end + 2
					continue
				}
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (p *Pattern) count(s string) (int, error) {
	n := 0
	m, err := p.re.FindStringMatch(s)
	for m != nil && err == nil {
		n++
		m, err = p.re.FindNextMatch(m)
	}
	return n, err
}

func preview(line string) string {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= PreviewLength {
		return line
	}
	runes := []rune(line)
	return string(runes[:PreviewLength])
}
