package workspace

import (
	"log/slog"

	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/search"
)

// SearchAcrossFiles finds the lines matching query in every file, in file
// order. It reads the current snapshot and changes nothing.
func (s *Store) SearchAcrossFiles(query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	pattern, err := search.Compile(query, opts)
	if err != nil {
		return nil, err
	}
	return search.Find(s.Snapshot().Table.Entries(), pattern)
}

// SetSearchQuery remembers q as the last search, as the search panel does
// while the user types.
func (s *Store) SetSearchQuery(q models.SearchQuery) {
	_ = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		if cur.LastSearch != nil && *cur.LastSearch == q {
			return cur, false, nil
		}
		next := cur
		next.LastSearch = &q
		return next, true, nil
	})
}

// ReplaceAcrossFiles replaces every match of query in every file. Only files
// whose content changes are rewritten and marked modified. A blank query
// does nothing.
func (s *Store) ReplaceAcrossFiles(query, replacement string, opts models.SearchOptions) (models.ReplaceSummary, error) {
	summary := models.ReplaceSummary{Files: []string{}}

	pattern, err := search.Compile(query, opts)
	if err != nil || pattern == nil {
		return summary, err
	}

	err = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		changed, total, err := search.Replace(cur.Table.Entries(), pattern, replacement)
		if err != nil {
			return cur, false, err
		}

		next := cur
		next.LastSearch = &models.SearchQuery{Query: query, Replace: replacement, Options: opts}
		for _, e := range changed {
			next.Table = next.Table.Write(e.Path, e.Content)
			next.Git = next.Git.MarkModified(e.Path)
			summary.Files = append(summary.Files, e.Path)
		}
		summary.Replacements = total
		return next, true, nil
	})
	if err != nil {
		return models.ReplaceSummary{Files: []string{}}, err
	}

	if summary.Replacements > 0 {
		slog.Info("replaced across files", "files", len(summary.Files), "replacements", summary.Replacements)
	}
	return summary, nil
}
