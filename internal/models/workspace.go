package models

// PackageEntry represents a dependency recorded in the workspace
type PackageEntry struct {
	// Name is the package name (unique within the workspace)
	Name string `json:"name"`

	// Version is "latest" or a semantic version, optionally with a ^ or ~ range prefix
	Version string `json:"version"`
}

// SearchOptions controls how a query is matched against file lines
type SearchOptions struct {
	MatchCase bool `json:"matchCase"`
	UseRegex  bool `json:"useRegex"`
}

// SearchQuery is the last search issued against the workspace
type SearchQuery struct {
	Query   string        `json:"query"`
	Replace string        `json:"replace,omitempty"`
	Options SearchOptions `json:"options"`
}

// LineMatch is a single matching line within a file
type LineMatch struct {
	// Line is 1-based
	Line    int    `json:"line"`
	Preview string `json:"preview"`
}

// SearchResult groups the matching lines of one file
type SearchResult struct {
	Path    string      `json:"path"`
	Matches []LineMatch `json:"matches"`
}

// ReplaceSummary reports which files a replace rewrote
type ReplaceSummary struct {
	Files        []string `json:"files"`
	Replacements int      `json:"replacements"`
}

// TemplateFile is one file of a template
type TemplateFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Template is an immutable project starter
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Files       []TemplateFile `json:"files"`
}

// Paths returns the template file paths in order
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for _, f := range t.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
