package workspace

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/jakoblorz/go-codebuilder/internal/filetree"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
	"github.com/jakoblorz/go-codebuilder/internal/tabs"
)

// exportDocument is the import/export file format
type exportDocument struct {
	FileContents *pathtable.Table `json:"fileContents"`
}

// ApplyTemplate replaces the whole project with the template's files. All
// template files are opened with the first one active, and git status is
// cleared.
func (s *Store) ApplyTemplate(id string) (*models.Template, error) {
	tpl, err := s.catalog.Get(id)
	if err != nil {
		return nil, err
	}

	entries := make([]pathtable.Entry, 0, len(tpl.Files))
	for _, f := range tpl.Files {
		entries = append(entries, pathtable.Entry{Path: f.Path, Content: f.Content})
	}

	err = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		next, err := replaceFiles(cur, pathtable.FromEntries(entries), tpl.Paths())
		if err != nil {
			return cur, false, models.WrapError(models.KindInvalidFormat, "template "+id+" is malformed", err)
		}
		next.RecentTemplates = pushRecent(cur.RecentTemplates, id)
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("template applied", "template", id, "files", len(tpl.Files))
	return tpl, nil
}

// ImportProject replaces the project with the files of an export document.
// The tree is rebuilt from the paths, the first file is opened and git
// status is cleared. On error nothing changes.
func (s *Store) ImportProject(data []byte) error {
	table, err := decodeExport(data)
	if err != nil {
		return err
	}

	keys := table.Keys()
	open := []string{}
	if len(keys) > 0 {
		open = keys[:1]
	}

	err = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		next, err := replaceFiles(cur, table, open)
		if err != nil {
			return cur, false, models.WrapError(models.KindInvalidFormat, "invalid file paths", err)
		}
		return next, true, nil
	})
	if err != nil {
		return err
	}

	slog.Info("project imported", "files", len(keys))
	return nil
}

// ExportProject encodes the file contents as an export document
func (s *Store) ExportProject() ([]byte, error) {
	return EncodeExport(s.Snapshot().Table)
}

// EncodeExport renders table in the export document format
func EncodeExport(table *pathtable.Table) ([]byte, error) {
	data, err := json.MarshalIndent(exportDocument{FileContents: table}, "", "  ")
	if err != nil {
		return nil, models.WrapError(models.KindInvalidFormat, "failed to encode project", err)
	}
	return data, nil
}

func decodeExport(data []byte) (*pathtable.Table, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, models.NewError(models.KindInvalidFormat, "", "project file is not valid JSON")
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, models.NewError(models.KindInvalidFormat, "", "project file must be a JSON object")
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, models.WrapError(models.KindInvalidFormat, "failed to parse project file", err)
	}
	raw, ok := doc["fileContents"]
	if !ok {
		return nil, models.NewError(models.KindInvalidFormat, "", "project file has no fileContents")
	}

	table, err := pathtable.Decode(raw)
	if err != nil {
		return nil, models.WrapError(models.KindInvalidFormat, "invalid fileContents", err)
	}
	return table, nil
}

// replaceFiles swaps in table, a tree built from its keys and a ring of
// open with the first entry active.
func replaceFiles(cur Snapshot, table *pathtable.Table, open []string) (Snapshot, error) {
	tree, err := filetree.FromPaths(table.Keys())
	if err != nil {
		return cur, err
	}

	active := ""
	if len(open) > 0 {
		active = open[0]
	}

	next := cur
	next.Table = table
	next.Tree = tree
	next.Ring = tabs.New(open, active)
	next.Git = cur.Git.Reset()
	return next, nil
}

func pushRecent(recent []string, id string) []string {
	out := make([]string, 0, MaxRecentTemplates)
	out = append(out, id)
	for _, r := range recent {
		if r != id && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	if len(out) > MaxRecentTemplates {
		out = out[:MaxRecentTemplates]
	}
	return out
}
