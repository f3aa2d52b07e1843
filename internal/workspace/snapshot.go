package workspace

import (
	"encoding/json"
	"slices"

	"github.com/jakoblorz/go-codebuilder/internal/filetree"
	"github.com/jakoblorz/go-codebuilder/internal/git"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
	"github.com/jakoblorz/go-codebuilder/internal/tabs"
)

// Snapshot is an immutable view of the workspace at one point in time.
// Every successful Store mutation publishes a new Snapshot; the values it
// holds are never modified afterwards.
type Snapshot struct {
	// Version increases by one with every published mutation
	Version uint64

	Table *pathtable.Table
	Tree  *filetree.Tree
	Ring  tabs.Ring
	Git   git.Status

	// Packages is ordered by first install
	Packages []models.PackageEntry

	// RecentTemplates holds template ids, most recent first
	RecentTemplates []string

	// LastSearch is the last query passed to search or replace
	LastSearch *models.SearchQuery
}

// Content returns the content of the file at path
func (s Snapshot) Content(path string) (string, bool) {
	return s.Table.Read(path)
}

// ActivePath returns the active file path, or "" when none is active
func (s Snapshot) ActivePath() string {
	p, _ := s.Ring.Active()
	return p
}

// ActiveFile returns the active path and its content
func (s Snapshot) ActiveFile() (string, string, bool) {
	p, ok := s.Ring.Active()
	if !ok {
		return "", "", false
	}
	content, ok := s.Table.Read(p)
	return p, content, ok
}

// Files lists every file in tree order
func (s Snapshot) Files() []models.FileRef {
	return s.Tree.CollectFiles()
}

// FileEntries lists every file with its content in tree order
func (s Snapshot) FileEntries() []pathtable.Entry {
	files := s.Tree.CollectFiles()
	entries := make([]pathtable.Entry, 0, len(files))
	for _, f := range files {
		content, _ := s.Table.Read(f.Path)
		entries = append(entries, pathtable.Entry{Path: f.Path, Content: content})
	}
	return entries
}

// Package returns the installed entry for name
func (s Snapshot) Package(name string) (models.PackageEntry, bool) {
	i := slices.IndexFunc(s.Packages, func(p models.PackageEntry) bool { return p.Name == name })
	if i < 0 {
		return models.PackageEntry{}, false
	}
	return s.Packages[i], true
}

// State is the serializable form of a Snapshot, used for sessions and the
// RPC surface.
type State struct {
	Files           []*models.Node        `json:"files"`
	FileContents    *pathtable.Table      `json:"fileContents"`
	OpenFiles       []string              `json:"openFiles"`
	ActiveFile      string                `json:"activeFile,omitempty"`
	Git             git.Status            `json:"git"`
	Packages        []models.PackageEntry `json:"packages"`
	RecentTemplates []string              `json:"recentTemplates"`
	LastSearch      *models.SearchQuery   `json:"lastSearch,omitempty"`
}

// State converts the snapshot to its serializable form
func (s Snapshot) State() State {
	files := s.Tree.Roots()
	if files == nil {
		files = []*models.Node{}
	}
	open := s.Ring.Paths()
	if open == nil {
		open = []string{}
	}
	return State{
		Files:           files,
		FileContents:    s.Table,
		OpenFiles:       open,
		ActiveFile:      s.ActivePath(),
		Git:             s.Git,
		Packages:        slices.Clone(s.Packages),
		RecentTemplates: slices.Clone(s.RecentTemplates),
		LastSearch:      s.LastSearch,
	}
}

// MarshalJSON encodes the snapshot as its State
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.State())
}

// FromState rebuilds a snapshot from serialized state. The tree must hold
// exactly the files that have contents; open paths that are not files are
// dropped.
func FromState(st State) (Snapshot, error) {
	tree, err := filetree.FromNodes(st.Files)
	if err != nil {
		return Snapshot{}, err
	}

	table := st.FileContents
	if table == nil {
		table = pathtable.New()
	}

	files := tree.FilePaths()
	if len(files) != table.Len() {
		return Snapshot{}, models.NewError(models.KindInvalidFormat, "", "file tree and contents disagree")
	}
	for _, p := range files {
		if !table.Has(p) {
			return Snapshot{}, models.NewError(models.KindInvalidFormat, p, "file has no contents")
		}
	}

	open := slices.DeleteFunc(slices.Clone(st.OpenFiles), func(p string) bool { return !tree.IsFile(p) })

	status := st.Git
	status.Modified = keepFiles(tree, status.Modified)
	status.Staged = keepFiles(tree, status.Staged)
	status.Modified = slices.DeleteFunc(status.Modified, func(p string) bool { return slices.Contains(status.Staged, p) })

	packages := make([]models.PackageEntry, 0, len(st.Packages))
	for _, p := range st.Packages {
		if err := validatePackage(p.Name, p.Version); err != nil {
			return Snapshot{}, err
		}
		packages = upsertPackage(packages, p)
	}

	return Snapshot{
		Table:           table,
		Tree:            tree,
		Ring:            tabs.New(open, st.ActiveFile),
		Git:             status,
		Packages:        packages,
		RecentTemplates: slices.Clone(st.RecentTemplates),
		LastSearch:      st.LastSearch,
	}, nil
}

func keepFiles(tree *filetree.Tree, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if tree.IsFile(p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
