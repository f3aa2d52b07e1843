package workspace

import (
	"strings"

	"github.com/jakoblorz/go-codebuilder/internal/filetree"
	"github.com/jakoblorz/go-codebuilder/internal/git"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
	"github.com/jakoblorz/go-codebuilder/internal/tabs"
)

// Builder assembles workspace fixtures for tests
type Builder struct {
	files    []pathtable.Entry
	folders  []string
	open     []string
	active   string
	modified []string
	staged   []string
	packages []models.PackageEntry
}

// NewBuilder creates an empty Builder. Unlike New, the built store has no
// seed file.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddFile adds a file with content; parent folders are created as needed
func (b *Builder) AddFile(path, content string) *Builder {
	b.files = append(b.files, pathtable.Entry{Path: path, Content: content})
	return b
}

// AddFolder adds an empty folder at path
func (b *Builder) AddFolder(path string) *Builder {
	b.folders = append(b.folders, path)
	return b
}

// Open opens path; the last opened path becomes active
func (b *Builder) Open(paths ...string) *Builder {
	b.open = append(b.open, paths...)
	if len(paths) > 0 {
		b.active = paths[len(paths)-1]
	}
	return b
}

// Activate sets the active tab, which must be open
func (b *Builder) Activate(path string) *Builder {
	b.active = path
	return b
}

// Modified marks paths as modified
func (b *Builder) Modified(paths ...string) *Builder {
	b.modified = append(b.modified, paths...)
	return b
}

// Staged marks paths as staged
func (b *Builder) Staged(paths ...string) *Builder {
	b.staged = append(b.staged, paths...)
	return b
}

// AddPackage records an installed package
func (b *Builder) AddPackage(name, version string) *Builder {
	b.packages = append(b.packages, models.PackageEntry{Name: name, Version: version})
	return b
}

// Snapshot builds the fixture state. It panics on an inconsistent fixture.
func (b *Builder) Snapshot() Snapshot {
	table := pathtable.FromEntries(b.files)
	tree, err := filetree.FromPaths(table.Keys())
	if err != nil {
		panic(err)
	}

	for _, folder := range b.folders {
		parent := ""
		for _, seg := range strings.Split(folder, "/") {
			path := filetree.JoinPath(parent, seg)
			if tree.Find(path) == nil {
				tree, _, err = tree.Insert(parent, seg, models.NodeFolder)
				if err != nil {
					panic(err)
				}
			}
			parent = path
		}
	}

	return Snapshot{
		Table:           table,
		Tree:            tree,
		Ring:            tabs.New(b.open, b.active),
		Git:             git.Status{Modified: append([]string{}, b.modified...), Staged: append([]string{}, b.staged...)},
		Packages:        append([]models.PackageEntry{}, b.packages...),
		RecentTemplates: []string{},
	}
}

// Build creates a Store holding the fixture state
func (b *Builder) Build(options ...Option) *Store {
	return New(append([]Option{WithSnapshot(b.Snapshot())}, options...)...)
}
