// Package mirror copies a workspace to and from a directory on disk.
package mirror

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	gitignore "github.com/denormal/go-gitignore"

	"github.com/jakoblorz/go-codebuilder/internal/filesystem"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

// MaxFileSize is the largest file read into a workspace
const MaxFileSize = 1 << 20

// skipDirs are never read into a workspace
var skipDirs = []string{".git", "node_modules", "vendor"}

// Mirror maps workspace paths onto a root directory
type Mirror struct {
	fs       filesystem.FileSystem
	root     string
	ignore   gitignore.GitIgnore
	skipDirs []string
}

// Option configures a Mirror
type Option func(*Mirror)

// WithSkipDirs excludes more directory names from reads
func WithSkipDirs(names ...string) Option {
	return func(m *Mirror) {
		m.skipDirs = append(m.skipDirs, names...)
	}
}

// New creates a Mirror rooted at root, loading root/.gitignore if present
func New(fsys filesystem.FileSystem, root string, options ...Option) (*Mirror, error) {
	m := &Mirror{fs: fsys, root: filepath.Clean(root), skipDirs: slices.Clone(skipDirs)}
	for _, option := range options {
		option(m)
	}

	ignorePath := filepath.Join(m.root, ".gitignore")
	if fsys.Exists(ignorePath) {
		data, err := fsys.ReadFile(ignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read .gitignore: %w", err)
		}
		m.ignore = gitignore.New(bytes.NewReader(data), m.root, nil)
	}
	return m, nil
}

// Root returns the mirrored directory
func (m *Mirror) Root() string {
	return m.root
}

// Ignored reports whether the workspace path rel is excluded from reads
func (m *Mirror) Ignored(rel string, isDir bool) bool {
	for _, seg := range strings.Split(rel, "/") {
		if slices.Contains(m.skipDirs, seg) {
			return true
		}
	}
	if m.ignore == nil {
		return false
	}

	segs := strings.Split(rel, "/")
	for i := range segs {
		last := i == len(segs)-1
		match := m.ignore.Relative(filepath.Join(segs[:i+1]...), !last || isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}
	return false
}

// Rel converts an absolute path below the root into a workspace path
func (m *Mirror) Rel(p string) (string, bool) {
	rel, err := filepath.Rel(m.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Read collects every file below the root that is not ignored, too large
// or binary. Paths are slash separated and in walk order.
func (m *Mirror) Read() (*pathtable.Table, error) {
	var entries []pathtable.Entry

	err := m.fs.WalkDir(m.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, ok := m.Rel(p)
		if !ok {
			return nil
		}

		if m.Ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		content, ok, err := m.readText(p, d)
		if err != nil {
			return err
		}
		if !ok {
			slog.Debug("skipping file", "path", rel)
			return nil
		}
		entries = append(entries, pathtable.Entry{Path: rel, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.root, err)
	}

	return pathtable.FromEntries(entries), nil
}

// ReadFile reads one workspace path from disk. ok is false when the file
// is ignored, too large or binary.
func (m *Mirror) ReadFile(rel string) (string, bool, error) {
	if m.Ignored(rel, false) {
		return "", false, nil
	}
	p := filepath.Join(m.root, filepath.FromSlash(rel))
	info, err := m.fs.Stat(p)
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}
	return m.readText(p, fs.FileInfoToDirEntry(info))
}

func (m *Mirror) readText(p string, d fs.DirEntry) (string, bool, error) {
	info, err := d.Info()
	if err != nil {
		return "", false, err
	}
	if info.Size() > MaxFileSize || !info.Mode().IsRegular() {
		return "", false, nil
	}

	data, err := m.fs.ReadFile(p)
	if err != nil {
		return "", false, err
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return "", false, nil
	}
	return string(data), true, nil
}

// Write materializes snap below the root: every folder, including empty
// ones, and every file. Files on disk that are not in snap are left alone.
// It returns the number of files written.
func (m *Mirror) Write(snap workspace.Snapshot) (int, error) {
	if err := m.fs.MkdirAll(m.root, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", m.root, err)
	}

	written := 0
	err := snap.Tree.Walk(func(n *models.Node, _ int) error {
		p := filepath.Join(m.root, filepath.FromSlash(n.Path))
		if n.IsFolder() {
			if err := m.fs.MkdirAll(p, 0o755); err != nil {
				return fmt.Errorf("failed to create folder %s: %w", n.Path, err)
			}
			return nil
		}

		content, _ := snap.Content(n.Path)
		if err := m.fs.WriteFile(p, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", n.Path, err)
		}
		written++
		return nil
	})
	return written, err
}

// Import replaces the workspace content of store with the files on disk
func (m *Mirror) Import(store *workspace.Store) (int, error) {
	table, err := m.Read()
	if err != nil {
		return 0, err
	}
	data, err := workspace.EncodeExport(table)
	if err != nil {
		return 0, err
	}
	if err := store.ImportProject(data); err != nil {
		return 0, err
	}
	return table.Len(), nil
}

// Workspace is the part of the store that incremental updates need
type Workspace interface {
	Snapshot() workspace.Snapshot
	PutFile(path, content string) (bool, error)
	DeleteEntry(path string) []string
}

// Apply brings the workspace path rel in line with disk: it creates the
// file with any missing folders, updates changed content, or deletes the
// entry when the file is gone.
func (m *Mirror) Apply(ws Workspace, rel string) error {
	content, ok, err := m.ReadFile(rel)
	if errors.Is(err, fs.ErrNotExist) {
		if ws.Snapshot().Tree.Find(rel) != nil {
			ws.DeleteEntry(rel)
		}
		return nil
	}
	if err != nil || !ok {
		return err
	}

	_, err = ws.PutFile(rel, content)
	return err
}
