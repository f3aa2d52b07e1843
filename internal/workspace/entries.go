package workspace

import (
	"log/slog"
	"path"
	"strings"

	"github.com/jakoblorz/go-codebuilder/internal/filetree"
	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// AddEntry creates a file or folder named name under parentPath ("" for the
// root) and returns its path. New files are empty, open, active and marked
// modified.
func (s *Store) AddEntry(parentPath, name string, kind models.NodeKind) (string, error) {
	var created string
	err := s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		tree, node, err := cur.Tree.Insert(parentPath, name, kind)
		if err != nil {
			return cur, false, err
		}
		created = node.Path
		return withNode(cur, tree, node), true, nil
	})
	if err != nil {
		return "", err
	}

	slog.Debug("entry added", "path", created, "kind", kind)
	return created, nil
}

// AddPath is AddEntry for a full path: missing parent folders are created
// along with the entry in one step. Nothing is created when any part fails.
func (s *Store) AddPath(p string, kind models.NodeKind) error {
	err := s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		next, err := insertPath(cur, p, kind)
		return next, err == nil, err
	})
	if err != nil {
		return err
	}

	slog.Debug("entry added", "path", p, "kind", kind)
	return nil
}

// PutFile sets the content of the file at p, creating the file and its
// missing parent folders first. It reports whether the file was created.
// A new file is opened like one made with AddEntry.
func (s *Store) PutFile(p, content string) (bool, error) {
	created := false
	err := s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		next := cur
		if !cur.Tree.IsFile(p) {
			var err error
			if next, err = insertPath(cur, p, models.NodeFile); err != nil {
				return cur, false, err
			}
			created = true
		}

		table := next.Table.Write(p, content)
		if !created && table == cur.Table {
			return cur, false, nil
		}
		next.Table = table
		next.Git = next.Git.MarkModified(p)
		return next, true, nil
	})
	if err != nil {
		return false, err
	}

	if created {
		slog.Debug("file created", "path", p)
	}
	return created, nil
}

// insertPath adds the entry at p to cur, creating missing parent folders
func insertPath(cur Snapshot, p string, kind models.NodeKind) (Snapshot, error) {
	dir, name := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")

	tree := cur.Tree
	parent := ""
	if dir != "" {
		for _, seg := range strings.Split(dir, "/") {
			next := filetree.JoinPath(parent, seg)
			if tree.Find(next) == nil {
				t, _, err := tree.Insert(parent, seg, models.NodeFolder)
				if err != nil {
					return cur, err
				}
				tree = t
			}
			parent = next
		}
	}

	tree, node, err := tree.Insert(parent, name, kind)
	if err != nil {
		return cur, err
	}
	return withNode(cur, tree, node), nil
}

// withNode applies a tree that gained node. Files start empty, open and
// modified.
func withNode(cur Snapshot, tree *filetree.Tree, node *models.Node) Snapshot {
	next := cur
	next.Tree = tree
	if !node.IsFolder() {
		next.Table = cur.Table.Write(node.Path, "")
		next.Ring = cur.Ring.Open(node.Path)
		next.Git = cur.Git.MarkModified(node.Path)
	}
	return next
}

// DeleteEntry removes path and, for folders, everything below it. The
// removed file paths are returned; deleting a missing path does nothing.
func (s *Store) DeleteEntry(path string) []string {
	var removed []string
	_ = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		tree, files := cur.Tree.Remove(path)
		table, contents := cur.Table.RemoveTree(path)
		if tree == cur.Tree && table == cur.Table {
			return cur, false, nil
		}

		prefix := path + "/"
		under := func(p string) bool { return p == path || strings.HasPrefix(p, prefix) }

		next := cur
		next.Tree = tree
		next.Table = table
		next.Ring = cur.Ring.CloseWhere(under)
		next.Git = cur.Git.Forget(path)

		removed = files
		if len(removed) == 0 {
			removed = contents
		}
		return next, true, nil
	})

	if len(removed) > 0 {
		slog.Debug("entry deleted", "path", path, "files", len(removed))
	}
	return removed
}

// UpdateContent stores content for an existing file and marks it modified.
// It reports false, changing nothing, when path is not a file or already
// holds content.
func (s *Store) UpdateContent(path, content string) bool {
	updated := false
	_ = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		if !cur.Tree.IsFile(path) {
			return cur, false, nil
		}
		table := cur.Table.Write(path, content)
		if table == cur.Table {
			return cur, false, nil
		}
		next := cur
		next.Table = table
		next.Git = cur.Git.MarkModified(path)
		updated = true
		return next, true, nil
	})
	return updated
}

// OpenFile opens path in a tab and makes it active
func (s *Store) OpenFile(path string) error {
	return s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		if !cur.Tree.IsFile(path) {
			return cur, false, models.NewError(models.KindNotFound, path, "no such file")
		}
		if active, ok := cur.Ring.Active(); ok && active == path {
			return cur, false, nil
		}
		next := cur
		next.Ring = cur.Ring.Open(path)
		return next, true, nil
	})
}

// CloseFile closes the tab for path. Closing a path that is not open does
// nothing.
func (s *Store) CloseFile(path string) {
	_ = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		if !cur.Ring.Contains(path) {
			return cur, false, nil
		}
		next := cur
		next.Ring = cur.Ring.Close(path)
		return next, true, nil
	})
}

// SetActive switches the active tab. The path must already be open; an
// empty path clears the active tab.
func (s *Store) SetActive(path string) error {
	return s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		ring, err := cur.Ring.SetActive(path)
		if err != nil {
			return cur, false, err
		}
		next := cur
		next.Ring = ring
		return next, true, nil
	})
}
