// Package filetree implements the ordered folder/file hierarchy of a workspace.
package filetree

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// Tree is a persistent hierarchy of nodes. Mutating methods return a new
// Tree that shares every untouched subtree with the receiver.
type Tree struct {
	roots []*models.Node
}

// New creates an empty Tree
func New() *Tree {
	return &Tree{}
}

// Roots returns the top-level nodes in display order
func (t *Tree) Roots() []*models.Node {
	return append([]*models.Node(nil), t.roots...)
}

// Find returns the node at path, or nil
func (t *Tree) Find(path string) *models.Node {
	nodes := t.roots
	for {
		var next *models.Node
		for _, n := range nodes {
			if n.Path == path {
				return n
			}
			if n.IsFolder() && strings.HasPrefix(path, n.Path+"/") {
				next = n
				break
			}
		}
		if next == nil {
			return nil
		}
		nodes = next.Children
	}
}

// IsFile reports whether path names a file node
func (t *Tree) IsFile(path string) bool {
	n := t.Find(path)
	return n != nil && !n.IsFolder()
}

// Insert adds a node named name to the folder at parentPath (empty for the
// root) and returns the new tree and node.
func (t *Tree) Insert(parentPath, name string, kind models.NodeKind) (*Tree, *models.Node, error) {
	if !kind.IsValid() {
		return t, nil, models.NewError(models.KindInvalidName, name, fmt.Sprintf("invalid node kind %q", kind))
	}
	if err := ValidateName(name); err != nil {
		return t, nil, err
	}

	siblings := t.roots
	if parentPath != "" {
		parent := t.Find(parentPath)
		if parent == nil || !parent.IsFolder() {
			return t, nil, models.NewError(models.KindParentNotFound, parentPath, "parent folder not found")
		}
		siblings = parent.Children
	}

	for _, s := range siblings {
		if s.Name == name {
			return t, nil, models.NewError(models.KindDuplicateName, JoinPath(parentPath, name), "an entry with this name already exists")
		}
	}

	node := &models.Node{
		Name: name,
		Path: JoinPath(parentPath, name),
		Kind: kind,
	}
	if kind == models.NodeFolder {
		node.Children = []*models.Node{}
	}

	if parentPath == "" {
		roots := make([]*models.Node, 0, len(t.roots)+1)
		roots = append(roots, t.roots...)
		return &Tree{roots: append(roots, node)}, node, nil
	}

	roots := update(t.roots, parentPath, func(parent *models.Node) *models.Node {
		clone := *parent
		clone.Children = make([]*models.Node, 0, len(parent.Children)+1)
		clone.Children = append(clone.Children, parent.Children...)
		clone.Children = append(clone.Children, node)
		return &clone
	})
	return &Tree{roots: roots}, node, nil
}

// Remove drops the node at path together with its subtree. It returns the
// new tree and the file paths that were removed. Removing a missing path
// returns the receiver.
func (t *Tree) Remove(path string) (*Tree, []string) {
	roots, removed, ok := remove(t.roots, path)
	if !ok {
		return t, nil
	}
	return &Tree{roots: roots}, removed
}

// CollectFiles returns every file in depth-first preorder
func (t *Tree) CollectFiles() []models.FileRef {
	var files []models.FileRef
	_ = t.Walk(func(n *models.Node, _ int) error {
		if !n.IsFolder() {
			files = append(files, models.FileRef{Name: n.Name, Path: n.Path})
		}
		return nil
	})
	return files
}

// FilePaths returns the path of every file in depth-first preorder
func (t *Tree) FilePaths() []string {
	files := t.CollectFiles()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Walk visits every node in depth-first preorder. Returning an error from
// fn stops the walk.
func (t *Tree) Walk(fn func(n *models.Node, depth int) error) error {
	return walk(t.roots, 0, fn)
}

func walk(nodes []*models.Node, depth int, fn func(*models.Node, int) error) error {
	for _, n := range nodes {
		if err := fn(n, depth); err != nil {
			return err
		}
		if n.IsFolder() {
			if err := walk(n.Children, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// update returns a copy of nodes in which the node at path is replaced by
// fn(node). Ancestors are cloned, siblings are shared.
func update(nodes []*models.Node, path string, fn func(*models.Node) *models.Node) []*models.Node {
	out := make([]*models.Node, len(nodes))
	copy(out, nodes)

	for i, n := range nodes {
		if n.Path == path {
			out[i] = fn(n)
			return out
		}
		if n.IsFolder() && strings.HasPrefix(path, n.Path+"/") {
			clone := *n
			clone.Children = update(n.Children, path, fn)
			out[i] = &clone
			return out
		}
	}
	return out
}

func remove(nodes []*models.Node, path string) ([]*models.Node, []string, bool) {
	for i, n := range nodes {
		if n.Path == path {
			out := make([]*models.Node, 0, len(nodes)-1)
			out = append(out, nodes[:i]...)
			out = append(out, nodes[i+1:]...)
			return out, (&Tree{roots: []*models.Node{n}}).FilePaths(), true
		}
		if n.IsFolder() && strings.HasPrefix(path, n.Path+"/") {
			children, removed, ok := remove(n.Children, path)
			if !ok {
				return nodes, nil, false
			}
			clone := *n
			clone.Children = children

			out := make([]*models.Node, len(nodes))
			copy(out, nodes)
			out[i] = &clone
			return out, removed, true
		}
	}
	return nodes, nil, false
}

// JoinPath joins a parent path and a name
func JoinPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}

// ValidateName checks that name is usable as a single path segment
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return models.NewError(models.KindInvalidName, name, "name cannot be empty")
	case name == "." || name == "..":
		return models.NewError(models.KindInvalidName, name, "reserved name")
	case strings.ContainsAny(name, "/\\"):
		return models.NewError(models.KindInvalidName, name, "name cannot contain path separators")
	}
	return nil
}
