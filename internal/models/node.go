package models

import (
	"fmt"
)

// NodeKind represents the kind of a node in the workspace tree
type NodeKind string

const (
	NodeFile   NodeKind = "file"
	NodeFolder NodeKind = "folder"
)

// IsValid checks if the node kind is valid
func (k NodeKind) IsValid() bool {
	switch k {
	case NodeFile, NodeFolder:
		return true
	default:
		return false
	}
}

// String returns the string representation of NodeKind
func (k NodeKind) String() string {
	return string(k)
}

// ParseNodeKind parses a string into a NodeKind
func ParseNodeKind(s string) (NodeKind, error) {
	k := NodeKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid node kind: %s (must be file or folder)", s)
	}
	return k, nil
}

// Node is one entry of the workspace tree.
//
// Nodes are shared between snapshots and must not be modified once they
// are reachable from a tree.
type Node struct {
	// Name is the display segment (never contains a slash)
	Name string `json:"name"`

	// Path is the slash-joined identifier from the workspace root
	Path string `json:"path"`

	// Kind is either file or folder
	Kind NodeKind `json:"type"`

	// Children holds the ordered children of a folder, nil for files
	Children []*Node `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder
func (n *Node) IsFolder() bool {
	return n.Kind == NodeFolder
}

// FileRef is a file entry produced by a tree traversal
type FileRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
