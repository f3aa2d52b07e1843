// Package tabs tracks the open files of a workspace and which one is active.
package tabs

import (
	"slices"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// Ring is an ordered, duplicate-free set of open paths with at most one
// active path. The active path is always a member of the ring.
//
// Ring is a value type; methods return a modified copy.
type Ring struct {
	paths  []string
	active string
}

// New creates a ring holding paths (duplicates dropped) with active set to
// active. An active path that is not open is ignored.
func New(paths []string, active string) Ring {
	var r Ring
	for _, p := range paths {
		if !slices.Contains(r.paths, p) {
			r.paths = append(r.paths, p)
		}
	}
	if slices.Contains(r.paths, active) {
		r.active = active
	}
	return r
}

// Paths returns the open paths in tab order
func (r Ring) Paths() []string {
	return slices.Clone(r.paths)
}

// Active returns the active path, or false when no file is active
func (r Ring) Active() (string, bool) {
	return r.active, r.active != ""
}

// Contains reports whether path is open
func (r Ring) Contains(path string) bool {
	return slices.Contains(r.paths, path)
}

// Len returns the number of open paths
func (r Ring) Len() int {
	return len(r.paths)
}

// Open adds path if it is not open yet and makes it active
func (r Ring) Open(path string) Ring {
	next := Ring{paths: slices.Clone(r.paths), active: path}
	if !slices.Contains(next.paths, path) {
		next.paths = append(next.paths, path)
	}
	return next
}

// Close removes path. When it was active, the first remaining path becomes
// active, or none when the ring is empty.
func (r Ring) Close(path string) Ring {
	idx := slices.Index(r.paths, path)
	if idx < 0 {
		return r
	}

	next := Ring{paths: slices.Delete(slices.Clone(r.paths), idx, idx+1), active: r.active}
	if r.active == path {
		next.active = ""
		if len(next.paths) > 0 {
			next.active = next.paths[0]
		}
	}
	return next
}

// CloseWhere closes every path for which match returns true
func (r Ring) CloseWhere(match func(path string) bool) Ring {
	next := r
	for _, p := range r.paths {
		if match(p) {
			next = next.Close(p)
		}
	}
	return next
}

// SetActive points the active path at an open path. An empty path clears
// the active path.
func (r Ring) SetActive(path string) (Ring, error) {
	if path == "" {
		return Ring{paths: slices.Clone(r.paths)}, nil
	}
	if !slices.Contains(r.paths, path) {
		return r, models.NewError(models.KindNotOpen, path, "file is not open")
	}
	return Ring{paths: slices.Clone(r.paths), active: path}, nil
}
