package filetree

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// FromPaths builds a tree from flat file paths. Every directory segment
// becomes a folder; folders and files appear in the order they are first
// seen. Repeated paths are ignored.
func FromPaths(paths []string) (*Tree, error) {
	var roots []*models.Node
	folders := map[string]*models.Node{}
	files := map[string]bool{}

	for _, p := range paths {
		if files[p] {
			continue
		}
		segments := strings.Split(p, "/")
		for _, seg := range segments {
			if err := ValidateName(seg); err != nil {
				return nil, models.NewError(models.KindInvalidName, p, "invalid path")
			}
		}

		parentPath := ""
		siblings := &roots
		for i, seg := range segments {
			current := JoinPath(parentPath, seg)
			last := i == len(segments)-1

			if last {
				if _, isFolder := folders[current]; isFolder {
					return nil, models.NewError(models.KindDuplicateName, current, "path is both a file and a folder")
				}
				*siblings = append(*siblings, &models.Node{Name: seg, Path: current, Kind: models.NodeFile})
				files[current] = true
				break
			}

			if files[current] {
				return nil, models.NewError(models.KindDuplicateName, current, "path is both a file and a folder")
			}
			folder, ok := folders[current]
			if !ok {
				folder = &models.Node{Name: seg, Path: current, Kind: models.NodeFolder, Children: []*models.Node{}}
				folders[current] = folder
				*siblings = append(*siblings, folder)
			}
			parentPath = current
			siblings = &folder.Children
		}
	}

	return &Tree{roots: roots}, nil
}

// FromNodes wraps previously serialized nodes after checking the tree
// invariants: consistent paths, valid names, unique sibling names and no
// children below files.
func FromNodes(roots []*models.Node) (*Tree, error) {
	if err := validate(roots, ""); err != nil {
		return nil, err
	}
	return &Tree{roots: roots}, nil
}

func validate(nodes []*models.Node, parentPath string) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n == nil {
			return models.NewError(models.KindInvalidFormat, parentPath, "empty node")
		}
		if err := ValidateName(n.Name); err != nil {
			return err
		}
		if !n.Kind.IsValid() {
			return models.NewError(models.KindInvalidFormat, n.Path, fmt.Sprintf("invalid node kind %q", n.Kind))
		}
		if want := JoinPath(parentPath, n.Name); n.Path != want {
			return models.NewError(models.KindInvalidFormat, n.Path, fmt.Sprintf("path does not match location %s", want))
		}
		if seen[n.Name] {
			return models.NewError(models.KindDuplicateName, n.Path, "an entry with this name already exists")
		}
		seen[n.Name] = true

		if !n.IsFolder() {
			if len(n.Children) > 0 {
				return models.NewError(models.KindInvalidFormat, n.Path, "file node has children")
			}
			continue
		}
		if n.Children == nil {
			n.Children = []*models.Node{}
		}
		if err := validate(n.Children, n.Path); err != nil {
			return err
		}
	}
	return nil
}
