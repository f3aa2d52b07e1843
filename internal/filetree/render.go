package filetree

import (
	"fmt"
	"io"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// Render writes the tree using box-drawing connectors. Folders get a
// trailing slash.
func (t *Tree) Render(w io.Writer) error {
	return render(w, t.roots, "")
}

func render(w io.Writer, nodes []*models.Node, indent string) error {
	for i, n := range nodes {
		last := i == len(nodes)-1
		prefix, childIndent := "├── ", "│   "
		if last {
			prefix, childIndent = "└── ", "    "
		}

		name := n.Name
		if n.IsFolder() {
			name += "/"
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, prefix, name); err != nil {
			return err
		}
		if n.IsFolder() {
			if err := render(w, n.Children, indent+childIndent); err != nil {
				return err
			}
		}
	}
	return nil
}
