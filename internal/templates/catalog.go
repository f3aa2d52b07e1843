package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

//go:embed catalog
var catalogFS embed.FS

// manifestName is the per-template frontmatter file
const manifestName = "template.md"

// manifest is the frontmatter of a template.md file
type manifest struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Order       int      `yaml:"order"`
	Files       []string `yaml:"files"`
}

// Catalog holds the project starters available to the workspace
type Catalog struct {
	templates []*models.Template
	byID      map[string]*models.Template
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded templates
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(catalogFS, "catalog")
		if err != nil {
			defaultErr = fmt.Errorf("failed to open embedded catalog: %w", err)
			return
		}
		defaultCatalog, defaultErr = Load(sub)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot recover from a broken binary
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads every <id>/template.md in fsys together with the files it lists
// under <id>/files/.
func Load(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	type ordered struct {
		order int
		tpl   *models.Template
	}
	var found []ordered

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		tpl, order, err := loadTemplate(fsys, id)
		if err != nil {
			return nil, err
		}
		found = append(found, ordered{order: order, tpl: tpl})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].order != found[j].order {
			return found[i].order < found[j].order
		}
		return found[i].tpl.ID < found[j].tpl.ID
	})

	c := &Catalog{byID: make(map[string]*models.Template, len(found))}
	for _, f := range found {
		c.templates = append(c.templates, f.tpl)
		c.byID[f.tpl.ID] = f.tpl
	}
	return c, nil
}

func loadTemplate(fsys fs.FS, id string) (*models.Template, int, error) {
	data, err := fs.ReadFile(fsys, path.Join(id, manifestName))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read manifest for template %s: %w", id, err)
	}

	var m manifest
	if _, err := frontmatter.Parse(bytes.NewReader(data), &m); err != nil {
		return nil, 0, fmt.Errorf("failed to parse manifest for template %s: %w", id, err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, 0, fmt.Errorf("template %s has no name", id)
	}
	if len(m.Files) == 0 {
		return nil, 0, fmt.Errorf("template %s lists no files", id)
	}

	tpl := &models.Template{
		ID:          id,
		Name:        m.Name,
		Description: m.Description,
		Files:       make([]models.TemplateFile, 0, len(m.Files)),
	}
	for _, p := range m.Files {
		body, err := fs.ReadFile(fsys, path.Join(id, "files", p))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read %s of template %s: %w", p, id, err)
		}
		tpl.Files = append(tpl.Files, models.TemplateFile{Path: p, Content: string(body)})
	}
	return tpl, m.Order, nil
}

// List returns the templates in display order
func (c *Catalog) List() []*models.Template {
	out := make([]*models.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// IDs returns the template ids in display order
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.templates))
	for _, t := range c.templates {
		ids = append(ids, t.ID)
	}
	return ids
}

// Get looks a template up by id
func (c *Catalog) Get(id string) (*models.Template, error) {
	tpl, ok := c.byID[id]
	if !ok {
		return nil, models.NewError(models.KindNotFound, id, "unknown template")
	}
	return tpl, nil
}
