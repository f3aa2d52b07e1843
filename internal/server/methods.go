package server

import (
	"encoding/json"

	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/preview"
)

type method func(params json.RawMessage) (any, error)

type pathParams struct {
	Path string `json:"path"`
}

type addEntryParams struct {
	ParentPath string          `json:"parentPath"`
	Name       string          `json:"name"`
	Kind       models.NodeKind `json:"type"`
}

type updateContentParams struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type searchParams struct {
	Query       string               `json:"query"`
	Replacement string               `json:"replacement"`
	Options     models.SearchOptions `json:"options"`
}

type templateParams struct {
	ID string `json:"id"`
}

type commitParams struct {
	Message string `json:"message"`
}

type packageParams struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type status struct {
	Status string `json:"status"`
}

var statusOK = status{Status: "ok"}

// decode unmarshals params into a T. Missing params decode to the zero T.
func decode[T any](params json.RawMessage) (T, error) {
	var v T
	if len(params) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(params, &v); err != nil {
		return v, &paramsError{err: err}
	}
	return v, nil
}

func (s *Server) routes() map[string]method {
	return map[string]method{
		"snapshot": func(json.RawMessage) (any, error) {
			snap := s.store.Snapshot()
			return changed{Version: snap.Version, State: snap.State()}, nil
		},

		"addEntry": func(raw json.RawMessage) (any, error) {
			p, err := decode[addEntryParams](raw)
			if err != nil {
				return nil, err
			}
			path, err := s.store.AddEntry(p.ParentPath, p.Name, p.Kind)
			if err != nil {
				return nil, err
			}
			return pathParams{Path: path}, nil
		},

		"deleteEntry": func(raw json.RawMessage) (any, error) {
			p, err := decode[pathParams](raw)
			if err != nil {
				return nil, err
			}
			removed := s.store.DeleteEntry(p.Path)
			if removed == nil {
				removed = []string{}
			}
			return map[string][]string{"removed": removed}, nil
		},

		"updateContent": func(raw json.RawMessage) (any, error) {
			p, err := decode[updateContentParams](raw)
			if err != nil {
				return nil, err
			}
			return map[string]bool{"changed": s.store.UpdateContent(p.Path, p.Content)}, nil
		},

		"openFile": func(raw json.RawMessage) (any, error) {
			p, err := decode[pathParams](raw)
			if err != nil {
				return nil, err
			}
			return statusOK, s.store.OpenFile(p.Path)
		},

		"closeFile": func(raw json.RawMessage) (any, error) {
			p, err := decode[pathParams](raw)
			if err != nil {
				return nil, err
			}
			s.store.CloseFile(p.Path)
			return statusOK, nil
		},

		"setActive": func(raw json.RawMessage) (any, error) {
			p, err := decode[pathParams](raw)
			if err != nil {
				return nil, err
			}
			return statusOK, s.store.SetActive(p.Path)
		},

		"applyTemplate": func(raw json.RawMessage) (any, error) {
			p, err := decode[templateParams](raw)
			if err != nil {
				return nil, err
			}
			return s.store.ApplyTemplate(p.ID)
		},

		"search": func(raw json.RawMessage) (any, error) {
			p, err := decode[searchParams](raw)
			if err != nil {
				return nil, err
			}
			results, err := s.store.SearchAcrossFiles(p.Query, p.Options)
			if err != nil {
				return nil, err
			}
			if results == nil {
				results = []models.SearchResult{}
			}
			return results, nil
		},

		"setSearchQuery": func(raw json.RawMessage) (any, error) {
			p, err := decode[searchParams](raw)
			if err != nil {
				return nil, err
			}
			s.store.SetSearchQuery(models.SearchQuery{Query: p.Query, Replace: p.Replacement, Options: p.Options})
			return statusOK, nil
		},

		"replace": func(raw json.RawMessage) (any, error) {
			p, err := decode[searchParams](raw)
			if err != nil {
				return nil, err
			}
			return s.store.ReplaceAcrossFiles(p.Query, p.Replacement, p.Options)
		},

		"import": func(raw json.RawMessage) (any, error) {
			if err := s.store.ImportProject(raw); err != nil {
				return nil, err
			}
			return statusOK, nil
		},

		"export": func(json.RawMessage) (any, error) {
			data, err := s.store.ExportProject()
			if err != nil {
				return nil, err
			}
			return json.RawMessage(data), nil
		},

		"stageAll": func(json.RawMessage) (any, error) {
			s.store.StageAll()
			return statusOK, nil
		},

		"commit": func(raw json.RawMessage) (any, error) {
			p, err := decode[commitParams](raw)
			if err != nil {
				return nil, err
			}
			return s.store.Commit(p.Message)
		},

		"installPackage": func(raw json.RawMessage) (any, error) {
			p, err := decode[packageParams](raw)
			if err != nil {
				return nil, err
			}
			return s.store.InstallPackage(p.Name, p.Version)
		},

		"removePackage": func(raw json.RawMessage) (any, error) {
			p, err := decode[packageParams](raw)
			if err != nil {
				return nil, err
			}
			return map[string]bool{"removed": s.store.RemovePackage(p.Name)}, nil
		},

		"listTemplates": func(json.RawMessage) (any, error) {
			return s.templates.List(), nil
		},

		"preview": func(json.RawMessage) (any, error) {
			page, kind := preview.Render(s.store.Snapshot().Table)
			return map[string]string{"html": page, "kind": string(kind)}, nil
		},
	}
}
