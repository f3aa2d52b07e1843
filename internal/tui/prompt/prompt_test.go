package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-codebuilder/internal/templates"
)

func TestTemplateOptions(t *testing.T) {
	list := templates.MustDefault().List()
	opts := TemplateOptions(list)
	require.Len(t, opts, len(list))

	for i, o := range opts {
		require.Equal(t, list[i].ID, o.Value)
		require.Contains(t, o.Key, list[i].Name)
	}
}

func TestRenderTemplateApplied(t *testing.T) {
	tpl, err := templates.MustDefault().Get("html-css-js")
	require.NoError(t, err)

	out := RenderTemplateApplied(tpl)
	require.Contains(t, out, "Created 3 file(s):")
	require.Contains(t, out, "  1. index.html\n  2. style.css\n  3. script.js\n")
}
