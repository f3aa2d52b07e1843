// Package preview renders the workspace as a single HTML page.
package preview

import (
	"bytes"
	"strings"
	"text/template"
)

// Source is the read side of the workspace contents
type Source interface {
	Read(path string) (string, bool)
}

var (
	htmlPaths   = []string{"index.html", "src/index.html"}
	cssPaths    = []string{"style.css", "src/style.css"}
	scriptPaths = []string{"script.js", "src/script.js", "src/index.js"}
	entryPaths  = []string{"src/index.js", "index.js"}
)

// ReloadScript makes the page reload when its embedder posts "reload"
const ReloadScript = `
<script>
  window.addEventListener('message', (e) => {
    if (e.data === 'reload') {
      location.reload();
    }
  });
</script>
`

const scriptPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Preview</title>
  <script src="https://cdn.tailwindcss.com"></script>
  <style>
    body { font-family: system-ui, sans-serif; }
    .preview-container { padding: 20px; }
  </style>
</head>
<body>
  <div id="root"></div>
  <script>
    const logs = [];
    const originalConsole = { ...console };
    ['log', 'error', 'warn', 'info'].forEach(method => {
      console[method] = (...args) => {
        logs.push({ type: method, args: args.map(a => typeof a === 'object' ? JSON.stringify(a) : String(a)) });
        originalConsole[method](...args);
      };
    });

    try {
      {{ .Script }}
    } catch (error) {
      document.getElementById('root').innerHTML = '<div style="color: red; padding: 20px;">Error: ' + error.message + '</div>';
    }
  </script>
</body>
</html>
`

// Placeholder is shown when the workspace has nothing to preview
const Placeholder = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Preview</title>
  <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-100 min-h-screen flex items-center justify-center">
  <div class="text-center p-8 bg-white rounded-xl shadow-lg max-w-md">
    <div class="text-6xl mb-4">🚀</div>
    <h1 class="text-2xl font-bold text-gray-800 mb-2">Live Preview</h1>
    <p class="text-gray-600 mb-4">Create an HTML or JavaScript file to see the preview here.</p>
    <div class="text-sm text-gray-500">
      Supported files: index.html, script.js, style.css
    </div>
  </div>
</body>
</html>
`

var scriptPage = template.Must(template.New("script").Parse(scriptPageTemplate))

// Kind tells which page Render produced
type Kind string

const (
	KindHTML        Kind = "html"
	KindScript      Kind = "script"
	KindPlaceholder Kind = "placeholder"
)

// Render builds the preview page for src.
//
// An index.html gets the stylesheet and script inlined unless it already
// carries inline ones, plus the reload listener. Without HTML, an entry
// script is wrapped in a console-capturing page. Otherwise the placeholder
// is returned.
func Render(src Source) (string, Kind) {
	if page, ok := first(src, htmlPaths); ok {
		return inject(src, page), KindHTML
	}

	if script, ok := first(src, entryPaths); ok {
		var buf bytes.Buffer
		if err := scriptPage.Execute(&buf, struct{ Script string }{Script: script}); err == nil {
			return buf.String(), KindScript
		}
	}

	return Placeholder, KindPlaceholder
}

func inject(src Source, page string) string {
	if css, ok := first(src, cssPaths); ok && !strings.Contains(page, "<style>") {
		page = strings.Replace(page, "</head>", "<style>"+css+"</style></head>", 1)
	}
	if js, ok := first(src, scriptPaths); ok && !strings.Contains(page, "<script>") {
		page = strings.Replace(page, "</body>", "<script>"+js+"</script></body>", 1)
	}
	if !strings.Contains(page, "window.addEventListener(") {
		page = strings.Replace(page, "</body>", ReloadScript+"</body>", 1)
	}
	return page
}

// first returns the first non-empty content among paths
func first(src Source, paths []string) (string, bool) {
	for _, p := range paths {
		if content, ok := src.Read(p); ok && content != "" {
			return content, true
		}
	}
	return "", false
}
