package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jakoblorz/go-codebuilder/internal/ai"
	"github.com/jakoblorz/go-codebuilder/internal/filesystem"
	"github.com/jakoblorz/go-codebuilder/internal/github"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/templates"
	"github.com/jakoblorz/go-codebuilder/internal/terminal"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

const configPath = "/cfg/config.toml"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakePrompter struct {
	template string
	confirm  bool
	text     string

	confirmedFiles []string
}

func (p *fakePrompter) PickTemplate(list []*models.Template) (string, error) {
	return p.template, nil
}

func (p *fakePrompter) ConfirmDelete(path string, files []string) (bool, error) {
	p.confirmedFiles = files
	return p.confirm, nil
}

func (p *fakePrompter) AskText(title, placeholder string) (string, error) {
	return p.text, nil
}

// testEnv is the state shared by consecutive invocations: the disk, the
// environment and the remote services
type testEnv struct {
	t           *testing.T
	fs          *filesystem.MockFileSystem
	env         map[string]string
	github      *github.MockClient
	prompter    *fakePrompter
	interactive bool
	stdin       string
	aiReply     string
	aiRequests  int
	aiURL       string

	edit      func(path, content string) (string, bool, error)
	shellRuns int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fs := filesystem.NewMockFileSystem()
	fs.SetCurrentDir("/proj")

	e := &testEnv{
		t:        t,
		fs:       fs,
		env:      map[string]string{},
		github:   github.NewMockClient("octocat"),
		prompter: &fakePrompter{},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.aiRequests++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": e.aiReply}}},
		})
	}))
	t.Cleanup(srv.Close)
	e.aiURL = srv.URL

	return e
}

func (e *testEnv) app() *App {
	return &App{
		FS:          e.fs,
		Catalog:     templates.MustDefault(),
		Stdin:       strings.NewReader(e.stdin),
		Getenv:      func(k string) string { return e.env[k] },
		Now:         func() time.Time { return fixedNow },
		Interactive: e.interactive,
		GitHub:      func(string) github.GitHubClient { return e.github },
		AIOptions:   []ai.Option{ai.WithURL(e.aiURL), ai.WithRateLimit(rate.Inf, 1)},
		Prompter:    e.prompter,
		Edit: func(path, content string) (string, bool, error) {
			if e.edit == nil {
				return content, false, nil
			}
			return e.edit(path, content)
		},
		Shell: func(ctx context.Context, term *terminal.Terminal) error {
			e.shellRuns++
			term.Execute(ctx, "ls")
			return nil
		},
		TerminalOptions: []terminal.Option{terminal.WithInstallDelay(0)},
	}
}

// run executes one invocation with a fresh App and returns its output
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	app := e.app()
	root := NewRootCommand(app)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

func TestSeedWorkspace(t *testing.T) {
	e := newTestEnv(t)

	require.Equal(t, "* src/index.js\n", e.mustRun("tabs"))
	require.Equal(t, workspace.SeedContent, e.mustRun("cat"))
	require.False(t, e.fs.Exists("/proj/.codebuilder/session.json"), "read-only commands must not create a session")
}

func TestFilesPersistAcrossInvocations(t *testing.T) {
	e := newTestEnv(t)

	require.Equal(t, "Created file src/lib/util.js\n", e.mustRun("add", "-p", "src/lib/util.js"))
	require.True(t, e.fs.Exists("/proj/.codebuilder/session.json"))

	e.stdin = "export const x = 1;\n"
	e.mustRun("write", "src/lib/util.js")

	require.Equal(t, "export const x = 1;\n", e.mustRun("cat", "src/lib/util.js"))
	require.Equal(t, "  src/index.js\n* src/lib/util.js\n", e.mustRun("tabs"))

	out := e.mustRun("files")
	require.Contains(t, out, "index.js")
	require.Contains(t, out, "src/lib/util.js")

	out = e.mustRun("tree")
	require.Contains(t, out, "lib")
	require.Contains(t, out, "util.js")

	require.Equal(t, "* src/index.js\n", e.mustRun("close", "src/lib/util.js"))
	require.Equal(t, "  src/index.js\n* src/lib/util.js\n", e.mustRun("open", "src/lib/util.js"))
}

func TestAdd_Errors(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run("add", "missing/a.js")
	require.ErrorIs(t, err, models.ErrParentNotFound)

	_, err = e.run("add", "src/index.js")
	require.ErrorIs(t, err, models.ErrDuplicateName)

	_, err = e.run("write", "nope.js", "--content", "x")
	require.ErrorIs(t, err, models.ErrNotFound)

	e.mustRun("write", "--create", "docs/notes.md", "--content", "# Notes")
	require.Equal(t, "# Notes", e.mustRun("cat", "docs/notes.md"))

	_, err = e.run("add", "-p", "lib/deep/..")
	require.ErrorIs(t, err, models.ErrInvalidName)
	require.NotContains(t, e.mustRun("tree"), "deep")
}

func TestRemove(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("add", "-p", "src/lib/a.js")
	e.mustRun("add", "src/lib/b.js")

	e.interactive = true
	e.prompter.confirm = false
	require.Equal(t, "Aborted\n", e.mustRun("rm", "src/lib"))
	require.Equal(t, []string{"src/lib/a.js", "src/lib/b.js"}, e.prompter.confirmedFiles)

	e.prompter.confirm = true
	require.Equal(t, "Deleted src/lib (2 file(s))\n", e.mustRun("rm", "src/lib"))
	require.Equal(t, "* src/index.js\n", e.mustRun("tabs"))

	_, err := e.run("rm", "src/lib")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestCat_NoActiveFile(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("close")

	_, err := e.run("cat")
	require.ErrorIs(t, err, models.ErrNoActiveFile)
	require.Equal(t, "No open files\n", e.mustRun("tabs"))
}

func TestEdit(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run("edit")
	require.Error(t, err)

	e.interactive = true
	e.edit = func(path, content string) (string, bool, error) {
		require.Equal(t, workspace.SeedPath, path)
		return "console.log(2);", true, nil
	}
	require.Equal(t, "Saved src/index.js\n", e.mustRun("edit"))
	require.Equal(t, "console.log(2);", e.mustRun("cat"))

	e.edit = func(path, content string) (string, bool, error) {
		return "discarded", false, nil
	}
	require.Equal(t, "No changes\n", e.mustRun("edit"))
	require.Equal(t, "console.log(2);", e.mustRun("cat"))
}

func TestNew(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun("new", "html-css-js")
	require.Contains(t, out, "Created 3 file(s):")
	require.Contains(t, out, "1. index.html")
	require.Equal(t, "* index.html\n  style.css\n  script.js\n", e.mustRun("tabs"))

	_, err := e.run("new", "cobol")
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = e.run("new")
	require.ErrorContains(t, err, "template is required")

	e.interactive = true
	e.prompter.template = ""
	require.Equal(t, "Aborted\n", e.mustRun("new"))

	e.prompter.template = "python"
	require.Contains(t, e.mustRun("new"), "main.py")

	out = e.mustRun("new", "--list")
	for _, id := range templates.MustDefault().IDs() {
		require.Contains(t, out, id)
	}
}

func TestExportImport(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun("export", "out/project.json")
	data, err := e.fs.ReadFile("/proj/out/project.json")
	require.NoError(t, err)
	require.JSONEq(t, `{"fileContents": {"src/index.js": `+mustJSON(t, workspace.SeedContent)+`}}`, string(data))

	e.stdin = `{"fileContents": {"index.html": "<h1>hi</h1>", "js/app.js": "go()"}}`
	require.Equal(t, "Imported 2 file(s)\n", e.mustRun("import", "-"))
	require.Equal(t, "go()", e.mustRun("cat", "js/app.js"))

	require.Equal(t, "Imported 1 file(s)\n", e.mustRun("import", "out/project.json"))
	require.JSONEq(t, string(data), e.mustRun("export"))

	e.stdin = `["not", "a", "project"]`
	_, err = e.run("import", "-")
	require.ErrorIs(t, err, models.ErrInvalidFormat)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestPreview(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("new", "html-css-js")

	require.Contains(t, e.mustRun("preview"), "<style>")
	require.Equal(t, "Wrote html preview to page.html\n", e.mustRun("preview", "-o", "page.html"))
	require.True(t, e.fs.Exists("/proj/page.html"))
}

func TestReset(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("new", "python")

	require.Equal(t, "Session reset\n", e.mustRun("reset"))
	require.False(t, e.fs.Exists("/proj/.codebuilder/session.json"))
	require.Equal(t, "* src/index.js\n", e.mustRun("tabs"))
}

func TestSearch_DoesNotCreateSession(t *testing.T) {
	e := newTestEnv(t)

	require.Equal(t, "No results\n", e.mustRun("search", "zzz"))
	require.False(t, e.fs.Exists("/proj/.codebuilder/session.json"))
}

func TestSearchReplace(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("write", "src/index.js", "--content", "const foo = 1;\nfoo(foo);\nFOO")

	require.Equal(t, "src/index.js\n     1: const foo = 1;\n     2: foo(foo);\n     3: FOO\n3 match(es) in 1 file(s)\n",
		e.mustRun("search", "foo"))
	require.Equal(t, "src/index.js\n     3: FOO\n1 match(es) in 1 file(s)\n", e.mustRun("search", "--case", "FOO"))
	require.Equal(t, "No results\n", e.mustRun("search", "bar"))

	_, err := e.run("search", "-r", "(")
	require.ErrorIs(t, err, models.ErrInvalidFormat)

	require.Equal(t, "  src/index.js\nReplaced 3 occurrence(s) in 1 file(s)\n", e.mustRun("replace", "-c", "foo", "bar"))
	require.Equal(t, "const bar = 1;\nbar(bar);\nFOO", e.mustRun("cat"))

	e.mustRun("replace", "-r", `const (\w+)`, "let $1")
	require.Equal(t, "let bar = 1;\nbar(bar);\nFOO", e.mustRun("cat"))
}

func TestGit(t *testing.T) {
	e := newTestEnv(t)

	require.Contains(t, e.mustRun("git", "status"), "nothing to commit, working tree clean")
	_, err := e.run("git", "push")
	require.ErrorContains(t, err, "no commits yet")

	e.mustRun("write", "src/index.js", "--content", "x")
	require.Contains(t, e.mustRun("git", "status"), "modified:   src/index.js")

	require.Equal(t, "Staged all changes\n", e.mustRun("git", "stage"))
	require.Contains(t, e.mustRun("git", "status"), "Changes to be committed:")

	require.Equal(t, "Committed: first\n", e.mustRun("git", "commit", "-m", "first"))
	out := e.mustRun("git", "log")
	require.Contains(t, out, "    first")
	require.Contains(t, out, "Date:   Fri Mar 1 12:00:00 2024 +0000")

	require.Equal(t, "Pushing to origin/main...\nPushed to origin/main\n", e.mustRun("git", "push"))

	e.interactive = true
	e.prompter.text = ""
	require.Equal(t, "Committed: "+"Update workspace files"+"\n", e.mustRun("git", "commit"))
}

func TestPackages(t *testing.T) {
	e := newTestEnv(t)

	require.Equal(t, "No packages installed\n", e.mustRun("pkg", "ls"))
	require.Equal(t, "Installing react...\n✓ Installed react@latest\n", e.mustRun("pkg", "add", "react"))
	e.mustRun("pkg", "add", "lodash@^4.17.21")
	e.mustRun("pkg", "add", "@types/node", "20.10.0")
	require.Equal(t, "react@latest\nlodash@^4.17.21\n@types/node@20.10.0\n", e.mustRun("pkg", "ls"))

	_, err := e.run("pkg", "add", "left-pad@not-a-version")
	require.ErrorIs(t, err, models.ErrInvalidFormat)

	require.Equal(t, "Removed react\n", e.mustRun("pkg", "rm", "react"))
	_, err = e.run("pkg", "rm", "react")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestParsePackageArgs(t *testing.T) {
	tests := []struct {
		args []string
		name string
		vers string
	}{
		{[]string{"react"}, "react", ""},
		{[]string{"react@18.2.0"}, "react", "18.2.0"},
		{[]string{"@types/node"}, "@types/node", ""},
		{[]string{"@types/node@20"}, "@types/node", "20"},
		{[]string{"vue", "^3.0.0"}, "vue", "^3.0.0"},
	}
	for _, tt := range tests {
		name, version := parsePackageArgs(tt.args)
		require.Equal(t, tt.name, name, tt.args)
		require.Equal(t, tt.vers, version, tt.args)
	}
}

func TestAI(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run("ai", "explain")
	require.ErrorIs(t, err, models.ErrMissingCredential)
	require.Equal(t, 0, e.aiRequests)

	e.env["OPENROUTER_API_KEY"] = "sk-test"

	_, err = e.run("ai", "suggest")
	require.ErrorIs(t, err, models.ErrInvalidFormat)

	_, err = e.run("ai", "rewrite")
	require.ErrorContains(t, err, "unknown action")

	e.aiReply = "It logs a greeting."
	require.Equal(t, "It logs a greeting.\n", e.mustRun("ai", "explain"))
	require.Equal(t, 1, e.aiRequests)

	e.aiReply = "Here you go:\n```js\nconsole.log(\"Hi\");\n```"
	require.Equal(t, "Applied suggestion to src/index.js\n", e.mustRun("ai", "suggest", "--apply", "say", "hi"))
	require.Equal(t, `console.log("Hi");`, e.mustRun("cat"))

	_, err = e.run("ai", "explain", "--apply")
	require.Error(t, err)

	e.mustRun("close")
	_, err = e.run("ai", "fix")
	require.ErrorIs(t, err, models.ErrNoActiveFile)
}

func TestDeploy(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("new", "html-css-js")

	_, err := e.run("deploy")
	require.ErrorIs(t, err, models.ErrMissingCredential)

	e.env["GITHUB_TOKEN"] = "ghp_test"
	out := e.mustRun("deploy")
	require.Contains(t, out, "Deploying 3 file(s) to my-code-project...")
	require.Contains(t, out, "Created repository https://github.com/octocat/my-code-project")
	require.Contains(t, out, github.SuccessMessage)

	files := e.github.Files("octocat", "my-code-project", "main")
	require.Len(t, files, 3)
	require.Contains(t, files, "index.html")
	require.Equal(t, "Deploy from CodeBuilder Pro - 2024-03-01T12:00:00.000Z",
		e.github.HeadCommit("octocat", "my-code-project", "main").Message)

	e.mustRun("config", "set", "commit_template", `{{ .Files }} files for {{ .Owner }}`)
	out = e.mustRun("deploy", "--repo", "site")
	require.NotContains(t, out, "Created repository https://github.com/octocat/my-code-project")
	require.Equal(t, "3 files for octocat", e.github.HeadCommit("octocat", "site", "main").Message)

	e.github.CreateBlobError = context.DeadlineExceeded
	_, err = e.run("deploy", "--repo", "other")
	require.ErrorIs(t, err, models.ErrExternalCallFailed)
}

func TestShell(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun("shell", "-c", "pwd", "-c", "npm install react")
	require.Contains(t, out, "$ pwd\n"+terminal.WorkingDirectory+"\n")
	require.Contains(t, out, "✓ Installed react")
	require.Equal(t, "react@latest\n", e.mustRun("pkg", "ls"))

	e.stdin = "echo hello\nexit\necho never\n"
	out = e.mustRun("shell", "--log", "term.log")
	require.Contains(t, out, "hello")
	require.NotContains(t, out, "never")

	data, err := e.fs.ReadFile("/proj/term.log")
	require.NoError(t, err)
	require.Contains(t, string(data), "[INPUT] $ echo hello\n[OUTPUT] hello")

	e.interactive = true
	e.mustRun("shell")
	require.Equal(t, 1, e.shellRuns)
}

func TestSync(t *testing.T) {
	e := newTestEnv(t)
	e.fs.AddFile("/site/index.html", []byte("<p>disk</p>"))
	e.fs.AddFile("/site/js/app.js", []byte("run()"))
	e.fs.AddFile("/site/node_modules/x/index.js", []byte("skip"))

	require.Equal(t, "Imported 2 file(s) from /site\n", e.mustRun("sync", "in", "/site"))
	require.Equal(t, "run()", e.mustRun("cat", "js/app.js"))

	e.mustRun("write", "index.html", "--content", "<p>edited</p>")
	require.Equal(t, "Wrote 2 file(s) to /proj/out\n", e.mustRun("sync", "out", "out"))
	data, err := e.fs.ReadFile("/proj/out/index.html")
	require.NoError(t, err)
	require.Equal(t, "<p>edited</p>", string(data))
}

func TestSync_SkipsSessionDir(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("add", "notes.md")
	e.fs.AddFile("/proj/app.js", []byte("x"))

	require.Equal(t, "Imported 1 file(s) from /proj\n", e.mustRun("sync", "in"))
}

func TestConfig(t *testing.T) {
	e := newTestEnv(t)

	require.Equal(t, configPath+"\n", e.mustRun("config", "path"))
	require.Equal(t, "my-code-project\n", e.mustRun("config", "get", "repo_name"))

	require.Equal(t, "Set github_token = ****************cdef\n", e.mustRun("config", "set", "github_token", "ghp_0123456789abcdef"))
	require.Equal(t, "****************cdef\n", e.mustRun("config", "get", "github_token"))
	require.Equal(t, "ghp_0123456789abcdef\n", e.mustRun("config", "get", "--reveal", "github_token"))

	e.env["GH_TOKEN"] = "from-env"
	require.Equal(t, "from-env\n", e.mustRun("config", "get", "--reveal", "github_token"))
	e.mustRun("config", "set", "repo_name", "site")
	data, err := e.fs.ReadFile(configPath)
	require.NoError(t, err)
	require.NotContains(t, string(data), "from-env")
	require.Contains(t, string(data), `repo_name = "site"`)

	out := e.mustRun("config", "list")
	require.Contains(t, out, `repo_name = "site"`)
	require.Contains(t, out, `listen = "127.0.0.1:7777"`)

	_, err = e.run("config", "set", "log_level", "loud")
	require.ErrorContains(t, err, "invalid log level")
	_, err = e.run("config", "set", "commit_template", "{{ .Nope")
	require.ErrorContains(t, err, "failed to parse commit message template")
	_, err = e.run("config", "get", "color")
	require.ErrorContains(t, err, "unknown config key")
}

func TestSessionDirFlag(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("--session-dir", "/state", "add", "a.js")

	require.True(t, e.fs.Exists("/state/session.json"))
	require.False(t, e.fs.Exists("/proj/.codebuilder/session.json"))
	require.Equal(t, "* src/index.js\n", e.mustRun("tabs"))
}

func TestExecute_WrapsErrors(t *testing.T) {
	e := newTestEnv(t)
	app := e.app()

	err := Execute(context.Background(), app, []string{"--config", configPath, "cat", "nope.js"})
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorContains(t, err, "command failed: file not found: nope.js")
}
