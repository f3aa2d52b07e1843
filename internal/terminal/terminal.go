// Package terminal implements the simulated shell of the workspace: a
// fixed command table that reads workspace state, runs JavaScript in a
// sandbox and simulates package installs.
package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/jakoblorz/go-codebuilder/internal/git"
	"github.com/jakoblorz/go-codebuilder/internal/highlight"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/task"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

const (
	// WorkingDirectory is what pwd reports
	WorkingDirectory = "/workspace/codebuilder-pro"

	nodeVersion = "v20.10.0 (simulated)"
	npmVersion  = "10.2.0 (simulated)"
	bunVersion  = "1.0.20 (simulated)"

	dateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"
)

// Welcome is printed when a terminal starts
var Welcome = []string{
	"Welcome to CodeBuilder Pro Terminal",
	`Type "help" for available commands`,
}

// Workspace is the part of the store the terminal uses
type Workspace interface {
	Snapshot() workspace.Snapshot
	InstallPackage(name, version string) (models.PackageEntry, error)
}

type command func(ctx context.Context, t *Terminal, args []string)

type helpEntry struct {
	usage       string
	description string
}

var helpEntries = []helpEntry{
	{"help", "Show this help message"},
	{"clear", "Clear terminal"},
	{"run", "Run current file (JS/Python)"},
	{"ls", "List files"},
	{"cat <file>", "Display file contents"},
	{"echo <text>", "Print text"},
	{"date", "Show current date/time"},
	{"node -v", "Show Node.js version"},
	{"npm -v", "Show npm version"},
	{"bun -v", "Show Bun version"},
	{"git status", "Show git status"},
	{"pwd", "Print working directory"},
}

// Terminal holds the line buffer and command history of one shell session.
// It is safe for concurrent use.
type Terminal struct {
	ws     Workspace
	runner Runner
	now    func() time.Time
	color  bool

	// installDelays maps a package manager to its simulated install time
	installDelays map[string]time.Duration

	mu      sync.Mutex
	lines   []Line
	history History

	commands map[string]command
}

// Option configures a Terminal
type Option func(*Terminal)

// WithClock sets the time source for timestamps and date
func WithClock(now func() time.Time) Option {
	return func(t *Terminal) {
		t.now = now
	}
}

// WithRunTimeout bounds script execution
func WithRunTimeout(d time.Duration) Option {
	return func(t *Terminal) {
		t.runner.Timeout = d
	}
}

// WithInstallDelay overrides the simulated install time of every package
// manager
func WithInstallDelay(d time.Duration) Option {
	return func(t *Terminal) {
		for name := range t.installDelays {
			t.installDelays[name] = d
		}
	}
}

// WithColor enables syntax highlighting for cat
func WithColor(enabled bool) Option {
	return func(t *Terminal) {
		t.color = enabled
	}
}

// New creates a Terminal over ws showing the welcome banner
func New(ws Workspace, options ...Option) *Terminal {
	t := &Terminal{
		ws:     ws,
		runner: Runner{Timeout: DefaultRunTimeout},
		now:    time.Now,
		installDelays: map[string]time.Duration{
			"npm": 500 * time.Millisecond,
			"bun": 300 * time.Millisecond,
		},
	}
	t.commands = map[string]command{
		"help":  cmdHelp,
		"clear": cmdClear,
		"run":   cmdRun,
		"ls":    cmdList,
		"cat":   cmdCat,
		"echo":  cmdEcho,
		"date":  cmdDate,
		"node":  cmdNode,
		"npm":   packageManager("npm", npmVersion),
		"bun":   packageManager("bun", bunVersion),
		"git":   cmdGit,
		"pwd":   cmdPwd,
	}

	for _, option := range options {
		option(t)
	}

	for _, l := range Welcome {
		t.emit(LineInfo, l)
	}
	return t
}

// Lines returns a copy of the current line buffer
func (t *Terminal) Lines() []Line {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Line(nil), t.lines...)
}

// Clear empties the line buffer
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = nil
}

// History returns the command history navigator
func (t *Terminal) History() *History {
	return &t.history
}

// Execute runs one command line and returns the lines it produced. Blank
// input is ignored. Execute blocks while a simulated install runs; ctx
// cancels it.
func (t *Terminal) Execute(ctx context.Context, input string) []Line {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	t.history.Push(input)

	t.mu.Lock()
	start := len(t.lines)
	t.mu.Unlock()

	t.emit(LineInput, "$ "+input)

	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	if cmd, ok := t.commands[name]; ok {
		cmd(ctx, t, args)
	} else {
		t.emit(LineError, fmt.Sprintf(`Command not found: %s. Type "help" for available commands.`, name))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if start > len(t.lines) {
		// clear ran
		start = 0
	}
	return append([]Line(nil), t.lines[start:]...)
}

func (t *Terminal) emit(typ LineType, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, Line{Type: typ, Content: content, Timestamp: t.now()})
}

func (t *Terminal) emitText(typ LineType, text string) {
	for _, l := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		t.emit(typ, l)
	}
}

func cmdHelp(_ context.Context, t *Terminal, _ []string) {
	t.emit(LineOutput, "Available commands:")
	for _, h := range helpEntries {
		t.emit(LineOutput, fmt.Sprintf("  %-13s - %s", h.usage, h.description))
	}
}

func cmdClear(_ context.Context, t *Terminal, _ []string) {
	t.Clear()
}

func cmdEcho(_ context.Context, t *Terminal, args []string) {
	t.emit(LineOutput, strings.Join(args, " "))
}

func cmdDate(_ context.Context, t *Terminal, _ []string) {
	t.emit(LineOutput, t.now().Format(dateLayout))
}

func cmdPwd(_ context.Context, t *Terminal, _ []string) {
	t.emit(LineOutput, WorkingDirectory)
}

func cmdNode(_ context.Context, t *Terminal, args []string) {
	if isVersionFlag(args) {
		t.emit(LineOutput, nodeVersion)
		return
	}
	t.emit(LineError, "Usage: node -v")
}

func isVersionFlag(args []string) bool {
	return len(args) > 0 && (args[0] == "-v" || args[0] == "--version")
}

func cmdList(_ context.Context, t *Terminal, _ []string) {
	snap := t.ws.Snapshot()
	_ = snap.Tree.Walk(func(n *models.Node, depth int) error {
		name := n.Name
		if n.IsFolder() {
			name += "/"
		}
		t.emit(LineOutput, strings.Repeat("  ", depth)+name)
		return nil
	})
}

func cmdCat(_ context.Context, t *Terminal, args []string) {
	if len(args) == 0 {
		t.emit(LineError, "Usage: cat <filename>")
		return
	}

	filePath := strings.Join(args, " ")
	snap := t.ws.Snapshot()
	if content, ok := snap.Content(filePath); ok {
		if t.color {
			content = highlight.String(filePath, content)
		}
		for _, l := range strings.Split(content, "\n") {
			t.emit(LineOutput, l)
		}
		return
	}

	if filePath == "package.json" {
		t.emitText(LineOutput, packageManifest(snap.Packages))
		return
	}

	t.emit(LineError, "File not found: "+filePath)
}

// packageManifest renders the installed packages as a package.json
func packageManifest(packages []models.PackageEntry) string {
	type manifest struct {
		Name         string            `json:"name"`
		Version      string            `json:"version"`
		Description  string            `json:"description"`
		Dependencies map[string]string `json:"dependencies,omitempty"`
	}

	m := manifest{Name: "codebuilder-pro", Version: "1.0.0", Description: "A cutting-edge code editor"}
	if len(packages) > 0 {
		m.Dependencies = make(map[string]string, len(packages))
		for _, p := range packages {
			m.Dependencies[p.Name] = p.Version
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	_ = enc.Encode(m)
	return buf.String()
}

func packageManager(name, version string) command {
	usage := fmt.Sprintf("Usage: %s -v | %s install <package>", name, name)
	return func(ctx context.Context, t *Terminal, args []string) {
		switch {
		case isVersionFlag(args):
			t.emit(LineOutput, version)
		case len(args) > 0 && args[0] == "install":
			t.install(ctx, name, args[1:])
		default:
			t.emit(LineError, usage)
		}
	}
}

func (t *Terminal) install(ctx context.Context, manager string, args []string) {
	target, done := "dependencies", "all dependencies"
	if len(args) > 0 {
		target, done = args[0], args[0]
	}
	t.emit(LineInfo, fmt.Sprintf("Installing %s...", target))

	_, err := task.Run(ctx, t.installDelays[manager], func() (models.PackageEntry, error) {
		if len(args) == 0 {
			return models.PackageEntry{}, nil
		}
		name, version := SplitPackageSpec(args[0])
		return t.ws.InstallPackage(name, version)
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		t.emit(LineError, "Installation cancelled")
		return
	}
	if err != nil {
		t.emit(LineError, "Error: "+err.Error())
		return
	}

	slog.Debug("package installed", "manager", manager, "package", target)
	t.emit(LineOutput, "✓ Installed "+done)
}

// SplitPackageSpec splits "name@version"; a leading @ belongs to a scoped
// package name.
func SplitPackageSpec(spec string) (string, string) {
	i := strings.LastIndex(spec, "@")
	if i <= 0 {
		return spec, ""
	}
	return spec[:i], spec[i+1:]
}

func cmdGit(_ context.Context, t *Terminal, args []string) {
	var buf bytes.Buffer
	switch {
	case len(args) > 0 && args[0] == "status":
		git.WriteStatus(&buf, t.ws.Snapshot().Git)
	case len(args) > 0 && args[0] == "log":
		git.WriteLog(&buf, t.ws.Snapshot().Git)
	default:
		t.emit(LineError, "Usage: git status | git log")
		return
	}
	t.emitText(LineOutput, buf.String())
}

func cmdRun(ctx context.Context, t *Terminal, _ []string) {
	activePath, content, ok := t.ws.Snapshot().ActiveFile()
	if !ok {
		t.emit(LineError, "No file selected. Open a file first.")
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(activePath), "."))
	if ext == "" {
		ext = strings.ToLower(path.Base(activePath))
	}

	switch ext {
	case "js", "jsx", "ts", "tsx":
		t.emit(LineInfo, fmt.Sprintf("Running %s...", activePath))
		logs, err := t.runner.Run(ctx, activePath, content)
		if err != nil {
			t.emit(LineError, "Error: "+err.Error())
			return
		}
		if len(logs) == 0 {
			t.emit(LineOutput, "(no output)")
		}
		for _, l := range logs {
			t.emit(LineOutput, l)
		}
		t.emit(LineInfo, "Execution completed")
	case "py":
		t.emit(LineInfo, "Python execution requires a backend server.")
		t.emit(LineOutput, "To run Python code, deploy to a server with Python runtime.")
	default:
		t.emit(LineError, fmt.Sprintf("Cannot run .%s files. Supported: .js, .jsx, .ts, .tsx", ext))
	}
}
