package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jakoblorz/go-codebuilder/internal/ai"
	"github.com/jakoblorz/go-codebuilder/internal/config"
	"github.com/jakoblorz/go-codebuilder/internal/filesystem"
	"github.com/jakoblorz/go-codebuilder/internal/github"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/session"
	"github.com/jakoblorz/go-codebuilder/internal/templates"
	"github.com/jakoblorz/go-codebuilder/internal/terminal"
	"github.com/jakoblorz/go-codebuilder/internal/tui/components"
	"github.com/jakoblorz/go-codebuilder/internal/tui/prompt"
	"github.com/jakoblorz/go-codebuilder/internal/tui/shell"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

const (
	// PushDelay is how long a simulated push takes
	PushDelay = 600 * time.Millisecond

	// InstallDelay is how long a simulated package install takes
	InstallDelay = 500 * time.Millisecond
)

// Prompter asks the user for input in interactive sessions
type Prompter interface {
	PickTemplate(list []*models.Template) (string, error)
	ConfirmDelete(path string, files []string) (bool, error)
	AskText(title, placeholder string) (string, error)
}

// App carries the collaborators the commands share. NewApp wires the
// production ones; tests replace individual fields.
type App struct {
	FS      filesystem.FileSystem
	Catalog *templates.Catalog
	Stdin   io.Reader

	// Getenv reads environment overrides for the config
	Getenv func(string) string

	// Now is the clock for commits, sessions and deploy messages
	Now func() time.Time

	// Interactive enables prompts, the editor and the shell UI
	Interactive bool

	// Color enables syntax highlighting in cat
	Color bool

	// LevelVar receives the configured log level
	LevelVar *slog.LevelVar

	// GitHub builds the deploy client for a token
	GitHub func(token string) github.GitHubClient

	// AIOptions are passed to every OpenRouter client
	AIOptions []ai.Option

	Prompter Prompter

	// Edit runs the editor and returns the content and whether it was saved
	Edit func(path, content string) (string, bool, error)

	// Shell runs the interactive terminal
	Shell shellRunner

	PushDelay    time.Duration
	InstallDelay time.Duration

	// TerminalOptions are passed to every terminal after the defaults
	TerminalOptions []terminal.Option

	// set per invocation by the root command
	configPath string
	sessionDir string
	logLevel   string

	saveMu       sync.Mutex
	cfg          *config.Config
	sessions     *session.Store
	sess         *session.Session
	store        *workspace.Store
	startVersion uint64
}

// NewApp returns an App wired for the real terminal and disk
func NewApp() *App {
	return &App{
		FS:           filesystem.NewOSFileSystem(),
		Catalog:      templates.MustDefault(),
		Stdin:        os.Stdin,
		Getenv:       os.Getenv,
		Now:          time.Now,
		LevelVar:     &slog.LevelVar{},
		GitHub:       func(token string) github.GitHubClient { return github.NewClient(token) },
		Prompter:     prompt.New(),
		Edit:         components.Edit,
		Shell:        shell.Run,
		PushDelay:    PushDelay,
		InstallDelay: InstallDelay,
	}
}

// Config loads the config file once and applies environment overrides
func (a *App) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	path, err := a.ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(a.FS, path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(a.Getenv)

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.LevelVar != nil {
		level, err := config.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		a.LevelVar.Set(level)
	}

	a.cfg = cfg
	return cfg, nil
}

// ConfigPath returns the --config path or the default location
func (a *App) ConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultPath()
}

// Sessions returns the session store for the configured directory,
// resolved against the working directory
func (a *App) Sessions() (*session.Store, error) {
	if a.sessions != nil {
		return a.sessions, nil
	}

	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	dir := cfg.SessionDir
	if a.sessionDir != "" {
		dir = a.sessionDir
	}
	dir, err = a.Resolve(dir)
	if err != nil {
		return nil, err
	}

	a.sessions = session.NewStore(a.FS, dir, session.WithClock(a.Now))
	return a.sessions, nil
}

// Resolve makes p absolute against the working directory
func (a *App) Resolve(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := a.FS.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, p), nil
}

// Workspace opens the session workspace on first use
func (a *App) Workspace() (*workspace.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	sessions, err := a.Sessions()
	if err != nil {
		return nil, err
	}
	store, sess, err := sessions.Open(
		workspace.WithCatalog(a.Catalog),
		workspace.WithClock(a.Now),
	)
	if err != nil {
		return nil, err
	}

	a.store = store
	a.sess = sess
	a.startVersion = store.Snapshot().Version
	return store, nil
}

// Save writes the workspace back to the session when it changed
func (a *App) Save() error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	if a.store == nil {
		return nil
	}
	snap := a.store.Snapshot()
	if snap.Version == a.startVersion {
		return nil
	}
	if err := a.sessions.Save(a.sess, snap); err != nil {
		return err
	}
	a.startVersion = snap.Version
	slog.Debug("session saved", "id", a.sess.ID, "path", a.sessions.Path())
	return nil
}

// discard drops the open workspace without saving it
func (a *App) discard() {
	a.store = nil
	a.sess = nil
}

// Terminal creates a terminal over the workspace
func (a *App) Terminal(store *workspace.Store) *terminal.Terminal {
	options := []terminal.Option{
		terminal.WithClock(a.Now),
		terminal.WithColor(a.Color),
	}
	return terminal.New(store, append(options, a.TerminalOptions...)...)
}

// AIClient creates an OpenRouter client from the config
func (a *App) AIClient() (*ai.Client, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	options := []ai.Option{}
	if cfg.Model != "" {
		options = append(options, ai.WithModel(cfg.Model))
	}
	return ai.New(cfg.OpenRouterAPIKey, append(options, a.AIOptions...)...), nil
}
