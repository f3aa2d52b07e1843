// Package config loads and saves the user settings of codebuilder: API
// credentials, deploy target, logging and server options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jakoblorz/go-codebuilder/internal/filesystem"
)

const (
	// DefaultRepoName is the deploy target when none is configured
	DefaultRepoName = "my-code-project"

	// DefaultSessionDir holds session.json, relative to the working directory
	DefaultSessionDir = ".codebuilder"

	// DefaultListen is the address of codebuilder serve
	DefaultListen = "127.0.0.1:7777"

	// DefaultLogLevel is used when no level is configured
	DefaultLogLevel = "warn"
)

// Config holds the user settings
type Config struct {
	// OpenRouterAPIKey authenticates AI requests
	OpenRouterAPIKey string `toml:"openrouter_api_key"`

	// Model overrides the default OpenRouter model
	Model string `toml:"model"`

	// GitHubToken authenticates deploys
	GitHubToken string `toml:"github_token"`

	// RepoName is the repository deploys go to
	RepoName string `toml:"repo_name"`

	// CommitTemplate renders deploy commit messages
	CommitTemplate string `toml:"commit_template"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `toml:"log_level"`

	// SessionDir holds the persisted workspace
	SessionDir string `toml:"session_dir"`

	// Listen is the address codebuilder serve binds to
	Listen string `toml:"listen"`
}

// Default returns a Config with every default filled in
func Default() *Config {
	return &Config{
		RepoName:   DefaultRepoName,
		LogLevel:   DefaultLogLevel,
		SessionDir: DefaultSessionDir,
		Listen:     DefaultListen,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/codebuilder/config.toml or the
// platform equivalent
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find config directory: %w", err)
	}
	return filepath.Join(dir, "codebuilder", "config.toml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are not applied; see ApplyEnv.
func Load(fsys filesystem.FileSystem, path string) (*Config, error) {
	cfg := Default()

	data, err := fsys.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.RepoName == "" {
		c.RepoName = d.RepoName
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.SessionDir == "" {
		c.SessionDir = d.SessionDir
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
}

// ApplyEnv overrides settings from the environment: OPENROUTER_API_KEY,
// GH_TOKEN then GITHUB_TOKEN, and CODEBUILDER_MODEL
func (c *Config) ApplyEnv(getenv func(string) string) {
	if key := getenv("OPENROUTER_API_KEY"); key != "" {
		c.OpenRouterAPIKey = key
	}
	if token := getenv("GH_TOKEN"); token != "" {
		c.GitHubToken = token
	} else if token := getenv("GITHUB_TOKEN"); token != "" {
		c.GitHubToken = token
	}
	if model := getenv("CODEBUILDER_MODEL"); model != "" {
		c.Model = model
	}
}

// Save writes c to path with owner-only permissions, creating the
// directory if needed
func (c *Config) Save(fsys filesystem.FileSystem, path string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# codebuilder configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := fsys.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

type field struct {
	get    func(*Config) string
	set    func(*Config, string)
	secret bool
}

var fields = map[string]field{
	"openrouter_api_key": {
		get:    func(c *Config) string { return c.OpenRouterAPIKey },
		set:    func(c *Config, v string) { c.OpenRouterAPIKey = v },
		secret: true,
	},
	"model": {
		get: func(c *Config) string { return c.Model },
		set: func(c *Config, v string) { c.Model = v },
	},
	"github_token": {
		get:    func(c *Config) string { return c.GitHubToken },
		set:    func(c *Config, v string) { c.GitHubToken = v },
		secret: true,
	},
	"repo_name": {
		get: func(c *Config) string { return c.RepoName },
		set: func(c *Config, v string) { c.RepoName = v },
	},
	"commit_template": {
		get: func(c *Config) string { return c.CommitTemplate },
		set: func(c *Config, v string) { c.CommitTemplate = v },
	},
	"log_level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) { c.LogLevel = v },
	},
	"session_dir": {
		get: func(c *Config) string { return c.SessionDir },
		set: func(c *Config, v string) { c.SessionDir = v },
	},
	"listen": {
		get: func(c *Config) string { return c.Listen },
		set: func(c *Config, v string) { c.Listen = v },
	},
}

// Keys lists the settable keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key. Secrets are masked unless reveal is set.
func (c *Config) Get(key string, reveal bool) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	v := f.get(c)
	if f.secret && !reveal {
		return Mask(v), nil
	}
	return v, nil
}

// Set assigns value to key
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if key == "log_level" {
		if _, err := ParseLevel(value); err != nil {
			return err
		}
	}
	f.set(c, value)
	return nil
}

// Mask hides all but the last four characters of a secret
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
