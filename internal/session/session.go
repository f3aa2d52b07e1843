// Package session persists a workspace between CLI invocations.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jakoblorz/go-codebuilder/internal/filesystem"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

// FileName is the session file inside the session directory
const FileName = "session.json"

// Session is the on-disk record of a workspace
type Session struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	State     workspace.State `json:"state"`
}

// Store reads and writes the session file of one directory.
type Store struct {
	fs  filesystem.FileSystem
	dir string
	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the time source for session timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store for dir
func NewStore(fs filesystem.FileSystem, dir string, options ...Option) *Store {
	s := &Store{fs: fs, dir: dir, now: time.Now}
	for _, option := range options {
		option(s)
	}
	return s
}

// Path returns the session file path
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Exists reports whether a session has been saved
func (s *Store) Exists() bool {
	return s.fs.Exists(s.Path())
}

// Read loads the saved session
func (s *Store) Read() (*Session, error) {
	data, err := s.fs.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", s.Path(), err)
	}
	return &sess, nil
}

// Open restores the saved workspace, or starts a new session holding the
// seed project when none exists. options are passed to workspace.New.
func (s *Store) Open(options ...workspace.Option) (*workspace.Store, *Session, error) {
	if !s.Exists() {
		now := s.now()
		sess := &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
		ws := workspace.New(options...)
		sess.State = ws.Snapshot().State()
		slog.Debug("new session", "id", sess.ID)
		return ws, sess, nil
	}

	sess, err := s.Read()
	if err != nil {
		return nil, nil, err
	}
	snap, err := workspace.FromState(sess.State)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore session %s: %w", sess.ID, err)
	}

	ws := workspace.New(append([]workspace.Option{workspace.WithSnapshot(snap)}, options...)...)
	slog.Debug("session restored", "id", sess.ID, "files", snap.Table.Len())
	return ws, sess, nil
}

// Save records snap in sess and writes it. The file is replaced
// atomically through a temporary file in the same directory.
func (s *Store) Save(sess *Session, snap workspace.Snapshot) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
		sess.CreatedAt = s.now()
	}
	sess.UpdatedAt = s.now()
	sess.State = snap.State()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := s.Path() + ".tmp"
	if err := s.fs.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := s.fs.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}

// Reset removes the saved session
func (s *Store) Reset() error {
	if !s.Exists() {
		return nil
	}
	if err := s.fs.Remove(s.Path()); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
