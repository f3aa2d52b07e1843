// Package workspace owns the in-memory project: file contents, the file
// tree, the open tabs and the simulated git and package state. All changes
// go through a Store, which keeps these parts consistent and publishes an
// immutable Snapshot after every mutation.
package workspace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jakoblorz/go-codebuilder/internal/filetree"
	"github.com/jakoblorz/go-codebuilder/internal/git"
	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/pathtable"
	"github.com/jakoblorz/go-codebuilder/internal/tabs"
	"github.com/jakoblorz/go-codebuilder/internal/templates"
)

const (
	// SeedPath is the file every new workspace starts with
	SeedPath = "src/index.js"

	// SeedContent is the content of SeedPath in a new workspace
	SeedContent = "// Start coding here!\nconsole.log(\"Hello World\");"

	// MaxRecentTemplates bounds the recent template list
	MaxRecentTemplates = 5

	// DefaultAuthor signs simulated commits
	DefaultAuthor = "CodeBuilder Pro <codebuilder@localhost>"
)

// Catalog resolves template ids
type Catalog interface {
	Get(id string) (*models.Template, error)
}

// Listener receives every published snapshot
type Listener func(Snapshot)

type subscriber struct {
	id int
	fn Listener
}

// Store is the single owner of workspace state.
type Store struct {
	// mu serializes mutations
	mu sync.Mutex

	// snapMu guards snap for readers
	snapMu sync.RWMutex
	snap   Snapshot

	subMu  sync.Mutex
	subs   []subscriber
	nextID int

	catalog Catalog
	now     func() time.Time
	author  string
}

// Option configures a Store.
type Option func(*Store)

// WithCatalog sets the template catalog used by ApplyTemplate
func WithCatalog(c Catalog) Option {
	return func(s *Store) {
		s.catalog = c
	}
}

// WithClock sets the time source used for commits
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithAuthor sets the author recorded on commits
func WithAuthor(author string) Option {
	return func(s *Store) {
		s.author = author
	}
}

// WithSnapshot starts the store from snap instead of the seed project
func WithSnapshot(snap Snapshot) Option {
	return func(s *Store) {
		s.snap = snap
	}
}

// New creates a Store holding the seed project unless WithSnapshot is given.
func New(options ...Option) *Store {
	s := &Store{
		snap:   seedSnapshot(),
		now:    time.Now,
		author: DefaultAuthor,
	}

	for _, option := range options {
		option(s)
	}

	if s.catalog == nil {
		s.catalog = templates.MustDefault()
	}

	return s
}

func seedSnapshot() Snapshot {
	tree, err := filetree.FromPaths([]string{SeedPath})
	if err != nil {
		panic(err)
	}
	return Snapshot{
		Table:           pathtable.New().Write(SeedPath, SeedContent),
		Tree:            tree,
		Ring:            tabs.New([]string{SeedPath}, SeedPath),
		Git:             git.Status{Modified: []string{}, Staged: []string{}},
		Packages:        []models.PackageEntry{},
		RecentTemplates: []string{},
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// Subscribe registers fn to be called with every new snapshot, after the
// mutation that produced it has released the store. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// mutate runs fn against the current snapshot under the write lock. When fn
// reports a change the result is published and subscribers are notified.
func (s *Store) mutate(fn func(cur Snapshot) (Snapshot, bool, error)) error {
	s.mu.Lock()

	cur := s.Snapshot()
	next, changed, err := fn(cur)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}

	next.Version = cur.Version + 1
	s.snapMu.Lock()
	s.snap = next
	s.snapMu.Unlock()
	s.mu.Unlock()

	s.notify(next)
	return nil
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

// Replace swaps the whole state for snap, as when a session is restored
func (s *Store) Replace(snap Snapshot) {
	_ = s.mutate(func(Snapshot) (Snapshot, bool, error) {
		return snap, true, nil
	})
	slog.Debug("workspace replaced", "files", snap.Table.Len())
}
