package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileSystem provides in-memory filesystem for testing. It is safe for
// concurrent use.
type MockFileSystem struct {
	mu         sync.RWMutex
	files      map[string]*MockFile
	currentDir string
	now        func() time.Time
}

// MockFile represents a file in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates a new MockFileSystem
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:      make(map[string]*MockFile),
		currentDir: "/workspace",
		now:        time.Now,
	}
}

// AddFile adds a file and its parent directories to the mock filesystem
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.addParents(cleanPath, 0755)
	mfs.files[cleanPath] = &MockFile{
		Content: content,
		Mode:    0644,
		ModTime: mfs.now(),
	}
}

// AddDir adds a directory and its parents to the mock filesystem
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mkdirAll(filepath.Clean(path), 0755)
}

func (mfs *MockFileSystem) addParents(cleanPath string, perm fs.FileMode) {
	if dir := filepath.Dir(cleanPath); dir != cleanPath {
		mfs.mkdirAll(dir, perm)
	}
}

func (mfs *MockFileSystem) mkdirAll(cleanPath string, perm fs.FileMode) {
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return
	}
	if _, exists := mfs.files[cleanPath]; exists {
		return
	}
	mfs.addParents(cleanPath, perm)
	mfs.files[cleanPath] = &MockFile{
		Mode:    perm | fs.ModeDir,
		ModTime: mfs.now(),
		IsDir:   true,
	}
}

func (mfs *MockFileSystem) hasDir(cleanPath string) bool {
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return true
	}
	f, exists := mfs.files[cleanPath]
	return exists && f.IsDir
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return nil, &fs.PathError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}
	return append([]byte(nil), file.Content...), nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if !mfs.hasDir(filepath.Dir(cleanPath)) {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if f, exists := mfs.files[cleanPath]; exists && f.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}

	mfs.files[cleanPath] = &MockFile{
		Content: append([]byte(nil), data...),
		Mode:    perm,
		ModTime: mfs.now(),
	}
	return nil
}

func (mfs *MockFileSystem) Rename(oldPath, newPath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	src, dst := filepath.Clean(oldPath), filepath.Clean(newPath)
	file, exists := mfs.files[src]
	if !exists {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: errors.New("renaming directories is not supported")}
	}
	if !mfs.hasDir(filepath.Dir(dst)) {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}

	delete(mfs.files, src)
	mfs.files[dst] = file
	return nil
}

func (mfs *MockFileSystem) Remove(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		prefix := cleanPath + string(filepath.Separator)
		for p := range mfs.files {
			if strings.HasPrefix(p, prefix) {
				return &fs.PathError{Op: "remove", Path: path, Err: errors.New("directory not empty")}
			}
		}
	}
	delete(mfs.files, cleanPath)
	return nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	for p := cleanPath; p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
		if f, exists := mfs.files[p]; exists && !f.IsDir {
			return &fs.PathError{Op: "mkdir", Path: p, Err: errors.New("not a directory")}
		}
	}
	mfs.mkdirAll(cleanPath, perm)
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return fileInfo(cleanPath, file), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, exists := mfs.files[filepath.Clean(path)]
	return exists
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.currentDir, nil
}

// WalkDir visits root and everything below it in lexical order. Returning
// fs.SkipDir from a directory skips its contents; from a file it skips the
// remaining entries of the parent directory.
func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	cleanRoot := filepath.Clean(root)

	mfs.mu.RLock()
	if _, exists := mfs.files[cleanRoot]; !exists {
		mfs.mu.RUnlock()
		return fn(root, nil, &fs.PathError{Op: "lstat", Path: root, Err: fs.ErrNotExist})
	}

	type visit struct {
		path  string
		entry fs.DirEntry
	}
	var visits []visit
	for p, f := range mfs.files {
		if p == cleanRoot || strings.HasPrefix(p, cleanRoot+string(filepath.Separator)) {
			visits = append(visits, visit{path: p, entry: &mockDirEntry{info: fileInfo(p, f)}})
		}
	}
	mfs.mu.RUnlock()

	// Sorting by path segments keeps a directory's children directly after it
	sort.Slice(visits, func(i, j int) bool {
		return comparePaths(visits[i].path, visits[j].path) < 0
	})

	var skipped []string
	isSkipped := func(p string) bool {
		for _, s := range skipped {
			if strings.HasPrefix(p, s+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	for _, v := range visits {
		if isSkipped(v.path) {
			continue
		}
		err := fn(v.path, v.entry, nil)
		switch {
		case err == nil:
		case errors.Is(err, fs.SkipAll):
			return nil
		case errors.Is(err, fs.SkipDir):
			if v.path == cleanRoot {
				return nil
			}
			if v.entry.IsDir() {
				skipped = append(skipped, v.path)
			} else {
				skipped = append(skipped, filepath.Dir(v.path))
			}
		default:
			return err
		}
	}

	return nil
}

func comparePaths(a, b string) int {
	as := strings.Split(a, string(filepath.Separator))
	bs := strings.Split(b, string(filepath.Separator))
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func fileInfo(p string, f *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(p),
		size:    int64(len(f.Content)),
		mode:    f.Mode,
		modTime: f.ModTime,
		isDir:   f.IsDir,
	}
}

// SetCurrentDir sets the current working directory for the mock
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.currentDir = dir
}

// Paths returns every file and directory path in lexical order (helper for
// testing)
func (mfs *MockFileSystem) Paths() []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	paths := make([]string, 0, len(mfs.files))
	for p := range mfs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
