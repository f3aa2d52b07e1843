package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockFileSystem_WriteRequiresParent(t *testing.T) {
	mfs := NewMockFileSystem()

	err := mfs.WriteFile("/w/a.txt", []byte("a"), 0644)
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, mfs.MkdirAll("/w", 0755))
	require.NoError(t, mfs.WriteFile("/w/a.txt", []byte("a"), 0644))

	data, err := mfs.ReadFile("/w/a.txt")
	require.NoError(t, err)
	require.Equal(t, "a", string(data))
}

func TestMockFileSystem_MkdirAllRelative(t *testing.T) {
	mfs := NewMockFileSystem()

	require.NoError(t, mfs.MkdirAll("out/src/lib", 0755))
	require.Equal(t, []string{"out", "out/src", "out/src/lib"}, mfs.Paths())
}

func TestMockFileSystem_MkdirAllThroughFile(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/w/a", nil)

	require.Error(t, mfs.MkdirAll("/w/a/b", 0755))
}

func TestMockFileSystem_Rename(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/w/tmp", []byte("x"))

	require.NoError(t, mfs.Rename("/w/tmp", "/w/final"))
	require.False(t, mfs.Exists("/w/tmp"))

	data, err := mfs.ReadFile("/w/final")
	require.NoError(t, err)
	require.Equal(t, "x", string(data))
}

func TestMockFileSystem_RenameErrors(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/w/dir/a", []byte("a"))

	tests := []struct {
		name     string
		from, to string
		wantErr  error
	}{
		{name: "missing source", from: "/w/nope", to: "/w/b", wantErr: fs.ErrNotExist},
		{name: "missing target dir", from: "/w/dir/a", to: "/x/b", wantErr: fs.ErrNotExist},
		{name: "directory", from: "/w/dir", to: "/w/other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mfs.Rename(tt.from, tt.to)

			var linkErr *os.LinkError
			require.ErrorAs(t, err, &linkErr)
			require.Equal(t, "rename", linkErr.Op)
			require.Equal(t, tt.from, linkErr.Old)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	require.True(t, mfs.Exists("/w/dir/a"))
}

func TestMockFileSystem_RemoveNonEmptyDir(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/w/a", nil)

	require.Error(t, mfs.Remove("/w"))
	require.NoError(t, mfs.Remove("/w/a"))
	require.NoError(t, mfs.Remove("/w"))
}

func TestMockFileSystem_WalkDirSkipDir(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/w/a.txt", nil)
	mfs.AddFile("/w/node_modules/x/index.js", nil)
	mfs.AddFile("/w/node_modules.txt", nil)
	mfs.AddFile("/w/src/b.txt", nil)

	var visited []string
	err := mfs.WalkDir("/w", func(p string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() && d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"/w", "/w/a.txt", "/w/node_modules.txt", "/w/src", "/w/src/b.txt"}, visited)
}

func TestMockFileSystem_WalkDirMissingRoot(t *testing.T) {
	mfs := NewMockFileSystem()

	err := mfs.WalkDir("/nope", func(p string, d fs.DirEntry, err error) error {
		return err
	})
	require.ErrorIs(t, err, fs.ErrNotExist)
}
