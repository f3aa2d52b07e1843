package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

func TestInstallPackage(t *testing.T) {
	s := New()

	entry, err := s.InstallPackage("react", "")
	require.NoError(t, err)
	require.Equal(t, models.PackageEntry{Name: "react", Version: "latest"}, entry)

	_, err = s.InstallPackage("lodash", "^4.17.21")
	require.NoError(t, err)

	_, err = s.InstallPackage("react", "18.2.0")
	require.NoError(t, err)

	require.Equal(t, []models.PackageEntry{
		{Name: "react", Version: "18.2.0"},
		{Name: "lodash", Version: "^4.17.21"},
	}, s.Snapshot().Packages)
}

func TestInstallPackage_SameVersionIsNoop(t *testing.T) {
	s := NewBuilder().AddPackage("react", "latest").Build()

	_, err := s.InstallPackage("react", "latest")
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.Snapshot().Version)
}

func TestInstallPackage_Invalid(t *testing.T) {
	s := New()

	_, err := s.InstallPackage("react", "eighteen")
	require.ErrorIs(t, err, models.ErrInvalidFormat)

	_, err = s.InstallPackage("  ", "")
	require.ErrorIs(t, err, models.ErrInvalidName)

	require.Empty(t, s.Snapshot().Packages)
}

func TestRemovePackage(t *testing.T) {
	s := NewBuilder().AddPackage("a", "latest").AddPackage("b", "1.0.0").Build()

	require.True(t, s.RemovePackage("a"))
	require.False(t, s.RemovePackage("a"))
	require.Equal(t, []models.PackageEntry{{Name: "b", Version: "1.0.0"}}, s.Snapshot().Packages)
}

func TestValidVersion(t *testing.T) {
	tests := map[string]bool{
		"latest":       true,
		"1.2.3":        true,
		"v1.2.3":       true,
		"^18.2.0":      true,
		"~4.17.21":     true,
		"1.0.0-beta.1": true,
		"1.2":          true,
		"":             false,
		"^~1.0.0":      false,
		"next":         false,
		"1.2.3.4":      false,
	}

	for version, want := range tests {
		require.Equal(t, want, ValidVersion(version), version)
	}
}
