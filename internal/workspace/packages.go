package workspace

import (
	"slices"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// LatestVersion is recorded when a package is installed without a version
const LatestVersion = "latest"

// InstallPackage records name at version, updating the version in place if
// the package is already installed.
func (s *Store) InstallPackage(name, version string) (models.PackageEntry, error) {
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if version == "" {
		version = LatestVersion
	}
	if err := validatePackage(name, version); err != nil {
		return models.PackageEntry{}, err
	}

	entry := models.PackageEntry{Name: name, Version: version}
	err := s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		if existing, ok := cur.Package(name); ok && existing.Version == version {
			return cur, false, nil
		}
		next := cur
		next.Packages = upsertPackage(slices.Clone(cur.Packages), entry)
		return next, true, nil
	})
	return entry, err
}

// RemovePackage drops name from the package list and reports whether it
// was installed.
func (s *Store) RemovePackage(name string) bool {
	removed := false
	_ = s.mutate(func(cur Snapshot) (Snapshot, bool, error) {
		if _, ok := cur.Package(name); !ok {
			return cur, false, nil
		}
		next := cur
		next.Packages = slices.DeleteFunc(slices.Clone(cur.Packages), func(p models.PackageEntry) bool {
			return p.Name == name
		})
		removed = true
		return next, true, nil
	})
	return removed
}

func upsertPackage(packages []models.PackageEntry, entry models.PackageEntry) []models.PackageEntry {
	for i, p := range packages {
		if p.Name == entry.Name {
			packages[i] = entry
			return packages
		}
	}
	return append(packages, entry)
}

func validatePackage(name, version string) error {
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return models.NewError(models.KindInvalidName, name, "invalid package name")
	}
	if !ValidVersion(version) {
		return models.NewError(models.KindInvalidFormat, version, "invalid version for "+name)
	}
	return nil
}

// ValidVersion accepts "latest" or a semantic version with an optional
// leading v and an optional ^ or ~ range prefix.
func ValidVersion(version string) bool {
	if version == LatestVersion {
		return true
	}
	v := strings.TrimLeft(version, "^~")
	if len(version)-len(v) > 1 {
		return false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v)
}
