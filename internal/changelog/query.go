package changelog

import (
	"fmt"
	"strings"
)

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version           string
	AvailableVersions []string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableVersions, ", "))
}

// NormalizeVersion removes a "v" or "V" prefix so that "v0.6.0" and "0.6.0"
// address the same release.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(version), "v"), "V")
}

// Release retrieves a validated release by version. Accepts both "v1.2.0"
// and "1.2.0"; "unreleased" returns the Unreleased section. Versions match by
// precedence, so "1.2.0" finds "1.2.0+build.5"; the first match in
// descending order wins. Returns VersionNotFoundError otherwise.
func (r *Result) Release(version string) (*Record, []Subsection, error) {
	if strings.EqualFold(version, UnreleasedName) && r.Unreleased != nil {
		return r.Unreleased, r.UnreleasedSection.Subsections, nil
	}

	if want, err := ParseVersion(NormalizeVersion(version)); err == nil {
		for i, rel := range r.Releases {
			if rel.Version.Compare(want) == 0 {
				return &r.AllReleases[i], rel.Subsections, nil
			}
		}
	}

	return nil, nil, &VersionNotFoundError{
		Version:           version,
		AvailableVersions: r.ListVersions(),
	}
}

// ListVersions returns the version names of all validated releases in
// descending precedence, preceded by "Unreleased" when present.
func (r *Result) ListVersions() []string {
	versions := make([]string, 0, len(r.AllReleases)+1)
	if r.Unreleased != nil {
		versions = append(versions, UnreleasedName)
	}
	for _, rec := range r.AllReleases {
		versions = append(versions, rec.Name)
	}
	return versions
}

// Latest returns the highest precedence release, or nil if there is none.
func (r *Result) Latest() *Release {
	if len(r.Releases) == 0 {
		return nil
	}
	return &r.Releases[0]
}

// GetEntryCount returns the total number of items across all validated releases.
func (r *Result) GetEntryCount() int {
	count := 0
	for _, rel := range r.Releases {
		for _, sub := range rel.Subsections {
			count += len(sub.Items)
		}
	}
	return count
}
