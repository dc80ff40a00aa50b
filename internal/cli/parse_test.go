package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse_Text(t *testing.T) {
	path := writeChangelog(t, testChangelog)

	stdout, stderr, err := execute(t, "--changelog", path, "parse")
	require.NoError(t, err)

	want := "## Unreleased\n\n### Added\n  - Upcoming\n" +
		"\n## v1.1.0 (2024-02-01)\n\n### Added\n  - Feature A\n\n### Fixed\n  - Bug B\n" +
		"\n## v1.0.0 (2024-01-15)\n\n### Added\n  - Initial release\n"
	assert.Equal(t, want, stdout)
	assert.Contains(t, stderr, `[skipped] line 17: "not-a-version"`)
}

func TestParse_DefaultChangelogFromConfig(t *testing.T) {
	path := writeChangelog(t, validChangelog)
	cfgPath := filepath.Join(t.TempDir(), ".kacl.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("changelog: "+path+"\n"), 0o644))

	stdout, _, err := execute(t, "--config", cfgPath, "parse")
	require.NoError(t, err)
	assert.Contains(t, stdout, "## v2.0.0 (2024-05-01)")
}

func TestParse_JSON(t *testing.T) {
	path := writeChangelog(t, testChangelog)

	stdout, _, err := execute(t, "--changelog", path, "--format", "json", "parse")
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.Equal(t, path, report.Source)
	require.NotNil(t, report.Unreleased)
	assert.Equal(t, "Unreleased", report.Unreleased.Name)
	assert.Equal(t, map[string]string{"Added": "- Upcoming"}, report.Unreleased.Metadata)

	require.NotNil(t, report.CurrentRelease)
	assert.Equal(t, "1.1.0", report.CurrentRelease.Name)
	assert.Equal(t, map[string]string{
		"Added": "- Feature A",
		"Fixed": "- Bug B",
		"Date":  "2024-02-01",
	}, report.CurrentRelease.Metadata)

	require.Len(t, report.AllReleases, 2)
	assert.Equal(t, "1.1.0", report.AllReleases[0].Name)
	assert.Equal(t, "1.0.0", report.AllReleases[1].Name)
	assert.Equal(t, "### Added\n- Feature A\n### Fixed\n- Bug B\n", report.LatestReleaseNotes)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 17, report.Skipped[0].Line)
	assert.Equal(t, "not-a-version", report.Skipped[0].Version)
}

func TestParse_YAML(t *testing.T) {
	path := writeChangelog(t, validChangelog)

	stdout, _, err := execute(t, "--changelog", path, "--format", "yaml", "parse")
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &report))
	require.NotNil(t, report.CurrentRelease)
	assert.Equal(t, "2.0.0", report.CurrentRelease.Name)
	assert.Nil(t, report.Unreleased)
}

func TestParse_Batch(t *testing.T) {
	first := writeChangelog(t, testChangelog)
	second := writeChangelog(t, validChangelog)
	missing := filepath.Join(t.TempDir(), "CHANGELOG.md")

	stdout, stderr, err := execute(t, "parse", first, second, missing)
	require.Error(t, err)
	assert.Equal(t, ExitMissingDependencies, ExitCode(err))

	assert.Contains(t, stdout, first)
	assert.Contains(t, stdout, second)
	assert.Less(t, strings.Index(stdout, first), strings.Index(stdout, second))
	assert.Contains(t, stdout, "## v2.0.0 (2024-05-01)")
	assert.Contains(t, stderr, "CNG0002")
	assert.Contains(t, stderr, first+`: [skipped] line 17`)
}

func TestParse_BatchJSON(t *testing.T) {
	first := writeChangelog(t, testChangelog)
	second := writeChangelog(t, validChangelog)

	stdout, _, err := execute(t, "--format", "json", "parse", first, second)
	require.NoError(t, err)

	var doc parseDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Len(t, doc.Changelogs, 2)
	assert.Equal(t, first, doc.Changelogs[0].Source)
	assert.Equal(t, "1.1.0", doc.Changelogs[0].CurrentRelease.Name)
	assert.Equal(t, second, doc.Changelogs[1].Source)
	assert.Equal(t, "2.0.0", doc.Changelogs[1].CurrentRelease.Name)
}

func TestParse_FailFast(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "CHANGELOG.md")
	valid := writeChangelog(t, validChangelog)

	_, stderr, err := execute(t, "parse", "--fail-fast", missing, valid)
	require.Error(t, err)
	assert.Equal(t, ExitMissingDependencies, ExitCode(err))
	assert.Contains(t, stderr, "CNG0002")
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "malformed.md")
	require.NoError(t, os.WriteFile(malformed, []byte("just some text\n"), 0o644))
	unreleasedOnly := filepath.Join(dir, "unreleased.md")
	require.NoError(t, os.WriteFile(unreleasedOnly, []byte("## [Unreleased]\n### Added\n- Soon\n"), 0o644))

	tests := map[string]struct {
		args     []string
		wantCode int
		wantErr  string
	}{
		"missing file": {
			args:     []string{"--changelog", filepath.Join(dir, "nope.md"), "parse"},
			wantCode: ExitMissingDependencies,
			wantErr:  "CNG0002",
		},
		"malformed document": {
			args:     []string{"--changelog", malformed, "parse"},
			wantCode: ExitValidationFailed,
			wantErr:  "CNG0003",
		},
		"release required": {
			args:     []string{"--changelog", unreleasedOnly, "--require-release", "parse"},
			wantCode: ExitValidationFailed,
			wantErr:  "CNG0004",
		},
		"empty changelog path": {
			args:     []string{"--changelog", "", "parse"},
			wantCode: ExitInvalidArguments,
			wantErr:  "CNG0001",
		},
		"bad format": {
			args:     []string{"--changelog", malformed, "--format", "xml", "parse"},
			wantCode: ExitInvalidArguments,
			wantErr:  `invalid value "xml" for --format`,
		},
		"bad duplicates": {
			args:     []string{"--changelog", malformed, "--duplicates", "keep", "parse"},
			wantCode: ExitInvalidArguments,
			wantErr:  `invalid value "keep" for --duplicates`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_UnreleasedOnlyIsNotAnError(t *testing.T) {
	path := writeChangelog(t, "## [Unreleased]\n### Added\n- Soon\n")

	stdout, _, err := execute(t, "--changelog", path, "--format", "json", "parse")
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Nil(t, report.CurrentRelease)
	assert.Empty(t, report.AllReleases)
	assert.Empty(t, report.LatestReleaseNotes)
	assert.Contains(t, stdout, `"all_releases": []`)
}

func TestParse_DuplicatesMerge(t *testing.T) {
	path := writeChangelog(t, "## [1.0.0] - 2024-01-01\n### Added\n- One\n### Added\n- Two\n")

	stdout, _, err := execute(t, "--changelog", path, "--format", "json", "--duplicates", "merge", "current")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"Added": "- One\n- Two"`)

	stdout, _, err = execute(t, "--changelog", path, "--format", "json", "current")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"Added": "- Two"`)
}
