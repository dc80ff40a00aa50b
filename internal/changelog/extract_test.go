package changelog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SingleRelease(t *testing.T) {
	doc, err := Parse("## [1.2.0] - 2023-01-01\n### Added\n- Thing")
	require.NoError(t, err)

	ex := Extract(doc)
	require.Len(t, ex.Releases, 1)
	assert.Empty(t, ex.Skipped)

	rel := ex.Releases[0]
	assert.Equal(t, "1.2.0", rel.Version.String())
	assert.Equal(t, "2023-01-01", rel.Date.String())
	assert.Equal(t, 0, rel.Index)
	assert.Equal(t, map[string]string{"Added": "- Thing"}, Metadata(rel.Subsections, DuplicateOverwrite))
}

func TestExtract_DropsInvalidSections(t *testing.T) {
	input := "## [2.0.0] - 2023-03-01\n### Added\n- Two\n" +
		"## [not-a-version] - 2023-02-01\n### Added\n- Bad version\n" +
		"## [1.5.0] - 2023-02-30\n### Added\n- Bad date\n" +
		"## [1.4.0]\n### Added\n- No date\n" +
		"## 1.3.0 - 2023-01-15\n### Added\n- No brackets\n" +
		"## [1.0.0] - 2023-01-01\n### Added\n- One\n"

	doc, err := Parse(input)
	require.NoError(t, err)

	ex := Extract(doc)
	require.Len(t, ex.Releases, 2)
	assert.Equal(t, "2.0.0", ex.Releases[0].Version.String())
	assert.Equal(t, 0, ex.Releases[0].Index)
	assert.Equal(t, "1.0.0", ex.Releases[1].Version.String())
	assert.Equal(t, 5, ex.Releases[1].Index)

	tests := map[string]struct {
		index   int
		line    int
		version string
		wantErr error
	}{
		"bad version": {index: 1, line: 4, version: "not-a-version", wantErr: ErrInvalidVersion},
		"bad date":    {index: 2, line: 7, version: "1.5.0", wantErr: ErrInvalidDate},
		"no date":     {index: 3, line: 10, version: "1.4.0", wantErr: ErrInvalidDate},
		"no brackets": {index: 4, line: 13, version: "1.3.0 - 2023-01-15", wantErr: ErrInvalidVersion},
	}

	require.Len(t, ex.Skipped, len(tests))
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var found *Skipped
			for i := range ex.Skipped {
				if ex.Skipped[i].Index == tt.index {
					found = &ex.Skipped[i]
				}
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.line, found.Line)
			assert.Equal(t, tt.version, found.Version)
			assert.True(t, errors.Is(found.Reason, tt.wantErr), "reason: %v", found.Reason)
			assert.Contains(t, found.Message(), "skipped")
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	doc, err := Parse("## [Unreleased]\n### Fixed\n- Bug fix\n")
	require.NoError(t, err)

	ex := Extract(doc)
	assert.NotNil(t, ex.Releases)
	assert.Empty(t, ex.Releases)
	assert.Empty(t, ex.Skipped)

	assert.Empty(t, Extract(nil).Releases)
}

func TestNormalizeSection_KeepsYanked(t *testing.T) {
	rel, err := NormalizeSection(Section{Heading: "[0.0.5] - 2014-12-13 [YANKED]", Version: "0.0.5", Date: "2014-12-13", Yanked: true})
	require.NoError(t, err)
	assert.True(t, rel.Yanked)
}
