package changelog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChangelog = `# Changelog

All notable changes to this project will be documented in this file.

## [Unreleased]

### Added
- Upcoming feature

## [1.1.0] - 2024-02-01

Intro text that is not attached to any item.

### Added
- Feature A
  - Nested detail

### Fixed
- Bug B

## [1.0.0] - 2024-01-15
### Added
- Initial release

[Unreleased]: https://github.com/example/project/compare/v1.1.0...HEAD
[1.1.0]: https://github.com/example/project/compare/v1.0.0...v1.1.0
[1.0.0]: https://github.com/example/project/releases/tag/v1.0.0
`

func TestParse_SampleChangelog(t *testing.T) {
	doc, err := Parse(sampleChangelog)
	require.NoError(t, err)

	assert.Equal(t, "Changelog", doc.Title)

	require.NotNil(t, doc.Unreleased)
	assert.True(t, doc.Unreleased.IsUnreleased())
	require.Len(t, doc.Unreleased.Subsections, 1)
	assert.Equal(t, "Added", doc.Unreleased.Subsections[0].Category.Label)
	assert.Equal(t, []string{"- Upcoming feature"}, doc.Unreleased.Subsections[0].Texts())

	require.Len(t, doc.Releases, 2)

	first := doc.Releases[0]
	assert.Equal(t, "1.1.0", first.Version)
	assert.Equal(t, "2024-02-01", first.Date)
	assert.Equal(t, 10, first.Line)
	require.Len(t, first.Subsections, 2)
	assert.Equal(t, Added, first.Subsections[0].Category.Kind)
	assert.Equal(t, []string{"- Feature A", "  - Nested detail"}, first.Subsections[0].Texts())
	assert.Equal(t, Fixed, first.Subsections[1].Category.Kind)
	assert.Equal(t, []string{"- Bug B"}, first.Subsections[1].Texts())
	assert.Equal(t, 3, first.ItemCount())

	second := doc.Releases[1]
	assert.Equal(t, "1.0.0", second.Version)
	assert.Equal(t, "2024-01-15", second.Date)
	assert.Equal(t, []string{"- Initial release"}, second.Subsections[0].Texts(), "link definitions must not become items")

	require.Len(t, doc.Links, 3)
	assert.Equal(t, Link{Name: "Unreleased", URL: "https://github.com/example/project/compare/v1.1.0...HEAD"}, doc.Links[0])
}

func TestParse_HeaderForms(t *testing.T) {
	tests := map[string]struct {
		input       string
		wantVersion string
		wantDate    string
		wantYanked  bool
		unreleased  bool
	}{
		"dash separator":         {input: "## [1.2.0] - 2023-01-01", wantVersion: "1.2.0", wantDate: "2023-01-01"},
		"en dash separator":      {input: "## [1.2.0] – 2023-01-01", wantVersion: "1.2.0", wantDate: "2023-01-01"},
		"no separator":           {input: "## [1.2.0] 2023-01-01", wantVersion: "1.2.0", wantDate: "2023-01-01"},
		"no date":                {input: "## [1.2.0]", wantVersion: "1.2.0"},
		"first date wins":        {input: "## [1.2.0] - 2023-01-01 (was 2022-12-31)", wantVersion: "1.2.0", wantDate: "2023-01-01"},
		"yanked":                 {input: "## [0.0.5] - 2014-12-13 [YANKED]", wantVersion: "0.0.5", wantDate: "2014-12-13", wantYanked: true},
		"prerelease":             {input: "## [2.0.0-beta.1] - 2023-05-05", wantVersion: "2.0.0-beta.1", wantDate: "2023-05-05"},
		"invalid version kept":   {input: "## [not-a-version] - 2023-01-01", wantVersion: "not-a-version", wantDate: "2023-01-01"},
		"unreleased":             {input: "## [Unreleased]", unreleased: true},
		"unreleased lower":       {input: "## [unreleased]", unreleased: true},
		"unreleased unbracketed": {input: "## Unreleased", unreleased: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(tt.input + "\n### Added\n- Item\n")
			require.NoError(t, err)

			if tt.unreleased {
				require.NotNil(t, doc.Unreleased)
				assert.Empty(t, doc.Releases)
				return
			}

			require.Len(t, doc.Releases, 1)
			assert.Nil(t, doc.Unreleased)
			assert.Equal(t, tt.wantVersion, doc.Releases[0].Version)
			assert.Equal(t, tt.wantDate, doc.Releases[0].Date)
			assert.Equal(t, tt.wantYanked, doc.Releases[0].Yanked)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]struct {
		input    string
		wantLine int
	}{
		"empty input":               {input: ""},
		"no headers":                {input: "Just some text\n- and a list\n"},
		"only title":                {input: "# Changelog\n\nNothing here.\n"},
		"subsection before section": {input: "### Added\n- Thing\n## [1.0.0] - 2023-01-01\n", wantLine: 1},
		"missing bracket":           {input: "## [1.0.0 - 2023-01-01\n", wantLine: 1},
		"duplicate unreleased":      {input: "## [Unreleased]\n### Added\n- A\n## [Unreleased]\n", wantLine: 4},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, ErrMalformedDocument), "expected ErrMalformedDocument, got %v", err)
			assert.True(t, IsParseError(err))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantLine, pe.Line)
		})
	}
}

func TestParse_IgnoredLines(t *testing.T) {
	input := "Preamble line\n" +
		"## [1.0.0] - 2023-01-01\n" +
		"Text between header and first subsection\n" +
		"- orphan bullet\n" +
		"### Added\n" +
		"- Kept\n"

	doc, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, doc.Releases, 1)
	require.Len(t, doc.Releases[0].Subsections, 1)
	assert.Equal(t, []string{"- Kept"}, doc.Releases[0].Subsections[0].Texts())
}

func TestParse_LineEndings(t *testing.T) {
	unix := "## [1.0.0] - 2023-01-01\n### Added\n- Thing\n- Other\n"
	windows := strings.ReplaceAll(unix, "\n", "\r\n")
	classicMac := strings.ReplaceAll(unix, "\n", "\r")
	withBOM := "\ufeff" + windows

	want, err := Parse(unix)
	require.NoError(t, err)

	for name, input := range map[string]string{"crlf": windows, "cr": classicMac, "bom": withBOM} {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParse_TrailingWhitespaceTrimmed(t *testing.T) {
	doc, err := Parse("## [1.0.0] - 2023-01-01\n### Added   \n- Thing  \t\n")
	require.NoError(t, err)
	sub := doc.Releases[0].Subsections[0]
	assert.Equal(t, "Added", sub.Category.Label)
	assert.Equal(t, []string{"- Thing"}, sub.Texts())
}

func TestParse_FencedCodeBlock(t *testing.T) {
	input := "## [1.0.0] - 2023-01-01\n" +
		"### Changed\n" +
		"- Config format changed:\n" +
		"````md\n" +
		"  ## [indented, not a section]\n" +
		"### Not a subsection\n" +
		"```\n" +
		"````\n" +
		"- After fence\n"

	doc, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, doc.Releases, 1)
	require.Len(t, doc.Releases[0].Subsections, 1)
	assert.Equal(t, []string{
		"- Config format changed:",
		"````md",
		"  ## [indented, not a section]",
		"### Not a subsection",
		"```",
		"````",
		"- After fence",
	}, doc.Releases[0].Subsections[0].Texts())
}

func TestParse_FenceEndsAtSectionHeader(t *testing.T) {
	tests := map[string]struct {
		input     string
		wantItems []string
	}{
		"inline code span": {
			input:     "## [1.1.0] - 2023-02-01\n### Added\n```inline```\n## [1.0.0] - 2023-01-01\n### Added\n- One\n",
			wantItems: []string{"```inline```"},
		},
		"unclosed fence": {
			input:     "## [1.1.0] - 2023-02-01\n### Added\n- Example:\n  ```sh\n  kacl show\n## [1.0.0] - 2023-01-01\n### Added\n- One\n",
			wantItems: []string{"- Example:", "  ```sh", "  kacl show"},
		},
		"closed by longer run": {
			input:     "## [1.1.0] - 2023-02-01\n### Added\n~~~\n### x\n~~~~~\n## [1.0.0] - 2023-01-01\n### Added\n- One\n",
			wantItems: []string{"~~~", "### x", "~~~~~"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, doc.Releases, 2)
			assert.Equal(t, tt.wantItems, doc.Releases[0].Subsections[0].Texts())
			assert.Equal(t, "1.0.0", doc.Releases[1].Version)
			assert.Equal(t, []string{"- One"}, doc.Releases[1].Subsections[0].Texts())
		})
	}
}

func TestFenceMarker(t *testing.T) {
	tests := map[string]struct {
		line string
		want string
	}{
		"backticks":             {line: "```", want: "```"},
		"info string":           {line: "```go", want: "```"},
		"long run":              {line: "`````", want: "`````"},
		"tildes with backticks": {line: "~~~ a`b", want: "~~~"},
		"backtick in info":      {line: "```inline```", want: ""},
		"too short":             {line: "``", want: ""},
		"not a fence":           {line: "- item", want: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, fenceMarker(tt.line))
		})
	}
}

func TestParse_EmptyHeadings(t *testing.T) {
	tests := map[string]struct {
		input     string
		wantLabel string
		wantItems []string
	}{
		"empty version": {
			input: "## [] - 2023-01-01\n### Added\n- A\n",
		},
		"empty section heading": {
			input: "# Changelog\n##\n### Added\n- A\n",
		},
		"empty subsection heading": {
			input:     "## [1.0.0] - 2023-01-01\n###\n- A\n",
			wantLabel: "",
			wantItems: []string{"- A"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Nil(t, doc.Unreleased, "an empty version is not the unreleased section")
			require.Len(t, doc.Releases, 1)

			sec := doc.Releases[0]
			require.Len(t, sec.Subsections, 1)
			if tt.wantItems != nil {
				assert.Equal(t, tt.wantLabel, sec.Subsections[0].Category.Label)
				assert.Equal(t, tt.wantItems, sec.Subsections[0].Texts())
				return
			}
			assert.Empty(t, sec.Version)
			assert.False(t, sec.IsUnreleased())
		})
	}
}

func TestParse_LinkDefinitions(t *testing.T) {
	tests := map[string]struct {
		input     string
		wantItems []string
		wantLinks []Link
	}{
		"after the last item": {
			input:     "## [1.0.0] - 2023-01-01\n### Added\n- One\n\n[1.0.0]: https://example.com/v1\n",
			wantItems: []string{"- One"},
			wantLinks: []Link{{Name: "1.0.0", URL: "https://example.com/v1"}},
		},
		"between items": {
			input:     "## [1.0.0] - 2023-01-01\n### Added\n- See [docs]\n[docs]: https://example.com/docs\n- Two\n",
			wantItems: []string{"- See [docs]", "[docs]: https://example.com/docs", "- Two"},
		},
		"before the next subsection": {
			input:     "## [1.0.0] - 2023-01-01\n### Added\n- One\n[a]: https://example.com/a\n### Fixed\n- Two\n",
			wantItems: []string{"- One"},
			wantLinks: []Link{{Name: "a", URL: "https://example.com/a"}},
		},
		"before any subsection": {
			input:     "## [1.0.0] - 2023-01-01\n[b]: https://example.com/b\n### Added\n- One\n",
			wantItems: []string{"- One"},
			wantLinks: []Link{{Name: "b", URL: "https://example.com/b"}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, doc.Releases, 1)
			assert.Equal(t, tt.wantItems, doc.Releases[0].Subsections[0].Texts())
			assert.Equal(t, tt.wantLinks, doc.Links)
		})
	}
}

func TestParse_DeeperHeadingsAreItems(t *testing.T) {
	doc, err := Parse("## [1.0.0] - 2023-01-01\n### Added\n#### CLI\n- Flag\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"#### CLI", "- Flag"}, doc.Releases[0].Subsections[0].Texts())
}

func TestParse_NonStandardCategory(t *testing.T) {
	doc, err := Parse("## [1.0.0] - 2023-01-01\n### Performance\n- Faster\n### fixed\n- Bug\n")
	require.NoError(t, err)

	subs := doc.Releases[0].Subsections
	require.Len(t, subs, 2)
	assert.Equal(t, Other, subs[0].Category.Kind)
	assert.Equal(t, "Performance", subs[0].Category.Label)
	assert.False(t, subs[0].Category.IsStandard())
	assert.Equal(t, Fixed, subs[1].Category.Kind)
	assert.Equal(t, "fixed", subs[1].Category.Label, "labels are kept verbatim")
}

func TestParse_UnbracketedHeadingBoundsSection(t *testing.T) {
	input := "## [1.1.0] - 2023-02-01\n### Added\n- A\n## 1.0.0 - 2023-01-01\n### Added\n- B\n"

	doc, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, doc.Releases, 2)
	assert.Equal(t, []string{"- A"}, doc.Releases[0].Subsections[0].Texts())
	assert.Equal(t, "1.0.0 - 2023-01-01", doc.Releases[1].Heading)
}

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader(sampleChangelog))
	require.NoError(t, err)
	assert.Len(t, doc.Releases, 2)
}

func TestParseNotes(t *testing.T) {
	subs, err := ParseNotes("### Added\n- One\n### Fixed\n- Two\n")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Fixed", subs[1].Category.Label)

	subs, err = ParseNotes("### Added\n- See [docs]\n\n[docs]: https://example.com/docs\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"- See [docs]", "[docs]: https://example.com/docs"}, subs[0].Texts())

	_, err = ParseNotes("## [1.0.0] - 2023-01-01\n### Added\n- One\n")
	assert.True(t, errors.Is(err, ErrMalformedDocument))
}
