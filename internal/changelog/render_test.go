package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subsection(label string, items ...string) Subsection {
	sub := Subsection{Category: ParseCategory(label)}
	for _, text := range items {
		sub.Items = append(sub.Items, Item{Text: text})
	}
	return sub
}

func TestMetadata(t *testing.T) {
	subs := []Subsection{
		subsection("Added", "- A1", "- A2"),
		subsection("Fixed", "- F1"),
		subsection("Added", "- A3"),
		subsection("Removed"),
	}

	tests := map[string]struct {
		policy DuplicatePolicy
		want   map[string]string
	}{
		"overwrite keeps last": {
			policy: DuplicateOverwrite,
			want:   map[string]string{"Added": "- A3", "Fixed": "- F1", "Removed": ""},
		},
		"merge concatenates": {
			policy: DuplicateMerge,
			want:   map[string]string{"Added": "- A1\n- A2\n- A3", "Fixed": "- F1", "Removed": ""},
		},
		"empty policy overwrites": {
			policy: "",
			want:   map[string]string{"Added": "- A3", "Fixed": "- F1", "Removed": ""},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Metadata(subs, tt.policy))
		})
	}
}

func TestMetadata_MergeSkipsEmpty(t *testing.T) {
	subs := []Subsection{subsection("Added"), subsection("Added", "- A"), subsection("Added")}
	assert.Equal(t, map[string]string{"Added": "- A"}, Metadata(subs, DuplicateMerge))
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    DuplicatePolicy
		wantErr bool
	}{
		"empty":      {input: "", want: DuplicateOverwrite},
		"overwrite":  {input: "overwrite", want: DuplicateOverwrite},
		"merge":      {input: "merge", want: DuplicateMerge},
		"upper case": {input: "MERGE", want: DuplicateMerge},
		"unknown":    {input: "append", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseDuplicatePolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkdown(t *testing.T) {
	subs := []Subsection{
		subsection("Added", "- Feature", "  - detail"),
		subsection("Fixed", "- Bug in [parser]", "[parser]: https://example.com/parser"),
	}

	got := Markdown(subs)
	assert.Equal(t, "### Added\n- Feature\n  - detail\n### Fixed\n- Bug in [parser]\n[parser]: https://example.com/parser\n", got)

	back, err := ParseNotes(got)
	require.NoError(t, err)
	assert.Equal(t, subs, back)
}

func TestMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "", Markdown(nil))
}

func TestRenderDocument(t *testing.T) {
	doc := &Document{
		Title:      "Changelog",
		Unreleased: &Section{Subsections: []Subsection{subsection("Added", "- Next")}},
		Releases: []Section{
			{Version: "1.1.0", Date: "2024-02-01", Yanked: true, Subsections: []Subsection{subsection("Fixed", "- Bug")}},
			{Version: "1.0.0", Date: "2024-01-01", Subsections: []Subsection{subsection("Added", "- First")}},
		},
		Links: []Link{{Name: "1.0.0", URL: "https://example.com/v1.0.0"}},
	}

	got, err := RenderDocumentString(doc)
	require.NoError(t, err)

	want := "# Changelog\n\n" +
		"## [Unreleased]\n\n### Added\n- Next\n\n" +
		"## [1.1.0] - 2024-02-01 [YANKED]\n\n### Fixed\n- Bug\n\n" +
		"## [1.0.0] - 2024-01-01\n\n### Added\n- First\n\n" +
		"[1.0.0]: https://example.com/v1.0.0\n"
	assert.Equal(t, want, got)
}

func TestRenderDocument_Idempotent(t *testing.T) {
	doc, err := Parse(sampleChangelog)
	require.NoError(t, err)

	first, err := RenderDocumentString(doc)
	require.NoError(t, err)

	reparsed, err := Parse(first)
	require.NoError(t, err)

	second, err := RenderDocumentString(reparsed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, len(doc.Releases), len(reparsed.Releases))
	assert.Equal(t, doc.Links, reparsed.Links)
}
