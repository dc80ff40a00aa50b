package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ariel-frischer/kacl/internal/changelog"
	"gopkg.in/yaml.v3"
)

// Format selects how command results are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists every supported output format.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML), string(FormatTOML)}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected: %s)", s, strings.Join(Formats(), ", "))
	}
}

// Structured reports whether f is a machine readable format.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML || f == FormatTOML
}

// Encode writes v in a structured format. TOML requires v to be a struct or
// map; callers wrap lists in a named field.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encoding TOML: %w", err)
		}
	default:
		return fmt.Errorf("format %q is not a structured format", f)
	}
	return nil
}

// Report is the structured form of a changelog evaluation.
type Report struct {
	Source             string             `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Unreleased         *changelog.Record  `json:"unreleased" yaml:"unreleased" toml:"unreleased,omitempty"`
	CurrentRelease     *changelog.Record  `json:"current_release" yaml:"current_release" toml:"current_release,omitempty"`
	AllReleases        []changelog.Record `json:"all_releases" yaml:"all_releases" toml:"all_releases"`
	LatestReleaseNotes string             `json:"latest_release_notes" yaml:"latest_release_notes" toml:"latest_release_notes"`
	Skipped            []SkippedEntry     `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
}

// SkippedEntry is the structured form of a dropped release section.
type SkippedEntry struct {
	Index   int    `json:"index" yaml:"index" toml:"index"`
	Line    int    `json:"line" yaml:"line" toml:"line"`
	Version string `json:"version" yaml:"version" toml:"version"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty" toml:"date,omitempty"`
	Reason  string `json:"reason" yaml:"reason" toml:"reason"`
}

// NewReport builds a Report for res read from source.
func NewReport(source string, res *changelog.Result) Report {
	all := res.AllReleases
	if all == nil {
		all = []changelog.Record{}
	}
	return Report{
		Source:             source,
		Unreleased:         res.Unreleased,
		CurrentRelease:     res.CurrentRelease,
		AllReleases:        all,
		LatestReleaseNotes: res.LatestReleaseNotes,
		Skipped:            SkippedEntries(res.Skipped),
	}
}

// SkippedEntries converts extraction diagnostics to their structured form.
func SkippedEntries(skipped []changelog.Skipped) []SkippedEntry {
	if len(skipped) == 0 {
		return nil
	}
	entries := make([]SkippedEntry, len(skipped))
	for i, s := range skipped {
		entries[i] = SkippedEntry{Index: s.Index, Line: s.Line, Version: s.Version, Date: s.Date}
		if s.Reason != nil {
			entries[i].Reason = s.Reason.Error()
		}
	}
	return entries
}
