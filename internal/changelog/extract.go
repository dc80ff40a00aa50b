package changelog

import (
	"fmt"
	"strings"
)

// Extraction is the outcome of Extract: the releases that normalized and a
// diagnostic for every release section that did not.
type Extraction struct {
	Releases []Release
	Skipped  []Skipped
}

// Extract normalizes every release section in document order. Sections with
// an invalid version or date are dropped and reported in Skipped; Extract
// itself never fails.
func Extract(doc *Document) Extraction {
	ex := Extraction{Releases: []Release{}}
	if doc == nil {
		return ex
	}

	for i, sec := range doc.Releases {
		rel, err := NormalizeSection(sec)
		if err != nil {
			ex.Skipped = append(ex.Skipped, Skipped{
				Index:   i,
				Line:    sec.Line,
				Version: sec.Version,
				Date:    sec.Date,
				Reason:  err,
			})
			continue
		}
		rel.Index = i
		ex.Releases = append(ex.Releases, rel)
	}

	return ex
}

// NormalizeSection validates a single release section's version and date.
// The returned error wraps ErrInvalidVersion or ErrInvalidDate.
func NormalizeSection(sec Section) (Release, error) {
	if sec.Heading != "" && !strings.HasPrefix(sec.Heading, "[") {
		return Release{}, fmt.Errorf("%w %q: version must be enclosed in brackets", ErrInvalidVersion, sec.Heading)
	}

	version, err := ParseVersion(sec.Version)
	if err != nil {
		return Release{}, err
	}

	date, err := ParseDate(sec.Date)
	if err != nil {
		return Release{}, err
	}

	return Release{Version: version, Date: date, Subsections: sec.Subsections, Yanked: sec.Yanked}, nil
}

// Message returns a one-line explanation suitable for diagnostics.
func (s Skipped) Message() string {
	if s.Reason == nil {
		return fmt.Sprintf("section at line %d skipped", s.Line)
	}
	return fmt.Sprintf("section at line %d skipped: %v", s.Line, s.Reason)
}
