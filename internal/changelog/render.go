package changelog

import (
	"fmt"
	"io"
	"strings"
)

// DuplicatePolicy decides how Metadata handles repeated category labels
// within one section.
type DuplicatePolicy string

const (
	// DuplicateOverwrite keeps only the last subsection with a given label.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateMerge concatenates the items of all subsections with a label.
	DuplicateMerge DuplicatePolicy = "merge"
)

// ParseDuplicatePolicy parses a policy name. Empty selects DuplicateOverwrite.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(s)) {
	case "", DuplicateOverwrite:
		return DuplicateOverwrite, nil
	case DuplicateMerge:
		return DuplicateMerge, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (expected: overwrite, merge)", s)
	}
}

// Metadata maps each category label to its items joined by "\n", in item
// order. Repeated labels follow policy.
func Metadata(subsections []Subsection, policy DuplicatePolicy) map[string]string {
	metadata := make(map[string]string, len(subsections))

	for _, sub := range subsections {
		label := sub.Category.Label
		text := strings.Join(sub.Texts(), "\n")

		prev, seen := metadata[label]
		if seen && policy == DuplicateMerge {
			switch {
			case prev == "":
				metadata[label] = text
			case text != "":
				metadata[label] = prev + "\n" + text
			}
			continue
		}
		metadata[label] = text
	}

	return metadata
}

// Markdown flattens subsections into release notes: a "### <label>" line per
// subsection followed by its items, one per line, in parsed order.
func Markdown(subsections []Subsection) string {
	var b strings.Builder
	_ = writeSubsections(&b, subsections, false)
	return b.String()
}

func writeSubsections(w io.Writer, subsections []Subsection, spaced bool) error {
	for _, sub := range subsections {
		if spaced {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "### "+sub.Category.Label+"\n"); err != nil {
			return err
		}
		for _, item := range sub.Items {
			if _, err := io.WriteString(w, item.Text+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderDocument writes doc back as Keep a Changelog markdown: title,
// Unreleased, release sections in document order, then reference links.
//
// The output is idempotent: parsing it and rendering again yields the same text.
func RenderDocument(doc *Document, w io.Writer) error {
	if doc.Title != "" {
		if _, err := fmt.Fprintf(w, "# %s\n\n", doc.Title); err != nil {
			return fmt.Errorf("rendering title: %w", err)
		}
	}

	first := true
	if doc.Unreleased != nil {
		if err := renderSection(w, "## [Unreleased]", doc.Unreleased.Subsections, first); err != nil {
			return fmt.Errorf("rendering unreleased section: %w", err)
		}
		first = false
	}

	for _, sec := range doc.Releases {
		if err := renderSection(w, formatSectionHeader(sec), sec.Subsections, first); err != nil {
			return fmt.Errorf("rendering section %s: %w", sec.Version, err)
		}
		first = false
	}

	if err := renderLinks(doc.Links, w); err != nil {
		return fmt.Errorf("rendering links: %w", err)
	}

	return nil
}

// RenderDocumentString is a convenience function that renders to a string.
func RenderDocumentString(doc *Document) (string, error) {
	var b strings.Builder
	if err := RenderDocument(doc, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// formatSectionHeader formats a release header line.
func formatSectionHeader(sec Section) string {
	if sec.Heading != "" && !strings.HasPrefix(sec.Heading, "[") {
		return "## " + sec.Heading
	}
	if sec.Heading == "" && sec.Version == "" {
		return "##"
	}
	header := fmt.Sprintf("## [%s]", sec.Version)
	if sec.Date != "" {
		header += " - " + sec.Date
	}
	if sec.Yanked {
		header += " " + yankedMarker
	}
	return header
}

func renderSection(w io.Writer, header string, subsections []Subsection, isFirst bool) error {
	if !isFirst {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return err
	}
	return writeSubsections(w, subsections, true)
}

func renderLinks(links []Link, w io.Writer) error {
	if len(links) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	for _, l := range links {
		if _, err := fmt.Fprintf(w, "[%s]: %s\n", l.Name, l.URL); err != nil {
			return err
		}
	}
	return nil
}
