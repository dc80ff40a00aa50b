package changelog

import "strings"

// CategoryKind identifies one of the Keep a Changelog categories.
// https://keepachangelog.com/en/1.1.0/
type CategoryKind int

const (
	// Other is any heading that is not a standard category.
	Other CategoryKind = iota
	Added
	Changed
	Deprecated
	Removed
	Fixed
	Security
)

// String returns the canonical category name ("Other" for non-standard labels).
func (k CategoryKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Changed:
		return "Changed"
	case Deprecated:
		return "Deprecated"
	case Removed:
		return "Removed"
	case Fixed:
		return "Fixed"
	case Security:
		return "Security"
	default:
		return "Other"
	}
}

// StandardCategories returns the six Keep a Changelog categories
// in their standard rendering order.
func StandardCategories() []CategoryKind {
	return []CategoryKind{Added, Changed, Deprecated, Removed, Fixed, Security}
}

// Category is a subsection heading. Kind classifies it; Label keeps the
// heading text verbatim, and is what metadata keys and markdown use.
type Category struct {
	Kind  CategoryKind
	Label string
}

// ParseCategory classifies a heading label. Matching is case-insensitive
// but the label itself is kept unchanged.
func ParseCategory(label string) Category {
	c := Category{Kind: Other, Label: label}
	for _, k := range StandardCategories() {
		if strings.EqualFold(label, k.String()) {
			c.Kind = k
			break
		}
	}
	return c
}

// IsStandard returns true for the six Keep a Changelog categories.
func (c Category) IsStandard() bool {
	return c.Kind != Other
}

func (c Category) String() string {
	return c.Label
}
