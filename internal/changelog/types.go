package changelog

// Document is a parsed CHANGELOG.md. Releases are kept in document order
// (usually newest first as written) and are not yet sorted or validated.
type Document struct {
	Title      string
	Unreleased *Section
	Releases   []Section
	Links      []Link
}

// Section is one "##" entry. Version and Date hold the raw header tokens;
// both are empty for the Unreleased section.
type Section struct {
	Version     string
	Date        string
	Subsections []Subsection
	// Heading is the header text after "## ", verbatim.
	Heading string
	// Yanked is set when the header carries the [YANKED] marker.
	Yanked bool
	// Unreleased marks the "## [Unreleased]" section. Release sections with an
	// empty version token are not Unreleased; the extractor drops them.
	Unreleased bool
	// Line is the 1-based line of the section header.
	Line int
}

// Subsection is one "###" category block within a section.
type Subsection struct {
	Category Category
	Items    []Item
}

// Item is a single change entry. Text keeps the list marker ("- Thing")
// and any leading indentation; trailing whitespace is removed.
type Item struct {
	Text string
}

// Link is a reference link definition such as "[1.0.0]: https://...".
type Link struct {
	Name string
	URL  string
}

// Release is a release section whose version and date both normalized.
// Index is the position of its section in Document.Releases.
type Release struct {
	Version     SemVer
	Date        Date
	Subsections []Subsection
	Yanked      bool
	Index       int
}

// Skipped records a release section dropped during extraction.
type Skipped struct {
	Index   int
	Line    int
	Version string
	Date    string
	Reason  error
}

// IsUnreleased returns true if this is the Unreleased section.
func (s Section) IsUnreleased() bool {
	return s.Unreleased
}

// ItemCount returns the total number of items across all subsections.
func (s Section) ItemCount() int {
	count := 0
	for _, sub := range s.Subsections {
		count += len(sub.Items)
	}
	return count
}

// Texts returns the item texts in order.
func (s Subsection) Texts() []string {
	texts := make([]string, len(s.Items))
	for i, item := range s.Items {
		texts[i] = item.Text
	}
	return texts
}

// HasUnreleased returns true if the document has an Unreleased section.
func (d *Document) HasUnreleased() bool {
	return d.Unreleased != nil
}
