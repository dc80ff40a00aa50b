package changelog

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// dateToken finds the first YYYY-MM-DD shaped substring in a header.
	dateToken = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

	// yankedMarker flags a pulled release: "## [1.0.1] - 2024-01-02 [YANKED]".
	yankedMarker = "[YANKED]"

	// linkDefinition matches a markdown reference link definition.
	linkDefinition = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(\S+)`)
)

// ParseReader reads a whole changelog from r and parses it.
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}
	return Parse(string(data))
}

// Parse parses Keep a Changelog markdown into a Document.
//
// The grammar is line oriented and single pass:
//   - "## [Unreleased]" opens the Unreleased section (at most one)
//   - "## [<version>] - <date>" opens a release section
//   - "### <label>" opens a category subsection in the current section
//   - other non-blank lines inside a subsection become items
//
// Lines before the first section, or between a section header and its first
// subsection, are ignored. Reference link definitions are collected into
// Document.Links when they stand outside a subsection or end one; a definition
// followed by further items of its subsection stays an item. A fenced code
// block keeps "###" lines as items but never hides a "##" section header.
//
// Returns a ParseError (ErrMalformedDocument) if no section header exists or a
// subsection appears before any section.
func Parse(text string) (*Document, error) {
	p := &parser{doc: &Document{}}
	if err := p.run(text); err != nil {
		return nil, err
	}
	if !p.sawSection {
		return nil, &ParseError{Message: "no section headers found (expected \"## [version] - YYYY-MM-DD\" or \"## [Unreleased]\")"}
	}
	return p.doc, nil
}

// ParseNotes parses a release notes fragment, a sequence of "###" subsections
// without a section header, such as the output of Markdown.
func ParseNotes(text string) ([]Subsection, error) {
	p := &parser{doc: &Document{}, current: &Section{Version: "notes"}, sawSection: true, notes: true}
	if err := p.run(text); err != nil {
		return nil, err
	}
	if len(p.doc.Releases) != 1 || p.doc.Unreleased != nil {
		return nil, &ParseError{Message: "release notes must not contain section headers"}
	}
	return p.doc.Releases[0].Subsections, nil
}

// parser holds the state of a single Parse call.
type parser struct {
	doc        *Document
	current    *Section
	fence      string
	sawSection bool
	// notes keeps link definitions as items.
	notes bool
	// pending holds link definitions seen inside the open subsection.
	pending []pendingLink
}

type pendingLink struct {
	link Link
	line string
}

func (p *parser) run(text string) error {
	for i, line := range splitLines(text) {
		if err := p.line(i+1, line); err != nil {
			return err
		}
	}
	p.closeSection()
	return nil
}

// splitLines normalizes line endings and drops a UTF-8 byte order mark.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func (p *parser) line(n int, line string) error {
	trimmed := strings.TrimSpace(line)

	level, rest := headingLevel(line)

	// Fenced code inside an item list is copied verbatim up to the next
	// section header.
	if p.fence != "" && level != 2 {
		if trimmed != "" {
			p.addItem(line)
		}
		if closesFence(trimmed, p.fence) {
			p.fence = ""
		}
		return nil
	}
	p.fence = ""

	if trimmed == "" {
		return nil
	}

	if level == 2 || level == 3 {
		p.flushLinks()
	}

	switch level {
	case 1:
		if p.current == nil {
			if p.doc.Title == "" {
				p.doc.Title = rest
			}
			return nil
		}
	case 2:
		return p.openSection(n, rest)
	case 3:
		return p.openSubsection(n, rest)
	}

	if !p.notes {
		if m := linkDefinition.FindStringSubmatch(line); m != nil {
			link := Link{Name: m[1], URL: m[2]}
			if p.inSubsection() {
				p.pending = append(p.pending, pendingLink{link: link, line: line})
			} else {
				p.doc.Links = append(p.doc.Links, link)
			}
			return nil
		}
	}

	if p.inSubsection() {
		// Definitions followed by more items were items after all.
		for _, pl := range p.pending {
			p.addItem(pl.line)
		}
		p.pending = nil

		p.addItem(line)
		p.fence = fenceMarker(trimmed)
	}
	return nil
}

// flushLinks records the pending link definitions of the closing subsection.
func (p *parser) flushLinks() {
	for _, pl := range p.pending {
		p.doc.Links = append(p.doc.Links, pl.link)
	}
	p.pending = nil
}

// headingLevel returns the ATX heading level of line (0 if it is not a
// heading) and the trimmed heading text. Headings must start in column one.
func headingLevel(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, ""
	}
	if level < len(line) && line[level] != ' ' && line[level] != '\t' {
		return 0, ""
	}
	return level, strings.TrimSpace(line[level:])
}

// fenceMarker returns the fence delimiter if trimmed opens a code block: a
// run of at least three backticks or tildes. A backtick fence's info string
// may not contain a backtick, so "```inline```" is not a fence.
func fenceMarker(trimmed string) string {
	if trimmed == "" || (trimmed[0] != '`' && trimmed[0] != '~') {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == trimmed[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	if trimmed[0] == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return ""
	}
	return trimmed[:n]
}

// closesFence reports whether trimmed closes a block opened with marker: the
// same character, at least as long, and nothing after it.
func closesFence(trimmed, marker string) bool {
	if !strings.HasPrefix(trimmed, marker) {
		return false
	}
	return strings.Trim(trimmed, marker[:1]) == ""
}

func (p *parser) openSection(n int, header string) error {
	p.closeSection()
	p.sawSection = true

	sec := Section{Heading: header, Line: n}

	if strings.HasPrefix(header, "[") {
		end := strings.IndexByte(header, ']')
		if end < 0 {
			return &ParseError{Line: n, Message: fmt.Sprintf("section heading %q is missing a closing ']'", header)}
		}
		token := header[1:end]
		if strings.EqualFold(strings.TrimSpace(token), "unreleased") {
			return p.openUnreleased(n)
		}
		sec.Version = token
		sec.Date = dateToken.FindString(header[end+1:])
		sec.Yanked = strings.Contains(strings.ToUpper(header[end+1:]), yankedMarker)
	} else {
		if strings.EqualFold(header, "unreleased") {
			return p.openUnreleased(n)
		}
		// Unbracketed headings still bound the section; the extractor
		// drops them since only "[version]" headings declare a release.
		sec.Version = header
		sec.Date = dateToken.FindString(header)
	}

	p.current = &sec
	return nil
}

func (p *parser) openUnreleased(n int) error {
	if p.doc.Unreleased != nil {
		return &ParseError{Line: n, Message: fmt.Sprintf("duplicate [Unreleased] section (first at line %d)", p.doc.Unreleased.Line)}
	}
	p.current = &Section{Heading: "[Unreleased]", Unreleased: true, Line: n}
	return nil
}

func (p *parser) openSubsection(n int, label string) error {
	if p.current == nil {
		return &ParseError{Line: n, Message: fmt.Sprintf("subsection %q appears before any section heading", label)}
	}
	p.current.Subsections = append(p.current.Subsections, Subsection{Category: ParseCategory(label)})
	return nil
}

func (p *parser) inSubsection() bool {
	return p.current != nil && len(p.current.Subsections) > 0
}

func (p *parser) addItem(line string) {
	subs := p.current.Subsections
	last := &subs[len(subs)-1]
	last.Items = append(last.Items, Item{Text: strings.TrimRight(line, " \t")})
}

// closeSection attaches the open section to the document.
func (p *parser) closeSection() {
	if p.current == nil {
		return
	}
	if p.current.IsUnreleased() {
		p.doc.Unreleased = p.current
	} else {
		p.doc.Releases = append(p.doc.Releases, *p.current)
	}
	p.flushLinks()
	p.current = nil
	p.fence = ""
}
