package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps categories to their terminal styling.
var categoryStyles = map[CategoryKind]CategoryStyle{
	Added:      {Color: color.New(color.FgGreen), Icon: "✓"},
	Changed:    {Color: color.New(color.FgBlue), Icon: "~"},
	Deprecated: {Color: color.New(color.FgRed), Icon: "⚠"},
	Removed:    {Color: color.New(color.FgRed), Icon: "✗"},
	Fixed:      {Color: color.New(color.FgYellow), Icon: "⚡"},
	Security:   {Color: color.New(color.FgMagenta), Icon: "🔒"},
	Other:      {Color: color.New(color.FgWhite), Icon: "•"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatRelease writes a validated release with terminal styling.
func FormatRelease(w io.Writer, rel Release, opts FormatOptions) error {
	header := fmt.Sprintf("v%s (%s)", rel.Version, rel.Date)
	if rel.Yanked {
		header += " " + yankedMarker
	}
	return FormatSection(w, header, rel.Subsections, opts)
}

// FormatSection writes a heading followed by category subsections. Labels
// are shown verbatim; styling follows the category kind.
func FormatSection(w io.Writer, heading string, subsections []Subsection, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeHeading(heading, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, sub := range subsections {
		if err := writeSubsection(sub, w, opts, width); err != nil {
			return fmt.Errorf("writing %s: %w", sub.Category.Label, err)
		}
	}
	return nil
}

// writeHeading writes the version header line.
func writeHeading(heading string, w io.Writer, opts FormatOptions) error {
	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", heading)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(heading))
	return err
}

// writeSubsection writes a single category with its items.
func writeSubsection(sub Subsection, w io.Writer, opts FormatOptions, width int) error {
	style := categoryStyles[sub.Category.Kind]

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", sub.Category.Label); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(sub.Category.Label)); err != nil {
			return err
		}
	}

	for _, item := range sub.Items {
		if err := writeItem(item, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeItem writes a single item, wrapping long lines in styled mode.
func writeItem(item Item, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	const prefix = "  "

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, item.Text)
		return err
	}

	wrapped := wrapText(item.Text, width-len(prefix), "    ")
	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}

// FormatSkipped returns a one-line summary of a dropped section.
func FormatSkipped(s Skipped, opts FormatOptions) string {
	text := fmt.Sprintf("line %d: %q", s.Line, s.Version)
	if s.Reason != nil {
		text += ": " + s.Reason.Error()
	}

	if opts.Plain {
		return "[skipped] " + text
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	return fmt.Sprintf("%s %s", yellow("⚠"), text)
}
