package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// style paints the parts of a formatted CLIError. Nil fields leave text as is.
type style struct {
	heading  func(a ...interface{}) string
	category func(a ...interface{}) string
	message  func(a ...interface{}) string
	label    func(a ...interface{}) string
	usage    func(a ...interface{}) string
	bullet   func(a ...interface{}) string
}

// colored is the terminal style. fatih/color drops the escapes itself when
// NO_COLOR is set or stdout is not a terminal.
var colored = style{
	heading:  color.New(color.FgRed, color.Bold).SprintFunc(),
	category: color.New(color.FgYellow).SprintFunc(),
	message:  color.New(color.FgRed).SprintFunc(),
	label:    color.New(color.FgGreen, color.Bold).SprintFunc(),
	usage:    color.New(color.FgCyan).SprintFunc(),
	bullet:   color.New(color.FgGreen).SprintFunc(),
}

func paint(f func(a ...interface{}) string, text string) string {
	if f == nil {
		return text
	}
	return f(text)
}

// FormatError formats a CLIError for a terminal.
func FormatError(err *CLIError) string {
	return format(err, colored)
}

// FormatErrorPlain formats a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	return format(err, style{})
}

// format lays out a CLIError as a heading line followed by optional blocks
// separated by blank lines: the underlying cause when the message does not
// already show it, the usage line, and the remediation steps.
func format(err *CLIError, s style) string {
	if err == nil {
		return ""
	}

	heading := "Error"
	if err.Code != "" {
		heading += " " + err.Code
	}
	lines := []string{fmt.Sprintf("%s [%s]: %s",
		paint(s.heading, heading), paint(s.category, err.Category.String()), paint(s.message, err.Message))}

	if err.Err != nil && !strings.Contains(err.Message, err.Err.Error()) {
		lines = append(lines, "", paint(s.label, "Cause: ")+err.Err.Error())
	}
	if err.Usage != "" {
		lines = append(lines, "", paint(s.label, "Usage: ")+paint(s.usage, err.Usage))
	}
	if len(err.Remediation) > 0 {
		lines = append(lines, "", paint(s.label, "To fix this:"))
		for _, step := range err.Remediation {
			lines = append(lines, "  "+paint(s.bullet, "•")+" "+step)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
