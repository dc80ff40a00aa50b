package changelog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is returned when the changelog grammar cannot be
	// applied: no section headers at all, or headings nested incorrectly.
	ErrMalformedDocument = errors.New("malformed changelog")

	// ErrInvalidVersion marks a section version that is not a semantic version.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrInvalidDate marks a section date that is not a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid release date")

	// ErrNoValidReleases is returned when a release is required but every
	// release section was dropped (or none existed).
	ErrNoValidReleases = errors.New("no valid release sections")
)

// ParseError describes a grammar failure at a specific line.
// It matches ErrMalformedDocument with errors.Is.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", ErrMalformedDocument, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedDocument, e.Message)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedDocument
}

// NoReleasesError is returned by Evaluate when Options.RequireRelease is set
// and no release survived extraction. Skipped explains why each release
// section was dropped; it is empty when the changelog has no release sections.
type NoReleasesError struct {
	Skipped []Skipped
}

func (e *NoReleasesError) Error() string {
	if len(e.Skipped) == 0 {
		return fmt.Sprintf("%s: changelog has no release sections", ErrNoValidReleases)
	}
	return fmt.Sprintf("%s: all %d release sections were skipped", ErrNoValidReleases, len(e.Skipped))
}

func (e *NoReleasesError) Unwrap() error {
	return ErrNoValidReleases
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
