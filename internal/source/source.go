// Package source loads changelog text from the places a changelog lives:
// the working tree, a Git revision, or a remote URL.
package source

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrFileNotFound is returned when the changelog does not exist at the
// requested location.
var ErrFileNotFound = errors.New("changelog file not found")

// Source yields the full text of one changelog.
type Source interface {
	// Name identifies the source in log lines and error messages.
	Name() string
	// Read returns the changelog text.
	Read(ctx context.Context) (string, error)
}

// Spec describes where to load a changelog from.
type Spec struct {
	// Path is a file path or an http(s) URL.
	Path string
	// Revision selects a Git revision; empty reads the working tree.
	Revision string
	// RepoDir is the directory used to find the repository (default: cwd).
	RepoDir string
	// Timeout bounds remote fetches (default DefaultRemoteTimeout).
	Timeout time.Duration
	// Logf receives debug messages from the source it selects.
	Logf Logf
}

// New selects the Source for spec: a URL path gives HTTP, a revision gives
// Git, anything else reads the file from disk.
func New(spec Spec) Source {
	switch {
	case isURL(spec.Path):
		return &HTTP{URL: spec.Path, Timeout: spec.Timeout, Logf: spec.Logf}
	case spec.Revision != "":
		return &Git{RepoDir: spec.RepoDir, Revision: spec.Revision, Path: spec.Path, Logf: spec.Logf}
	default:
		return &File{Path: spec.Path, Logf: spec.Logf}
	}
}

func isURL(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Logf receives debug messages. A nil Logf discards them.
type Logf func(format string, args ...any)

func (f Logf) debug(format string, args ...any) {
	if f != nil {
		f(format, args...)
	}
}
