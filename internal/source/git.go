package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariel-frischer/kacl/internal/git"
)

// Git reads a changelog as committed at a revision.
type Git struct {
	RepoDir  string
	Revision string
	Path     string
	Logf     Logf
}

// Name returns "path@revision".
func (g *Git) Name() string {
	rev := g.Revision
	if rev == "" {
		rev = git.DefaultRevision
	}
	return g.Path + "@" + rev
}

// Read returns the file contents at the revision. A path missing from the
// revision wraps ErrFileNotFound.
func (g *Git) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.Logf.debug("[source] reading %s from git", g.Name())
	text, err := git.ReadFile(g.RepoDir, g.Revision, g.Path, git.Logf(g.Logf))
	if err != nil {
		if errors.Is(err, git.ErrPathNotFound) {
			return "", fmt.Errorf("%w: %v", ErrFileNotFound, err)
		}
		return "", fmt.Errorf("reading %s: %w", g.Name(), err)
	}
	return text, nil
}
