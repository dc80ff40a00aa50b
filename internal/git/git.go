// Package git reads changelog files from a Git repository at a given revision.
// It uses go-git so no git binary is required.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultRevision is used when no revision is given.
const DefaultRevision = "HEAD"

var (
	// ErrPathNotFound is returned when the file does not exist at the revision.
	ErrPathNotFound = errors.New("path not found at revision")

	// ErrRevisionNotFound is returned when the revision cannot be resolved.
	ErrRevisionNotFound = errors.New("revision not found")
)

// Logf receives debug messages. A nil Logf discards them.
type Logf func(format string, args ...any)

func (f Logf) debug(format string, args ...any) {
	if f != nil {
		f(format, args...)
	}
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string, logf Logf) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logf.debug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logf.debug("[git] repository opened successfully")
	return repo, nil
}

// RepositoryRoot returns the worktree root of the repository containing dir.
func RepositoryRoot(dir string) (string, error) {
	repo, err := openRepo(dir, nil)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	return root, nil
}

// IsRepository reports whether dir is inside a git repository.
func IsRepository(dir string) bool {
	_, err := openRepo(dir, nil)
	return err == nil
}

// ReadFile returns the contents of path as committed at revision in the
// repository containing repoDir. path may be absolute or relative to repoDir.
// Any revision go-git understands is accepted ("HEAD", "v1.2.0", "main~2",
// a commit hash). Debug messages go to logf when it is not nil.
func ReadFile(repoDir, revision, path string, logf Logf) (string, error) {
	if revision == "" {
		revision = DefaultRevision
	}

	repo, err := openRepo(repoDir, logf)
	if err != nil {
		return "", err
	}

	rel, err := repoRelativePath(repo, repoDir, path)
	if err != nil {
		return "", err
	}
	logf.debug("[git] reading %s at %s", rel, revision)

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, revision, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("loading commit %s: %w", hash, err)
	}

	file, err := commit.File(rel)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("%w: %s at %s", ErrPathNotFound, rel, revision)
		}
		return "", fmt.Errorf("looking up %s at %s: %w", rel, revision, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("reading %s at %s: %w", rel, revision, err)
	}

	logf.debug("[git] read %d bytes from %s@%s", len(contents), rel, short(hash))
	return contents, nil
}

// repoRelativePath converts path to the slash separated form go-git expects,
// relative to the worktree root.
func repoRelativePath(repo *git.Repository, repoDir, path string) (string, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree; treat path as repository relative.
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	root := worktree.Filesystem.Root()

	if !filepath.IsAbs(path) {
		base := repoDir
		if base == "" {
			if base, err = os.Getwd(); err != nil {
				return "", fmt.Errorf("getting current directory: %w", err)
			}
		}
		path = filepath.Join(base, path)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	rel, err := filepath.Rel(evalSymlinks(absRoot), evalSymlinks(absPath))
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside repository %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

// evalSymlinks resolves symlinks on the longest existing prefix of path.
func evalSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	dir, file := filepath.Split(path)
	if dir == path || dir == "" {
		return path
	}
	return filepath.Join(evalSymlinks(filepath.Clean(dir)), file)
}

func short(hash *plumbing.Hash) string {
	return hash.String()[:7]
}
