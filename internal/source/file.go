package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// File reads a changelog from the local filesystem.
type File struct {
	Path string
	Logf Logf
}

// Name returns the file path.
func (f *File) Name() string {
	return f.Path
}

// Read returns the file contents. A missing file wraps ErrFileNotFound.
func (f *File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Path == "" {
		return "", fmt.Errorf("%w: no path given", ErrFileNotFound)
	}

	f.Logf.debug("[source] reading file %s", f.Path)
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, f.Path)
		}
		return "", fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return string(data), nil
}
