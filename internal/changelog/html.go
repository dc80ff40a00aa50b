package changelog

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// notesMarkdown renders release notes; GFM covers task lists, tables and
// autolinked issue URLs common in changelogs.
var notesMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// NotesHTML converts release notes markdown (see Markdown) to an HTML fragment.
func NotesHTML(ctx context.Context, notes string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := notesMarkdown.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("converting release notes to HTML: %w", err)
	}
	return buf.String(), nil
}
