package cli

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/kacl/internal/changelog"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/spf13/cobra"
)

// notesDocument is the structured output of notes.
type notesDocument struct {
	Version string `json:"version" yaml:"version" toml:"version"`
	Notes   string `json:"notes" yaml:"notes" toml:"notes"`
	Format  string `json:"format" yaml:"format" toml:"format"`
}

func newNotesCmd(a *app) *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "notes [VERSION]",
		Short: "Print release notes as markdown",
		Long: `Print release notes in markdown format, suitable for GitHub release notes.

Without a version the notes of the current release are printed. Each
category becomes a "### Label" heading followed by its items; labels appear
in document order. The output is written to stdout.`,
		Example: `  # Notes of the current release
  kacl notes

  # Notes for a specific version (v prefix optional)
  kacl notes v0.6.0

  # Unreleased changes
  kacl notes unreleased

  # HTML fragment for a web page or email
  kacl notes --html`,
		Args:    cobra.MaximumNArgs(1),
		GroupID: GroupQuery,
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) == 1 {
				version = args[0]
			}
			return a.runNotes(cmd, version, html)
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Render the notes as an HTML fragment")
	return cmd
}

func (a *app) runNotes(cmd *cobra.Command, version string, html bool) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	src, res, err := s.evaluateChangelog(cmd.Context())
	if err != nil {
		return err
	}

	doc := notesDocument{Format: "markdown"}
	if version == "" {
		if res.CurrentRelease == nil {
			output.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("%s has no valid release section", src.Name()))
			return NewExitError(ExitValidationFailed)
		}
		doc.Version = res.CurrentRelease.Name
		doc.Notes = res.LatestReleaseNotes
	} else {
		rec, subs, err := lookupRelease(res, version)
		if err != nil {
			return err
		}
		doc.Version = rec.Name
		doc.Notes = changelog.Markdown(subs)
	}

	if html {
		rendered, err := changelog.NotesHTML(cmd.Context(), doc.Notes)
		if err != nil {
			return err
		}
		doc.Notes = rendered
		doc.Format = "html"
	}

	out := cmd.OutOrStdout()
	if s.format.Structured() {
		return output.Encode(out, s.format, doc)
	}

	fmt.Fprint(out, doc.Notes)
	if doc.Notes != "" && !strings.HasSuffix(doc.Notes, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}
