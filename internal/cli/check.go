package cli

import (
	"fmt"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/spf13/cobra"
)

// checkDocument is the structured output of check.
type checkDocument struct {
	Source     string                `json:"source" yaml:"source" toml:"source"`
	Releases   int                   `json:"releases" yaml:"releases" toml:"releases"`
	Unreleased bool                  `json:"unreleased" yaml:"unreleased" toml:"unreleased"`
	Skipped    []output.SkippedEntry `json:"skipped" yaml:"skipped" toml:"skipped"`
}

func newCheckCmd(a *app) *cobra.Command {
	var requireUnreleased bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the changelog and report skipped sections",
		Long: `Validate the changelog and report every release section that was dropped
because its version is not a semantic version or its date is not a valid
YYYY-MM-DD date.

Exit codes:
  0  every section is valid
  1  a section was skipped, or no valid release exists
  4  the changelog file was not found`,
		Example: `  # Validate ./CHANGELOG.md in CI
  kacl check

  # Also require an [Unreleased] section
  kacl check --require-unreleased

  # Machine readable report
  kacl check --format json`,
		Args:    cobra.NoArgs,
		GroupID: GroupValidation,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, requireUnreleased)
		},
	}

	cmd.Flags().BoolVar(&requireUnreleased, "require-unreleased", false, "Fail when there is no [Unreleased] section")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, requireUnreleased bool) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	src, res, err := s.evaluateChangelog(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.format.Structured() {
		skipped := output.SkippedEntries(res.Skipped)
		if skipped == nil {
			skipped = []output.SkippedEntry{}
		}
		doc := checkDocument{
			Source:     src.Name(),
			Releases:   res.ReleaseCount(),
			Unreleased: res.HasUnreleased(),
			Skipped:    skipped,
		}
		if err := output.Encode(out, s.format, doc); err != nil {
			return err
		}
	} else {
		a.writeSkipped(out, res.Skipped)
	}

	switch {
	case res.ReleaseCount() == 0:
		return clierrors.NoValidReleases(src.Name(), &changelog.NoReleasesError{Skipped: res.Skipped})
	case len(res.Skipped) > 0:
		if !s.format.Structured() {
			output.PrintWarning(out, fmt.Sprintf("%s: %d section(s) skipped", src.Name(), len(res.Skipped)))
		}
		return NewExitError(ExitValidationFailed)
	case requireUnreleased && !res.HasUnreleased():
		return clierrors.NoUnreleasedSection(src.Name())
	}

	if !s.format.Structured() {
		output.PrintSuccess(out, fmt.Sprintf("%s is valid (%d releases)", src.Name(), res.ReleaseCount()))
	}
	return nil
}
