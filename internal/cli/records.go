package cli

import (
	"errors"
	"fmt"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/spf13/cobra"
)

// releasesDocument wraps the release list; TOML needs a table at the top level.
type releasesDocument struct {
	Releases []changelog.Record `json:"releases" yaml:"releases" toml:"releases"`
}

func newCurrentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current release (highest version)",
		Long: `Print the current release: the release section with the highest semantic
version precedence, regardless of where it appears in the file.

Exits with code 1 when the changelog has no valid release section.`,
		Example: `  kacl current
  kacl current --format json
  kacl current --rev main~1`,
		Args:    cobra.NoArgs,
		GroupID: GroupQuery,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCurrent(cmd)
		},
	}
}

func (a *app) runCurrent(cmd *cobra.Command) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	src, res, err := s.evaluateChangelog(cmd.Context())
	if err != nil {
		return err
	}

	latest := res.Latest()
	if latest == nil {
		output.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("%s has no valid release section", src.Name()))
		a.writeSkipped(cmd.ErrOrStderr(), res.Skipped)
		return NewExitError(ExitValidationFailed)
	}

	out := cmd.OutOrStdout()
	if s.format.Structured() {
		return output.Encode(out, s.format, res.CurrentRelease)
	}
	return changelog.FormatRelease(out, *latest, a.formatOptions(out))
}

func newReleasesCmd(a *app) *cobra.Command {
	var names bool

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "Print all releases in descending version order",
		Long: `Print every valid release, highest semantic version first. Releases with
equal precedence (differing only in build metadata) keep their document order.`,
		Example: `  kacl releases
  kacl releases --names
  kacl releases --format yaml`,
		Args:    cobra.NoArgs,
		GroupID: GroupQuery,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReleases(cmd, names)
		},
	}

	cmd.Flags().BoolVar(&names, "names", false, "Print only the version names, one per line")
	return cmd
}

func (a *app) runReleases(cmd *cobra.Command, names bool) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	_, res, err := s.evaluateChangelog(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case s.format.Structured():
		return output.Encode(out, s.format, releasesDocument{Releases: res.AllReleases})
	case names:
		for _, rec := range res.AllReleases {
			fmt.Fprintln(out, rec.Name)
		}
		return nil
	}

	opts := a.formatOptions(out)
	for i, rel := range res.Releases {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := changelog.FormatRelease(out, rel, opts); err != nil {
			return err
		}
	}
	a.writeSkipped(cmd.ErrOrStderr(), res.Skipped)
	return nil
}

func newUnreleasedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unreleased",
		Short: "Print the Unreleased section",
		Long: `Print the [Unreleased] section of the changelog.

Exits with code 1 when the changelog has no Unreleased section.`,
		Example: `  kacl unreleased
  kacl unreleased --format json`,
		Args:    cobra.NoArgs,
		GroupID: GroupQuery,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUnreleased(cmd)
		},
	}
}

func (a *app) runUnreleased(cmd *cobra.Command) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	src, res, err := s.evaluateChangelog(cmd.Context())
	if err != nil {
		return err
	}
	if !res.HasUnreleased() {
		return clierrors.NoUnreleasedSection(src.Name())
	}

	out := cmd.OutOrStdout()
	if s.format.Structured() {
		return output.Encode(out, s.format, res.Unreleased)
	}
	return changelog.FormatSection(out, changelog.UnreleasedName, res.UnreleasedSection.Subsections, a.formatOptions(out))
}

func newReleaseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "release VERSION",
		Short: "Print a single release",
		Long: `Print the release with the given version. The v prefix is optional and
build metadata is ignored when matching, so "v1.2.0" finds "1.2.0+build.5".
Use "unreleased" for the Unreleased section.`,
		Example: `  kacl release 1.2.0
  kacl release v1.2.0 --format json
  kacl release unreleased`,
		Args:    cobra.ExactArgs(1),
		GroupID: GroupQuery,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRelease(cmd, args[0])
		},
	}
}

func (a *app) runRelease(cmd *cobra.Command, version string) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	_, res, err := s.evaluateChangelog(cmd.Context())
	if err != nil {
		return err
	}

	rec, subs, err := lookupRelease(res, version)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.format.Structured() {
		return output.Encode(out, s.format, rec)
	}
	return changelog.FormatSection(out, recordHeading(rec), subs, a.formatOptions(out))
}

// lookupRelease finds version in res, reporting the available versions otherwise.
func lookupRelease(res *changelog.Result, version string) (*changelog.Record, []changelog.Subsection, error) {
	rec, subs, err := res.Release(version)
	if err != nil {
		var notFound *changelog.VersionNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil, clierrors.VersionNotFound(version, notFound.AvailableVersions)
		}
		return nil, nil, fmt.Errorf("looking up %s: %w", version, err)
	}
	return rec, subs, nil
}

// recordHeading returns the display heading of a record, "v1.2.0 (2024-01-31)".
func recordHeading(rec *changelog.Record) string {
	if rec.Name == changelog.UnreleasedName {
		return rec.Name
	}
	return fmt.Sprintf("v%s (%s)", rec.Name, rec.Metadata[changelog.DateKey])
}
