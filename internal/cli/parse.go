package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ariel-frischer/kacl/internal/batch"
	"github.com/ariel-frischer/kacl/internal/changelog"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/ariel-frischer/kacl/internal/source"
	"github.com/spf13/cobra"
)

// parseDocument is the structured output of parse for several changelogs.
type parseDocument struct {
	Changelogs []output.Report `json:"changelogs" yaml:"changelogs" toml:"changelogs"`
}

func newParseCmd(a *app) *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:   "parse [FILE...]",
		Short: "Evaluate changelogs and print every output",
		Long: `Evaluate one or more changelogs and print the Unreleased section, the
current release, every release in descending version order and the latest
release notes. Skipped sections are reported on stderr.

Without arguments the configured changelog is evaluated. Several files are
evaluated in parallel (see max_parallel); results are printed in argument order.`,
		Example: `  # Evaluate ./CHANGELOG.md
  kacl parse

  # Every output as JSON
  kacl parse --format json

  # Several changelogs of a monorepo
  kacl parse services/*/CHANGELOG.md

  # Stop at the first broken changelog
  kacl parse --fail-fast a/CHANGELOG.md b/CHANGELOG.md`,
		GroupID: GroupQuery,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args, failFast)
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first changelog that fails")
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, args []string, failFast bool) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{s.cfg.Changelog}
	}

	sources := make([]source.Source, 0, len(paths))
	for _, path := range paths {
		src, err := s.sourceFor(path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner := batch.New(
		batch.WithMaxParallel(s.cfg.MaxParallel),
		batch.WithFailFast(failFast),
		batch.WithOptions(s.options),
	)
	outcomes, runErr := runner.Run(ctx, sources)
	prog.done(fmt.Sprintf("Evaluated %d changelog(s), %d failed", len(sources), len(batch.Failed(outcomes))))

	if len(sources) == 1 {
		o := outcomes[0]
		if o.Err != nil {
			return evaluationError(o.Source.Name(), o.Err)
		}
		return a.writeParseResult(cmd, s.format, o.Source.Name(), o.Result)
	}

	return a.writeParseBatch(cmd, s.format, outcomes, runErr)
}

// writeParseResult prints the outputs of a single changelog.
func (a *app) writeParseResult(cmd *cobra.Command, format output.Format, name string, res *changelog.Result) error {
	out := cmd.OutOrStdout()
	if format.Structured() {
		if err := output.Encode(out, format, output.NewReport(name, res)); err != nil {
			return err
		}
	} else if err := a.writeResultText(out, res); err != nil {
		return err
	}
	a.writeSkipped(cmd.ErrOrStderr(), res.Skipped)
	return nil
}

// writeParseBatch prints the outputs of several changelogs. Failures are
// reported on stderr and turn into a non-zero exit code once every
// successful result has been printed.
func (a *app) writeParseBatch(cmd *cobra.Command, format output.Format, outcomes []batch.Outcome, runErr error) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var firstErr error
	doc := parseDocument{Changelogs: make([]output.Report, 0, len(outcomes))}

	for i, o := range outcomes {
		if o.Err != nil {
			if runErr != nil && errors.Is(o.Err, context.Canceled) {
				// Not run: an earlier changelog failed with --fail-fast.
				continue
			}
			err := evaluationError(o.Source.Name(), o.Err)
			reportError(errOut, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, s := range o.Result.Skipped {
			fmt.Fprintf(errOut, "%s: %s\n", o.Source.Name(), changelog.FormatSkipped(s, a.formatOptions(errOut)))
		}

		if format.Structured() {
			doc.Changelogs = append(doc.Changelogs, output.NewReport(o.Source.Name(), o.Result))
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		output.PrintSeparator(out, o.Source.Name())
		if err := a.writeResultText(out, o.Result); err != nil {
			return err
		}
	}

	if format.Structured() {
		if err := output.Encode(out, format, doc); err != nil {
			return err
		}
	}

	if firstErr != nil {
		return NewExitError(ExitCode(firstErr))
	}
	return runErr
}

// writeResultText prints the Unreleased section followed by every release.
func (a *app) writeResultText(w io.Writer, res *changelog.Result) error {
	opts := a.formatOptions(w)
	first := true

	if res.UnreleasedSection != nil {
		if err := changelog.FormatSection(w, changelog.UnreleasedName, res.UnreleasedSection.Subsections, opts); err != nil {
			return err
		}
		first = false
	}

	for _, rel := range res.Releases {
		if !first {
			fmt.Fprintln(w)
		}
		first = false
		if err := changelog.FormatRelease(w, rel, opts); err != nil {
			return err
		}
	}

	if len(res.Releases) == 0 {
		if !first {
			fmt.Fprintln(w)
		}
		if opts.Plain {
			fmt.Fprintln(w, "No valid release sections.")
		} else {
			output.PrintWarning(w, "No valid release sections.")
		}
	}
	return nil
}
