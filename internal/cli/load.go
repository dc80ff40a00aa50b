package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/kacl/internal/changelog"
	"github.com/ariel-frischer/kacl/internal/config"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/git"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/ariel-frischer/kacl/internal/source"
	"github.com/spf13/cobra"
)

var duplicatePolicies = []string{string(changelog.DuplicateOverwrite), string(changelog.DuplicateMerge)}

// settings is the resolved configuration of one command run.
type settings struct {
	cfg     *config.Configuration
	format  output.Format
	options changelog.Options
	// debugf receives source debug messages when --verbose is set.
	debugf source.Logf
}

// loadSettings loads the layered configuration and applies the global flags on top.
func (a *app) loadSettings(cmd *cobra.Command) (*settings, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{ProjectConfigPath: a.configPath})
	if err != nil {
		return nil, clierrors.InvalidConfig(err)
	}
	if err := a.applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return nil, clierrors.InvalidFlagValue("format", cfg.Format, output.Formats())
	}
	policy, err := changelog.ParseDuplicatePolicy(cfg.Duplicates)
	if err != nil {
		return nil, clierrors.InvalidFlagValue("duplicates", cfg.Duplicates, duplicatePolicies)
	}

	logger := loggerFromContext(cmd.Context())
	logger.Debug("configuration loaded",
		"changelog", cfg.Changelog,
		"changelog_source", cfg.Source("changelog"),
		"revision", cfg.Revision,
		"format", format,
		"duplicates", policy,
	)

	var debugf source.Logf
	if a.verbose {
		debugf = logger.Debugf
	}

	return &settings{
		cfg:    cfg,
		format: format,
		debugf: debugf,
		options: changelog.Options{
			Duplicates:     policy,
			RequireRelease: cfg.RequireRelease,
		},
	}, nil
}

// applyFlags overrides configuration values with the flags the user set.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Configuration) error {
	flags := cmd.Flags()

	if flags.Changed("changelog") {
		cfg.SetFlag("changelog", func(c *config.Configuration) { c.Changelog = a.changelog })
	}
	if flags.Changed("rev") {
		cfg.SetFlag("revision", func(c *config.Configuration) { c.Revision = a.revision })
	}
	if flags.Changed("format") {
		f, err := output.ParseFormat(a.format)
		if err != nil || strings.TrimSpace(a.format) == "" {
			return clierrors.InvalidFlagValue("format", a.format, output.Formats())
		}
		cfg.SetFlag("format", func(c *config.Configuration) { c.Format = string(f) })
	}
	if flags.Changed("duplicates") {
		p, err := changelog.ParseDuplicatePolicy(a.duplicates)
		if err != nil || strings.TrimSpace(a.duplicates) == "" {
			return clierrors.InvalidFlagValue("duplicates", a.duplicates, duplicatePolicies)
		}
		cfg.SetFlag("duplicates", func(c *config.Configuration) { c.Duplicates = string(p) })
	}
	if flags.Changed("require-release") {
		cfg.SetFlag("require_release", func(c *config.Configuration) { c.RequireRelease = a.requireRelease })
	}
	return nil
}

// sourceFor returns the Source for path using the configured revision and timeout.
func (s *settings) sourceFor(path string) (source.Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, clierrors.NoChangelogSet()
	}
	spec := source.Spec{
		Path:     path,
		Revision: s.cfg.Revision,
		Timeout:  s.cfg.RemoteTimeout,
		Logf:     s.debugf,
	}
	if spec.Revision != "" && !isRemote(path) {
		// Find the repository from the changelog, not the working directory.
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		spec.Path = abs
		spec.RepoDir = filepath.Dir(abs)
		if !git.IsRepository(spec.RepoDir) {
			return nil, clierrors.NewArgumentError(
				fmt.Sprintf("--rev %s: %s is not inside a git repository", spec.Revision, path),
				"Remove --rev to read the file on disk",
			)
		}
	}
	return source.New(spec), nil
}

func isRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// changelogSource returns the Source of the configured changelog.
func (s *settings) changelogSource() (source.Source, error) {
	return s.sourceFor(s.cfg.Changelog)
}

// read returns the text of src, converting failures to CLI errors.
func (s *settings) read(ctx context.Context, src source.Source) (string, error) {
	text, err := src.Read(ctx)
	if err != nil {
		return "", evaluationError(src.Name(), err)
	}
	return text, nil
}

// evaluate reads and evaluates src, converting failures to CLI errors.
func (s *settings) evaluate(ctx context.Context, src source.Source) (*changelog.Result, error) {
	text, err := s.read(ctx, src)
	if err != nil {
		return nil, err
	}

	res, err := changelog.Evaluate(text, s.options)
	if err != nil {
		return nil, evaluationError(src.Name(), err)
	}

	loggerFromContext(ctx).Debug("evaluated changelog",
		"source", src.Name(),
		"releases", res.ReleaseCount(),
		"skipped", len(res.Skipped),
		"unreleased", res.HasUnreleased(),
	)
	return res, nil
}

// evaluateChangelog evaluates the configured changelog.
func (s *settings) evaluateChangelog(ctx context.Context) (source.Source, *changelog.Result, error) {
	src, err := s.changelogSource()
	if err != nil {
		return nil, nil, err
	}
	res, err := s.evaluate(ctx, src)
	if err != nil {
		return src, nil, err
	}
	return src, res, nil
}

// evaluationError converts a read or evaluation failure into a CLIError.
// Errors without a dedicated message are wrapped with the source name.
func evaluationError(name string, err error) error {
	switch {
	case clierrors.IsCLIError(err):
		return err
	case errors.Is(err, source.ErrFileNotFound):
		return clierrors.MissingChangelog(name, err)
	case errors.Is(err, changelog.ErrMalformedDocument):
		return clierrors.InvalidChangelog(name, err)
	case errors.Is(err, changelog.ErrNoValidReleases):
		return clierrors.NoValidReleases(name, err)
	case errors.Is(err, git.ErrRevisionNotFound):
		e := clierrors.NewArgumentError(err.Error(),
			"Check the revision passed with --rev",
			"List revisions with: git log --oneline",
		)
		e.Err = err
		return e
	default:
		return fmt.Errorf("reading %s: %w", name, err)
	}
}

// formatOptions returns the text formatting options for output to w.
func (a *app) formatOptions(w io.Writer) changelog.FormatOptions {
	return changelog.FormatOptions{Plain: a.isPlain(w)}
}

// writeSkipped reports dropped sections, one line each.
func (a *app) writeSkipped(w io.Writer, skipped []changelog.Skipped) {
	opts := a.formatOptions(w)
	for _, s := range skipped {
		fmt.Fprintln(w, changelog.FormatSkipped(s, opts))
	}
}
