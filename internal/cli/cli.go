// Package cli implements the kacl command-line interface.
//
// kacl reads a Keep a Changelog formatted CHANGELOG.md and extracts release
// records from it: the Unreleased section, the current release, all releases
// in descending semantic version order, and the latest release notes. The
// CLI is built using cobra, configured through koanf (see internal/config)
// and logs via charmbracelet/log.
//
// # Commands
//
//   - parse: Evaluate one or more changelogs and print every output
//   - current, releases, unreleased, release: Print individual records
//   - notes: Print release notes as markdown or HTML
//   - check: Report sections that were dropped during extraction
//   - render: Print the normalized changelog
//   - watch: Re-evaluate whenever the changelog changes
//   - config: Show keys and effective configuration, write a config file
//   - version: Show build information
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. Logs go to stderr, data to stdout.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ariel-frischer/kacl/internal/build"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Command group IDs for organizing help output.
const (
	GroupQuery         = "query"
	GroupValidation    = "validation"
	GroupConfiguration = "configuration"
)

// app holds the global flag values shared by every command of one invocation.
type app struct {
	changelog      string
	revision       string
	format         string
	duplicates     string
	requireRelease bool
	configPath     string
	plain          bool
	verbose        bool
}

// Execute runs the kacl CLI and returns the error of the failed command, if
// any. The error has already been reported on stderr; pass it to ExitCode
// for the process exit status.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(); err != nil {
//	        os.Exit(cli.ExitCode(err))
//	    }
//	}
func Execute() error {
	root := newRootCmd()
	err := root.ExecuteContext(context.Background())
	reportError(root.ErrOrStderr(), err)
	return err
}

// newRootCmd builds the full command tree. Every call returns an independent tree.
func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "kacl",
		Short: "Extract release records from a Keep a Changelog CHANGELOG.md",
		Long: `kacl parses a changelog that follows the Keep a Changelog convention
(https://keepachangelog.com) and extracts release records from it.

It reports the Unreleased section, the current release (highest semantic
version), every release in descending version order and the latest release
notes as markdown. Sections whose version is not a valid semantic version,
or whose date is not a valid YYYY-MM-DD date, are skipped with a diagnostic.

The changelog can be read from disk, from a Git revision (--rev) or from an
http(s) URL.`,
		Example: `  # Show every output for ./CHANGELOG.md
  kacl parse

  # Current release as JSON
  kacl current --format json

  # Release notes of the latest release for a GitHub release body
  kacl notes > notes.md

  # Read the changelog as committed at a tag
  kacl releases --rev v1.2.0

  # Fail CI when a section was skipped
  kacl check`,
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})

	info := build.Current()
	root.SetVersionTemplate(fmt.Sprintf("kacl %s\ncommit: %s\nbuilt: %s\n", info.Version, info.ShortCommit(), info.BuildDate))

	flags := root.PersistentFlags()
	flags.StringVarP(&a.changelog, "changelog", "c", "", "Changelog path or http(s) URL (default: CHANGELOG.md)")
	flags.StringVar(&a.revision, "rev", "", "Read the changelog as committed at a Git revision")
	flags.StringVarP(&a.format, "format", "f", "", "Output format: text, json, yaml, toml")
	flags.StringVar(&a.duplicates, "duplicates", "", "Repeated category labels: overwrite or merge")
	flags.BoolVar(&a.requireRelease, "require-release", false, "Fail when no valid release section exists")
	flags.StringVar(&a.configPath, "config", "", "Project config file (default: .kacl.yml)")
	flags.BoolVar(&a.plain, "plain", false, "Plain text output (no colors/icons)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddGroup(
		&cobra.Group{ID: GroupQuery, Title: "Query Commands:"},
		&cobra.Group{ID: GroupValidation, Title: "Validation Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
	)

	root.AddCommand(
		newParseCmd(a),
		newCurrentCmd(a),
		newReleasesCmd(a),
		newUnreleasedCmd(a),
		newReleaseCmd(a),
		newNotesCmd(a),
		newCheckCmd(a),
		newRenderCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)

	return root
}

// reportError prints err to w unless it only carries an exit code.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if _, ok := err.(*exitError); ok {
		return
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		if output.IsTerminal(w) {
			fmt.Fprint(w, clierrors.FormatError(cliErr))
		} else {
			fmt.Fprint(w, clierrors.FormatErrorPlain(cliErr))
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// isPlain reports whether output to w should be unstyled.
func (a *app) isPlain(w io.Writer) bool {
	return a.plain || os.Getenv("NO_COLOR") != "" || !output.IsTerminal(w)
}
