package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/kacl/internal/build"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for kacl",
		Example: `  # Show version info
  kacl version

  # Plain output (for scripts)
  kacl version --plain

  # As JSON
  kacl version --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(a.format)
			if err != nil {
				return clierrors.InvalidFlagValue("format", a.format, output.Formats())
			}

			out := cmd.OutOrStdout()
			info := build.Current()
			if format.Structured() {
				return output.Encode(out, format, info)
			}
			if a.isPlain(out) {
				printPlainVersion(out, info)
				return nil
			}
			printPrettyVersion(out, info)
			return nil
		},
	}
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer, info build.Info) {
	fmt.Fprintf(w, "kacl %s\n", info.Version)
	fmt.Fprintf(w, "commit: %s\n", info.Commit)
	fmt.Fprintf(w, "built: %s\n", info.BuildDate)
	fmt.Fprintf(w, "go: %s\n", info.GoVersion)
	fmt.Fprintf(w, "platform: %s\n", info.Platform)
}

// printPrettyVersion prints a styled version output
func printPrettyVersion(w io.Writer, info build.Info) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n\n", cyan("kacl"), white(info.Version))

	rows := []struct {
		label string
		value string
	}{
		{"Commit", info.ShortCommit()},
		{"Built", info.BuildDate},
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s  %s\n", yellow(fmt.Sprintf("%10s", row.label)), row.value)
	}
}
