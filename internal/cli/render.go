package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ariel-frischer/kacl/internal/changelog"
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		outputPath string
		checkOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the changelog in normalized form",
		Long: `Parse the changelog and write it back in normalized Keep a Changelog
markdown: title, [Unreleased], release sections in document order, then
reference links. Text that is not part of the grammar (intro paragraphs,
blank lines inside sections) is dropped. Rendering is idempotent.`,
		Example: `  # Normalized changelog on stdout
  kacl render

  # Rewrite the changelog in place
  kacl render --output CHANGELOG.md

  # Fail when the file is not normalized
  kacl render --check`,
		Args:    cobra.NoArgs,
		GroupID: GroupValidation,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, outputPath, checkOnly)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Exit 1 when the changelog differs from its normalized form")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, outputPath string, checkOnly bool) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := s.changelogSource()
	if err != nil {
		return err
	}
	text, err := s.read(cmd.Context(), src)
	if err != nil {
		return err
	}

	doc, err := changelog.Parse(text)
	if err != nil {
		return evaluationError(src.Name(), err)
	}

	var buf bytes.Buffer
	if err := changelog.RenderDocument(doc, &buf); err != nil {
		return fmt.Errorf("rendering %s: %w", src.Name(), err)
	}

	if checkOnly {
		if buf.String() != text {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s is not normalized\n\nTo fix, run:\n  kacl render --output %s\n", src.Name(), src.Name())
			return NewExitError(ExitValidationFailed)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is normalized\n", src.Name())
		return nil
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		loggerFromContext(cmd.Context()).Infof("Rendered changelog written to %s", outputPath)
		return nil
	}

	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
