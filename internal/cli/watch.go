package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/notify"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/ariel-frischer/kacl/internal/source"
	"github.com/ariel-frischer/kacl/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		debounce time.Duration
		desktop  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-print the current release whenever the changelog changes",
		Long: `Watch the changelog file and print the current release each time it is
saved. Parse errors and skipped sections are reported without stopping the
watch. Press Ctrl+C to stop.

With --notify a desktop notification is sent when the current release changes
or the changelog stops parsing. Notifications are never sent under CI.

Only local files can be watched; --rev and URLs are rejected.`,
		Example: `  kacl watch
  kacl watch --changelog docs/CHANGELOG.md
  kacl watch --format json
  kacl watch --notify`,
		Args:    cobra.NoArgs,
		GroupID: GroupValidation,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, debounce, desktop)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period after a change before re-evaluating")
	cmd.Flags().BoolVar(&desktop, "notify", false, "Send desktop notifications on release changes and parse failures")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, debounce time.Duration, desktop bool) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := s.changelogSource()
	if err != nil {
		return err
	}
	file, ok := src.(*source.File)
	if !ok {
		return clierrors.NewArgumentError(
			fmt.Sprintf("cannot watch %s: only local files can be watched", src.Name()),
			"Remove --rev, or pass a local path with --changelog",
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := loggerFromContext(ctx)
	w, err := watch.New(file.Path,
		watch.WithDebounce(debounce),
		watch.WithErrorHandler(func(err error) { logger.Warn("watch", "err", err) }),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	notifier := notify.NewHandler(src.Name(), desktop)
	if desktop && !notifier.Enabled() {
		logger.Warn("Desktop notifications unavailable", "platform", runtime.GOOS)
	}

	logger.Info("Watching changelog", "path", w.Path())

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	return w.Run(ctx, func(ctx context.Context) {
		res, err := s.evaluate(ctx, src)
		if err != nil {
			notifier.OnError(err)
			reportError(errOut, err)
			return
		}
		if latest := res.Latest(); latest != nil {
			notifier.OnRelease(latest.Version.String())
		} else {
			notifier.OnRelease("")
		}

		if s.format.Structured() {
			if err := output.Encode(out, s.format, output.NewReport(src.Name(), res)); err != nil {
				logger.Error("encoding result", "err", err)
			}
			return
		}

		output.PrintSeparator(out, time.Now().Format("15:04:05"))
		if latest := res.Latest(); latest != nil {
			if err := changelog.FormatRelease(out, *latest, a.formatOptions(out)); err != nil {
				logger.Error("writing release", "err", err)
			}
		} else {
			output.PrintWarning(out, "No valid release sections.")
		}
		a.writeSkipped(errOut, res.Skipped)
	})
}
