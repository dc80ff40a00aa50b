// Package notify sends desktop notifications when a watched changelog changes.
package notify

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// NotificationType represents the type of notification event
type NotificationType string

const (
	// TypeSuccess indicates a new current release
	TypeSuccess NotificationType = "success"
	// TypeFailure indicates the changelog stopped parsing
	TypeFailure NotificationType = "failure"
)

// Notification represents a single notification event to dispatch
type Notification struct {
	Title            string
	Message          string
	NotificationType NotificationType
}

// Sender delivers a notification to the OS notification system.
type Sender interface {
	Send(n Notification) error
	Available() bool
}

// NewSender returns the sender for the current OS, or a no-op sender when
// the platform tool is not installed.
func NewSender() Sender {
	switch runtime.GOOS {
	case "darwin":
		if toolAvailable("osascript") {
			return commandSender{build: func(n Notification) *exec.Cmd {
				script := fmt.Sprintf("display notification %q with title %q", n.Message, n.Title)
				return exec.Command("osascript", "-e", script)
			}}
		}
	case "linux":
		if toolAvailable("notify-send") {
			return commandSender{build: func(n Notification) *exec.Cmd {
				urgency := "normal"
				if n.NotificationType == TypeFailure {
					urgency = "critical"
				}
				return exec.Command("notify-send", "--urgency", urgency, n.Title, n.Message)
			}}
		}
	}
	return noopSender{}
}

type commandSender struct {
	build func(Notification) *exec.Cmd
}

func (s commandSender) Send(n Notification) error {
	if err := s.build(n).Run(); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}

func (s commandSender) Available() bool { return true }

type noopSender struct{}

func (noopSender) Send(Notification) error { return nil }
func (noopSender) Available() bool         { return false }

// toolAvailable checks if a command-line tool is available in PATH
func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Handler decides which watch events become notifications.
// A nil *Handler is valid and sends nothing.
type Handler struct {
	sender  Sender
	title   string
	enabled bool
	seen    bool
	last    string
	failing bool
}

// NewHandler creates a handler for the changelog called name. Notifications
// are only sent when enabled is set, the session is interactive and it is not
// running under CI.
func NewHandler(name string, enabled bool) *Handler {
	return NewHandlerWithSender(name, enabled && !isCI() && isInteractive(), NewSender())
}

// NewHandlerWithSender creates a handler with a custom sender (for testing).
func NewHandlerWithSender(name string, enabled bool, sender Sender) *Handler {
	return &Handler{sender: sender, title: "kacl: " + name, enabled: enabled}
}

// Enabled reports whether the handler will send anything.
func (h *Handler) Enabled() bool {
	return h != nil && h.enabled && h.sender.Available()
}

// OnRelease records the current release version after an evaluation. The first
// call only sets the baseline; later calls notify when the version differs.
// An empty version means the changelog has no valid release.
func (h *Handler) OnRelease(version string) {
	if h == nil {
		return
	}
	changed := h.seen && version != h.last
	h.seen, h.last, h.failing = true, version, false
	if !changed || version == "" {
		return
	}
	h.send(Notification{
		Title:            h.title,
		Message:          fmt.Sprintf("Current release is now %s", version),
		NotificationType: TypeSuccess,
	})
}

// OnError notifies once when the changelog stops evaluating. Repeated
// failures are not reported again until a successful evaluation.
func (h *Handler) OnError(err error) {
	if h == nil || h.failing {
		return
	}
	h.failing = true
	h.send(Notification{
		Title:            h.title,
		Message:          err.Error(),
		NotificationType: TypeFailure,
	})
}

func (h *Handler) send(n Notification) {
	if !h.Enabled() {
		return
	}
	if err := h.sender.Send(n); err != nil {
		log.Debug("notification failed", "err", err)
	}
}

// isCI checks for common CI environment variables.
func isCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "TRAVIS", "JENKINS_URL", "BUILDKITE"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// isInteractive reports whether stdout or stderr is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) || term.IsTerminal(int(os.Stderr.Fd()))
}
