package cli

import (
	"context"
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/kacl/internal/errors"
)

// Exit codes for the kacl CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitValidationFailed indicates the changelog did not satisfy the command
	// (malformed, skipped sections, no release, no Unreleased section)
	ExitValidationFailed = 1

	// ExitInvalidArguments indicates invalid command arguments or configuration
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates the changelog file could not be found
	ExitMissingDependencies = 4

	// ExitTimeout indicates a remote changelog fetch timed out
	ExitTimeout = 5
)

// exitError carries an exit code for a failure that was already reported.
type exitError struct {
	code int
}

// NewExitError returns an error that makes the process exit with code
// without printing anything further.
func NewExitError(code int) error {
	return &exitError{code: code}
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// ExitCode returns the exit code for an error returned by a command.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeout
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument, clierrors.Configuration:
			return ExitInvalidArguments
		case clierrors.Prerequisite:
			return ExitMissingDependencies
		}
	}
	return ExitValidationFailed
}
