package errors

import (
	"fmt"
	"strings"
)

// Stable error codes reported by kacl. They are part of the CLI contract
// and appear in both plain and colored output.
const (
	CodeNoChangelog     = "CNG0001"
	CodeMissingFile     = "CNG0002"
	CodeInvalidDocument = "CNG0003"
	CodeNoValidReleases = "CNG0004"
)

// NoChangelogSet creates an error for an empty changelog path.
func NoChangelogSet() *CLIError {
	return NewConfigError(
		"no changelog file set",
		"Pass the file with --changelog CHANGELOG.md",
		"Or set 'changelog' in .kacl.yml or KACL_CHANGELOG",
	).WithCode(CodeNoChangelog)
}

// MissingChangelog creates an error for a changelog that does not exist.
func MissingChangelog(name string, err error) *CLIError {
	e := NewPrerequisiteError(
		fmt.Sprintf("changelog file not found: %s", name),
		"Check the path passed with --changelog",
		"When using --rev, make sure the file is committed at that revision",
	).WithCode(CodeMissingFile)
	e.Err = err
	return e
}

// InvalidChangelog creates an error for a changelog that cannot be parsed.
func InvalidChangelog(name string, err error) *CLIError {
	return &CLIError{
		Category: Validation,
		Code:     CodeInvalidDocument,
		Message:  fmt.Sprintf("%s is not a valid changelog: %v", name, err),
		Remediation: []string{
			"Release sections must look like: ## [1.2.0] - 2024-01-31",
			"Category subsections (### Added) must follow a section heading",
			"See https://keepachangelog.com for the format",
		},
		Err: err,
	}
}

// NoValidReleases creates an error for a changelog without any usable release.
func NoValidReleases(name string, err error) *CLIError {
	return &CLIError{
		Category: Validation,
		Code:     CodeNoValidReleases,
		Message:  fmt.Sprintf("%s has no valid release sections: %v", name, err),
		Remediation: []string{
			"Run 'kacl check' to see why each section was skipped",
			"Versions must be semantic versions (1.2.0) and dates YYYY-MM-DD",
		},
		Err: err,
	}
}

// VersionNotFound creates an error for a release that is not in the changelog.
func VersionNotFound(version string, available []string) *CLIError {
	remediation := []string{"List releases with: kacl releases"}
	if len(available) > 0 {
		remediation = append(remediation, "Available: "+strings.Join(available, ", "))
	}
	return NewArgumentError(fmt.Sprintf("version %q not found in changelog", version), remediation...)
}

// NoUnreleasedSection creates an error when the changelog has no Unreleased section.
func NoUnreleasedSection(name string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("%s has no [Unreleased] section", name),
		"Add a '## [Unreleased]' heading above the latest release",
	)
}

// InvalidFlagValue creates an error for an out-of-range flag.
func InvalidFlagValue(flag, value string, allowed []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid value %q for --%s", value, flag),
		fmt.Sprintf("--%s %s", flag, strings.Join(allowed, "|")),
		fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
	)
}

// InvalidConfig creates an error for configuration that failed to load.
func InvalidConfig(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load configuration",
		"Check .kacl.yml and ~/.config/kacl/config.yml for typos",
		"List valid keys with: kacl config keys",
	)
}
