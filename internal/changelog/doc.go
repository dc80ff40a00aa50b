// Package changelog extracts release information from Keep a Changelog
// formatted markdown.
//
// This package implements:
//   - CHANGELOG.md parsing into a Document (Unreleased section, release sections,
//     category subsections and their items)
//   - Strict semantic version and YYYY-MM-DD date normalization
//   - Release extraction with per-section diagnostics for dropped sections
//   - Ordering by semantic version precedence
//   - Rendering to metadata maps, flattened markdown, HTML and terminal output
//
// Evaluate ties these together and produces the records a build pipeline
// consumes: the unreleased record, the current release, all releases and the
// latest release notes.
package changelog
