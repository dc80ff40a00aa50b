package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# kacl configuration
# See 'kacl config keys' for all options

changelog: CHANGELOG.md               # Path or http(s) URL of the changelog
revision: ""                          # Git revision to read from (empty = working tree)
duplicates: overwrite                 # Repeated category labels: overwrite | merge
require_release: false                # Fail when no valid release section exists
format: text                          # Output format: text | json | yaml | toml
max_parallel: 4                       # Changelogs evaluated concurrently (1-64)
remote_timeout: 5s                    # Timeout for http(s) changelogs
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"changelog": "CHANGELOG.md",
		"revision":  "",
		// duplicates: the last subsection with a repeated label wins unless
		// "merge" is selected.
		"duplicates":      "overwrite",
		"require_release": false,
		"format":          "text",
		"max_parallel":    4,
		"remote_timeout":  "5s",
	}
}
