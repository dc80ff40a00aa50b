package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ariel-frischer/kacl/internal/config"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// configDocument is the structured output of config show.
type configDocument struct {
	Config []config.KeyValue `json:"config" yaml:"config" toml:"config"`
}

// keyDocument is one entry of the structured output of config keys.
type keyDocument struct {
	Key         string   `json:"key" yaml:"key" toml:"key"`
	Type        string   `json:"type" yaml:"type" toml:"type"`
	Default     string   `json:"default" yaml:"default" toml:"default"`
	Allowed     []string `json:"allowed,omitempty" yaml:"allowed,omitempty" toml:"allowed,omitempty"`
	Description string   `json:"description" yaml:"description" toml:"description"`
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kacl configuration",
		Long: `Manage kacl configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Command line flags
  2. Environment variables (KACL_*)
  3. Project config (.kacl.yml)
  4. User config (~/.config/kacl/config.yml)
  5. Built-in defaults`,
		Example: `  # Show the effective configuration and where each value came from
  kacl config show

  # List every configuration key
  kacl config keys

  # Create a project config
  kacl config init --project`,
		GroupID: GroupConfiguration,
	}

	cmd.AddCommand(newConfigShowCmd(a), newConfigKeysCmd(a), newConfigInitCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSettings(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			values := s.cfg.Values()
			if s.format.Structured() {
				return output.Encode(out, s.format, configDocument{Config: values})
			}

			dim := color.New(color.Faint).SprintFunc()
			if a.isPlain(out) {
				dim = fmt.Sprint
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, kv := range values {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", kv.Key, displayValue(kv.Value), dim("("+string(kv.Source)+")"))
			}
			return tw.Flush()
		},
	}
}

func newConfigKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List all configuration keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			format, err := output.ParseFormat(a.format)
			if err != nil {
				return clierrors.InvalidFlagValue("format", a.format, output.Formats())
			}

			keys := make([]keyDocument, 0, len(config.KnownKeys))
			for _, name := range config.SortedKeys() {
				schema := config.KnownKeys[name]
				keys = append(keys, keyDocument{
					Key:         name,
					Type:        schema.Type.String(),
					Default:     fmt.Sprint(schema.Default),
					Allowed:     schema.AllowedValues,
					Description: schema.Description,
				})
			}

			if format.Structured() {
				return output.Encode(out, format, struct {
					Keys []keyDocument `json:"keys" yaml:"keys" toml:"keys"`
				}{Keys: keys})
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tTYPE\tDEFAULT\tDESCRIPTION")
			for _, k := range keys {
				desc := k.Description
				if len(k.Allowed) > 0 {
					desc += " [" + strings.Join(k.Allowed, "|") + "]"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k.Key, k.Type, displayValue(k.Default), desc)
			}
			return tw.Flush()
		},
	}
}

func newConfigInitCmd(a *app) *cobra.Command {
	var project, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config file",
		Long: `Write a commented configuration file with every key at its default value.

By default the user config (~/.config/kacl/config.yml) is created. Use
--project to create .kacl.yml (or the path given with --config) instead.
An existing file is left unchanged unless --force is given.`,
		Example: `  kacl config init
  kacl config init --project
  kacl config init --project --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigInit(cmd, project, force)
		},
	}

	cmd.Flags().BoolVarP(&project, "project", "p", false, "Create project-level config (.kacl.yml)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

func (a *app) runConfigInit(cmd *cobra.Command, project, force bool) error {
	out := cmd.OutOrStdout()

	path, err := a.configInitPath(project)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		output.PrintWarning(out, fmt.Sprintf("Config already exists at %s (use --force to overwrite)", path))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	output.PrintSuccess(out, fmt.Sprintf("Created config at %s", path))
	return nil
}

// configInitPath returns the file config init writes.
func (a *app) configInitPath(project bool) (string, error) {
	if !project {
		path, err := config.UserConfigPath()
		if err != nil {
			return "", clierrors.NewConfigError(
				fmt.Sprintf("cannot determine user config directory: %v", err),
				"Set XDG_CONFIG_HOME, or use --project",
			)
		}
		return path, nil
	}
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ProjectConfigPath(), nil
}

// displayValue shows empty values as "-" so table columns stay aligned.
func displayValue(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
