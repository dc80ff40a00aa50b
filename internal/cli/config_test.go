package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ariel-frischer/kacl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineFor returns the first output line that starts with key.
func lineFor(t *testing.T, out, key string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, key+" ") {
			return line
		}
	}
	t.Fatalf("no line for %q in:\n%s", key, out)
	return ""
}

func TestConfigShow_Sources(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), ".kacl.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("duplicates: merge\n"), 0o644))

	isolateConfig(t)
	t.Setenv("KACL_MAX_PARALLEL", "8")

	root := newRootCmd()
	var stdout strings.Builder
	root.SetOut(&stdout)
	root.SetErr(&strings.Builder{})
	root.SetArgs([]string{"--config", cfgPath, "--rev", "v1.0.0", "config", "show"})
	require.NoError(t, root.Execute())

	out := stdout.String()
	tests := map[string]struct {
		value  string
		source string
	}{
		"changelog":    {value: "CHANGELOG.md", source: "(default)"},
		"duplicates":   {value: "merge", source: "(project)"},
		"max_parallel": {value: "8", source: "(env)"},
		"revision":     {value: "v1.0.0", source: "(flag)"},
	}

	for key, tt := range tests {
		t.Run(key, func(t *testing.T) {
			line := lineFor(t, out, key)
			assert.Contains(t, line, tt.value)
			assert.Contains(t, line, tt.source)
		})
	}
}

func TestConfigShow_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "config", "show")
	require.NoError(t, err)

	var doc configDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Len(t, doc.Config, len(config.KnownKeys))
	assert.Equal(t, "changelog", doc.Config[0].Key)
	assert.Equal(t, config.SourceFlag, lookupKey(doc.Config, "format").Source)
}

func lookupKey(values []config.KeyValue, key string) config.KeyValue {
	for _, kv := range values {
		if kv.Key == key {
			return kv
		}
	}
	return config.KeyValue{}
}

func TestConfig_InvalidFile(t *testing.T) {
	tests := map[string]struct {
		content string
		wantErr string
	}{
		"unknown key":  {content: "bogus: 1\n", wantErr: "bogus"},
		"bad enum":     {content: "format: xml\n", wantErr: "format"},
		"bad yaml":     {content: "format: [json\n", wantErr: "YAML"},
		"out of range": {content: "max_parallel: 0\n", wantErr: "max_parallel"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), ".kacl.yml")
			require.NoError(t, os.WriteFile(cfgPath, []byte(tt.content), 0o644))

			_, _, err := execute(t, "--config", cfgPath, "config", "show")
			require.Error(t, err)
			assert.Equal(t, ExitInvalidArguments, ExitCode(err))
			assert.Contains(t, err.Error(), "failed to load configuration")

			var buf strings.Builder
			reportError(&buf, err)
			assert.Contains(t, buf.String(), tt.wantErr)
		})
	}
}

func TestConfigKeys(t *testing.T) {
	stdout, _, err := execute(t, "config", "keys")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "KEY"))
	for _, key := range config.SortedKeys() {
		assert.Contains(t, stdout, key)
	}
	assert.Contains(t, stdout, "[overwrite|merge]")
}

func TestConfigInit_Project(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", ".kacl.yml")

	stdout, _, err := execute(t, "--config", cfgPath, "config", "init", "--project")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created config at "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfigTemplate(), string(data))

	// The written template loads cleanly.
	_, _, err = execute(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfgPath, []byte("format: json\n"), 0o644))
	stdout, _, err = execute(t, "--config", cfgPath, "config", "init", "--project")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err = os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "format: json\n", string(data))

	_, _, err = execute(t, "--config", cfgPath, "config", "init", "--project", "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfigTemplate(), string(data))
}

func TestConfigInit_User(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honored on Linux")
	}

	isolateConfig(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	root := newRootCmd()
	var stdout strings.Builder
	root.SetOut(&stdout)
	root.SetErr(&strings.Builder{})
	root.SetArgs([]string{"config", "init"})
	require.NoError(t, root.Execute())

	assert.FileExists(t, filepath.Join(xdg, "kacl", "config.yml"))
}
