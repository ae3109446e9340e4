package workspace_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scenedeck/scenedeck/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_Paths(t *testing.T) {
	root := t.TempDir()
	d := workspace.New(root)

	assert.Equal(t, root, d.Root())
	assert.Equal(t, filepath.Join(root, ".scenedeck.env"), d.EnvFilePath())
	assert.Equal(t, filepath.Join(root, "scenedeck.yaml"), d.ConfigPath())
	assert.Equal(t, filepath.Join(root, "data", "scenes"), d.ScenesRoot())
	assert.Equal(t, filepath.Join(root, "connect_to_unity.py"), d.ConnectorScript())
	assert.True(t, d.Exists())

	assert.False(t, workspace.New(filepath.Join(root, "missing")).Exists())
}

func TestLoadConfig_MissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := workspace.LoadConfig(filepath.Join(t.TempDir(), "scenedeck.yaml"))
	require.NoError(t, err)
	assert.Equal(t, workspace.Config{}, cfg)
}

func TestLoadConfig_ExpandsEnvAndValidates(t *testing.T) {
	t.Setenv("TEST_SCENEDECK_KEY", "sekrit")

	path := filepath.Join(t.TempDir(), "scenedeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gateway:
  api_key: ${TEST_SCENEDECK_KEY}
  model: openai/gpt-4.1
  timeout: 45s
connector:
  port: 8200
`), 0o644))

	cfg, err := workspace.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sekrit", cfg.Gateway.APIKey)
	assert.Equal(t, "openai/gpt-4.1", cfg.Gateway.Model)
	assert.Equal(t, 8200, cfg.Connector.Port)

	o := cfg.GatewayOverrides()
	assert.Equal(t, "sekrit", o.Token)
	assert.Equal(t, 45*time.Second, o.Timeout)
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad temperature", "gateway:\n  temperature: 3.5\n"},
		{"bad timeout", "gateway:\n  timeout: soon\n"},
		{"bad port", "connector:\n  port: 99999\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenedeck.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := workspace.LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
