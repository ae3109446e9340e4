package main

import (
	"path/filepath"
	"testing"

	"github.com/scenedeck/scenedeck/pkg/gateway"
	"github.com/scenedeck/scenedeck/pkg/unity"
	"github.com/scenedeck/scenedeck/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearGatewayEnv blanks every variable the resolver reads so tests see only
// what they set.
func clearGatewayEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		"GITHUB_TOKEN", "GH_TOKEN", "OPENAI_API_KEY",
		"OPENAI_API_BASE", "OPENAI_BASE_URL",
		"SCENEDECK_MODEL", "SCENEDECK_TRUST_ENV",
	} {
		t.Setenv(name, "")
	}
}

func TestResolveGateway_CLIFlagsWinOverConfig(t *testing.T) {
	clearGatewayEnv(t)

	cfg := workspace.Config{}
	cfg.Gateway.Model = "openai/gpt-4.1"
	cfg.Gateway.BaseURL = "https://config.example"

	got := resolveGateway(cfg, "flag-key", "https://flag.example", "openai/gpt-4o")

	assert.Equal(t, "flag-key", got.Token)
	assert.Equal(t, "https://flag.example", got.BaseURL)
	assert.Equal(t, "openai/gpt-4o", got.Model)
}

func TestResolveGateway_ConfigFillsWhatFlagsOmit(t *testing.T) {
	clearGatewayEnv(t)

	cfg := workspace.Config{}
	cfg.Gateway.Model = "openai/gpt-4.1"

	got := resolveGateway(cfg, "", "", "")

	assert.Equal(t, "openai/gpt-4.1", got.Model)
	assert.Equal(t, gateway.DefaultBaseURL, got.BaseURL)
	assert.False(t, got.HasToken())
}

func TestPipelineOptions_WorkspaceAndConfig(t *testing.T) {
	dir := t.TempDir()
	ws := workspace.New(dir)

	cfg := workspace.Config{}
	cfg.Pipeline.Python = "python3.11"
	cfg.Pipeline.Args = []string{"--seed", "7"}

	opts := pipelineOptions(ws, cfg)

	assert.Equal(t, "python3.11", opts.Python)
	assert.Equal(t, []string{"--seed", "7"}, opts.ExtraArgs)
	assert.Equal(t, ws.Root(), opts.Dir)
	assert.True(t, opts.SingleRoom)
	assert.True(t, opts.AddCeiling)
	assert.True(t, opts.FastMode)
}

func TestConnectorOptions_ScriptDefaultsToWorkspace(t *testing.T) {
	dir := t.TempDir()
	ws := workspace.New(dir)

	opts := connectorOptions(ws, workspace.Config{})

	require.Equal(t, ws.ConnectorScript(), opts.Script)
	assert.Equal(t, filepath.Join(ws.Root(), "connect_to_unity.py"), opts.Script)
	assert.Equal(t, ws.Root(), opts.Dir)
}

func TestConnectorOptions_ConfigScriptWins(t *testing.T) {
	ws := workspace.New(t.TempDir())

	cfg := workspace.Config{}
	cfg.Connector.Script = "/opt/custom/connector.py"
	cfg.Connector.Port = 9100

	opts := connectorOptions(ws, cfg)

	assert.Equal(t, "/opt/custom/connector.py", opts.Script)
	assert.Equal(t, 9100, effectivePort(opts))
}

func TestEffectivePort_DefaultWhenUnset(t *testing.T) {
	assert.Equal(t, unity.DefaultPort, effectivePort(unity.Options{}))
	assert.Equal(t, 9000, effectivePort(unity.Options{Port: 9000}))
}
