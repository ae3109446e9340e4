package unity

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "connect_to_unity.py")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return path
}

// fakePython stands in for the interpreter: it just runs its script argument
// through sh so tests stay hermetic.
func fakePython(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nscript=\"$1\"\nshift\nexec sh \"$script\" \"$@\"\n"), 0o755))

	return path
}

func TestCommand_InlinePingWhenNoScript(t *testing.T) {
	argv := command(context.Background(), Options{ScenePath: "s.json"})

	require.Len(t, argv, 3)
	assert.Equal(t, "python3", argv[0])
	assert.Equal(t, "-c", argv[1])
	assert.Contains(t, argv[2], "port=8200")
	assert.Contains(t, argv[2], "Controller")
}

func TestCommand_CustomPortInPing(t *testing.T) {
	argv := command(context.Background(), Options{ScenePath: "s.json", Port: 9000})
	assert.Contains(t, argv[2], "port=9000")
}

func TestCommand_MissingScriptFallsBackToPing(t *testing.T) {
	argv := command(context.Background(), Options{
		ScenePath: "s.json",
		Script:    filepath.Join(t.TempDir(), "gone.py"),
	})

	assert.Equal(t, "-c", argv[1])
}

func TestCommand_ScriptWithPortSupport(t *testing.T) {
	script := fakeScript(t, "echo 'usage: connect [--scene S] [--port P]'\n")
	python := fakePython(t)

	argv := command(context.Background(), Options{
		ScenePath: "scene.json",
		Script:    script,
		Python:    python,
		Port:      8201,
	})

	assert.Equal(t, []string{python, script, "--scene", "scene.json", "--port", "8201"}, argv)
}

func TestCommand_ScriptWithoutPortSupport(t *testing.T) {
	script := fakeScript(t, "echo 'usage: connect [--scene S]'\n")
	python := fakePython(t)

	argv := command(context.Background(), Options{
		ScenePath: "scene.json",
		Script:    script,
		Python:    python,
	})

	assert.Equal(t, []string{python, script, "--scene", "scene.json"}, argv)
}

func TestConnect_RequiresExistingScene(t *testing.T) {
	err := Connect(context.Background(), Options{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene path is required")

	err = Connect(context.Background(), Options{ScenePath: filepath.Join(t.TempDir(), "gone.json")}, nil)
	require.Error(t, err)
}

func TestConnect_StreamsScriptOutput(t *testing.T) {
	scene := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(scene, []byte(`{}`), 0o644))

	script := fakeScript(t, "echo \"attaching $*\"\n")
	python := fakePython(t)

	var lines []string
	err := Connect(context.Background(), Options{
		ScenePath: scene,
		Script:    script,
		Python:    python,
	}, func(line string) { lines = append(lines, line) })

	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "attaching"))
}
