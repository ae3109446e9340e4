// Package unity attaches a generated scene to a running Unity/AI2-THOR
// editor. The editor and the connector script are external collaborators;
// this package only builds and launches the attach command. With no connector
// script present it falls back to a minimal inline controller ping.
package unity

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/scenedeck/scenedeck/pkg/pipeline"
)

// DefaultPort is the editor port Procedural.unity listens on.
const DefaultPort = 8200

// Options configure one editor attach.
type Options struct {
	ScenePath string
	Port      int
	Script    string // connector script; empty or missing → inline ping
	Python    string // interpreter; pipeline.DefaultPython when empty
	Dir       string // working directory for the child
}

// pingSnippet opens a controller against the running editor and issues a Pass
// action so the user sees whether frames arrive.
const pingSnippet = `
from ai2thor.controller import Controller
c = Controller(host="127.0.0.1", port=%d, launch_build=False, scene="Procedural", width=1024, height=768)
print("Connected to editor. Frame OK:", hasattr(c.step(action="Pass"), "frame"))
`

// Connect attaches the scene to the editor, streaming connector output
// through onLine. When the connector script exists it is used, passing --port
// only if the script advertises the flag; otherwise the inline ping runs.
func Connect(ctx context.Context, opts Options, onLine pipeline.LineFunc) error {
	if opts.ScenePath == "" {
		return fmt.Errorf("unity: scene path is required")
	}

	if _, err := os.Stat(opts.ScenePath); err != nil {
		return fmt.Errorf("unity: scene %s: %w", opts.ScenePath, err)
	}

	argv := command(ctx, opts)

	if err := pipeline.Stream(ctx, argv, opts.Dir, nil, onLine); err != nil {
		return fmt.Errorf("unity: connector: %w", err)
	}

	return nil
}

func command(ctx context.Context, opts Options) []string {
	python := opts.Python
	if python == "" {
		python = pipeline.DefaultPython
	}

	port := opts.Port
	if port <= 0 {
		port = DefaultPort
	}

	script := opts.Script
	if script != "" {
		if _, err := os.Stat(script); err != nil {
			script = ""
		}
	}

	if script == "" {
		return []string{python, "-c", fmt.Sprintf(pingSnippet, port)}
	}

	argv := []string{python, script, "--scene", opts.ScenePath}
	if scriptSupportsPort(ctx, python, script, opts.Dir) {
		argv = append(argv, "--port", fmt.Sprintf("%d", port))
	}

	return argv
}

// scriptSupportsPort probes the connector's --help output for a --port flag,
// since older connector scripts predate it.
func scriptSupportsPort(ctx context.Context, python, script, dir string) bool {
	cmd := osexec.CommandContext(ctx, python, script, "--help") //nolint:gosec // paths come from local configuration
	cmd.Dir = dir

	out, _ := cmd.CombinedOutput()

	return strings.Contains(string(out), "--port")
}

// KillStray best-effort terminates leftover editor and controller processes.
// Failures are ignored; there may simply be nothing to kill.
func KillStray(ctx context.Context) {
	for _, pattern := range []string{"ai2thor", "Unity"} {
		cmd := osexec.CommandContext(ctx, "pkill", "-f", pattern)
		_ = cmd.Run()
	}
}
