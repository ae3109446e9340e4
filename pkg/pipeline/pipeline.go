// Package pipeline drives the external scene-generation pipeline as a child
// process and streams its combined output line by line. The pipeline itself
// (a Python module) is an external collaborator; this package only knows how
// to launch it.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"
)

// Defaults for the pipeline entry point.
const (
	DefaultPython = "python3"
	DefaultModule = "ai2holodeck.main"
)

// Options configure one generation run.
type Options struct {
	Prompt        string
	Model         string
	APIKey        string
	BaseURL       string
	GenerateImage bool
	GenerateVideo bool
	AddCeiling    bool
	SingleRoom    bool
	FastMode      bool

	Python    string   // interpreter; DefaultPython when empty
	Module    string   // entry module; DefaultModule when empty
	ExtraArgs []string // appended to every run
	Dir       string   // working directory for the child
}

// DefaultOptions returns Options with the flag defaults the dashboard
// presents: ceiling on, single room, fast mode.
func DefaultOptions() Options {
	return Options{AddCeiling: true, SingleRoom: true, FastMode: true}
}

// Command returns the argv for one run. Booleans are rendered as Python-style
// literals because the pipeline parses them that way.
func Command(opts Options) []string {
	python := opts.Python
	if python == "" {
		python = DefaultPython
	}

	module := opts.Module
	if module == "" {
		module = DefaultModule
	}

	argv := []string{
		python, "-m", module,
		"--mode", "generate_single_scene",
		"--query", opts.Prompt,
		"--openai_api_key", opts.APIKey,
		"--model", opts.Model,
		"--generate_image", pyBool(opts.GenerateImage),
		"--generate_video", pyBool(opts.GenerateVideo),
		"--add_ceiling", pyBool(opts.AddCeiling),
		"--single_room", pyBool(opts.SingleRoom),
	}

	return append(argv, opts.ExtraArgs...)
}

// Env returns the child environment: the parent environment plus the
// variables the pipeline and its SDKs read. Both base URL names are set
// because different SDK generations expect different ones.
func Env(opts Options) []string {
	env := os.Environ()

	env = setEnv(env, "OPENAI_API_BASE", opts.BaseURL)
	env = setEnv(env, "OPENAI_BASE_URL", opts.BaseURL)
	env = setEnv(env, "OPENAI_API_KEY", opts.APIKey)
	env = setEnv(env, "SCENEDECK_MODEL", opts.Model)

	if opts.FastMode {
		env = setEnv(env, "SCENEDECK_FAST", "1")
	}

	// Torch-based asset stages misbehave with default thread sharing.
	env = setEnvDefault(env, "OMP_NUM_THREADS", "1")

	return env
}

// LineFunc receives one line of combined pipeline output.
type LineFunc func(line string)

// Run launches the pipeline and streams its combined stdout/stderr through
// onLine until the process exits. Cancelling ctx kills the child. The returned
// error is the child's exit error, if any.
func Run(ctx context.Context, opts Options, onLine LineFunc) error {
	if strings.TrimSpace(opts.Prompt) == "" {
		return fmt.Errorf("pipeline: prompt is required")
	}

	if err := Stream(ctx, Command(opts), opts.Dir, Env(opts), onLine); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	return nil
}

// Stream runs argv with the given working directory and environment,
// forwarding combined stdout/stderr lines to onLine. A nil env keeps the
// parent environment. The connector driver reuses this for its own child
// processes.
func Stream(ctx context.Context, argv []string, dir string, env []string, onLine LineFunc) error {
	cmd := osexec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv is built from caller options, not remote input
	cmd.Dir = dir
	cmd.Env = env

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create pipe: %w", err)
	}

	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()

		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	// The child holds its own copy of the write end.
	_ = pw.Close()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}

	_ = pr.Close()

	return cmd.Wait()
}

// Preview returns a shell-ready rendering of the run command for display,
// with the API key masked.
func Preview(opts Options) string {
	argv := Command(opts)

	parts := make([]string, len(argv))
	mask := false

	for i, a := range argv {
		if mask {
			a = "********"
			mask = false
		}

		if a == "--openai_api_key" {
			mask = true
		}

		parts[i] = shellQuote(a)
	}

	return strings.Join(parts, " ")
}

func pyBool(b bool) string {
	if b {
		return "True"
	}

	return "False"
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	if strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]#~") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}

	return s
}

func setEnv(env []string, key, val string) []string {
	prefix := key + "="

	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + val
			return env
		}
	}

	return append(env, prefix+val)
}

func setEnvDefault(env []string, key, val string) []string {
	prefix := key + "="

	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return env
		}
	}

	return append(env, prefix+val)
}
