package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/scenedeck/scenedeck/pkg/envfile"
	"github.com/scenedeck/scenedeck/pkg/gateway"
	"github.com/scenedeck/scenedeck/pkg/pipeline"
	"github.com/scenedeck/scenedeck/pkg/scenes"
	"github.com/scenedeck/scenedeck/pkg/unity"
	"github.com/scenedeck/scenedeck/pkg/workspace"
)

// runGenerate is the headless equivalent of the dashboard's Generate tab.
func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scenedeck generate -prompt <text> [flags]\n\nGenerate a scene without remembering long commands.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	root := fs.String("workspace", ".", "workspace root")
	prompt := fs.String("prompt", "", "scene description (required)")
	model := fs.String("model", "", "model id (e.g. openai/gpt-4.1 or openai/gpt-4o-mini)")
	base := fs.String("base", "", "OpenAI-compatible API base URL")
	key := fs.String("key", "", "API key (GitHub token); falls back to GITHUB_TOKEN / OPENAI_API_KEY")
	image := fs.Bool("image", false, "generate images")
	video := fs.Bool("video", false, "generate video")
	ceiling := fs.Bool("ceiling", true, "add ceiling")
	singleRoom := fs.Bool("single-room", true, "force single room")
	fast := fs.Bool("fast", true, "fast mode (fewer unique assets)")
	remember := fs.Bool("remember", false, "remember base/model in the defaults file (not the key)")
	rememberKey := fs.Bool("remember-key", false, "also save the API key in the defaults file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, cfg, err := openWorkspace(*root)
	if err != nil {
		return err
	}

	gwCfg := resolveGateway(cfg, *key, *base, *model)
	if !gwCfg.HasToken() {
		return fmt.Errorf("no API key; use -key or set GITHUB_TOKEN / OPENAI_API_KEY")
	}

	opts := pipelineOptions(ws, cfg)
	opts.Prompt = *prompt
	opts.Model = gwCfg.Model
	opts.APIKey = gwCfg.Token
	opts.BaseURL = gwCfg.BaseURL
	opts.GenerateImage = *image
	opts.GenerateVideo = *video
	opts.AddCeiling = *ceiling
	opts.SingleRoom = *singleRoom
	opts.FastMode = *fast

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println(pipeline.Preview(opts))
	fmt.Println()

	start := time.Now()

	runErr := pipeline.Run(ctx, opts, func(line string) { fmt.Println(line) })
	if runErr != nil {
		return runErr
	}

	fmt.Printf("\nGeneration finished in %s.\n", fmtDuration(time.Since(start)))

	store := scenes.NewStore(ws.ScenesRoot())
	if latest, ok, _ := store.Latest(); ok {
		fmt.Printf("Latest scene: %s\n", latest.Path)
	} else {
		fmt.Println("(no scene json found yet under data/scenes)")
	}

	if *remember || *rememberKey {
		pairs := envfile.Defaults(gwCfg.BaseURL, gwCfg.Model, gwCfg.Token)
		if err := envfile.Save(ws.EnvFilePath(), pairs, *rememberKey); err != nil {
			return err
		}

		fmt.Printf("Saved defaults to %s\n", ws.EnvFilePath())
	}

	return nil
}

// runConnect attaches a scene to a running Unity editor.
func runConnect(args []string) error {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scenedeck connect [flags]\n\nOpen the editor, press Play on Procedural.unity, then run this to attach.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	root := fs.String("workspace", ".", "workspace root")
	scenePath := fs.String("scene", "", "path to scene json (defaults to the latest)")
	port := fs.Int("port", 0, "Unity editor port")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, cfg, err := openWorkspace(*root)
	if err != nil {
		return err
	}

	target := *scenePath
	if target == "" {
		store := scenes.NewStore(ws.ScenesRoot())

		latest, ok, err := store.Latest()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no scene json found; run `scenedeck generate` first or pass -scene")
		}

		target = latest.Path
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := connectorOptions(ws, cfg)
	opts.ScenePath = target

	if *port > 0 {
		opts.Port = *port
	}

	fmt.Printf("Connecting Unity editor on port %d with scene:\n   %s\n\n", effectivePort(opts), target)

	return unity.Connect(ctx, opts, func(line string) { fmt.Println(line) })
}

// runScenes lists recently generated scenes.
func runScenes(args []string) error {
	fs := flag.NewFlagSet("scenes", flag.ExitOnError)
	root := fs.String("workspace", ".", "workspace root")
	limit := fs.Int("limit", 12, "maximum scenes to list")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, _, err := openWorkspace(*root)
	if err != nil {
		return err
	}

	list, err := scenes.NewStore(ws.ScenesRoot()).List(*limit)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Println("No scenes yet. Run `scenedeck generate` first.")
		return nil
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		for _, sc := range list {
			fmt.Println(sc.Path)
		}

		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Scene", "Size", "Modified"})

	for _, sc := range list {
		t.AppendRow(table.Row{sc.Path, fmtSize(sc.Size), sc.ModTime.Format("2006-01-02 15:04")})
	}

	t.Render()

	return nil
}

// resolveGateway layers explicit CLI values over the workspace config, then
// lets the resolver apply environment variables and defaults.
func resolveGateway(cfg workspace.Config, key, base, model string) gateway.Config {
	o := cfg.GatewayOverrides()

	if key != "" {
		o.Token = key
	}
	if base != "" {
		o.BaseURL = base
	}
	if model != "" {
		o.Model = model
	}

	return gateway.Resolve(o)
}

func pipelineOptions(ws workspace.Dir, cfg workspace.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Python = cfg.Pipeline.Python
	opts.Module = cfg.Pipeline.Module
	opts.ExtraArgs = cfg.Pipeline.Args
	opts.Dir = ws.Root()

	return opts
}

func connectorOptions(ws workspace.Dir, cfg workspace.Config) unity.Options {
	opts := unity.Options{
		Script: cfg.Connector.Script,
		Port:   cfg.Connector.Port,
		Python: cfg.Pipeline.Python,
		Dir:    ws.Root(),
	}

	if opts.Script == "" {
		opts.Script = ws.ConnectorScript()
	}

	return opts
}

func effectivePort(opts unity.Options) int {
	if opts.Port > 0 {
		return opts.Port
	}

	return unity.DefaultPort
}
