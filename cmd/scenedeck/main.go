package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/scenedeck/scenedeck/pkg/envfile"
	"github.com/scenedeck/scenedeck/pkg/gateway"
	"github.com/scenedeck/scenedeck/pkg/scenes"
	"github.com/scenedeck/scenedeck/pkg/workspace"
)

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "generate":
			exitOn(runGenerate(os.Args[2:]))
			return
		case "connect":
			exitOn(runConnect(os.Args[2:]))
			return
		case "scenes":
			exitOn(runScenes(os.Args[2:]))
			return
		case "setup":
			exitOn(runSetup(os.Args[2:]))
			return
		case "help", "-h", "--help":
			usage()
			return
		}
	}

	exitOn(runDashboard(os.Args[1:]))
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: scenedeck [flags]
       scenedeck <command> [flags]

Commands:
  generate  Generate a scene headlessly (same flags as the dashboard)
  connect   Attach the latest (or a given) scene to a running Unity editor
  scenes    List recently generated scenes
  setup     Interactive wizard that writes the .scenedeck.env defaults file

Without a command, scenedeck starts the dashboard.
`)
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openWorkspace loads the defaults env file and the optional YAML config for
// the given root. Missing files are fine; the env file only pre-seeds
// environment variables the gateway resolver reads.
func openWorkspace(root string) (workspace.Dir, workspace.Config, error) {
	ws := workspace.New(root)

	if err := envfile.Load(ws.EnvFilePath()); err != nil {
		return ws, workspace.Config{}, err
	}

	cfg, err := workspace.LoadConfig(ws.ConfigPath())
	if err != nil {
		return ws, workspace.Config{}, err
	}

	return ws, cfg, nil
}

func runDashboard(args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ws, cfg, err := openWorkspace(root)
	if err != nil {
		return err
	}

	client := gateway.New(gateway.Resolve(cfg.GatewayOverrides()))
	store := scenes.NewStore(ws.ScenesRoot())

	model := newAppModel(ctx, ws, cfg, client, store)

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Send the program reference so the model can start bridge goroutines.
	go func() {
		p.Send(programReadyMsg{program: p})
	}()

	_, err = p.Run()

	return err
}
