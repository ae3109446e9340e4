package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/scenedeck/scenedeck/pkg/envfile"
	"github.com/scenedeck/scenedeck/pkg/gateway"
)

// setupAnswers is what the wizard collects before anything touches disk.
type setupAnswers struct {
	BaseURL     string
	Model       string
	Token       string
	StoreToken  bool
	CustomBase  string
	CustomModel string
}

const customChoice = "custom"

// runSetup is the `scenedeck setup` subcommand: an interactive wizard that
// writes the workspace defaults file the dashboard and the headless commands
// read on startup.
func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	root := fs.String("workspace", ".", "workspace directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, _, err := openWorkspace(*root)
	if err != nil {
		return err
	}

	// Current resolution (env file just loaded + process env) seeds the
	// wizard so re-running it edits rather than resets.
	current := gateway.Resolve(gateway.Overrides{})

	answers := setupAnswers{
		BaseURL: current.BaseURL,
		Model:   current.Model,
		Token:   current.Token,
	}

	if err := promptSetup(&answers); err != nil {
		return err
	}

	path := ws.EnvFilePath()
	pairs := envfile.Defaults(answers.BaseURL, answers.Model, answers.Token)

	if err := envfile.Save(path, pairs, answers.StoreToken); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)

	if !answers.StoreToken && answers.Token != "" {
		fmt.Println("The API key was not stored; keep it in GITHUB_TOKEN or OPENAI_API_KEY.")
	}

	return nil
}

func promptSetup(a *setupAnswers) error {
	baseChoice := a.BaseURL
	if baseChoice != gateway.DefaultBaseURL {
		baseChoice = customChoice
		a.CustomBase = a.BaseURL
	}

	modelChoice := a.Model
	if modelChoice != "openai/gpt-4.1" && modelChoice != gateway.DefaultModel {
		modelChoice = customChoice
		a.CustomModel = a.Model
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Gateway base URL").
			Options(
				huh.NewOption("GitHub Models ("+gateway.DefaultBaseURL+")", gateway.DefaultBaseURL),
				huh.NewOption("Custom OpenAI-compatible endpoint", customChoice),
			).
			Value(&baseChoice),
		huh.NewSelect[string]().
			Title("Model").
			Options(
				huh.NewOption("openai/gpt-4.1", "openai/gpt-4.1"),
				huh.NewOption(gateway.DefaultModel, gateway.DefaultModel),
				huh.NewOption("Other", customChoice),
			).
			Value(&modelChoice),
	)).Run(); err != nil {
		return err
	}

	if baseChoice == customChoice {
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Base URL").Value(&a.CustomBase).Validate(validateBaseURL),
		)).Run(); err != nil {
			return err
		}

		a.BaseURL = strings.TrimSpace(a.CustomBase)
	} else {
		a.BaseURL = baseChoice
	}

	if modelChoice == customChoice {
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Model id").Value(&a.CustomModel).Validate(validateNonEmpty),
		)).Run(); err != nil {
			return err
		}

		a.Model = strings.TrimSpace(a.CustomModel)
	} else {
		a.Model = modelChoice
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("API key (empty keeps using GITHUB_TOKEN / OPENAI_API_KEY)").
			EchoMode(huh.EchoModePassword).
			Value(&a.Token),
		huh.NewConfirm().
			Title("Store the key in the env file? (plain text on disk)").
			Value(&a.StoreToken),
	)).Run()
}

func validateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("must start with http:// or https://")
	}

	return nil
}

func validateNonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}

	return nil
}
