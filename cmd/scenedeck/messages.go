package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/scenedeck/scenedeck/pkg/scenes"
)

// programReadyMsg passes the *tea.Program to the model so background
// goroutines can post messages into the TUI.
type programReadyMsg struct {
	program *tea.Program
}

// runLineMsg delivers one line of pipeline or connector output.
type runLineMsg struct {
	line string
}

// runDoneMsg signals that the active pipeline or connector run finished.
type runDoneMsg struct {
	err      error
	duration time.Duration
}

// probeDoneMsg carries the gateway's reply to a one-shot prompt probe.
type probeDoneMsg struct {
	reply    string
	err      error
	duration time.Duration
}

// scenesLoadedMsg delivers the refreshed scene list.
type scenesLoadedMsg struct {
	list []scenes.Scene
	err  error
}

// scenePreviewMsg delivers a pretty-printed scene JSON head.
type scenePreviewMsg struct {
	text string
	err  error
}

// rememberedMsg signals that defaults were written to the env file.
type rememberedMsg struct {
	path string
	err  error
}

// tickMsg drives the spinner while a run is active.
type tickMsg time.Time
