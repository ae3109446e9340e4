package main

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/scenedeck/scenedeck/pkg/gateway"
)

// statusBarModel is the single-line footer: gateway target, credential state,
// and the current run state.
type statusBarModel struct {
	cfg      gateway.Config
	state    string // empty when idle
	spinner  string
	duration time.Duration
	width    int
}

func newStatusBar(cfg gateway.Config) statusBarModel {
	return statusBarModel{cfg: cfg}
}

func (m statusBarModel) View() string {
	parts := []string{m.cfg.BaseURL, m.cfg.Model}

	if m.cfg.HasToken() {
		parts = append(parts, statusOkStyle.Render("key set"))
	} else {
		parts = append(parts, logErrorStyle.Render("key unset"))
	}

	if m.state != "" {
		parts = append(parts, m.spinner+" "+m.state)
	} else if m.duration > 0 {
		parts = append(parts, "last run "+fmtDuration(m.duration))
	}

	line := " " + strings.Join(parts, "  ·  ")

	if m.width > 0 {
		line = runewidth.Truncate(line, m.width, "…")
	}

	return statusStyle.Render(line)
}
