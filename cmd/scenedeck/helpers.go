package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

// spinnerFrames are braille characters for smooth animation.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// mdRenderer renders markdown to terminal-formatted output.
var mdRenderer *glamour.TermRenderer

func initMarkdownRenderer(width int) {
	if width <= 0 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}

	mdRenderer = r
}

// renderMarkdown converts markdown text to terminal-formatted output.
func renderMarkdown(text string) string {
	if mdRenderer == nil {
		return text
	}

	out, err := mdRenderer.Render(text)
	if err != nil {
		return text
	}

	return strings.TrimRight(out, "\n")
}

// fmtDuration formats a duration for display.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60

	return fmt.Sprintf("%dm %ds", min, sec)
}

// fmtSize formats a byte count for display.
func fmtSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// checkbox renders a toggle for single-line display.
func checkbox(label string, on, focused bool) string {
	box := "[ ]"
	style := toggleOffStyle

	if on {
		box = "[x]"
		style = toggleOnStyle
	}

	s := style.Render(box + " " + label)
	if focused {
		s = toggleFocusedStyle.Render(box + " " + label)
	}

	return s
}
