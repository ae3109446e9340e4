package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// maxLogLines bounds the retained output so rendering stays snappy on long
// pipeline runs.
const maxLogLines = 500

// logModel is the shared output pane at the bottom of the dashboard. It shows
// streamed pipeline/connector lines and rendered probe replies.
type logModel struct {
	vp     viewport.Model
	lines  []string
	width  int
	follow bool // stick to the bottom as new lines arrive
}

func newLogModel() logModel {
	return logModel{vp: viewport.New(0, 0), follow: true}
}

func (m *logModel) setSize(w, h int) {
	m.width = w
	m.vp.Width = w
	m.vp.Height = h
	m.refresh()
}

func (m *logModel) append(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}

	m.refresh()
}

// appendBlock splits a multi-line block (e.g. rendered markdown) into lines.
func (m *logModel) appendBlock(text string) {
	for _, line := range strings.Split(text, "\n") {
		m.append(line)
	}
}

func (m *logModel) clear() {
	m.lines = nil
	m.refresh()
}

func (m *logModel) refresh() {
	rendered := make([]string, len(m.lines))

	for i, line := range m.lines {
		if m.width > 0 {
			line = runewidth.Truncate(line, m.width, "…")
		}

		rendered[i] = line
	}

	m.vp.SetContent(strings.Join(rendered, "\n"))

	if m.follow {
		m.vp.GotoBottom()
	}
}

// update routes scroll keys to the viewport; manual scrolling pauses
// follow mode until the user returns to the bottom.
func (m logModel) update(msg tea.Msg) (logModel, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	m.follow = m.vp.AtBottom()

	return m, cmd
}

func (m logModel) view() string {
	return m.vp.View()
}
