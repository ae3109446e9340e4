package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/scenedeck/scenedeck/pkg/scenes"
)

// previewRequestMsg asks the app to load a preview of the selected scene.
type previewRequestMsg struct {
	scene scenes.Scene
}

// previewByteLimit bounds how much pretty-printed JSON the pane shows.
const previewByteLimit = 16 * 1024

// scenesModel is the Scenes tab: a selectable list of recent scene files with
// a JSON preview pane.
type scenesModel struct {
	list     []scenes.Scene
	selected int
	preview  viewport.Model
	showing  bool
	width    int
	height   int
}

func newScenesModel() scenesModel {
	return scenesModel{preview: viewport.New(0, 0)}
}

func (m *scenesModel) setScenes(list []scenes.Scene) {
	m.list = list

	if m.selected >= len(list) {
		m.selected = 0
	}

	m.showing = false
}

func (m *scenesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.preview.Width = w

	previewHeight := h - len(m.list) - 4
	if previewHeight < 3 {
		previewHeight = 3
	}

	m.preview.Height = previewHeight
}

func (m *scenesModel) setPreview(text string) {
	m.preview.SetContent(text)
	m.preview.GotoTop()
	m.showing = true
}

func (m scenesModel) update(msg tea.Msg) (scenesModel, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

		return m, nil

	case "down", "j":
		if m.selected < len(m.list)-1 {
			m.selected++
		}

		return m, nil

	case "enter":
		if len(m.list) == 0 {
			return m, nil
		}

		sc := m.list[m.selected]

		return m, func() tea.Msg { return previewRequestMsg{scene: sc} }

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m scenesModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Recent scenes"))
	b.WriteString("\n")

	if len(m.list) == 0 {
		b.WriteString(labelStyle.Render("No scenes yet. Generate one in the first tab."))

		return b.String()
	}

	for i, sc := range m.list {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %s", cursor, sc.ModTime.Format("2006-01-02 15:04"), fmtSize(sc.Size), sc.Path)
		if i == m.selected {
			line = titleStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("enter: preview · pgup/pgdn: scroll preview"))

	if m.showing {
		b.WriteString("\n")
		b.WriteString(m.preview.View())
	}

	return b.String()
}
