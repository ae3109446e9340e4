package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/scenedeck/scenedeck/pkg/scenes"
	"github.com/scenedeck/scenedeck/pkg/unity"
)

// connectRequestMsg asks the app to attach the selected scene to the editor.
type connectRequestMsg struct{}

// killStrayMsg asks the app to terminate leftover editor processes.
type killStrayMsg struct{}

// connectModel is the Connect tab: the latest scene, the editor port, and the
// attach action.
type connectModel struct {
	port   textinput.Model
	latest scenes.Scene
	hasAny bool
	width  int
}

func newConnectModel() connectModel {
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(unity.DefaultPort)
	ti.CharLimit = 5
	ti.Width = 8
	ti.Validate = func(s string) error {
		if s == "" {
			return nil
		}

		if _, err := strconv.Atoi(s); err != nil {
			return fmt.Errorf("port must be numeric")
		}

		return nil
	}

	return connectModel{port: ti}
}

// portValue returns the chosen editor port, falling back to the default.
func (m connectModel) portValue() int {
	p, err := strconv.Atoi(strings.TrimSpace(m.port.Value()))
	if err != nil || p < 1 || p > 65535 {
		return unity.DefaultPort
	}

	return p
}

func (m *connectModel) setScenes(list []scenes.Scene) {
	m.hasAny = len(list) > 0
	if m.hasAny {
		m.latest = list[0]
	}
}

func (m connectModel) update(msg tea.Msg) (connectModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if m.hasAny {
				return m, func() tea.Msg { return connectRequestMsg{} }
			}

			return m, nil

		case "ctrl+k":
			return m, func() tea.Msg { return killStrayMsg{} }
		}
	}

	var cmd tea.Cmd
	m.port, cmd = m.port.Update(msg)

	return m, cmd
}

func (m *connectModel) focus() tea.Cmd { return m.port.Focus() }

func (m *connectModel) blur() { m.port.Blur() }

func (m connectModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Connect the Unity editor"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Open Unity, load Procedural.unity, press Play, then attach."))
	b.WriteString("\n\n")

	if m.hasAny {
		b.WriteString("Latest scene: " + m.latest.Path)
	} else {
		b.WriteString(labelStyle.Render("No scenes yet. Generate one in the first tab."))
	}

	b.WriteString("\n\n")
	b.WriteString("Editor port: " + m.port.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("enter: connect · ctrl+k: kill stray editor processes"))

	return b.String()
}
