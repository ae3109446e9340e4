package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// generateSubmitMsg asks the app to start a pipeline run with the view's
// current prompt and toggles.
type generateSubmitMsg struct{}

// probeRequestMsg asks the app to send the prompt straight to the gateway as
// a one-shot completion, a cheap credential/model check before a full run.
type probeRequestMsg struct{}

// Toggle indices in generateModel.toggles.
const (
	togSingleRoom = iota
	togCeiling
	togImage
	togVideo
	togFast
	togRemember
	togRememberKey
	togCount
)

type toggle struct {
	label string
	on    bool
}

type genFocus int

const (
	focusPrompt genFocus = iota
	focusToggles
)

// generateModel is the Generate tab: a prompt box plus the run toggles.
type generateModel struct {
	prompt    textarea.Model
	toggles   [togCount]toggle
	focus     genFocus
	toggleIdx int
	width     int
}

func newGenerateModel() generateModel {
	ta := textarea.New()
	ta.Placeholder = "e.g. a cozy living room with a sofa and a coffee table"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	m := generateModel{prompt: ta}
	m.toggles[togSingleRoom] = toggle{label: "single room", on: true}
	m.toggles[togCeiling] = toggle{label: "ceiling", on: true}
	m.toggles[togImage] = toggle{label: "image"}
	m.toggles[togVideo] = toggle{label: "video"}
	m.toggles[togFast] = toggle{label: "fast mode", on: true}
	m.toggles[togRemember] = toggle{label: "remember defaults"}
	m.toggles[togRememberKey] = toggle{label: "remember key"}

	return m
}

func (m generateModel) promptText() string {
	return strings.TrimSpace(m.prompt.Value())
}

func (m generateModel) update(msg tea.Msg) (generateModel, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "tab":
		if m.focus == focusPrompt {
			m.focus = focusToggles
			m.prompt.Blur()
		} else {
			m.focus = focusPrompt
			return m, m.prompt.Focus()
		}

		return m, nil

	case "ctrl+p":
		if m.promptText() != "" {
			return m, func() tea.Msg { return probeRequestMsg{} }
		}

		return m, nil
	}

	if m.focus == focusToggles {
		switch keyMsg.String() {
		case "left", "h":
			if m.toggleIdx > 0 {
				m.toggleIdx--
			}
		case "right", "l":
			if m.toggleIdx < togCount-1 {
				m.toggleIdx++
			}
		case " ", "enter":
			m.toggles[m.toggleIdx].on = !m.toggles[m.toggleIdx].on
		}

		return m, nil
	}

	// Prompt focused: enter submits, alt+enter inserts a newline (handled by
	// the textarea key map).
	if keyMsg.Type == tea.KeyEnter && !keyMsg.Alt {
		if m.promptText() != "" {
			return m, func() tea.Msg { return generateSubmitMsg{} }
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)

	return m, cmd
}

func (m *generateModel) setWidth(w int) {
	m.width = w
	m.prompt.SetWidth(w - 4)
}

func (m generateModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Generate a scene"))
	b.WriteString("\n")

	border := blurredBorder
	if m.focus == focusPrompt {
		border = focusedBorder
	}

	b.WriteString(border.Render(m.prompt.View()))
	b.WriteString("\n")

	boxes := make([]string, togCount)
	for i, t := range m.toggles {
		boxes[i] = checkbox(t.label, t.on, m.focus == focusToggles && m.toggleIdx == i)
	}

	b.WriteString(strings.Join(boxes, "  "))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("enter: generate · ctrl+p: probe prompt · tab: toggles · alt+enter: newline"))

	return b.String()
}
