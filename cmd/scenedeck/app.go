package main

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/scenedeck/scenedeck/pkg/envfile"
	"github.com/scenedeck/scenedeck/pkg/gateway"
	"github.com/scenedeck/scenedeck/pkg/pipeline"
	"github.com/scenedeck/scenedeck/pkg/scenes"
	"github.com/scenedeck/scenedeck/pkg/unity"
	"github.com/scenedeck/scenedeck/pkg/workspace"
)

type appTab int

const (
	tabGenerate appTab = iota
	tabConnect
	tabScenes
	tabCount
)

var tabTitles = [tabCount]string{"1 Generate", "2 Connect", "3 Scenes"}

// runState tracks whether a child process or probe is in flight. At most one
// runs at a time.
type runState int

const (
	stateIdle runState = iota
	stateGenerating
	stateConnecting
	stateProbing
)

// appModel is the root bubbletea model for the dashboard.
type appModel struct {
	ctx     context.Context
	ws      workspace.Dir
	cfg     workspace.Config
	client  *gateway.Client
	store   scenes.Store
	program *tea.Program

	tab       appTab
	state     runState
	cancelRun context.CancelFunc

	genView     generateModel
	connectView connectModel
	scenesView  scenesModel
	logPane     logModel
	status      statusBarModel

	width      int
	height     int
	spinnerIdx int
	runStart   time.Time
}

func newAppModel(ctx context.Context, ws workspace.Dir, cfg workspace.Config, client *gateway.Client, store scenes.Store) appModel {
	return appModel{
		ctx:         ctx,
		ws:          ws,
		cfg:         cfg,
		client:      client,
		store:       store,
		genView:     newGenerateModel(),
		connectView: newConnectModel(),
		scenesView:  newScenesModel(),
		logPane:     newLogModel(),
		status:      newStatusBar(client.Config()),
	}
}

func (m appModel) Init() tea.Cmd {
	return m.loadScenesCmd()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case programReadyMsg:
		m.program = msg.program
		return m, nil

	case generateSubmitMsg:
		return m.startGeneration()

	case probeRequestMsg:
		return m.startProbe()

	case connectRequestMsg:
		return m.startConnect()

	case killStrayMsg:
		go unity.KillStray(m.ctx)
		m.logPane.append("Tried to kill stray Unity/ai2thor processes.")
		return m, nil

	case runLineMsg:
		m.logPane.append(logLineStyle.Render(msg.line))
		return m, nil

	case runDoneMsg:
		return m.finishRun(msg)

	case probeDoneMsg:
		return m.finishProbe(msg)

	case scenesLoadedMsg:
		if msg.err == nil {
			m.connectView.setScenes(msg.list)
			m.scenesView.setScenes(msg.list)
		}

		return m, nil

	case previewRequestMsg:
		return m, previewCmd(msg.scene)

	case scenePreviewMsg:
		if msg.err != nil {
			m.logPane.append(logErrorStyle.Render(msg.err.Error()))
			return m, nil
		}

		m.scenesView.setPreview(msg.text)

		return m, nil

	case rememberedMsg:
		if msg.err != nil {
			m.logPane.append(logErrorStyle.Render(msg.err.Error()))
		} else {
			m.logPane.append(statusOkStyle.Render("Saved defaults to " + msg.path))
		}

		return m, nil

	case tickMsg:
		if m.state == stateIdle {
			return m, nil
		}

		m.spinnerIdx++
		m.status.spinner = spinnerStyle.Render(spinnerFrames[m.spinnerIdx%len(spinnerFrames)])

		return m, tickCmd()
	}

	return m.routeToActiveView(msg)
}

func (m appModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	initMarkdownRenderer(msg.Width - 4)

	// Tab bar, separator, and status bar take three rows; the log pane gets
	// roughly the bottom third.
	logHeight := msg.Height / 3
	if logHeight < 5 {
		logHeight = 5
	}

	viewHeight := msg.Height - logHeight - 3
	if viewHeight < 5 {
		viewHeight = 5
	}

	m.logPane.setSize(msg.Width, logHeight)
	m.genView.setWidth(msg.Width)
	m.scenesView.setSize(msg.Width, viewHeight)
	m.status.width = msg.Width

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.cancelRun != nil {
			m.cancelRun()
		}

		return m, tea.Quit

	case "esc":
		if m.state != stateIdle && m.cancelRun != nil {
			m.cancelRun()
			m.logPane.append(logErrorStyle.Render("Cancelling…"))

			return m, nil
		}

		return m, tea.Quit

	case "ctrl+t":
		return m.switchTab((m.tab + 1) % tabCount)

	case "alt+1":
		return m.switchTab(tabGenerate)

	case "alt+2":
		return m.switchTab(tabConnect)

	case "alt+3":
		return m.switchTab(tabScenes)
	}

	return m.routeToActiveView(msg)
}

func (m appModel) switchTab(tab appTab) (tea.Model, tea.Cmd) {
	if tab == m.tab {
		return m, nil
	}

	m.tab = tab

	var cmd tea.Cmd

	switch tab {
	case tabConnect:
		cmd = tea.Batch(m.connectView.focus(), m.loadScenesCmd())
	case tabScenes:
		m.connectView.blur()
		cmd = m.loadScenesCmd()
	default:
		m.connectView.blur()
	}

	return m, cmd
}

func (m appModel) routeToActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.tab {
	case tabGenerate:
		m.genView, cmd = m.genView.update(msg)
	case tabConnect:
		m.connectView, cmd = m.connectView.update(msg)
	case tabScenes:
		m.scenesView, cmd = m.scenesView.update(msg)
	}

	// The log pane follows scroll keys unless the scenes preview wants them.
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.tab != tabScenes {
		switch keyMsg.String() {
		case "pgup", "pgdown":
			var logCmd tea.Cmd
			m.logPane, logCmd = m.logPane.update(msg)
			cmd = tea.Batch(cmd, logCmd)
		}
	}

	return m, cmd
}

// startGeneration launches the pipeline in a bridge goroutine that posts
// output lines back into the TUI.
func (m appModel) startGeneration() (tea.Model, tea.Cmd) {
	if m.state != stateIdle || m.program == nil {
		return m, nil
	}

	gwCfg := m.client.Config()
	if !gwCfg.HasToken() {
		m.logPane.append(logErrorStyle.Render("No API key. Run `scenedeck setup` or set GITHUB_TOKEN / OPENAI_API_KEY."))
		return m, nil
	}

	opts := pipelineOptions(m.ws, m.cfg)
	opts.Prompt = m.genView.promptText()
	opts.Model = gwCfg.Model
	opts.APIKey = gwCfg.Token
	opts.BaseURL = gwCfg.BaseURL
	opts.SingleRoom = m.genView.toggles[togSingleRoom].on
	opts.AddCeiling = m.genView.toggles[togCeiling].on
	opts.GenerateImage = m.genView.toggles[togImage].on
	opts.GenerateVideo = m.genView.toggles[togVideo].on
	opts.FastMode = m.genView.toggles[togFast].on

	runCtx, cancel := context.WithCancel(m.ctx)
	m.cancelRun = cancel
	m.state = stateGenerating
	m.runStart = time.Now()
	m.status.state = "generating"

	m.logPane.clear()
	m.logPane.append(labelStyle.Render(pipeline.Preview(opts)))

	program := m.program

	go func() {
		start := time.Now()
		err := pipeline.Run(runCtx, opts, func(line string) {
			program.Send(runLineMsg{line: line})
		})
		program.Send(runDoneMsg{err: err, duration: time.Since(start)})
	}()

	return m, tickCmd()
}

func (m appModel) startConnect() (tea.Model, tea.Cmd) {
	if m.state != stateIdle || m.program == nil || !m.connectView.hasAny {
		return m, nil
	}

	opts := connectorOptions(m.ws, m.cfg)
	opts.ScenePath = m.connectView.latest.Path
	opts.Port = m.connectView.portValue()

	runCtx, cancel := context.WithCancel(m.ctx)
	m.cancelRun = cancel
	m.state = stateConnecting
	m.runStart = time.Now()
	m.status.state = "connecting"

	m.logPane.clear()

	program := m.program

	go func() {
		start := time.Now()
		err := unity.Connect(runCtx, opts, func(line string) {
			program.Send(runLineMsg{line: line})
		})
		program.Send(runDoneMsg{err: err, duration: time.Since(start)})
	}()

	return m, tickCmd()
}

// startProbe sends the prompt straight to the gateway, bypassing the
// pipeline, so the user can verify credentials and model before a long run.
func (m appModel) startProbe() (tea.Model, tea.Cmd) {
	if m.state != stateIdle {
		return m, nil
	}

	prompt := m.genView.promptText()

	m.state = stateProbing
	m.status.state = "probing"
	m.logPane.append(labelStyle.Render("Probing gateway with the current prompt…"))

	client := m.client
	ctx := m.ctx

	return m, tea.Batch(tickCmd(), func() tea.Msg {
		start := time.Now()
		reply, err := client.Complete(ctx, prompt)

		return probeDoneMsg{reply: reply, err: err, duration: time.Since(start)}
	})
}

func (m appModel) finishRun(msg runDoneMsg) (tea.Model, tea.Cmd) {
	wasGenerating := m.state == stateGenerating

	m.state = stateIdle
	m.cancelRun = nil
	m.status.state = ""
	m.status.spinner = ""
	m.status.duration = msg.duration

	if msg.err != nil {
		m.logPane.appendBlock(errorBlockStyle.Render(msg.err.Error()))
		return m, m.loadScenesCmd()
	}

	m.logPane.append(statusOkStyle.Render("Finished in " + fmtDuration(msg.duration) + "."))

	cmds := []tea.Cmd{m.loadScenesCmd()}

	if wasGenerating && (m.genView.toggles[togRemember].on || m.genView.toggles[togRememberKey].on) {
		cmds = append(cmds, m.rememberCmd())
	}

	return m, tea.Batch(cmds...)
}

func (m appModel) finishProbe(msg probeDoneMsg) (tea.Model, tea.Cmd) {
	m.state = stateIdle
	m.status.state = ""
	m.status.spinner = ""
	m.status.duration = msg.duration

	if msg.err != nil {
		m.logPane.appendBlock(errorBlockStyle.Render(msg.err.Error()))
		return m, nil
	}

	m.logPane.appendBlock(renderMarkdown(msg.reply))
	m.logPane.append(statusOkStyle.Render("Gateway replied in " + fmtDuration(msg.duration) + "."))

	return m, nil
}

func (m appModel) rememberCmd() tea.Cmd {
	gwCfg := m.client.Config()
	path := m.ws.EnvFilePath()
	includeToken := m.genView.toggles[togRememberKey].on
	pairs := envfile.Defaults(gwCfg.BaseURL, gwCfg.Model, gwCfg.Token)

	return func() tea.Msg {
		return rememberedMsg{path: path, err: envfile.Save(path, pairs, includeToken)}
	}
}

func (m appModel) loadScenesCmd() tea.Cmd {
	store := m.store

	return func() tea.Msg {
		list, err := store.List(12)

		return scenesLoadedMsg{list: list, err: err}
	}
}

func previewCmd(sc scenes.Scene) tea.Cmd {
	return func() tea.Msg {
		text, err := sc.Preview(previewByteLimit)

		return scenePreviewMsg{text: text, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m appModel) View() string {
	var b strings.Builder

	tabs := make([]string, tabCount)
	for i, title := range tabTitles {
		if appTab(i) == m.tab {
			tabs[i] = tabActiveStyle.Render(title)
		} else {
			tabs[i] = tabInactiveStyle.Render(title)
		}
	}

	b.WriteString(strings.Join(tabs, "   "))
	b.WriteString(tabInactiveStyle.Render("   (ctrl+t or alt+N to switch)"))
	b.WriteString("\n\n")

	switch m.tab {
	case tabGenerate:
		b.WriteString(m.genView.view())
	case tabConnect:
		b.WriteString(m.connectView.view())
	case tabScenes:
		b.WriteString(m.scenesView.view())
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")
	b.WriteString(m.logPane.view())
	b.WriteString("\n")
	b.WriteString(m.status.View())

	return b.String()
}
