package views

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"refsync/internal/adapters/tui/styles"
	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

// SyncState represents the state of the sync view
type SyncState int

const (
	SyncRunning SyncState = iota
	SyncAwaiting
	SyncFinished
)

// SyncKeyMap defines key bindings available once a sync has finished
type SyncKeyMap struct {
	Copy    key.Binding
	Restart key.Binding
}

var SyncKeys = SyncKeyMap{
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy summary"),
	),
	Restart: key.NewBinding(
		key.WithKeys("enter", "r"),
		key.WithHelp("enter", "new sync"),
	),
}

// SyncModel drives the confirm/alert dialogue of one sync workflow
type SyncModel struct {
	ViewState
	state   SyncState
	request commands.SyncRequest
	current *domain.SyncResponse
	history []string
	spinner spinner.Model
	keys    ConfirmKeyMap

	copyText func(string) error
}

// NewSyncModel creates a new sync view model
func NewSyncModel() *SyncModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return &SyncModel{
		spinner:  s,
		keys:     DefaultConfirmKeys,
		copyText: clipboard.WriteAll,
	}
}

// Begin starts a new workflow for the request
func (m *SyncModel) Begin(req commands.SyncRequest) tea.Cmd {
	m.request = req
	m.request.Action = domain.ActionStart
	m.current = nil
	m.history = []string{fmt.Sprintf("Sync %s -> %s", req.Source, req.Target)}
	m.ClearMessage()
	return m.run()
}

func (m *SyncModel) run() tea.Cmd {
	m.state = SyncRunning
	req := m.request
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return SyncConfirmedMsg{Request: req}
	})
}

// State returns the current state
func (m *SyncModel) State() SyncState {
	return m.state
}

// Summary returns the transcript of the workflow so far
func (m *SyncModel) Summary() string {
	return strings.Join(m.history, "\n")
}

// Init initializes the sync view
func (m *SyncModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the sync view
func (m *SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.state == SyncRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case SyncDoneMsg:
		m.finishRound(msg)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case SyncAwaiting:
			_, cmd := HandleConfirmKey(m.keys, msg,
				func() tea.Msg { return confirmMsg{} },
				func() tea.Msg { return cancelMsg{} },
			)
			return m, cmd
		case SyncFinished:
			return m.updateFinished(msg)
		}

	case confirmMsg:
		m.history = append(m.history, "> yes")
		m.request.Action = m.current.Action
		return m, m.run()

	case cancelMsg:
		m.history = append(m.history, "> no")
		m.current = domain.Alert("Sync cancelled")
		m.history = append(m.history, "alert: Sync cancelled")
		m.state = SyncFinished
		return m, nil
	}
	return m, nil
}

type confirmMsg struct{}

type cancelMsg struct{}

func (m *SyncModel) finishRound(msg SyncDoneMsg) {
	resp := msg.Response
	if msg.Err != nil {
		resp = domain.ErrorResponse(msg.Err)
	}
	m.current = resp
	m.history = append(m.history, fmt.Sprintf("%s: %s", resp.ResponseAction, resp.ResponseData))
	if resp.IsTerminal() {
		m.state = SyncFinished
		return
	}
	m.state = SyncAwaiting
}

func (m *SyncModel) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, SyncKeys.Copy):
		if err := m.copyText(m.Summary()); err != nil {
			m.SetMessage("Copy failed: "+err.Error(), true)
		} else {
			m.SetMessage("Summary copied to clipboard", false)
		}
	case key.Matches(msg, SyncKeys.Restart):
		return m, func() tea.Msg { return RestartMsg{} }
	}
	return m, nil
}

// View renders the sync view
func (m *SyncModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Sync"))
	b.WriteString("\n")
	b.WriteString(styles.Breadcrumb.Render(fmt.Sprintf("%s  ->  %s", m.request.Source, m.request.Target)))
	b.WriteString("\n\n")

	switch m.state {
	case SyncRunning:
		b.WriteString(m.spinner.View())
		b.WriteString(" Working...")

	case SyncAwaiting:
		b.WriteString(styles.Panel.Render(RenderConfirmPrompt(m.current.ResponseData)))

	case SyncFinished:
		b.WriteString(RenderResponse(m.current))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpKey.Render("c"))
		b.WriteString(styles.HelpDesc.Render(" copy summary, "))
		b.WriteString(styles.HelpKey.Render("enter"))
		b.WriteString(styles.HelpDesc.Render(" new sync, "))
		b.WriteString(styles.HelpKey.Render("q"))
		b.WriteString(styles.HelpDesc.Render(" quit"))
	}

	if m.Message != "" {
		b.WriteString("\n\n")
		if m.MessageErr {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.Success.Render(m.Message))
		}
	}

	return styles.App.Render(b.String())
}
