package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"refsync/internal/adapters/tui/styles"
	"refsync/internal/domain"
)

// ConfirmKeyMap defines key bindings for confirmation prompts
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// HandleConfirmKey processes key messages for a yes/no prompt.
// Returns (handled, cmd) where handled is true if the key was processed.
func HandleConfirmKey(keys ConfirmKeyMap, msg tea.KeyMsg, onConfirm, onCancel func() tea.Msg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		return true, func() tea.Msg { return onCancel() }
	case key.Matches(msg, keys.Confirm):
		return true, func() tea.Msg { return onConfirm() }
	}
	return false, nil
}

// RenderConfirmPrompt renders the standard confirmation prompt
func RenderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}

// RenderResponse renders a terminal sync response in its severity style
func RenderResponse(r *domain.SyncResponse) string {
	if r == nil {
		return ""
	}
	switch r.ResponseAction {
	case domain.ResponseError:
		return styles.ErrorMsg.Render("Error: ") + r.ResponseData
	case domain.ResponseAlert:
		return styles.Alert.Render(r.ResponseData)
	default:
		return styles.Success.Render(r.ResponseData)
	}
}
