package views

import (
	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages

// PickedMsg is sent when the user selects an entry in a picker
type PickedMsg struct {
	Entry Entry
}

// BackMsg is sent when the user leaves the current step
type BackMsg struct{}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// CloseHelpMsg returns from the help view
type CloseHelpMsg struct{}

// SyncConfirmedMsg resumes the sync workflow with the given action
type SyncConfirmedMsg struct {
	Request commands.SyncRequest
}

// SyncDoneMsg carries the outcome of one sync round trip
type SyncDoneMsg struct {
	Response *domain.SyncResponse
	Err      error
}

// RestartMsg starts a new sync from the first step
type RestartMsg struct{}
