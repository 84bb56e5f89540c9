package views

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"refsync/internal/adapters/tui/styles"
	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

// Entry is one selectable row: a library, or a collection in one
type Entry struct {
	Title  string
	Detail string
	Ref    domain.LibraryRef
	Depth  int
}

// LibraryEntries turns libraries into picker rows
func LibraryEntries(libs []domain.Library) []Entry {
	entries := make([]Entry, 0, len(libs))
	for _, l := range libs {
		entries = append(entries, Entry{
			Title:  l.Name,
			Detail: l.Ref().String(),
			Ref:    l.Ref(),
		})
	}
	return entries
}

// CollectionEntries turns a flattened collection tree into picker rows
func CollectionEntries(lib domain.LibraryRef, nodes []domain.CollectionNode) []Entry {
	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		ref := lib
		ref.CollectionKey = n.Key
		entries = append(entries, Entry{
			Title:  n.Name,
			Detail: n.Path,
			Ref:    ref,
			Depth:  n.Depth,
		})
	}
	return entries
}

// PickerKeyMap defines key bindings for the picker view
type PickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Filter key.Binding
	Back   key.Binding
	Help   key.Binding
}

var PickerKeys = PickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// PickerModel lists entries and lets the user pick one, optionally
// narrowing the list with a fuzzy filter
type PickerModel struct {
	ViewState
	title      string
	breadcrumb string

	entries  []Entry
	visible  []int
	cursor   int
	offset   int
	loading  bool
	filter   textinput.Model
	spinner  spinner.Model
	fetchErr error
}

// NewPickerModel creates a picker with the given heading
func NewPickerModel(title string) *PickerModel {
	input := textinput.New()
	input.Placeholder = "type to filter..."
	input.Prompt = "/ "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return &PickerModel{
		title:   title,
		filter:  input,
		spinner: s,
		loading: true,
	}
}

// Init starts the loading spinner
func (m *PickerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetTitle changes the heading and the breadcrumb line
func (m *PickerModel) SetTitle(title, breadcrumb string) {
	m.title = title
	m.breadcrumb = breadcrumb
}

// SetLoading clears the list and shows the spinner
func (m *PickerModel) SetLoading() tea.Cmd {
	m.loading = true
	m.fetchErr = nil
	m.entries = nil
	m.visible = nil
	m.cursor, m.offset = 0, 0
	m.filter.SetValue("")
	m.filter.Blur()
	m.ClearMessage()
	return m.spinner.Tick
}

// SetEntries replaces the list
func (m *PickerModel) SetEntries(entries []Entry) {
	m.loading = false
	m.fetchErr = nil
	m.entries = entries
	m.applyFilter()
}

// SetError shows a load failure in place of the list
func (m *PickerModel) SetError(err error) {
	m.loading = false
	m.fetchErr = err
}

// Selected returns the entry under the cursor
func (m *PickerModel) Selected() (Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Entry{}, false
	}
	return m.entries[m.visible[m.cursor]], true
}

// Filtering reports whether the filter input has focus
func (m *PickerModel) Filtering() bool {
	return m.filter.Focused()
}

// applyFilter ranks the entries against the filter query. An empty
// query keeps list order.
func (m *PickerModel) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	m.visible = m.visible[:0]
	if query == "" {
		for i := range m.entries {
			m.visible = append(m.visible, i)
		}
	} else {
		scores := make(map[int]int, len(m.entries))
		for i, e := range m.entries {
			score := max(commands.FuzzyScore(e.Title, query), commands.FuzzyScore(e.Detail, query))
			if score > 0 {
				scores[i] = score
				m.visible = append(m.visible, i)
			}
		}
		slices.SortStableFunc(m.visible, func(a, b int) int {
			return cmp.Compare(scores[b], scores[a])
		})
	}
	m.cursor, m.offset = 0, 0
}

func (m *PickerModel) pageSize() int {
	return max(m.Height-10, 5)
}

func (m *PickerModel) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if page := m.pageSize(); m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
}

// Update handles messages for the picker view
func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			return m.updateFilterMode(msg)
		}
		return m.updateListMode(msg)
	}
	return m, nil
}

func (m *PickerModel) updateFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filter.SetValue("")
		m.filter.Blur()
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filter.Blur()
		return m, nil
	case tea.KeyUp:
		m.moveCursor(-1)
		return m, nil
	case tea.KeyDown:
		m.moveCursor(1)
		return m, nil
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m *PickerModel) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, PickerKeys.Back):
		return m, func() tea.Msg { return BackMsg{} }
	case key.Matches(msg, PickerKeys.Help):
		return m, func() tea.Msg { return SwitchToHelpMsg{} }
	case m.loading:
		return m, nil
	case key.Matches(msg, PickerKeys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, PickerKeys.Down):
		m.moveCursor(1)
	case key.Matches(msg, PickerKeys.Filter):
		return m, m.filter.Focus()
	case key.Matches(msg, PickerKeys.Select):
		if e, ok := m.Selected(); ok {
			return m, func() tea.Msg { return PickedMsg{Entry: e} }
		}
	}
	return m, nil
}

// View renders the picker
func (m *PickerModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(m.title))
	b.WriteString("\n")
	if m.breadcrumb != "" {
		b.WriteString(styles.Breadcrumb.Render(m.breadcrumb))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading...")
	case m.fetchErr != nil:
		b.WriteString(styles.ErrorMsg.Render("Error: "))
		b.WriteString(m.fetchErr.Error())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpKey.Render("esc"))
		b.WriteString(styles.HelpDesc.Render(" back"))
	default:
		m.renderList(&b)
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

func (m *PickerModel) renderList(b *strings.Builder) {
	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing to show"))
	}

	filtered := m.filter.Value() != ""
	end := min(m.offset+m.pageSize(), len(m.visible))
	for i := m.offset; i < end; i++ {
		e := m.entries[m.visible[i]]
		label := e.Title
		if filtered {
			label += "  " + styles.MutedText.Render(e.Detail)
		} else {
			label = strings.Repeat("  ", e.Depth) + label
		}
		if i == m.cursor {
			b.WriteString(styles.RowSelected.Render(" > " + label + " "))
		} else {
			b.WriteString(styles.Row.Render("   " + label))
		}
		b.WriteString("\n")
	}

	if len(m.visible) > m.pageSize() {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("\n%d-%d of %d", m.offset+1, end, len(m.visible))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpKey.Render("j/k"))
	b.WriteString(styles.HelpDesc.Render(" navigate, "))
	b.WriteString(styles.HelpKey.Render("/"))
	b.WriteString(styles.HelpDesc.Render(" filter, "))
	b.WriteString(styles.HelpKey.Render("enter"))
	b.WriteString(styles.HelpDesc.Render(" select, "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" back"))
}
