package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"refsync/internal/adapters/tui/views"
	"refsync/internal/application"
	"refsync/internal/application/commands"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// Step is the position in the sync wizard
type Step int

const (
	StepSourceLibrary Step = iota
	StepSourceCollection
	StepTargetLibrary
	StepTargetCollection
	StepSync
)

var stepTitles = map[Step]string{
	StepSourceLibrary:    "Source library",
	StepSourceCollection: "Source collection",
	StepTargetLibrary:    "Target library",
	StepTargetCollection: "Target collection",
}

// App is the main TUI application model
type App struct {
	ctx      context.Context
	adapters ports.AdapterResolver
	links    ports.LinkStore
	diffs    *application.DiffCache

	step     Step
	showHelp bool
	source   domain.LibraryRef
	target   domain.LibraryRef

	picker *views.PickerModel
	sync   *views.SyncModel
	help   *views.HelpModel

	width  int
	height int
}

type librariesLoadedMsg struct {
	step Step
	libs []domain.Library
	err  error
}

type collectionsLoadedMsg struct {
	step  Step
	lib   domain.LibraryRef
	nodes []domain.CollectionNode
	err   error
}

// NewApp creates a new TUI application. ctx is used for every adapter
// call and carries the logger.
func NewApp(ctx context.Context, adapters ports.AdapterResolver, links ports.LinkStore, diffs *application.DiffCache) *App {
	return &App{
		ctx:      ctx,
		adapters: adapters,
		links:    links,
		diffs:    diffs,
		step:     StepSourceLibrary,
		picker:   views.NewPickerModel(stepTitles[StepSourceLibrary]),
		sync:     views.NewSyncModel(),
		help:     views.NewHelpModel(),
	}
}

// Step returns the current wizard step
func (a *App) Step() Step {
	return a.step
}

// Init loads the source libraries
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.picker.Init(), a.loadLibraries(StepSourceLibrary))
}

func (a *App) loadLibraries(step Step) tea.Cmd {
	return func() tea.Msg {
		libs, err := commands.NewListLibrariesCommand(a.adapters, "").Execute(a.ctx)
		return librariesLoadedMsg{step: step, libs: libs, err: err}
	}
}

func (a *App) loadCollections(step Step, lib domain.LibraryRef) tea.Cmd {
	return func() tea.Msg {
		tree, err := commands.NewListCollectionsCommand(a.adapters, lib).Execute(a.ctx)
		if err != nil {
			return collectionsLoadedMsg{step: step, lib: lib, err: err}
		}
		return collectionsLoadedMsg{step: step, lib: lib, nodes: tree.Flatten()}
	}
}

func (a *App) runSync(req commands.SyncRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := commands.NewSyncCommand(a.adapters, a.links, a.diffs, req).Execute(a.ctx)
		return views.SyncDoneMsg{Response: resp, Err: err}
	}
}

// goTo switches the picker to step and starts loading its entries
func (a *App) goTo(step Step) tea.Cmd {
	a.step = step
	a.picker.SetTitle(stepTitles[step], a.breadcrumb())
	cmd := a.picker.SetLoading()

	switch step {
	case StepSourceLibrary, StepTargetLibrary:
		return tea.Batch(cmd, a.loadLibraries(step))
	case StepSourceCollection:
		return tea.Batch(cmd, a.loadCollections(step, a.source))
	case StepTargetCollection:
		return tea.Batch(cmd, a.loadCollections(step, a.target))
	}
	return cmd
}

func (a *App) breadcrumb() string {
	switch a.step {
	case StepSourceCollection:
		return a.source.String()
	case StepTargetLibrary:
		return fmt.Sprintf("from %s", a.source)
	case StepTargetCollection:
		return fmt.Sprintf("from %s into %s", a.source, a.target.String())
	}
	return ""
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.picker.SetSize(msg.Width, msg.Height)
		a.sync.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if msg.String() == "q" && !a.showHelp && !(a.step != StepSync && a.picker.Filtering()) {
			return a, tea.Quit
		}

	case views.SwitchToHelpMsg:
		a.showHelp = true
		return a, nil

	case views.CloseHelpMsg:
		a.showHelp = false
		return a, nil

	case librariesLoadedMsg:
		if msg.step != a.step {
			return a, nil
		}
		if msg.err != nil {
			a.picker.SetError(msg.err)
		} else {
			a.picker.SetEntries(views.LibraryEntries(msg.libs))
		}
		return a, nil

	case collectionsLoadedMsg:
		if msg.step != a.step {
			return a, nil
		}
		if msg.err != nil {
			a.picker.SetError(msg.err)
		} else {
			a.picker.SetEntries(views.CollectionEntries(msg.lib, msg.nodes))
		}
		return a, nil

	case views.PickedMsg:
		return a, a.pick(msg.Entry.Ref)

	case views.BackMsg:
		if a.step == StepSourceLibrary {
			return a, tea.Quit
		}
		return a, a.goTo(a.step - 1)

	case views.SyncConfirmedMsg:
		return a, a.runSync(msg.Request)

	case views.RestartMsg:
		a.source, a.target = domain.LibraryRef{}, domain.LibraryRef{}
		return a, a.goTo(StepSourceLibrary)
	}

	var cmd tea.Cmd
	switch {
	case a.showHelp:
		_, cmd = a.help.Update(msg)
	case a.step == StepSync:
		_, cmd = a.sync.Update(msg)
	default:
		_, cmd = a.picker.Update(msg)
	}
	return a, cmd
}

func (a *App) pick(ref domain.LibraryRef) tea.Cmd {
	switch a.step {
	case StepSourceLibrary:
		a.source = ref
		return a.goTo(StepSourceCollection)
	case StepSourceCollection:
		a.source = ref
		return a.goTo(StepTargetLibrary)
	case StepTargetLibrary:
		a.target = ref
		return a.goTo(StepTargetCollection)
	case StepTargetCollection:
		a.target = ref
		req := commands.SyncRequest{Source: a.source, Target: a.target}
		if err := req.Validate(); err != nil {
			a.picker.SetMessage(err.Error(), true)
			return nil
		}
		a.step = StepSync
		return a.sync.Begin(req)
	}
	return nil
}

// View renders the current view
func (a *App) View() string {
	switch {
	case a.showHelp:
		return a.help.View()
	case a.step == StepSync:
		return a.sync.View()
	default:
		return a.picker.View()
	}
}
