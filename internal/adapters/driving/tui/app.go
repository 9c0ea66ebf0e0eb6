package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/playground/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/views/explorer"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/views/playgrounds"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// playgroundsView lists playgrounds.
	playgroundsView *playgrounds.View

	// explorerView shows the map of the open playground.
	explorerView *explorer.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when leaving help.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		keymap:          km,
		playgroundsView: playgrounds.NewView(s, km, ports.Playgrounds),
		explorerView:    explorer.NewView(s, km, ports.Playgrounds, ports.Queries),
		currentView:     messages.ViewPlaygrounds,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.playgroundsView.WithContext(ctx)
	a.explorerView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("playground"),
		a.playgroundsView.Init(),
		a.explorerView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewPlaygrounds {
			return a, a.playgroundsView.Reload()
		}
		return a, nil

	case messages.PlaygroundSelected:
		a.currentView = messages.ViewExplorer
		return a, a.explorerView.Open(msg.Playground)

	case messages.PlaygroundsLoaded, messages.PlaygroundDeleted:
		a.playgroundsView, cmd = a.playgroundsView.Update(msg)
		return a, cmd

	case messages.PointsLoaded, messages.QueryCompleted:
		a.explorerView, cmd = a.explorerView.Update(msg)
		a.err = a.explorerView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink) to the active view.
	if a.currentView == messages.ViewExplorer {
		a.explorerView, cmd = a.explorerView.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	if k == "ctrl+c" {
		return a, tea.Quit
	}

	// Typed text belongs to the query bar.
	if a.currentView == messages.ViewExplorer && a.explorerView.InputFocused() {
		a.explorerView, cmd = a.explorerView.Update(msg)
		return a, cmd
	}

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	case a.currentView == messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
			a.currentView = a.previousView
		}
		return a, nil
	case keymap.Matches(k, a.keymap.Help):
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return a, nil
	}

	switch a.currentView {
	case messages.ViewPlaygrounds:
		a.playgroundsView, cmd = a.playgroundsView.Update(msg)
	case messages.ViewExplorer:
		a.explorerView, cmd = a.explorerView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewExplorer:
		return a.explorerView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewPlaygrounds:
	}
	return a.playgroundsView.View()
}

func (a *App) viewHelp() string {
	return `Help

Playgrounds:
  j/k, ↑/↓    Navigate
  enter       Open map
  d           Delete playground
  r           Reload

Map:
  /           Type a query
  enter       Run query
  esc         Leave query bar, then back to playgrounds
  j/k, ↑/↓    Move through nearest chunks
  r           Reload points

Legend:
  •  chunk   ●  match   ◆  query

[esc] back  [q] quit`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.playgroundsView.SetDimensions(width, height)
	a.explorerView.SetDimensions(width, height)
}
