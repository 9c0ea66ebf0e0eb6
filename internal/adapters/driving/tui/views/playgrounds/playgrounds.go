// Package playgrounds provides the playground list view for the TUI.
package playgrounds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/playground/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

// ErrNoPlaygroundService is reported when the view has no service to call.
var ErrNoPlaygroundService = errors.New("playground service not available")

// View lists playgrounds and lets the user open or delete one.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.PlaygroundService
	ctx     context.Context

	playgrounds []domain.Playground
	selected    int
	width       int
	height      int
	ready       bool
	loading     bool
	err         error
}

// NewView creates a new playground list view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.PlaygroundService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the playgrounds.
func (v *View) Init() tea.Cmd {
	return v.Reload()
}

// Reload returns a command that fetches the playground list.
func (v *View) Reload() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.service == nil {
			return messages.PlaygroundsLoaded{Err: ErrNoPlaygroundService}
		}
		pgs, err := v.service.List(v.ctx)
		return messages.PlaygroundsLoaded{Playgrounds: pgs, Err: err}
	}
}

// Update handles messages for the playground list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.PlaygroundsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.playgrounds = msg.Playgrounds
		if v.selected >= len(v.playgrounds) {
			v.selected = max(len(v.playgrounds)-1, 0)
		}
		return v, nil

	case messages.PlaygroundDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.Reload()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(v.playgrounds)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.Select):
		if pg := v.SelectedPlayground(); pg != nil {
			selected := *pg
			return v, func() tea.Msg {
				return messages.PlaygroundSelected{Playground: selected}
			}
		}
	case keymap.Matches(k, v.keymap.Delete):
		if pg := v.SelectedPlayground(); pg != nil {
			return v, v.deletePlayground(pg.ID)
		}
	case keymap.Matches(k, v.keymap.Reload):
		return v, v.Reload()
	}
	return v, nil
}

func (v *View) deletePlayground(id string) tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.PlaygroundDeleted{ID: id, Err: ErrNoPlaygroundService}
		}
		_, err := v.service.Delete(v.ctx, id)
		return messages.PlaygroundDeleted{ID: id, Err: err}
	}
}

// View renders the playground list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Playgrounds"))
	b.WriteString("\n\n")

	switch {
	case v.loading && len(v.playgrounds) == 0:
		b.WriteString(v.styles.Muted.Render("Loading playgrounds..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case len(v.playgrounds) == 0:
		b.WriteString(v.styles.Muted.Render("No playgrounds. Create one with: playground playgrounds create <doc-id>"))
		b.WriteString("\n")
	default:
		for i := range v.playgrounds {
			b.WriteString(v.renderPlayground(i, &v.playgrounds[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] open  [d] delete  [r] reload  [?] help  [q] quit"))
	return b.String()
}

func (v *View) renderPlayground(index int, pg *domain.Playground) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := pg.Title
	maxTitleLen := v.width - 40
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen-3]) + "..."
	}

	docs := fmt.Sprintf("%d docs", len(pg.DocumentIDs))
	if len(pg.DocumentIDs) == 1 {
		docs = "1 doc"
	}
	meta := fmt.Sprintf("[%s] %s", pg.Service, docs)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s %s", indicator, maxTitleLen, title, meta))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s ", indicator, maxTitleLen, title)) +
		v.styles.Muted.Render(meta)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Ready returns whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Playgrounds returns the loaded playgrounds.
func (v *View) Playgrounds() []domain.Playground {
	return v.playgrounds
}

// SelectedIndex returns the selected row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedPlayground returns the highlighted playground, or nil if the list is empty.
func (v *View) SelectedPlayground() *domain.Playground {
	if v.selected < 0 || v.selected >= len(v.playgrounds) {
		return nil
	}
	return &v.playgrounds[v.selected]
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
