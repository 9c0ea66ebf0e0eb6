// Package explorer provides the playground map view: a scatter plot of
// chunk points with a query bar and the nearest chunks of the last query.
package explorer

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/playground/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/components/scatter"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/playground/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
	"github.com/custodia-labs/playground/internal/logger"
)

// Errors reported when a required service is missing.
var (
	ErrNoPlaygroundService = errors.New("playground service not available")
	ErrNoQueryService      = errors.New("query service not available")
)

// View shows one playground.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	plot      *scatter.Plot
	statusbar *status.Bar

	playgrounds driving.PlaygroundService
	queries     driving.QueryService
	ctx         context.Context

	playground *domain.Playground
	last       *domain.QueryResult
	width      int
	height     int
	ready      bool
	err        error
}

// NewView creates a new explorer view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	playgrounds driving.PlaygroundService,
	queries driving.QueryService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQueryInput(s),
		list:        list.NewResultList(s),
		plot:        scatter.New(s),
		statusbar:   status.NewBar(s, km),
		playgrounds: playgrounds,
		queries:     queries,
		ctx:         context.Background(),
		width:       80,
		height:      24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Open switches the view to a playground and loads its points.
func (v *View) Open(pg domain.Playground) tea.Cmd {
	v.playground = &pg
	v.last = nil
	v.err = nil
	v.input.Reset()
	v.input.Blur()
	v.list.SetItems(nil)
	v.plot.SetPoints(nil)
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateLoading)
	return v.loadPoints(pg.ID)
}

func (v *View) loadPoints(playgroundID string) tea.Cmd {
	return func() tea.Msg {
		if v.playgrounds == nil {
			return messages.PointsLoaded{PlaygroundID: playgroundID, Err: ErrNoPlaygroundService}
		}
		points, err := v.playgrounds.Points(v.ctx, playgroundID)
		return messages.PointsLoaded{PlaygroundID: playgroundID, Points: points, Err: err}
	}
}

// runQuery embeds text, then fetches the text of each matched chunk.
func (v *View) runQuery(playgroundID, text string) tea.Cmd {
	return func() tea.Msg {
		if v.queries == nil {
			return messages.QueryCompleted{PlaygroundID: playgroundID, Err: ErrNoQueryService}
		}
		result, err := v.queries.Run(v.ctx, playgroundID, text)
		if err != nil {
			return messages.QueryCompleted{PlaygroundID: playgroundID, Err: err}
		}

		chunks := make(map[string]string, len(result.Query.ResultIDs))
		if v.playgrounds != nil {
			for _, id := range result.Query.ResultIDs {
				body, err := v.playgrounds.Chunk(v.ctx, playgroundID, id)
				if err != nil {
					logger.Debug("chunk %s unavailable: %v", id, err)
					continue
				}
				chunks[id] = body
			}
		}
		return messages.QueryCompleted{PlaygroundID: playgroundID, Result: result, Chunks: chunks}
	}
}

// Update handles messages for the explorer.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.PointsLoaded:
		if !v.current(msg.PlaygroundID) {
			return v, nil
		}
		v.handlePointsLoaded(msg)
		return v, nil

	case messages.QueryCompleted:
		if !v.current(msg.PlaygroundID) {
			return v, nil
		}
		return v, v.handleQueryCompleted(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) current(playgroundID string) bool {
	return v.playground != nil && v.playground.ID == playgroundID
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	if v.input.Focused() {
		switch {
		case keymap.Matches(k, v.keymap.Submit):
			text := v.input.Value()
			if text == "" || v.playground == nil {
				return v, nil
			}
			v.input.Blur()
			v.statusbar.SetState(status.StateQuerying)
			return v, v.runQuery(v.playground.ID, text)
		case keymap.Matches(k, v.keymap.Back):
			v.input.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(k, v.keymap.Query):
		v.err = nil
		return v, v.input.Focus()
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewPlaygrounds}
		}
	case keymap.Matches(k, v.keymap.Reload):
		if v.playground != nil {
			v.statusbar.SetState(status.StateLoading)
			return v, v.loadPoints(v.playground.ID)
		}
	case keymap.Matches(k, v.keymap.Up), keymap.Matches(k, v.keymap.Down):
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

func (v *View) handlePointsLoaded(msg messages.PointsLoaded) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.plot.SetPoints(msg.Points)
	if v.last != nil {
		v.plot.SetQuery(v.last.Point, v.last.Query.ResultIDs)
	}
	v.statusbar.SetState(status.StateMap)
	v.statusbar.SetMessage(fmt.Sprintf("%d chunks", len(msg.Points)))
}

// handleQueryCompleted shows the matches and reloads the points,
// since the first query builds the map and later ones may refit it.
func (v *View) handleQueryCompleted(msg messages.QueryCompleted) tea.Cmd {
	if msg.Err != nil {
		v.setError(msg.Err)
		return nil
	}

	v.err = nil
	v.last = msg.Result
	items := make([]list.Item, 0, len(msg.Result.Query.ResultIDs))
	for _, id := range msg.Result.Query.ResultIDs {
		items = append(items, list.Item{ID: id, Text: msg.Chunks[id]})
	}
	v.list.SetItems(items)
	v.plot.SetQuery(msg.Result.Point, msg.Result.Query.ResultIDs)
	v.statusbar.SetState(status.StateMap)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(items))
	return v.loadPoints(msg.PlaygroundID)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the explorer.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Playground"
	if v.playground != nil {
		title = fmt.Sprintf("%s  %s", v.playground.Title,
			v.styles.Muted.Render(fmt.Sprintf("[%s %s]", v.playground.Service, v.playground.Model)))
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render(title), "", v.input.View(), "")
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, v.plot.View(), "  ", v.list.View())
	sections = append(sections, body, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions splits the space between the plot and the result list.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	plotWidth := width * 3 / 5
	listWidth := width - plotWidth - 6
	bodyHeight := height - 10

	v.input.SetWidth(width)
	v.plot.SetDimensions(plotWidth, bodyHeight)
	v.list.SetDimensions(listWidth, bodyHeight)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Playground returns the open playground, or nil.
func (v *View) Playground() *domain.Playground {
	return v.playground
}

// LastResult returns the most recent query result, or nil.
func (v *View) LastResult() *domain.QueryResult {
	return v.last
}

// Matches returns the ranked chunks of the last query.
func (v *View) Matches() []list.Item {
	return v.list.Items()
}

// Points returns the plotted chunk points.
func (v *View) Points() []domain.Point {
	return v.plot.Points()
}

// InputFocused returns whether the query bar has focus.
func (v *View) InputFocused() bool {
	return v.input.Focused()
}

// SetQuery sets the query bar text.
func (v *View) SetQuery(text string) {
	v.input.SetValue(text)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
