// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/playground/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewPlaygrounds lists the playgrounds.
	ViewPlaygrounds ViewType = iota
	// ViewExplorer shows one playground map with query input and results.
	ViewExplorer
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewPlaygrounds:
		return "playgrounds"
	case ViewExplorer:
		return "explorer"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// PlaygroundsLoaded carries the list of playgrounds.
type PlaygroundsLoaded struct {
	Playgrounds []domain.Playground
	Err         error
}

// PlaygroundSelected signals a playground was chosen for exploring.
type PlaygroundSelected struct {
	Playground domain.Playground
}

// PlaygroundDeleted signals a playground was deleted.
type PlaygroundDeleted struct {
	ID  string
	Err error
}

// PointsLoaded carries the chunk points of a playground.
type PointsLoaded struct {
	PlaygroundID string
	Points       []domain.Point
	Err          error
}

// QueryCompleted carries a query result with the text of its matched chunks.
type QueryCompleted struct {
	PlaygroundID string
	Result       *domain.QueryResult
	// Chunks maps matched chunk IDs to their text.
	Chunks map[string]string
	Err    error
}
