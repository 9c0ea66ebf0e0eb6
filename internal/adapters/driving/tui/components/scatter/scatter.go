// Package scatter renders playground points as a character-cell scatter plot.
package scatter

import (
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/playground/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/playground/internal/core/domain"
)

const (
	defaultWidth  = 60
	defaultHeight = 20
	minWidth      = 10
	minHeight     = 5
)

// Markers drawn in plot cells.
const (
	chunkMarker = "•"
	matchMarker = "●"
	queryMarker = "◆"
	emptyCell   = " "
)

type marker int

const (
	markEmpty marker = iota
	markChunk
	markMatch
	markQuery
)

// Plot draws chunk points with the matches and point of the last query.
// Bounds are fitted to every visible point so the map fills the grid.
type Plot struct {
	styles  *styles.Styles
	width   int
	height  int
	points  []domain.Point
	matches map[string]bool
	query   *domain.Point
}

// New creates an empty plot.
func New(s *styles.Styles) *Plot {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Plot{
		styles:  s,
		width:   defaultWidth,
		height:  defaultHeight,
		matches: map[string]bool{},
	}
}

// Init initialises the plot.
func (p *Plot) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the plot is driven through setters.
func (p *Plot) Update(tea.Msg) (*Plot, tea.Cmd) {
	return p, nil
}

// SetPoints replaces the chunk points and clears the query overlay.
func (p *Plot) SetPoints(points []domain.Point) {
	p.points = points
	p.ClearQuery()
}

// Points returns the chunk points.
func (p *Plot) Points() []domain.Point {
	return p.points
}

// SetQuery overlays a query point and highlights the matched chunk IDs.
// A nil point highlights the matches without drawing the query.
func (p *Plot) SetQuery(point *domain.Point, matchIDs []string) {
	p.query = point
	p.matches = make(map[string]bool, len(matchIDs))
	for _, id := range matchIDs {
		p.matches[id] = true
	}
}

// ClearQuery removes the query overlay.
func (p *Plot) ClearQuery() {
	p.query = nil
	p.matches = map[string]bool{}
}

// SetDimensions sets the grid size in cells.
func (p *Plot) SetDimensions(width, height int) {
	p.width = max(width, minWidth)
	p.height = max(height, minHeight)
}

// Width returns the grid width.
func (p *Plot) Width() int {
	return p.width
}

// Height returns the grid height.
func (p *Plot) Height() int {
	return p.height
}

// View renders the plot with a legend line.
func (p *Plot) View() string {
	if len(p.points) == 0 {
		return p.styles.Muted.Render("No points yet. Run a query to build the map.")
	}

	grid := p.grid()
	rows := make([]string, 0, len(grid))
	for _, row := range grid {
		var b strings.Builder
		for _, m := range row {
			b.WriteString(p.renderCell(m))
		}
		rows = append(rows, b.String())
	}

	plot := p.styles.Border.Render(strings.Join(rows, "\n"))
	legend := strings.Join([]string{
		p.styles.ChunkPoint.Render(chunkMarker) + " chunk",
		p.styles.MatchPoint.Render(matchMarker) + " match",
		p.styles.QueryPoint.Render(queryMarker) + " query",
	}, "   ")

	return lipgloss.JoinVertical(lipgloss.Left, plot, p.styles.Muted.Render(legend))
}

func (p *Plot) renderCell(m marker) string {
	switch m {
	case markChunk:
		return p.styles.ChunkPoint.Render(chunkMarker)
	case markMatch:
		return p.styles.MatchPoint.Render(matchMarker)
	case markQuery:
		return p.styles.QueryPoint.Render(queryMarker)
	case markEmpty:
	}
	return emptyCell
}

// grid places every finite point into a height x width cell grid.
// Row 0 is the top, so larger Y values appear higher up.
// A cell keeps the strongest marker: query over match over chunk.
func (p *Plot) grid() [][]marker {
	grid := make([][]marker, p.height)
	for i := range grid {
		grid[i] = make([]marker, p.width)
	}

	b, ok := p.bounds()
	if !ok {
		return grid
	}

	place := func(pt domain.Point, m marker) {
		col := scale(pt.X, b.minX, b.maxX, p.width)
		row := p.height - 1 - scale(pt.Y, b.minY, b.maxY, p.height)
		if grid[row][col] < m {
			grid[row][col] = m
		}
	}

	for _, pt := range p.points {
		if !pt.IsFinite() {
			continue
		}
		if p.matches[pt.ID] {
			place(pt, markMatch)
		} else {
			place(pt, markChunk)
		}
	}
	if p.query != nil && p.query.IsFinite() {
		place(*p.query, markQuery)
	}
	return grid
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (p *Plot) bounds() (bounds, bool) {
	b := bounds{
		minX: math.Inf(1), maxX: math.Inf(-1),
		minY: math.Inf(1), maxY: math.Inf(-1),
	}
	found := false
	include := func(pt domain.Point) {
		if !pt.IsFinite() {
			return
		}
		found = true
		b.minX = math.Min(b.minX, pt.X)
		b.maxX = math.Max(b.maxX, pt.X)
		b.minY = math.Min(b.minY, pt.Y)
		b.maxY = math.Max(b.maxY, pt.Y)
	}
	for _, pt := range p.points {
		include(pt)
	}
	if p.query != nil {
		include(*p.query)
	}
	return b, found
}

// scale maps v from [lo, hi] onto a cell index in [0, cells-1].
// A zero-width range maps to the middle cell.
func scale(v, lo, hi float64, cells int) int {
	span := hi - lo
	if span == 0 {
		return (cells - 1) / 2
	}
	idx := int(math.Round((v - lo) / span * float64(cells-1)))
	return min(max(idx, 0), cells-1)
}
