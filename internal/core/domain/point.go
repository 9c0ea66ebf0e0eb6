package domain

import "math"

// QueryNamespace is the point store namespace holding query points.
const QueryNamespace = "queries"

// Point is a planar coordinate for a chunk or a query.
// ID equals the chunk ID or the query ID.
type Point struct {
	ID string
	X  float64
	Y  float64
}

// IsFinite returns true if both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
