package domain

import "time"

// DefaultTopK is the number of nearest chunks returned for a query.
const DefaultTopK = 5

// Query is a free-text similarity search recorded against a playground.
type Query struct {
	// ID is the unique identifier for the query.
	ID string

	// PlaygroundID links to the owning Playground.
	PlaygroundID string

	// Text is the query text as submitted.
	Text string

	// ResultIDs lists matched chunk IDs, nearest first.
	ResultIDs []string

	// CreatedAt is when the query ran.
	CreatedAt time.Time
}

// QueryResult pairs a query with its projected point.
type QueryResult struct {
	Query Query

	// Point is nil when the point store has no entry for the query.
	Point *Point
}
