// Package memory provides in-memory implementations of the driven store ports.
// They back unit tests and the "memory" point store backend.
package memory
