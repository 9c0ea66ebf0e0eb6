// Package domain defines the core business entities for Playground.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded file that playgrounds are built from
//   - EmbeddedDocument: A cached chunk collection for (document, service, model)
//   - Playground: A named workspace sharing one embedding configuration
//   - Point: A 2-D coordinate for a chunk or query
//   - Query: A similarity search recorded against a playground
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
