// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore, PlaygroundStore, EmbeddedDocumentStore, QueryStore, TransformStore
//   - VectorStore: Named collections with brute-force cosine similarity
//   - PointStore: Namespaced 2-D point sets
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.playground/data/playground.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Multi-row writes run in a single transaction, so
// readers never see a collection without its entries.
package sqlite
