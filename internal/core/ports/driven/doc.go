// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore, PlaygroundStore, EmbeddedDocumentStore, QueryStore: Metadata persistence
//   - VectorStore: Named vector collections with similarity lookup
//   - PointStore: Namespaced 2-D point sets
//   - Embedder: Text to vectors for any (service, model)
//   - Projector: Fits and applies the 2-D projection
//   - FileStore: Original uploaded bytes
//   - NormaliserRegistry: Text extraction from uploaded files
//   - PostProcessorPipeline: Chunking
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - TransformStore: Persisted projection transforms. Without it, every
//     query refits the projection.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
