// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The embedding pipeline is split into four components, leaves first:
// EmbeddingCache (one vector collection per document, service and model),
// CollectionBuilder (one collection per playground), PointSync (the 2-D
// map, computed once) and QueryPipeline (search plus projection of a
// single query). Check-then-create sequences run under a KeyedMutex.
package services
