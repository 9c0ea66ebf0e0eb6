package domain

// VectorEntry is one item of a vector collection.
type VectorEntry struct {
	// ID is the chunk identifier.
	ID string

	// Embedding is the chunk vector.
	Embedding []float32

	// Content is the chunk text. Empty in playground collections.
	Content string

	// Source names the per-document collection the entry was copied from.
	// Empty in per-document collections.
	Source string
}

// VectorCollection is a named set of entries held by the vector store.
type VectorCollection struct {
	Name    string
	Entries []VectorEntry
}

// Len returns the number of entries.
func (c *VectorCollection) Len() int {
	return len(c.Entries)
}

// IDs returns the entry IDs in collection order.
func (c *VectorCollection) IDs() []string {
	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.ID
	}
	return ids
}

// Embeddings returns the entry vectors in collection order.
func (c *VectorCollection) Embeddings() [][]float32 {
	vecs := make([][]float32, len(c.Entries))
	for i, e := range c.Entries {
		vecs[i] = e.Embedding
	}
	return vecs
}

// VectorInclude selects which entry fields a read returns.
type VectorInclude int

const (
	// IncludeEmbeddings returns vectors.
	IncludeEmbeddings VectorInclude = 1 << iota

	// IncludeContent returns text and source references.
	IncludeContent
)

// IncludeAll returns every entry field.
const IncludeAll = IncludeEmbeddings | IncludeContent

// Has reports whether f is selected.
func (i VectorInclude) Has(f VectorInclude) bool {
	return i&f != 0
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched entry.
	ID string

	// Similarity is the cosine similarity score.
	Similarity float64
}

// Transform is a fitted linear projection to two dimensions.
type Transform struct {
	// Mean is the centre subtracted before projection.
	Mean []float64

	// Components holds the projection axes, one row per output dimension.
	Components [][]float64

	// Samples is the number of vectors the transform was fitted on.
	Samples int
}

// Dimensions returns the input dimensionality the transform accepts.
func (t *Transform) Dimensions() int {
	return len(t.Mean)
}
