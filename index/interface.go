// Package index provides the read-only nearest-neighbor vector index
// holding one embedding per corpus row.
package index

import "context"

// VectorIndex is a pre-built, read-only vector structure addressable by
// row position. Row i always holds the embedding of corpus row i.
type VectorIndex interface {
	// Reconstruct returns the stored vectors for the given rows, in the
	// exact order requested.
	Reconstruct(ctx context.Context, rows []int) ([][]float64, error)
	// Len returns the number of stored vectors.
	Len() int
	// Dim returns the vector dimensionality, or 0 if the index is empty.
	Dim() int
}

// Writer is the build-time surface of an index backend. It is used only
// by ingestion; at query time every backend is read-only.
type Writer interface {
	// Add appends vectors at the next row positions. Implementations
	// normalize vectors to unit L2 length so that query-time dot
	// products are exact cosine similarities.
	Add(ctx context.Context, vectors [][]float64) error
}
