// Package chromemidx provides a chromem-go backed vector index. Rows
// are stored as documents keyed by their decimal row position, which
// preserves the corpus-to-index row alignment across persistence.
package chromemidx

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/index"
)

// Index is a VectorIndex stored in a chromem-go collection.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	dim        int
}

// Open opens (or creates) a chromem collection. If persistPath is empty
// the index is in-memory only.
func Open(persistPath, collectionName string) (*Index, error) {
	var db *chromem.DB
	if persistPath != "" {
		var err error
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open persistent chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	// Embeddings are computed externally and passed in explicitly, so no
	// embedding function is registered.
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection: %w", err)
	}

	idx := &Index{db: db, collection: collection}
	if collection.Count() > 0 {
		doc, err := collection.GetByID(context.Background(), rowID(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read row 0: %w", err)
		}
		idx.dim = len(doc.Embedding)
	}
	return idx, nil
}

// Add appends vectors at the next row positions, normalized to unit L2
// length.
func (x *Index) Add(ctx context.Context, vectors [][]float64) error {
	if len(vectors) == 0 {
		return nil
	}

	start := x.collection.Count()
	docs := make([]chromem.Document, len(vectors))
	for i, vec := range vectors {
		if x.dim == 0 {
			x.dim = len(vec)
		}
		if len(vec) != x.dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(vec), x.dim)
		}
		normalized, err := embedding.Normalize(vec)
		if err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}

		embedding32 := make([]float32, len(normalized))
		for j, v := range normalized {
			embedding32[j] = float32(v)
		}
		docs[i] = chromem.Document{
			ID:        rowID(start + i),
			Content:   rowID(start + i),
			Embedding: embedding32,
		}
	}

	if err := x.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents to chromem collection: %w", err)
	}
	return nil
}

// Reconstruct returns the stored vectors for the given rows, in the
// exact order requested.
func (x *Index) Reconstruct(ctx context.Context, rows []int) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if row < 0 || row >= x.collection.Count() {
			return nil, fmt.Errorf("row %d out of range [0, %d)", row, x.collection.Count())
		}
		doc, err := x.collection.GetByID(ctx, rowID(row))
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct row %d: %w", row, err)
		}
		vec := make([]float64, len(doc.Embedding))
		for j, v := range doc.Embedding {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	return out, nil
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	return x.collection.Count()
}

// Dim returns the vector dimensionality, or 0 if the index is empty.
func (x *Index) Dim() int {
	return x.dim
}

func rowID(row int) string {
	return strconv.Itoa(row)
}

var (
	_ index.VectorIndex = (*Index)(nil)
	_ index.Writer      = (*Index)(nil)
)
