// Package retriever implements vector-similarity retrieval of reviews,
// optionally scoped to a single product.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vivian-xia/reviewrag/corpus"
	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/index"
	"github.com/vivian-xia/reviewrag/schema"
)

// DefaultTopK is the number of reviews returned when the caller does
// not specify k.
const DefaultTopK = 10

// ReviewRetriever scores corpus rows against an embedded query and
// returns the top-k reviews. The corpus and index are loaded once and
// treated as read-only.
type ReviewRetriever struct {
	corpus *corpus.Corpus
	index  index.VectorIndex
	embed  embedding.EmbeddingModel
	logger *slog.Logger
}

// ReviewRetrieverOption configures a ReviewRetriever.
type ReviewRetrieverOption func(*ReviewRetriever)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReviewRetrieverOption {
	return func(r *ReviewRetriever) {
		r.logger = logger
	}
}

// New creates a ReviewRetriever. The corpus and index must be aligned:
// row i of the corpus corresponds to row i of the index.
func New(c *corpus.Corpus, idx index.VectorIndex, embed embedding.EmbeddingModel, opts ...ReviewRetrieverOption) (*ReviewRetriever, error) {
	if c.Len() != idx.Len() {
		return nil, fmt.Errorf("corpus has %d rows but index has %d", c.Len(), idx.Len())
	}

	r := &ReviewRetriever{
		corpus: c,
		index:  idx,
		embed:  embed,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// ProductList returns the sorted set of distinct product titles in the
// corpus.
func (r *ReviewRetriever) ProductList() []string {
	return r.corpus.ProductList()
}

// TopK returns the k reviews most similar to query, restricted to the
// given product when product is non-empty. Results are ordered by
// descending similarity; ties keep corpus row order. A product that
// matches no rows yields an empty result without calling the embedding
// service.
func (r *ReviewRetriever) TopK(ctx context.Context, query, product string, k int) ([]schema.RetrievedReview, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	rows := r.corpus.Rows(product)
	if len(rows) == 0 {
		r.logger.Info("no candidate reviews", "product", product)
		return nil, nil
	}

	queryVec, err := r.embed.GetQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := embedding.NormalizeInPlace(queryVec); err != nil {
		return nil, fmt.Errorf("failed to normalize query embedding: %w", err)
	}

	candidates, err := r.index.Reconstruct(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct candidate vectors: %w", err)
	}

	// Index vectors are unit length, so the dot product is the cosine
	// similarity.
	scores := make([]float64, len(rows))
	for i, vec := range candidates {
		score, err := embedding.DotProduct(queryVec, vec)
		if err != nil {
			return nil, fmt.Errorf("failed to score row %d: %w", rows[i], err)
		}
		scores[i] = score
	}

	// Stable sort keeps corpus row order for equal scores.
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}

	results := make([]schema.RetrievedReview, 0, k)
	for _, pos := range order[:k] {
		review, err := r.corpus.Review(rows[pos])
		if err != nil {
			return nil, err
		}
		results = append(results, schema.RetrievedReview{
			Review:          review,
			SimilarityScore: scores[pos],
		})
	}

	r.logger.Info("retrieved reviews",
		"product", product, "candidates", len(rows), "returned", len(results))
	return results, nil
}
