package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivian-xia/reviewrag/corpus"
	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/index"
	"github.com/vivian-xia/reviewrag/schema"
)

// buildFixture assembles a corpus of two products with known unit
// vectors: AlphaShampoo rows point near the x axis, BetaShampoo rows
// near the y axis.
func buildFixture(t *testing.T) (*corpus.Corpus, *index.FlatIndex) {
	t.Helper()

	reviews := []schema.Review{
		{ProductTitle: "AlphaShampoo", CombinedContext: "adds real volume"},
		{ProductTitle: "BetaShampoo", CombinedContext: "smells great"},
		{ProductTitle: "AlphaShampoo", CombinedContext: "volume and shine"},
		{ProductTitle: "BetaShampoo", CombinedContext: "fine for daily use"},
		{ProductTitle: "AlphaShampoo", CombinedContext: "left my scalp itchy"},
	}
	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
		{0.1, 0.9, 0},
		{0, 0, 1},
	}

	idx, err := index.NewFlatIndex(3)
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), vectors))

	return corpus.New(reviews), idx
}

func newRetriever(t *testing.T, embed embedding.EmbeddingModel) *ReviewRetriever {
	t.Helper()
	c, idx := buildFixture(t)
	r, err := New(c, idx, embed)
	require.NoError(t, err)
	return r
}

func TestNewRejectsMisalignedIndex(t *testing.T) {
	c, _ := buildFixture(t)
	small, err := index.NewFlatIndex(3)
	require.NoError(t, err)

	_, err = New(c, small, &embedding.MockEmbeddingModel{})
	assert.Error(t, err)
}

func TestTopKFilterByProduct(t *testing.T) {
	r := newRetriever(t, &embedding.MockEmbeddingModel{Embedding: []float64{1, 0, 0}})

	got, err := r.TopK(context.Background(), "good for volume", "AlphaShampoo", 10)
	require.NoError(t, err)
	require.Len(t, got, 3, "at most the 3 AlphaShampoo reviews")
	for _, rev := range got {
		assert.Equal(t, "AlphaShampoo", rev.ProductTitle)
	}
}

func TestTopKDescendingOrder(t *testing.T) {
	r := newRetriever(t, &embedding.MockEmbeddingModel{Embedding: []float64{1, 0, 0}})

	got, err := r.TopK(context.Background(), "good for volume", "", 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].SimilarityScore, got[i].SimilarityScore)
	}
	assert.Equal(t, "adds real volume", got[0].CombinedContext)
}

func TestTopKLimitsResultCount(t *testing.T) {
	r := newRetriever(t, &embedding.MockEmbeddingModel{Embedding: []float64{1, 0, 0}})
	ctx := context.Background()

	got, err := r.TopK(ctx, "query", "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2, "exactly k when enough candidates")

	got, err = r.TopK(ctx, "query", "BetaShampoo", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2, "all available when fewer than k")
}

func TestTopKScoreIsScaleInvariant(t *testing.T) {
	ctx := context.Background()

	small := newRetriever(t, &embedding.MockEmbeddingModel{Embedding: []float64{0.3, 0.3, 0}})
	large := newRetriever(t, &embedding.MockEmbeddingModel{Embedding: []float64{30, 30, 0}})

	a, err := small.TopK(ctx, "query", "", 5)
	require.NoError(t, err)
	b, err := large.TopK(ctx, "query", "", 5)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].CombinedContext, b[i].CombinedContext)
		assert.InDelta(t, a[i].SimilarityScore, b[i].SimilarityScore, 1e-12)
	}
}

func TestTopKTieBreakKeepsRowOrder(t *testing.T) {
	reviews := []schema.Review{
		{ProductTitle: "P", CombinedContext: "first"},
		{ProductTitle: "P", CombinedContext: "second"},
		{ProductTitle: "P", CombinedContext: "third"},
	}
	idx, err := index.NewFlatIndex(2)
	require.NoError(t, err)
	// Identical vectors: every row ties.
	require.NoError(t, idx.Add(context.Background(), [][]float64{{1, 0}, {1, 0}, {1, 0}}))

	r, err := New(corpus.New(reviews), idx, &embedding.MockEmbeddingModel{Embedding: []float64{1, 0}})
	require.NoError(t, err)

	got, err := r.TopK(context.Background(), "q", "", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].CombinedContext)
	assert.Equal(t, "second", got[1].CombinedContext)
	assert.Equal(t, "third", got[2].CombinedContext)
}

func TestTopKUnknownProductShortCircuits(t *testing.T) {
	mock := &embedding.MockEmbeddingModel{Embedding: []float64{1, 0, 0}}
	r := newRetriever(t, mock)

	got, err := r.TopK(context.Background(), "query", "GammaShampoo", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, mock.Calls, "no embedding call for an empty candidate set")
}

func TestTopKInputValidation(t *testing.T) {
	r := newRetriever(t, &embedding.MockEmbeddingModel{Embedding: []float64{1, 0, 0}})
	ctx := context.Background()

	_, err := r.TopK(ctx, "  ", "", 10)
	assert.Error(t, err)

	_, err = r.TopK(ctx, "query", "", 0)
	assert.Error(t, err)
}

func TestProductList(t *testing.T) {
	r := newRetriever(t, &embedding.MockEmbeddingModel{})
	assert.Equal(t, []string{"AlphaShampoo", "BetaShampoo"}, r.ProductList())
}
