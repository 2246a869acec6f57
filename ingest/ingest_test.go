package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivian-xia/reviewrag/corpus"
	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/schema"
)

type captureWriter struct {
	vectors [][]float64
	err     error
}

func (w *captureWriter) Add(ctx context.Context, vectors [][]float64) error {
	if w.err != nil {
		return w.err
	}
	w.vectors = append(w.vectors, vectors...)
	return nil
}

func smallCorpus() *corpus.Corpus {
	return corpus.New([]schema.Review{
		{ProductTitle: "AlphaShampoo", CombinedContext: "adds real volume"},
		{ProductTitle: "BetaShampoo", CombinedContext: "smells great"},
	})
}

func TestBuildWritesRowAlignedVectors(t *testing.T) {
	embed := &embedding.MockEmbeddingModel{Embeddings: map[string][]float64{
		"adds real volume": {1, 0},
		"smells great":     {0, 1},
	}}
	b, err := NewBuilder(embed)
	require.NoError(t, err)

	w := &captureWriter{}
	require.NoError(t, b.Build(context.Background(), smallCorpus(), w))

	require.Len(t, w.vectors, 2)
	assert.Equal(t, []float64{1, 0}, w.vectors[0], "row 0 holds the embedding of corpus row 0")
	assert.Equal(t, []float64{0, 1}, w.vectors[1])
}

func TestBuildReportsProgress(t *testing.T) {
	var current, total int
	b, err := NewBuilder(
		&embedding.MockEmbeddingModel{Embedding: []float64{1}},
		WithProgress(func(c, n int) { current, total = c, n }),
	)
	require.NoError(t, err)

	require.NoError(t, b.Build(context.Background(), smallCorpus(), &captureWriter{}))
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, total)
}

func TestBuildEmptyCorpus(t *testing.T) {
	b, err := NewBuilder(&embedding.MockEmbeddingModel{Embedding: []float64{1}})
	require.NoError(t, err)

	assert.Error(t, b.Build(context.Background(), corpus.New(nil), &captureWriter{}))
}

func TestBuildPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	b, err := NewBuilder(&embedding.MockEmbeddingModel{Err: boom})
	require.NoError(t, err)
	assert.ErrorIs(t, b.Build(context.Background(), smallCorpus(), &captureWriter{}), boom)

	b, err = NewBuilder(&embedding.MockEmbeddingModel{Embedding: []float64{1}})
	require.NoError(t, err)
	assert.ErrorIs(t, b.Build(context.Background(), smallCorpus(), &captureWriter{err: boom}), boom)
}

func TestTruncateKeepsWholeSentences(t *testing.T) {
	b, err := NewBuilder(&embedding.MockEmbeddingModel{}, WithMaxTokens(12))
	require.NoError(t, err)

	text := "This shampoo is great. My hair has never looked better. " +
		strings.Repeat("It keeps getting better every single time I use it. ", 10)
	got, truncated := b.truncate(text)
	assert.True(t, truncated)
	assert.True(t, strings.HasSuffix(got, "."), "cut at a sentence boundary, got %q", got)
	assert.Contains(t, got, "This shampoo is great.")
}

func TestTruncateShortTextUntouched(t *testing.T) {
	b, err := NewBuilder(&embedding.MockEmbeddingModel{}, WithMaxTokens(100))
	require.NoError(t, err)

	got, truncated := b.truncate("short review")
	assert.False(t, truncated)
	assert.Equal(t, "short review", got)
}

func TestTruncateOversizedSingleSentence(t *testing.T) {
	b, err := NewBuilder(&embedding.MockEmbeddingModel{}, WithMaxTokens(5))
	require.NoError(t, err)

	got, truncated := b.truncate(strings.Repeat("lather rinse repeat ", 50))
	assert.True(t, truncated)
	assert.NotEmpty(t, got)
	assert.Less(t, len(got), 200)
}
