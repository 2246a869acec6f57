package evaluation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/llm"
	"github.com/vivian-xia/reviewrag/schema"
)

func annotatedReviews(contexts ...string) []schema.AnnotatedReview {
	out := make([]schema.AnnotatedReview, len(contexts))
	for i, c := range contexts {
		out[i] = schema.AnnotatedReview{
			RetrievedReview: schema.RetrievedReview{
				Review: schema.Review{ProductTitle: "AlphaShampoo", CombinedContext: c},
			},
			Sentiment: schema.SentimentPositive,
		}
	}
	return out
}

func TestReference(t *testing.T) {
	got := Reference(annotatedReviews("first review", "second review"))
	assert.Equal(t, "first review second review", got)
}

func TestEvaluateProducesRecord(t *testing.T) {
	embed := &embedding.MockEmbeddingModel{Embeddings: map[string][]float64{
		"great shampoo adds volume": {1, 0},
		"the shampoo adds volume":   {1, 1},
	}}
	evaluator := New(embed, NewRubricJudge(llm.NewMockLLM("4")), nil)

	record, err := evaluator.Evaluate(context.Background(), "is it good",
		annotatedReviews("great shampoo adds volume"), "the shampoo adds volume")
	require.NoError(t, err)

	assert.Equal(t, "is it good", record.Question)
	assert.Equal(t, "the shampoo adds volume", record.GeneratedAnswer)
	assert.Greater(t, record.Rouge1, 0.0)
	assert.Greater(t, record.Meteor, 0.0)
	assert.InDelta(t, 1/1.4142135623730951, record.CosineSimilarity, 1e-9)
	for _, dimension := range Dimensions {
		assert.Equal(t, "4", record.Rubric[dimension])
	}
}

func TestEvaluateRequiresReviews(t *testing.T) {
	evaluator := New(&embedding.MockEmbeddingModel{}, NewRubricJudge(llm.NewMockLLM("4")), nil)

	_, err := evaluator.Evaluate(context.Background(), "q", nil, "answer")
	assert.Error(t, err)
}

func TestEvaluateEmbeddingFailureIsFatal(t *testing.T) {
	embed := &embedding.MockEmbeddingModel{Err: errors.New("quota exceeded")}
	evaluator := New(embed, NewRubricJudge(llm.NewMockLLM("4")), nil)

	_, err := evaluator.Evaluate(context.Background(), "q", annotatedReviews("a"), "answer")
	assert.Error(t, err)
}

func TestEvaluateRubricFailureDegrades(t *testing.T) {
	embed := &embedding.MockEmbeddingModel{Embedding: []float64{1, 0}}
	evaluator := New(embed, NewRubricJudge(llm.NewMockLLM("not a number")), nil)

	record, err := evaluator.Evaluate(context.Background(), "q", annotatedReviews("a"), "answer")
	require.NoError(t, err, "unusable judge replies must not fail the evaluation")
	for _, dimension := range Dimensions {
		assert.Empty(t, record.Rubric[dimension])
	}
}

func TestEvaluateAppendsToLog(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "evaluation_logs.csv"))
	embed := &embedding.MockEmbeddingModel{Embedding: []float64{1, 0}}
	evaluator := New(embed, NewRubricJudge(llm.NewMockLLM("3")), log)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := evaluator.Evaluate(ctx, "q", annotatedReviews("a review"), "an answer")
		require.NoError(t, err)
	}

	rows, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per evaluation")
	assert.Equal(t, logHeader, rows[0])
}
