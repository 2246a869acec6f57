package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivian-xia/reviewrag/evaluation"
	"github.com/vivian-xia/reviewrag/generator"
	"github.com/vivian-xia/reviewrag/schema"
)

type stubRetriever struct {
	reviews []schema.RetrievedReview
	err     error
	lastK   int
}

func (s *stubRetriever) TopK(ctx context.Context, query, product string, k int) ([]schema.RetrievedReview, error) {
	s.lastK = k
	return s.reviews, s.err
}

type stubAnnotator struct {
	err error
}

func (s *stubAnnotator) Annotate(ctx context.Context, reviews []schema.RetrievedReview) ([]schema.AnnotatedReview, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]schema.AnnotatedReview, len(reviews))
	for i, r := range reviews {
		out[i] = r.Annotate(schema.SentimentPositive)
	}
	return out, nil
}

type stubGenerator struct {
	answer     string
	err        error
	lastPolicy generator.Policy
}

func (s *stubGenerator) Generate(ctx context.Context, query string, reviews []schema.AnnotatedReview, policy generator.Policy) (string, error) {
	s.lastPolicy = policy
	return s.answer, s.err
}

type stubEvaluator struct {
	record *evaluation.Record
	err    error
	calls  int
}

func (s *stubEvaluator) Evaluate(ctx context.Context, query string, reviews []schema.AnnotatedReview, answer string) (*evaluation.Record, error) {
	s.calls++
	return s.record, s.err
}

func someReviews() []schema.RetrievedReview {
	return []schema.RetrievedReview{
		{Review: schema.Review{ProductTitle: "AlphaShampoo", CombinedContext: "adds volume"}, SimilarityScore: 0.9},
		{Review: schema.Review{ProductTitle: "AlphaShampoo", CombinedContext: "smells nice"}, SimilarityScore: 0.8},
	}
}

func TestAskHappyPath(t *testing.T) {
	ret := &stubRetriever{reviews: someReviews()}
	gen := &stubGenerator{answer: "It adds volume."}
	e := New(ret, &stubAnnotator{}, gen, nil)

	result, err := e.Ask(context.Background(), "is it good", "AlphaShampoo", 5, generator.Policy{})
	require.NoError(t, err)
	assert.Equal(t, "It adds volume.", result.Answer)
	require.Len(t, result.Reviews, 2)
	assert.Equal(t, schema.SentimentPositive, result.Reviews[0].Sentiment)
	assert.Equal(t, 5, ret.lastK)
}

func TestAskDefaultsK(t *testing.T) {
	ret := &stubRetriever{reviews: someReviews()}
	e := New(ret, &stubAnnotator{}, &stubGenerator{answer: "ok"}, nil)

	_, err := e.Ask(context.Background(), "q", "", 0, generator.Policy{})
	require.NoError(t, err)
	assert.Equal(t, 10, ret.lastK)
}

func TestAskNoReviews(t *testing.T) {
	e := New(&stubRetriever{}, &stubAnnotator{}, &stubGenerator{}, nil)

	_, err := e.Ask(context.Background(), "q", "GammaShampoo", 5, generator.Policy{})
	assert.ErrorIs(t, err, ErrNoReviews)
}

func TestAskStageErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&stubRetriever{err: boom}, &stubAnnotator{}, &stubGenerator{}, nil).
		Ask(context.Background(), "q", "", 5, generator.Policy{})
	assert.ErrorIs(t, err, boom)

	_, err = New(&stubRetriever{reviews: someReviews()}, &stubAnnotator{err: boom}, &stubGenerator{}, nil).
		Ask(context.Background(), "q", "", 5, generator.Policy{})
	assert.ErrorIs(t, err, boom)

	_, err = New(&stubRetriever{reviews: someReviews()}, &stubAnnotator{}, &stubGenerator{err: boom}, nil).
		Ask(context.Background(), "q", "", 5, generator.Policy{})
	assert.ErrorIs(t, err, boom)
}

func TestAskPassesPolicyThrough(t *testing.T) {
	gen := &stubGenerator{answer: "ok"}
	e := New(&stubRetriever{reviews: someReviews()}, &stubAnnotator{}, gen, nil)

	policy := generator.Policy{MaxTokens: intPtr(50)}
	_, err := e.Ask(context.Background(), "q", "", 5, policy)
	require.NoError(t, err)
	require.NotNil(t, gen.lastPolicy.MaxTokens)
	assert.Equal(t, 50, *gen.lastPolicy.MaxTokens)
}

func TestAskAndEvaluate(t *testing.T) {
	ev := &stubEvaluator{record: &evaluation.Record{Question: "q"}}
	e := New(&stubRetriever{reviews: someReviews()}, &stubAnnotator{}, &stubGenerator{answer: "ok"}, ev)

	result, record, err := e.AskAndEvaluate(context.Background(), "q", "", 5, generator.Policy{})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Answer)
	assert.Equal(t, "q", record.Question)
	assert.Equal(t, 1, ev.calls)
}

func TestAskAndEvaluateWithoutEvaluator(t *testing.T) {
	e := New(&stubRetriever{reviews: someReviews()}, &stubAnnotator{}, &stubGenerator{answer: "ok"}, nil)

	_, _, err := e.AskAndEvaluate(context.Background(), "q", "", 5, generator.Policy{})
	assert.Error(t, err)
}

func intPtr(v int) *int { return &v }
