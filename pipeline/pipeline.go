// Package pipeline orchestrates the question-answering flow: retrieve
// reviews, annotate sentiment, generate a grounded answer, and
// optionally evaluate it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vivian-xia/reviewrag/evaluation"
	"github.com/vivian-xia/reviewrag/generator"
	"github.com/vivian-xia/reviewrag/retriever"
	"github.com/vivian-xia/reviewrag/schema"
)

// ErrNoReviews is returned when retrieval finds nothing to ground an
// answer on.
var ErrNoReviews = errors.New("no reviews retrieved")

// Retriever returns the top-k reviews for a query.
type Retriever interface {
	TopK(ctx context.Context, query, product string, k int) ([]schema.RetrievedReview, error)
}

// Annotator labels retrieved reviews with sentiment.
type Annotator interface {
	Annotate(ctx context.Context, reviews []schema.RetrievedReview) ([]schema.AnnotatedReview, error)
}

// Generator produces an answer from annotated reviews.
type Generator interface {
	Generate(ctx context.Context, query string, reviews []schema.AnnotatedReview, policy generator.Policy) (string, error)
}

// Evaluator scores a generated answer against its grounding reviews.
type Evaluator interface {
	Evaluate(ctx context.Context, query string, reviews []schema.AnnotatedReview, answer string) (*evaluation.Record, error)
}

// Result is the outcome of one question.
type Result struct {
	Answer  string
	Reviews []schema.AnnotatedReview
}

// Engine wires the stages together.
type Engine struct {
	retriever Retriever
	annotator Annotator
	generator Generator
	evaluator Evaluator
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine. evaluator may be nil if AskAndEvaluate is
// never used.
func New(r Retriever, a Annotator, g Generator, ev Evaluator, opts ...EngineOption) *Engine {
	e := &Engine{
		retriever: r,
		annotator: a,
		generator: g,
		evaluator: ev,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask answers a query from the review corpus. k <= 0 uses the default
// retrieval depth. Returns ErrNoReviews when the filter matches no
// reviews.
func (e *Engine) Ask(ctx context.Context, query, product string, k int, policy generator.Policy) (*Result, error) {
	if k <= 0 {
		k = retriever.DefaultTopK
	}

	retrieved, err := e.retriever.TopK(ctx, query, product, k)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	if len(retrieved) == 0 {
		return nil, fmt.Errorf("%w for product %q", ErrNoReviews, product)
	}

	annotated, err := e.annotator.Annotate(ctx, retrieved)
	if err != nil {
		return nil, fmt.Errorf("sentiment annotation: %w", err)
	}

	answer, err := e.generator.Generate(ctx, query, annotated, policy)
	if err != nil {
		return nil, fmt.Errorf("answer generation: %w", err)
	}

	e.logger.Info("answered question", "product", product, "reviews", len(annotated))
	return &Result{Answer: answer, Reviews: annotated}, nil
}

// AskAndEvaluate answers a query and scores the answer.
func (e *Engine) AskAndEvaluate(ctx context.Context, query, product string, k int, policy generator.Policy) (*Result, *evaluation.Record, error) {
	if e.evaluator == nil {
		return nil, nil, fmt.Errorf("engine has no evaluator configured")
	}

	result, err := e.Ask(ctx, query, product, k, policy)
	if err != nil {
		return nil, nil, err
	}

	record, err := e.evaluator.Evaluate(ctx, query, result.Reviews, result.Answer)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluation: %w", err)
	}
	return result, record, nil
}
