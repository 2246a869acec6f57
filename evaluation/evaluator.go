// Package evaluation measures generated answers against the reviews
// they were grounded on: lexical overlap (ROUGE, METEOR), embedding
// similarity, and model-judged rubric scores, all appended to a CSV
// log.
package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/schema"
)

// Evaluator runs the full metric suite for one answer and records the
// result.
type Evaluator struct {
	embed  embedding.EmbeddingModel
	judge  *RubricJudge
	log    *Log
	logger *slog.Logger
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an Evaluator. log may be nil to skip persistence.
func New(embed embedding.EmbeddingModel, judge *RubricJudge, log *Log, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		embed:  embed,
		judge:  judge,
		log:    log,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reference joins the review texts into the single reference string the
// lexical and semantic metrics compare against.
func Reference(reviews []schema.AnnotatedReview) string {
	texts := make([]string, len(reviews))
	for i, review := range reviews {
		texts[i] = review.CombinedContext
	}
	return strings.Join(texts, " ")
}

// Evaluate scores answer against the reviews it was generated from and
// appends the result to the log. Rubric dimensions the judge fails to
// score are logged and left empty rather than failing the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, query string, reviews []schema.AnnotatedReview, answer string) (*Record, error) {
	if len(reviews) == 0 {
		return nil, fmt.Errorf("cannot evaluate an answer without reference reviews")
	}
	reference := Reference(reviews)

	rouge := Rouge(reference, answer)
	meteor := Meteor(reference, answer)

	cosine, err := SemanticSimilarity(ctx, e.embed, reference, answer)
	if err != nil {
		return nil, fmt.Errorf("semantic similarity: %w", err)
	}

	rubric, err := e.judge.Score(ctx, query, reference, answer)
	if err != nil {
		e.logger.Warn("rubric judging partially failed", "error", err)
	}

	record := &Record{
		Question:         query,
		GeneratedAnswer:  answer,
		Rouge1:           rouge.Rouge1,
		Rouge2:           rouge.Rouge2,
		RougeL:           rouge.RougeL,
		Meteor:           meteor,
		CosineSimilarity: cosine,
		Rubric:           rubric,
	}

	if e.log != nil {
		if err := e.log.Append(record); err != nil {
			return nil, fmt.Errorf("failed to append evaluation record: %w", err)
		}
	}

	e.logger.Info("evaluated answer",
		"rouge1", record.Rouge1, "meteor", record.Meteor,
		"cosine_similarity", record.CosineSimilarity)
	return record, nil
}
