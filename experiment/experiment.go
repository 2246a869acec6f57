// Package experiment compares the baseline generation policy against a
// single modified sampling parameter on identical retrieved context.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/vivian-xia/reviewrag/evaluation"
	"github.com/vivian-xia/reviewrag/generator"
	"github.com/vivian-xia/reviewrag/llm"
	"github.com/vivian-xia/reviewrag/pipeline"
	"github.com/vivian-xia/reviewrag/schema"
)

// Tunable parameter names accepted by Compare.
const (
	ParamTemperature      = "temperature"
	ParamTopP             = "top_p"
	ParamMaxTokens        = "max_tokens"
	ParamFrequencyPenalty = "frequency_penalty"
	ParamPresencePenalty  = "presence_penalty"
)

// SettingBaseline labels the unmodified run in results and exports.
const SettingBaseline = "Baseline"

// Outcome is one evaluated generation within a comparison run.
type Outcome struct {
	Setting string
	Answer  string
	Record  *evaluation.Record
}

// Comparison is the result of one baseline-versus-modified run. Both
// outcomes share the same retrieved, annotated reviews.
type Comparison struct {
	RunID    string
	Reviews  []schema.AnnotatedReview
	Baseline Outcome
	Modified Outcome
}

// Runner executes comparison experiments.
type Runner struct {
	retriever pipeline.Retriever
	annotator pipeline.Annotator
	generator pipeline.Generator
	evaluator pipeline.Evaluator
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner.
func NewRunner(ret pipeline.Retriever, a pipeline.Annotator, g pipeline.Generator, ev pipeline.Evaluator, opts ...RunnerOption) *Runner {
	r := &Runner{
		retriever: ret,
		annotator: a,
		generator: g,
		evaluator: ev,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// modifiedPolicy returns the baseline with one parameter overridden.
func modifiedPolicy(param string, value float64) (generator.Policy, error) {
	policy := generator.Baseline()
	switch param {
	case ParamTemperature:
		policy.Temperature = llm.Float32(float32(value))
	case ParamTopP:
		policy.TopP = llm.Float32(float32(value))
	case ParamMaxTokens:
		policy.MaxTokens = llm.Int(int(value))
	case ParamFrequencyPenalty:
		policy.FrequencyPenalty = llm.Float32(float32(value))
	case ParamPresencePenalty:
		policy.PresencePenalty = llm.Float32(float32(value))
	default:
		return generator.Policy{}, fmt.Errorf("unknown parameter %q", param)
	}
	return policy, nil
}

// Compare retrieves and annotates reviews once, generates and evaluates
// an answer under the baseline policy and again with param set to
// value, and returns both outcomes under a shared run ID. Both
// evaluations are appended to the evaluation log as a side effect.
func (r *Runner) Compare(ctx context.Context, query, product string, k int, param string, value float64) (*Comparison, error) {
	modified, err := modifiedPolicy(param, value)
	if err != nil {
		return nil, err
	}

	retrieved, err := r.retriever.TopK(ctx, query, product, k)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	if len(retrieved) == 0 {
		return nil, fmt.Errorf("%w for product %q", pipeline.ErrNoReviews, product)
	}

	annotated, err := r.annotator.Annotate(ctx, retrieved)
	if err != nil {
		return nil, fmt.Errorf("sentiment annotation: %w", err)
	}

	runID := uuid.NewString()[:8]
	comparison := &Comparison{RunID: runID, Reviews: annotated}

	comparison.Baseline, err = r.runOne(ctx, query, annotated, generator.Baseline(), SettingBaseline)
	if err != nil {
		return nil, err
	}

	setting := fmt.Sprintf("Modified %s = %s", param, strconv.FormatFloat(value, 'f', -1, 64))
	comparison.Modified, err = r.runOne(ctx, query, annotated, modified, setting)
	if err != nil {
		return nil, err
	}

	r.logger.Info("completed comparison run",
		"run_id", runID, "param", param, "value", value, "reviews", len(annotated))
	return comparison, nil
}

func (r *Runner) runOne(ctx context.Context, query string, reviews []schema.AnnotatedReview, policy generator.Policy, setting string) (Outcome, error) {
	answer, err := r.generator.Generate(ctx, query, reviews, policy)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s generation: %w", setting, err)
	}

	record, err := r.evaluator.Evaluate(ctx, query, reviews, answer)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s evaluation: %w", setting, err)
	}

	return Outcome{Setting: setting, Answer: answer, Record: record}, nil
}
