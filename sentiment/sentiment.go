// Package sentiment classifies batches of retrieved reviews as
// positive, neutral, or negative in a single model call.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vivian-xia/reviewrag/llm"
	"github.com/vivian-xia/reviewrag/schema"
)

const systemPrompt = "You are an expert sentiment analyzer."

const annotationTemperature = 0.3

// Annotator assigns sentiment labels to reviews using one batched LLM
// call per input slice, preserving input order.
type Annotator struct {
	llm    llm.LLM
	logger *slog.Logger
}

// AnnotatorOption configures an Annotator.
type AnnotatorOption func(*Annotator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AnnotatorOption {
	return func(a *Annotator) {
		a.logger = logger
	}
}

// New creates an Annotator backed by the given LLM.
func New(model llm.LLM, opts ...AnnotatorOption) *Annotator {
	a := &Annotator{
		llm:    model,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// batchResponse is the JSON shape the model is instructed to return.
type batchResponse struct {
	Sentiments []string `json:"sentiments"`
}

// Annotate labels every review in one model call. The result has the
// same length and order as the input: result[i] wraps reviews[i].
//
// A transport failure is returned as an error. A response the model
// got wrong (unparseable JSON, wrong count, unknown label) degrades
// instead: every review is labeled with the error sentinel and the
// call succeeds, so a flaky model never drops retrieved context.
func (a *Annotator) Annotate(ctx context.Context, reviews []schema.RetrievedReview) ([]schema.AnnotatedReview, error) {
	if len(reviews) == 0 {
		return nil, nil
	}

	opts := &llm.ChatOptions{
		Temperature:    llm.Float32(annotationTemperature),
		ResponseFormat: &llm.ResponseFormat{Type: llm.ResponseFormatJSON},
	}
	messages := []llm.ChatMessage{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(buildPrompt(reviews)),
	}

	raw, err := a.llm.ChatWithOptions(ctx, messages, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate sentiments: %w", err)
	}

	labels, err := parseLabels(raw, len(reviews))
	if err != nil {
		a.logger.Warn("sentiment response unusable, marking batch as error",
			"reviews", len(reviews), "error", err)
		return annotateAll(reviews, schema.SentimentError), nil
	}

	annotated := make([]schema.AnnotatedReview, len(reviews))
	for i, review := range reviews {
		annotated[i] = review.Annotate(labels[i])
	}
	return annotated, nil
}

func buildPrompt(reviews []schema.RetrievedReview) string {
	var b strings.Builder
	b.WriteString("Classify the sentiment of each of the following reviews as \"positive\", \"neutral\", or \"negative\".\n")
	b.WriteString("Respond with a JSON object of the form {\"sentiments\": [...]} containing exactly one label per review, in order.\n\n")
	for i, review := range reviews {
		fmt.Fprintf(&b, "Review %d: %s\n", i+1, review.CombinedContext)
	}
	return b.String()
}

// parseLabels decodes the model response strictly: valid JSON, exactly
// want labels, every label one of the three categories.
func parseLabels(raw string, want int) ([]schema.Sentiment, error) {
	var resp batchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse sentiment response: %w", err)
	}
	if len(resp.Sentiments) != want {
		return nil, fmt.Errorf("expected %d sentiments, got %d", want, len(resp.Sentiments))
	}

	labels := make([]schema.Sentiment, want)
	for i, label := range resp.Sentiments {
		s, err := schema.ParseSentiment(strings.ToLower(strings.TrimSpace(label)))
		if err != nil {
			return nil, fmt.Errorf("sentiment %d: %w", i, err)
		}
		labels[i] = s
	}
	return labels, nil
}

func annotateAll(reviews []schema.RetrievedReview, s schema.Sentiment) []schema.AnnotatedReview {
	annotated := make([]schema.AnnotatedReview, len(reviews))
	for i, review := range reviews {
		annotated[i] = review.Annotate(s)
	}
	return annotated
}
