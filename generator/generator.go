// Package generator synthesizes grounded answers from sentiment-annotated
// reviews under a configurable sampling policy.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/vivian-xia/reviewrag/llm"
	"github.com/vivian-xia/reviewrag/schema"
)

const systemPrompt = "You are an expert product review analyst."

// tokenizerEncoding is the encoding shared by the gpt-4 family.
const tokenizerEncoding = "cl100k_base"

// DefaultContextBudget caps the token count of the grounding block.
// Reviews past the budget are dropped from the end; the retriever
// orders them by relevance, so the least relevant go first.
const DefaultContextBudget = 6000

const promptTemplate = `Based on the following shampoo product reviews and their sentiment analysis, answer the user's question: %q.

Reviews:
%s

Summarize key insights, mentioning trends in positive, neutral, and negative sentiments.
The answer should be factual and concise, without making assumptions beyond the reviews.
Don't make up any information or provide personal opinions.

If the question is unanswerable based on the reviews, communicate that clearly and the response should be in one sentence.
If the question is answerable based on the reviews, provide the response in a well-structured paragraph format.`

// AnswerGenerator produces a grounded answer for a query from annotated
// reviews.
type AnswerGenerator struct {
	llm           llm.LLM
	tokenizer     *tiktoken.Tiktoken
	contextBudget int
	logger        *slog.Logger
}

// AnswerGeneratorOption configures an AnswerGenerator.
type AnswerGeneratorOption func(*AnswerGenerator)

// WithContextBudget overrides the grounding-block token budget.
func WithContextBudget(tokens int) AnswerGeneratorOption {
	return func(g *AnswerGenerator) {
		g.contextBudget = tokens
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AnswerGeneratorOption {
	return func(g *AnswerGenerator) {
		g.logger = logger
	}
}

// New creates an AnswerGenerator.
func New(model llm.LLM, opts ...AnswerGeneratorOption) (*AnswerGenerator, error) {
	tokenizer, err := tiktoken.GetEncoding(tokenizerEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	g := &AnswerGenerator{
		llm:           model,
		tokenizer:     tokenizer,
		contextBudget: DefaultContextBudget,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate answers the query from the annotated reviews, applying the
// given policy on top of the baseline. At least one review is required:
// an answer with nothing to ground on is a caller bug, not a model
// question.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, reviews []schema.AnnotatedReview, policy Policy) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query must not be empty")
	}
	if len(reviews) == 0 {
		return "", fmt.Errorf("cannot generate an answer without reviews")
	}

	grounding, kept := g.groundingBlock(reviews)
	if kept < len(reviews) {
		g.logger.Warn("review context truncated to fit token budget",
			"kept", kept, "total", len(reviews), "budget", g.contextBudget)
	}

	messages := []llm.ChatMessage{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(fmt.Sprintf(promptTemplate, query, grounding)),
	}

	answer, err := g.llm.ChatWithOptions(ctx, messages, policy.resolve())
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// groundingBlock renders one line per review and drops trailing lines
// until the block fits the token budget. The first review always
// survives.
func (g *AnswerGenerator) groundingBlock(reviews []schema.AnnotatedReview) (string, int) {
	lines := make([]string, len(reviews))
	for i, review := range reviews {
		lines[i] = fmt.Sprintf("- %s (Sentiment: %s)", review.CombinedContext, review.Sentiment)
	}

	kept := len(lines)
	for kept > 1 {
		block := strings.Join(lines[:kept], "\n")
		if len(g.tokenizer.Encode(block, nil, nil)) <= g.contextBudget {
			break
		}
		kept--
	}
	return strings.Join(lines[:kept], "\n"), kept
}
