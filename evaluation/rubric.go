package evaluation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/vivian-xia/reviewrag/llm"
)

// Rubric dimension names, matching the evaluation log columns.
const (
	DimensionAccuracy           = "accuracy"
	DimensionRelevance          = "relevance"
	DimensionCoherence          = "coherence"
	DimensionClarity            = "clarity"
	DimensionConsistency        = "consistency"
	DimensionSentimentAlignment = "sentiment_alignment"
)

// Dimensions lists every rubric dimension in log-column order.
var Dimensions = []string{
	DimensionAccuracy,
	DimensionRelevance,
	DimensionCoherence,
	DimensionClarity,
	DimensionConsistency,
	DimensionSentimentAlignment,
}

// RubricScores maps dimension name to a validated score in "1".."5".
// A dimension the judge failed to score is an empty string; raw model
// text never leaks into a score.
type RubricScores map[string]string

// RubricJudge scores an answer on each dimension with one independent
// model call per dimension.
type RubricJudge struct {
	llm llm.LLM
}

// NewRubricJudge creates a RubricJudge.
func NewRubricJudge(model llm.LLM) *RubricJudge {
	return &RubricJudge{llm: model}
}

const ratingInstruction = "Respond with a single integer from 1 to 5 and nothing else."

func rubricPrompt(dimension, question, reviews, answer string) string {
	switch dimension {
	case DimensionRelevance:
		return fmt.Sprintf("Does the answer directly address the user's question using information from the reviews? Rate from 1 (irrelevant) to 5 (highly relevant). %s\n\nQuestion: %s\n\nReviews: %s\n\nAnswer: %s\n\nScore:", ratingInstruction, question, reviews, answer)
	case DimensionCoherence:
		return fmt.Sprintf("Is the answer logically structured and coherent? Rate from 1 (poor) to 5 (excellent). %s\n\nAnswer: %s\n\nScore:", ratingInstruction, answer)
	case DimensionClarity:
		return fmt.Sprintf("Is the answer clearly written and easy to understand? Rate from 1 (unclear) to 5 (very clear). %s\n\nAnswer: %s\n\nScore:", ratingInstruction, answer)
	case DimensionConsistency:
		return fmt.Sprintf("Does the answer avoid internal contradictions? Rate from 1 (inconsistent) to 5 (very consistent). %s\n\nAnswer: %s\n\nScore:", ratingInstruction, answer)
	case DimensionAccuracy:
		return fmt.Sprintf("Is the information factually correct and reliable taken from the reviews with no fabrication? Rate from 1 (unreliable) to 5 (very reliable). %s\n\nAnswer: %s\n\nScore:", ratingInstruction, answer)
	case DimensionSentimentAlignment:
		return fmt.Sprintf("Does the answer reflect the overall sentiment from the reviews? Rate from 1 (not aligned) to 5 (aligned). %s\n\nReviews: %s\n\nAnswer: %s\n\nScore:", ratingInstruction, reviews, answer)
	}
	return ""
}

// Score rates the answer on every dimension concurrently. Every
// dimension always has an entry in the result; the error joins the
// per-dimension failures so the caller can log partial outcomes while
// still using the scores that succeeded.
func (j *RubricJudge) Score(ctx context.Context, question, reviews, answer string) (RubricScores, error) {
	scores := make(RubricScores, len(Dimensions))
	failures := make([]error, len(Dimensions))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, dimension := range Dimensions {
		wg.Add(1)
		go func(i int, dimension string) {
			defer wg.Done()
			score, err := j.scoreOne(ctx, dimension, question, reviews, answer)
			mu.Lock()
			defer mu.Unlock()
			scores[dimension] = score
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", dimension, err)
			}
		}(i, dimension)
	}
	wg.Wait()

	return scores, errors.Join(failures...)
}

func (j *RubricJudge) scoreOne(ctx context.Context, dimension, question, reviews, answer string) (string, error) {
	prompt := rubricPrompt(dimension, question, reviews, answer)
	messages := []llm.ChatMessage{llm.NewUserMessage(prompt)}
	opts := &llm.ChatOptions{Temperature: llm.Float32(0)}

	raw, err := j.llm.ChatWithOptions(ctx, messages, opts)
	if err != nil {
		return "", err
	}

	score, err := parseRating(raw)
	if err != nil {
		return "", err
	}
	return score, nil
}

var ratingPattern = regexp.MustCompile(`\b([1-5])\b`)

// parseRating extracts a 1-5 integer rating from the judge's reply.
// Anything else is rejected rather than recorded.
func parseRating(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 1 || n > 5 {
			return "", fmt.Errorf("rating %d out of range", n)
		}
		return trimmed, nil
	}

	matches := ratingPattern.FindAllString(trimmed, 2)
	if len(matches) != 1 {
		return "", fmt.Errorf("no unambiguous rating in %q", raw)
	}
	return matches[0], nil
}
