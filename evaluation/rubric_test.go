package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivian-xia/reviewrag/llm"
)

func TestScoreAllDimensions(t *testing.T) {
	mock := llm.NewMockLLM("4")
	judge := NewRubricJudge(mock)

	scores, err := judge.Score(context.Background(), "q", "reviews text", "the answer")
	require.NoError(t, err)
	require.Len(t, scores, len(Dimensions))
	for _, dimension := range Dimensions {
		assert.Equal(t, "4", scores[dimension], dimension)
	}
	assert.Equal(t, len(Dimensions), mock.Calls, "one call per dimension")
}

func TestScoreDimensionSpecificPrompts(t *testing.T) {
	mock := &llm.MockLLM{
		Fn: func(messages []llm.ChatMessage, opts *llm.ChatOptions) (string, error) {
			prompt := messages[0].Content
			// Only the relevance prompt includes the question.
			if strings.Contains(prompt, "Question: is it good") {
				return "5", nil
			}
			return "3", nil
		},
	}
	judge := NewRubricJudge(mock)

	scores, err := judge.Score(context.Background(), "is it good", "reviews", "answer")
	require.NoError(t, err)
	assert.Equal(t, "5", scores[DimensionRelevance])
	assert.Equal(t, "3", scores[DimensionCoherence])
	assert.Equal(t, "3", scores[DimensionAccuracy])
}

func TestScoreRejectsUnparseableReplies(t *testing.T) {
	mock := llm.NewMockLLM("The answer deserves top marks.")
	judge := NewRubricJudge(mock)

	scores, err := judge.Score(context.Background(), "q", "reviews", "answer")
	assert.Error(t, err)
	require.Len(t, scores, len(Dimensions))
	for _, dimension := range Dimensions {
		assert.Empty(t, scores[dimension], dimension)
	}
}

func TestScoreTransportFailureLeavesEmptyCells(t *testing.T) {
	judge := NewRubricJudge(llm.NewMockLLMWithError(errors.New("timeout")))

	scores, err := judge.Score(context.Background(), "q", "reviews", "answer")
	assert.Error(t, err)
	for _, dimension := range Dimensions {
		assert.Empty(t, scores[dimension])
	}
}

func TestParseRating(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"4", "4", false},
		{" 5 \n", "5", false},
		{"Score: 3", "3", false},
		{"I'd say 2.", "2", false},
		{"0", "", true},
		{"6", "", true},
		{"between 3 and 4", "", true},
		{"no idea", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := parseRating(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}
