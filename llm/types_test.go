package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, ChatMessage{Role: MessageRoleSystem, Content: "s"}, NewSystemMessage("s"))
	assert.Equal(t, ChatMessage{Role: MessageRoleUser, Content: "u"}, NewUserMessage("u"))
	assert.Equal(t, ChatMessage{Role: MessageRoleAssistant, Content: "a"}, NewAssistantMessage("a"))
}

func TestMockLLMSequencedResponses(t *testing.T) {
	m := &MockLLM{Responses: []string{"first", "second"}, Response: "rest"}
	ctx := context.Background()

	got, err := m.Complete(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = m.Complete(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	got, err = m.Complete(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "rest", got)
	assert.Equal(t, 3, m.Calls)
}

func TestMockLLMRecordsOptions(t *testing.T) {
	m := NewMockLLM("ok")
	opts := &ChatOptions{Temperature: Float32(0.7), MaxTokens: Int(50)}
	_, err := m.ChatWithOptions(context.Background(), []ChatMessage{NewUserMessage("q")}, opts)
	require.NoError(t, err)
	require.NotNil(t, m.LastOptions)
	assert.Equal(t, float32(0.7), *m.LastOptions.Temperature)
	assert.Equal(t, 50, *m.LastOptions.MaxTokens)
	require.Len(t, m.LastMessages, 1)
}

func TestMockLLMError(t *testing.T) {
	boom := errors.New("rate limited")
	m := NewMockLLMWithError(boom)
	_, err := m.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}
