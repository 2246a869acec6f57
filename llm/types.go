package llm

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	// MessageRoleSystem is for system instructions.
	MessageRoleSystem MessageRole = "system"
	// MessageRoleUser is for user messages.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is for assistant responses.
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage represents a message in a chat conversation.
type ChatMessage struct {
	// Role is the role of the message sender.
	Role MessageRole `json:"role"`
	// Content is the text content.
	Content string `json:"content"`
}

// NewChatMessage creates a new chat message.
func NewChatMessage(role MessageRole, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return NewChatMessage(MessageRoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return NewChatMessage(MessageRoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return NewChatMessage(MessageRoleAssistant, content)
}

// ResponseFormatJSON requests a JSON object response from providers
// that support structured output.
const ResponseFormatJSON = "json_object"

// ResponseFormat specifies the format of the LLM response.
type ResponseFormat struct {
	// Type is the format type ("text" or "json_object").
	Type string `json:"type"`
}

// ChatOptions holds per-call generation knobs. Nil fields fall back to
// the provider's defaults, so callers can override any subset.
type ChatOptions struct {
	// Temperature controls randomness (0.0 to 2.0).
	Temperature *float32 `json:"temperature,omitempty"`
	// MaxTokens limits the number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`
	// TopP controls nucleus sampling.
	TopP *float32 `json:"top_p,omitempty"`
	// FrequencyPenalty penalizes frequent tokens (-2.0 to 2.0).
	FrequencyPenalty *float32 `json:"frequency_penalty,omitempty"`
	// PresencePenalty penalizes tokens already present (-2.0 to 2.0).
	PresencePenalty *float32 `json:"presence_penalty,omitempty"`
	// ResponseFormat specifies the output format (e.g. JSON).
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Float32 returns a pointer to v, for populating ChatOptions fields.
func Float32(v float32) *float32 { return &v }

// Int returns a pointer to v, for populating ChatOptions fields.
func Int(v int) *int { return &v }
