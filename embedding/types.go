package embedding

// EmbeddingInfo contains metadata about an embedding model's capabilities.
type EmbeddingInfo struct {
	// ModelName is the name/identifier of the model.
	ModelName string `json:"model_name"`
	// Dimensions is the number of dimensions in the embedding vector.
	Dimensions int `json:"dimensions"`
	// MaxTokens is the maximum number of tokens the model can process.
	MaxTokens int `json:"max_tokens"`
	// TokenizerName is the name of the tokenizer used by the model.
	TokenizerName string `json:"tokenizer_name,omitempty"`
}

// DefaultEmbeddingInfo returns default info for unknown models.
func DefaultEmbeddingInfo(modelName string) EmbeddingInfo {
	return EmbeddingInfo{
		ModelName:  modelName,
		Dimensions: 1536,
		MaxTokens:  8191,
	}
}

// OpenAIAdaEmbeddingInfo returns info for text-embedding-ada-002, the
// model the production index was built with.
func OpenAIAdaEmbeddingInfo() EmbeddingInfo {
	return EmbeddingInfo{
		ModelName:     "text-embedding-ada-002",
		Dimensions:    1536,
		MaxTokens:     8191,
		TokenizerName: "cl100k_base",
	}
}

// OpenAISmallEmbedding3Info returns info for text-embedding-3-small.
func OpenAISmallEmbedding3Info() EmbeddingInfo {
	return EmbeddingInfo{
		ModelName:     "text-embedding-3-small",
		Dimensions:    1536,
		MaxTokens:     8191,
		TokenizerName: "cl100k_base",
	}
}
