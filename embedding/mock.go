package embedding

import "context"

// MockEmbeddingModel is a mock implementation of the EmbeddingModel
// interface. Embeddings can be fixed per text or computed by Fn; Calls
// counts every embedding request, which tests use to assert that
// retrieval short-circuits without embedding.
type MockEmbeddingModel struct {
	Embedding  []float64
	Embeddings map[string][]float64
	Fn         func(text string) []float64
	Err        error
	Calls      int
}

func (m *MockEmbeddingModel) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}
	if m.Fn != nil {
		return m.Fn(text), nil
	}
	return m.Embedding, nil
}

func (m *MockEmbeddingModel) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	return m.GetTextEmbedding(ctx, query)
}

func (m *MockEmbeddingModel) GetTextEmbeddingsBatch(ctx context.Context, texts []string, callback ProgressCallback) ([][]float64, error) {
	vecs := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := m.GetTextEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	if callback != nil {
		callback(len(texts), len(texts))
	}
	return vecs, nil
}

var _ EmbeddingModelWithBatch = (*MockEmbeddingModel)(nil)
