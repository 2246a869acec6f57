package embedding

import (
	"fmt"
	"math"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
// For normalized vectors, this is equivalent to dot product.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have same length: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vectors must not be empty")
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("vectors must not be zero vectors")
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// DotProduct calculates the dot product between two vectors.
// For normalized vectors, this equals cosine similarity.
func DotProduct(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have same length: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vectors must not be empty")
	}

	var result float64
	for i := range a {
		result += a[i] * b[i]
	}
	return result, nil
}

// Normalize normalizes a vector to unit length (L2 norm = 1).
// Returns a new normalized vector without modifying the original.
func Normalize(v []float64) ([]float64, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("vector must not be empty")
	}

	norm := Magnitude(v)
	if norm == 0 {
		return nil, fmt.Errorf("cannot normalize zero vector")
	}

	result := make([]float64, len(v))
	for i, val := range v {
		result[i] = val / norm
	}
	return result, nil
}

// NormalizeInPlace normalizes a vector in place.
func NormalizeInPlace(v []float64) error {
	if len(v) == 0 {
		return fmt.Errorf("vector must not be empty")
	}

	norm := Magnitude(v)
	if norm == 0 {
		return fmt.Errorf("cannot normalize zero vector")
	}

	for i := range v {
		v[i] /= norm
	}
	return nil
}

// Magnitude calculates the magnitude (L2 norm) of a vector.
func Magnitude(v []float64) float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}
