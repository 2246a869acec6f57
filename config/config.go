// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIKey         = "OPENAI_API_KEY"
	EnvCorpusPath     = "REVIEWRAG_CORPUS"
	EnvIndexPath      = "REVIEWRAG_INDEX"
	EnvLogPath        = "REVIEWRAG_EVAL_LOG"
	EnvChatModel      = "REVIEWRAG_CHAT_MODEL"
	EnvEmbeddingModel = "REVIEWRAG_EMBEDDING_MODEL"
	EnvTopK           = "REVIEWRAG_TOP_K"
)

// Defaults for everything but the API key.
const (
	DefaultCorpusPath = "shampoo_reviews.csv"
	DefaultIndexPath  = "reviews.idx"
	DefaultLogPath    = "evaluation_logs.csv"
	DefaultTopK       = 10
)

// Config holds the settings every command needs.
type Config struct {
	APIKey         string
	CorpusPath     string
	IndexPath      string
	LogPath        string
	ChatModel      string
	EmbeddingModel string
	TopK           int
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	// Ignore a missing .env; it is a local-development convenience.
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:         os.Getenv(EnvAPIKey),
		CorpusPath:     envOr(EnvCorpusPath, DefaultCorpusPath),
		IndexPath:      envOr(EnvIndexPath, DefaultIndexPath),
		LogPath:        envOr(EnvLogPath, DefaultLogPath),
		ChatModel:      os.Getenv(EnvChatModel),
		EmbeddingModel: os.Getenv(EnvEmbeddingModel),
		TopK:           DefaultTopK,
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s is not set", EnvAPIKey)
	}

	if raw := os.Getenv(EnvTopK); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", EnvTopK, raw)
		}
		cfg.TopK = k
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
