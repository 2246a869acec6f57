package generator

import "github.com/vivian-xia/reviewrag/llm"

// Baseline generation knobs. These apply whenever the caller does not
// override a field.
const (
	DefaultTemperature      float32 = 0.3
	DefaultMaxTokens        int     = 200
	DefaultTopP             float32 = 1.0
	DefaultFrequencyPenalty float32 = 0
	DefaultPresencePenalty  float32 = 0
)

// Policy is the set of sampling knobs for one generation call. Nil
// fields fall back to the baseline, so a caller can override any
// subset without restating the rest.
type Policy struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             *float32 `json:"top_p,omitempty"`
	FrequencyPenalty *float32 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float32 `json:"presence_penalty,omitempty"`
}

// Baseline returns the default policy with every field set explicitly.
func Baseline() Policy {
	return Policy{
		Temperature:      llm.Float32(DefaultTemperature),
		MaxTokens:        llm.Int(DefaultMaxTokens),
		TopP:             llm.Float32(DefaultTopP),
		FrequencyPenalty: llm.Float32(DefaultFrequencyPenalty),
		PresencePenalty:  llm.Float32(DefaultPresencePenalty),
	}
}

// resolve fills every nil field of p from the baseline and converts the
// result to chat options. p itself is never mutated.
func (p Policy) resolve() *llm.ChatOptions {
	opts := &llm.ChatOptions{
		Temperature:      p.Temperature,
		MaxTokens:        p.MaxTokens,
		TopP:             p.TopP,
		FrequencyPenalty: p.FrequencyPenalty,
		PresencePenalty:  p.PresencePenalty,
	}
	if opts.Temperature == nil {
		opts.Temperature = llm.Float32(DefaultTemperature)
	}
	if opts.MaxTokens == nil {
		opts.MaxTokens = llm.Int(DefaultMaxTokens)
	}
	if opts.TopP == nil {
		opts.TopP = llm.Float32(DefaultTopP)
	}
	if opts.FrequencyPenalty == nil {
		opts.FrequencyPenalty = llm.Float32(DefaultFrequencyPenalty)
	}
	if opts.PresencePenalty == nil {
		opts.PresencePenalty = llm.Float32(DefaultPresencePenalty)
	}
	return opts
}
