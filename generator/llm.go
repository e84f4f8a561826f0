package generator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LLMClient abstracts one text-completion backend so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// LLMSettings is the explicit configuration handed to the generation client.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"

	DefaultModel = "gemini-2.5-flash"
)

var (
	// ErrMissingCredential is returned before any network call when no API key is configured.
	ErrMissingCredential = errors.New("api key is not configured")
	// ErrEmptyResponse is returned when the model answers with blank text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// OracleError wraps a transport or API failure from the backend.
type OracleError struct {
	Detail string
	Err    error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("generation failed: %s", e.Detail)
}

func (e *OracleError) Unwrap() error { return e.Err }

// NewBackend picks the LLMClient implementation for settings.Provider.
func NewBackend(s LLMSettings) (LLMClient, error) {
	switch s.Provider {
	case "", ProviderGemini:
		return NewGeminiLLM(s)
	case ProviderOpenAI:
		return NewOpenAILLMFromConfig(&s)
	case ProviderDeepSeek:
		// DeepSeek exposes an OpenAI-compatible endpoint; base_url is mandatory.
		if s.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLMFromConfig(&s)
	case ProviderMock:
		return MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", s.Provider)
	}
}
