package generator

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiLLM implements LLMClient against the Gemini API via google.golang.org/genai.
type GeminiLLM struct {
	client *genai.Client
}

func NewGeminiLLM(s LLMSettings) (*GeminiLLM, error) {
	if s.APIKey == "" {
		return nil, ErrMissingCredential
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiLLM{client: client}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
