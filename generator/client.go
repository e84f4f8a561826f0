package generator

import (
	"context"
	"strings"
	"sync"
)

// Client performs exactly one completion call per Generate, with no retries.
type Client struct {
	settings LLMSettings

	mu      sync.Mutex
	backend LLMClient
	factory func(LLMSettings) (LLMClient, error)
}

// NewClient builds a client from explicit settings. The backend is created on
// first use so a missing key only surfaces when a generation is attempted.
func NewClient(s LLMSettings) *Client {
	if s.Model == "" {
		s.Model = DefaultModel
	}
	return &Client{settings: s, factory: NewBackend}
}

// NewClientWithBackend is NewClient with a pre-built backend.
func NewClientWithBackend(s LLMSettings, backend LLMClient) *Client {
	c := NewClient(s)
	c.backend = backend
	return c
}

// Settings returns a copy of the client's configuration.
func (c *Client) Settings() LLMSettings { return c.settings }

// HasCredential reports whether Generate can get past the credential check.
func (c *Client) HasCredential() bool {
	return c.settings.Provider == ProviderMock || strings.TrimSpace(c.settings.APIKey) != ""
}

// Generate sends prompt to the configured model and returns its text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredential() {
		return "", ErrMissingCredential
	}
	backend, err := c.getBackend()
	if err != nil {
		return "", &OracleError{Detail: err.Error(), Err: err}
	}
	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}
	text, err := backend.Complete(ctx, c.settings.Model, prompt)
	if err != nil {
		return "", &OracleError{Detail: err.Error(), Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) getBackend() (LLMClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		return c.backend, nil
	}
	b, err := c.factory(c.settings)
	if err != nil {
		return nil, err
	}
	c.backend = b
	return b, nil
}
