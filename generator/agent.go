package generator

import (
	"context"
	"errors"
)

// Agent turns a lesson input into a Plan: prompt, one model call, post-processing.
type Agent struct {
	client *Client
}

func NewAgent(client *Client) (*Agent, error) {
	if client == nil {
		return nil, errors.New("generation client is required")
	}
	return &Agent{client: client}, nil
}

// Ready reports whether a credential is configured.
func (a *Agent) Ready() bool { return a.client.HasCredential() }

// Generate builds the prompt for in and asks the model for a plan.
func (a *Agent) Generate(ctx context.Context, in LessonPlanInput) (Plan, error) {
	raw, err := a.client.Generate(ctx, BuildPrompt(in))
	if err != nil {
		return Plan{}, err
	}
	return PostProcess(raw), nil
}
