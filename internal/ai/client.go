// Package ai wraps the hosted Gemini model behind typed advisory flows.
// Every flow sends a prompt with a response schema and unmarshals the JSON
// the model returns into a typed struct.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// ModelClient is the narrow surface the advisory flows need. Tests substitute
// a fake returning canned JSON.
type ModelClient interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema, out interface{}) error
}

// GeminiClient calls the Gemini API with JSON-schema constrained responses.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a model client. Returns nil when no API key is
// configured so callers can treat the advisor as disabled.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema, out interface{}) error {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return fmt.Errorf("model returned empty response")
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("model returned malformed JSON: %w", err)
	}
	return nil
}
