// Package gemini implements the LLM port against the Gemini API.
package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"job-assistant/internal/domain"
)

type Client struct {
	client *genai.Client
	model  string
}

// New dials the Gemini API. ctx bounds client construction only; calls
// carry their own contexts.
func New(ctx domain.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) ChatText(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrUpstreamCall, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini: empty response", domain.ErrUpstreamCall)
	}
	return text, nil
}
