// Package stub is the offline LLM port used in dev and tests. Extraction
// prompts get an empty JSON object, which normalizes to full default
// records downstream; free-text prompts get a canned sentence.
package stub

import (
	"strings"

	"job-assistant/internal/domain"
)

type Client struct{}

func New() *Client { return &Client{} }

func (Client) ChatText(_ domain.Context, systemPrompt, _ string, _ int) (string, error) {
	if strings.Contains(systemPrompt, "JSON object") {
		return "{}", nil
	}
	return "This is a stubbed answer. Configure a real AI provider for live responses.", nil
}
