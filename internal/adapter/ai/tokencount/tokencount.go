// Package tokencount provides token counting for prompt budgeting.
//
// It uses tiktoken-go, a Go port of OpenAI's tiktoken library, to measure
// source texts before they are templated into extraction prompts, so that
// oversized scraped pages and resumes can be truncated to a token budget
// instead of failing the upstream call.
package tokencount

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting with a cached encoding.
type Counter struct {
	model string
	once  sync.Once
	enc   *tiktoken.Tiktoken
}

// NewCounter creates a counter for the given tokenizer model.
func NewCounter(model string) *Counter {
	return &Counter{model: model}
}

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(c.model)
		if err != nil {
			slog.Warn("tokenizer unavailable, falling back to byte estimate",
				slog.String("model", c.model), slog.Any("error", err))
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Count returns the number of tokens in text. When the encoding cannot be
// loaded it falls back to the common 4-bytes-per-token estimate.
func (c *Counter) Count(text string) int {
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// Truncate returns text cut down to at most maxTokens tokens. Text within
// budget is returned unchanged.
func (c *Counter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	enc := c.encoding()
	if enc == nil {
		limit := maxTokens * 4
		if len(text) <= limit {
			return text
		}
		// Back off to a rune boundary so the cut never produces invalid UTF-8.
		for limit > 0 && !utf8.RuneStart(text[limit]) {
			limit--
		}
		return text[:limit]
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return enc.Decode(ids[:maxTokens])
}
