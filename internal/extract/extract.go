// Package extract drives multi-pass LLM extraction over a source document.
//
// A chain is an ordered sequence of passes. Each pass renders its prompt
// template over the source text plus the serialized outputs of the prior
// passes, invokes the LLM once, normalizes the response against the pass's
// schema, and merges the result into the accumulated record. Passes have a
// true data dependency and always run sequentially.
package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"job-assistant/internal/adapter/ai/tokencount"
	"job-assistant/internal/domain"
	"job-assistant/internal/observability"
	"job-assistant/internal/schema"
)

const systemPrompt = "You are a precise information extraction engine. " +
	"Respond with a single JSON object and nothing else. No markdown, no commentary."

// Pass is one LLM invocation plus its normalization step.
type Pass struct {
	Name      string
	Kind      domain.RecordKind
	MaxTokens int
	tmpl      *template.Template
}

// Chain is an ordered, data-dependent sequence of passes.
type Chain struct {
	Name   string
	Passes []Pass
}

// Kinds returns the record kinds of every pass in the chain.
func (c Chain) Kinds() []domain.RecordKind {
	out := make([]domain.RecordKind, len(c.Passes))
	for i, p := range c.Passes {
		out[i] = p.Kind
	}
	return out
}

type passData struct {
	Text  string
	Prior map[string]string
}

func mustPass(name string, kind domain.RecordKind, maxTokens int, body string) Pass {
	return Pass{
		Name:      name,
		Kind:      kind,
		MaxTokens: maxTokens,
		tmpl:      template.Must(template.New(name).Parse(body)),
	}
}

// Extractor runs chains against an AI client with a prompt token budget.
type Extractor struct {
	ai        domain.AIClient
	counter   *tokencount.Counter
	maxTokens int
}

// New constructs an Extractor. maxPromptTokens bounds the source text
// before templating; zero disables truncation.
func New(ai domain.AIClient, counter *tokencount.Counter, maxPromptTokens int) *Extractor {
	return &Extractor{ai: ai, counter: counter, maxTokens: maxPromptTokens}
}

// Extract runs every pass of the chain over sourceText.
//
// An upstream LLM failure aborts the extraction: partial progress is
// discarded and the full default record for the union of all pass schemas
// is returned together with an error wrapping domain.ErrUpstreamCall.
// A response that fails to parse degrades only that pass to its defaults
// and the chain continues. The returned record always carries the union
// key set.
func (e *Extractor) Extract(ctx domain.Context, sourceText string, chain Chain) (domain.Record, error) {
	if e.counter != nil && e.maxTokens > 0 {
		sourceText = e.counter.Truncate(sourceText, e.maxTokens)
	}

	acc := domain.Record{}
	prior := make(map[string]string, len(chain.Passes))

	for _, pass := range chain.Passes {
		var sb strings.Builder
		if err := pass.tmpl.Execute(&sb, passData{Text: sourceText, Prior: prior}); err != nil {
			return schema.UnionDefaults(chain.Kinds()...), fmt.Errorf("%w: render %s/%s: %v", domain.ErrInternal, chain.Name, pass.Name, err)
		}

		start := time.Now()
		raw, err := e.ai.ChatText(ctx, systemPrompt, sb.String(), pass.MaxTokens)
		if err != nil {
			observability.ObserveLLMCall(chain.Name+"_"+pass.Name, "error", time.Since(start))
			slog.Error("extraction pass upstream failure",
				slog.String("chain", chain.Name),
				slog.String("pass", pass.Name),
				slog.Any("error", err))
			// No checkpoint/resume: discard earlier passes' progress.
			return schema.UnionDefaults(chain.Kinds()...), fmt.Errorf("%w: %s/%s: %v", domain.ErrUpstreamCall, chain.Name, pass.Name, err)
		}
		observability.ObserveLLMCall(chain.Name+"_"+pass.Name, "ok", time.Since(start))

		sch := schema.For(pass.Kind)
		rec, err := schema.Normalize(raw, sch)
		if err != nil {
			slog.Warn("extraction pass response unparseable, using defaults",
				slog.String("chain", chain.Name),
				slog.String("pass", pass.Name),
				slog.Any("error", err))
			rec = sch.Defaults()
		}

		serialized, _ := json.MarshalIndent(rec, "", "  ")
		prior[pass.Name] = string(serialized)
		schema.MergeInto(acc, rec)
	}
	return acc, nil
}
