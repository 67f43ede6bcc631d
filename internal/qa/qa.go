// Package qa answers free-text application questions against a session's
// processed documents and proposes likely interview questions.
package qa

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"job-assistant/internal/domain"
	"job-assistant/internal/observability"
)

const systemPrompt = "You are a helpful job application assistant. " +
	"Answer from the candidate's perspective using only the provided context. " +
	"Be specific, honest, and concise."

const answerMaxTokens = 1000

// Answerer generates free-text answers over a session's extracted records.
type Answerer struct {
	ai domain.AIClient
}

func NewAnswerer(ai domain.AIClient) *Answerer {
	return &Answerer{ai: ai}
}

// Answer responds to an application question using both processed documents
// and, when present, the match analysis. Both documents are required; the
// match record is optional and substituted with an empty object.
//
// An upstream failure does not surface as an error: the returned answer is
// an apology string carrying the failure, so the Q&A surface always
// produces text.
func (a *Answerer) Answer(ctx domain.Context, s *domain.Session, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question must not be empty", domain.ErrInvalidArgument)
	}
	if !s.HasResume() && !s.HasJob() {
		return "", fmt.Errorf("%w: no resume or job description has been processed", domain.ErrPreconditionNotMet)
	}
	if !s.HasResume() {
		return "", fmt.Errorf("%w: no resume has been processed", domain.ErrPreconditionNotMet)
	}
	if !s.HasJob() {
		return "", fmt.Errorf("%w: no job description has been processed", domain.ErrPreconditionNotMet)
	}

	matchJSON := "{}"
	if len(s.MatchRecord) > 0 {
		if b, err := json.Marshal(s.MatchRecord); err == nil {
			matchJSON = string(b)
		}
	}
	jobJSON, _ := json.Marshal(s.JobRecord)
	resumeJSON, _ := json.Marshal(s.ResumeRecord)

	prompt := fmt.Sprintf(`Answer this job application question for the candidate.

Question:
%s

Job Analysis:
%s

Resume Analysis:
%s

Match Analysis:
%s

Answer in plain text from the candidate's perspective. Do not mention that you are working from an analysis.
`, question, jobJSON, resumeJSON, matchJSON)

	start := time.Now()
	answer, err := a.ai.ChatText(ctx, systemPrompt, prompt, answerMaxTokens)
	if err != nil {
		observability.ObserveLLMCall("qa_answer", "error", time.Since(start))
		slog.Error("question answering upstream failure", slog.Any("error", err))
		return fmt.Sprintf("I'm sorry, I couldn't generate an answer due to an error: %v", err), nil
	}
	observability.ObserveLLMCall("qa_answer", "ok", time.Since(start))
	return strings.TrimSpace(answer), nil
}

// maxSuggestedQuestions caps the list pulled from the match analysis.
const maxSuggestedQuestions = 10

// SuggestedQuestions returns likely interview questions for the session.
// It prefers the match analysis's potential_questions list and falls back
// to generic questions templated with the job title and company name.
func SuggestedQuestions(s *domain.Session) []string {
	if len(s.MatchRecord) > 0 {
		if qs := potentialQuestions(s.MatchRecord); len(qs) > 0 {
			if len(qs) > maxSuggestedQuestions {
				qs = qs[:maxSuggestedQuestions]
			}
			return qs
		}
	}

	title := "this role"
	company := "the company"
	if s.HasJob() {
		if v, ok := s.JobRecord["job_title"].(string); ok && v != "" {
			title = v
		}
		if v, ok := s.JobRecord["company_name"].(string); ok && v != "" {
			company = v
		}
	}
	return []string{
		fmt.Sprintf("Why are you interested in the %s position at %s?", title, company),
		fmt.Sprintf("What makes you a strong candidate for %s?", title),
		fmt.Sprintf("Tell me about a challenge you faced that is relevant to working at %s.", company),
		"What are your salary expectations for this role?",
		"Where do you see yourself in five years?",
	}
}

// potentialQuestions reads application_strategy.potential_questions. The
// model emits either plain strings or {"question", "strategy", ...}
// objects; both shapes are accepted.
func potentialQuestions(matchRec domain.Record) []string {
	strategy, _ := matchRec["application_strategy"].(map[string]any)
	list, _ := strategy["potential_questions"].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		var q string
		switch e := item.(type) {
		case string:
			q = e
		case map[string]any:
			q, _ = e["question"].(string)
		}
		if strings.TrimSpace(q) != "" {
			out = append(out, q)
		}
	}
	return out
}
