// Package match scores a processed resume against a processed job posting.
//
// The engine tries a full LLM comparison first, falls back to a simplified
// lower-budget prompt when that fails, and finally degrades to a local
// keyword heuristic. It therefore always produces a match record.
package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"job-assistant/internal/domain"
	"job-assistant/internal/observability"
	"job-assistant/internal/schema"
)

const systemPrompt = "You are an expert recruiter and career coach. " +
	"Respond with a single JSON object and nothing else. No markdown, no commentary."

const (
	primaryMaxTokens    = 8000
	simplifiedMaxTokens = 4000
)

// Engine runs the three-rung match fallback ladder.
type Engine struct {
	ai domain.AIClient
}

func NewEngine(ai domain.AIClient) *Engine {
	return &Engine{ai: ai}
}

// Run compares the two records. jobText is the scraped posting text; it is
// embedded alongside the structured records so the model sees wording the
// extraction passes may have dropped. Both documents must already be
// processed; a missing side yields ErrPreconditionNotMet naming the missing
// document. Past the precondition check Run cannot fail: every rung of the
// ladder that errors hands off to the next, and the heuristic rung is local.
func (e *Engine) Run(ctx domain.Context, resumeRec, jobRec domain.Record, jobText string) (domain.Record, error) {
	if len(resumeRec) == 0 && len(jobRec) == 0 {
		return nil, fmt.Errorf("%w: no resume or job description has been processed", domain.ErrPreconditionNotMet)
	}
	if len(resumeRec) == 0 {
		return nil, fmt.Errorf("%w: no resume has been processed", domain.ErrPreconditionNotMet)
	}
	if len(jobRec) == 0 {
		return nil, fmt.Errorf("%w: no job description has been processed", domain.ErrPreconditionNotMet)
	}

	rec, err := e.llmPass(ctx, "match_primary", primaryPrompt(resumeRec, jobRec, jobText), primaryMaxTokens)
	if err == nil {
		return rec, nil
	}
	slog.Warn("primary match pass failed, trying simplified prompt", slog.Any("error", err))

	rec, err = e.llmPass(ctx, "match_simplified", simplifiedPrompt(resumeRec, jobRec, jobText), simplifiedMaxTokens)
	if err == nil {
		return rec, nil
	}
	slog.Warn("simplified match pass failed, using keyword heuristic", slog.Any("error", err))

	return Heuristic(resumeRec, jobRec), nil
}

func (e *Engine) llmPass(ctx domain.Context, name, prompt string, maxTokens int) (domain.Record, error) {
	start := time.Now()
	raw, err := e.ai.ChatText(ctx, systemPrompt, prompt, maxTokens)
	if err != nil {
		observability.ObserveLLMCall(name, "error", time.Since(start))
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamCall, name, err)
	}
	observability.ObserveLLMCall(name, "ok", time.Since(start))

	rec, err := schema.Normalize(raw, schema.For(domain.KindMatch))
	if err != nil {
		// A present-but-unparseable response falls through the ladder the
		// same way an upstream error does.
		if !errors.Is(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rec, nil
}

func primaryPrompt(resumeRec, jobRec domain.Record, jobText string) string {
	return fmt.Sprintf(`Analyze how well this resume matches the job requirements.

Job Description:
%s

Job Analysis:
%s

Resume Analysis:
%s

STRICT OUTPUT FORMAT (Return ONLY this JSON object):
{
    "overall_match": {
        "percentage": 75,
        "assessment": "Overall assessment of the match",
        "recommendation": "Apply/Consider applying/Not recommended"
    },
    "skill_match": {
        "matching_skills": [
            {"skill": "skill name", "job_importance": "high/medium/low", "proficiency_level": "beginner/intermediate/advanced/expert"}
        ],
        "missing_skills": [
            {"skill": "skill name", "importance": "high/medium/low"}
        ],
        "transferable_skills": [
            {"skill": "skill name", "relevance": "How it transfers to this role"}
        ]
    },
    "experience_match": {
        "years_required": "X years",
        "years_candidate": "Y years",
        "match_assessment": "Assessment of experience fit",
        "relevant_experiences": ["experience1", "experience2"]
    },
    "education_match": {
        "match_level": "exceeds/meets/below requirements",
        "assessment": "Assessment of education fit",
        "gaps": ["gap1", "gap2"]
    },
    "keyword_match": {
        "matching_keywords": ["keyword1", "keyword2"],
        "missing_keywords": ["keyword1", "keyword2"]
    },
    "strengths_for_role": ["strength1", "strength2"],
    "improvement_areas": ["area1", "area2"],
    "resume_enhancement_suggestions": [
        {"section": "section name", "suggestion": "specific suggestion"}
    ],
    "application_strategy": {
        "cover_letter_focus_points": ["point1", "point2"],
        "skills_to_emphasize": ["skill1", "skill2"],
        "experiences_to_highlight": ["experience1", "experience2"],
        "potential_questions": ["question1", "question2"]
    },
    "cultural_fit": {
        "assessment": "Assessment of cultural fit",
        "matching_values": ["value1", "value2"],
        "potential_challenges": ["challenge1", "challenge2"]
    }
}

STRICT RULES:
1. Return ONLY the JSON object, no other text
2. ALL keys must be present in the response
3. percentage must be an integer from 0 to 100
4. Be specific and honest in your assessment
5. Do not include any explanatory text or markdown
`, jobText, compactJSON(jobRec), compactJSON(resumeRec))
}

func simplifiedPrompt(resumeRec, jobRec domain.Record, jobText string) string {
	return fmt.Sprintf(`Compare this resume against this job and rate the match.

Job Description:
%s

Job (key fields):
%s

Resume (key fields):
%s

Return ONLY a JSON object with these keys:
{
    "overall_match": {"percentage": 50, "assessment": "...", "recommendation": "..."},
    "skill_match": {"matching_skills": [], "missing_skills": [], "transferable_skills": []},
    "strengths_for_role": [],
    "improvement_areas": []
}

percentage must be an integer from 0 to 100. No other text.
`, jobText,
		compactJSON(trimForSimplified(jobRec, "job_title", "company_name", "technical_skills", "soft_skills", "required_experience", "responsibilities")),
		compactJSON(trimForSimplified(resumeRec, "summary", "skills", "experience", "education")))
}

// trimForSimplified keeps only the named keys so the fallback prompt fits
// a smaller budget even when the full records are large.
func trimForSimplified(rec domain.Record, keys ...string) domain.Record {
	out := domain.Record{}
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			out[k] = v
		}
	}
	return out
}

func compactJSON(rec domain.Record) string {
	b, err := json.Marshal(rec)
	if err != nil {
		return "{}"
	}
	return string(b)
}
