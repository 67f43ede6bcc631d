package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-assistant/internal/domain"
)

type scriptedAI struct {
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

func (s *scriptedAI) ChatText(_ context.Context, _ string, user string, _ int) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, user)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var resp string
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	return resp, err
}

func resumeWith(technical ...string) domain.Record {
	skills := make([]any, len(technical))
	for i, s := range technical {
		skills[i] = s
	}
	return domain.Record{
		"skills": map[string]any{
			"technical": skills,
			"soft":      []any{},
		},
	}
}

func jobWith(technical ...string) domain.Record {
	skills := make([]any, len(technical))
	for i, s := range technical {
		skills[i] = s
	}
	return domain.Record{
		"technical_skills": skills,
		"soft_skills":      []any{},
	}
}

func TestRun_RequiresBothDocuments(t *testing.T) {
	e := NewEngine(&scriptedAI{})

	_, err := e.Run(context.Background(), nil, jobWith("Go"), "posting text")
	require.ErrorIs(t, err, domain.ErrPreconditionNotMet)
	assert.Contains(t, err.Error(), "resume")

	_, err = e.Run(context.Background(), resumeWith("Go"), nil, "posting text")
	require.ErrorIs(t, err, domain.ErrPreconditionNotMet)
	assert.Contains(t, err.Error(), "job description")
}

func TestRun_PrimaryPassSucceeds(t *testing.T) {
	ai := &scriptedAI{responses: []string{
		`{"overall_match": {"percentage": 82, "assessment": "Strong fit", "recommendation": "Apply"}}`,
	}}
	e := NewEngine(ai)

	rec, err := e.Run(context.Background(), resumeWith("Go"), jobWith("Go"), "posting text")
	require.NoError(t, err)
	assert.Equal(t, 1, ai.calls)

	overall := rec["overall_match"].(map[string]any)
	assert.Equal(t, float64(82), overall["percentage"])
	// Normalization fills the sections the response omitted.
	assert.Contains(t, rec, "cultural_fit")
	assert.Contains(t, rec, "application_strategy")
}

func TestRun_FallsBackToSimplifiedPass(t *testing.T) {
	ai := &scriptedAI{
		responses: []string{"", `{"overall_match": {"percentage": 60, "assessment": "Decent fit"}}`},
		errs:      []error{errors.New("timeout")},
	}
	e := NewEngine(ai)

	rec, err := e.Run(context.Background(), resumeWith("Go"), jobWith("Go"), "posting text")
	require.NoError(t, err)
	assert.Equal(t, 2, ai.calls)
	assert.Equal(t, float64(60), rec["overall_match"].(map[string]any)["percentage"])
}

func TestRun_HeuristicWhenBothPassesFail(t *testing.T) {
	ai := &scriptedAI{errs: []error{errors.New("down"), errors.New("still down")}}
	e := NewEngine(ai)

	rec, err := e.Run(context.Background(), resumeWith("Python", "Django"), jobWith("Python", "React"), "posting text")
	require.NoError(t, err)
	assert.Equal(t, 2, ai.calls)

	overall := rec["overall_match"].(map[string]any)
	assert.Equal(t, float64(50), overall["percentage"])
	assert.Equal(t, "Basic analysis based on keyword matching.", overall["assessment"])

	skillMatch := rec["skill_match"].(map[string]any)
	matching := skillMatch["matching_skills"].([]any)
	missing := skillMatch["missing_skills"].([]any)
	require.Len(t, matching, 1)
	require.Len(t, missing, 1)
	assert.Equal(t, "Python", matching[0].(domain.Record)["skill"])
	assert.Equal(t, "React", missing[0].(domain.Record)["skill"])
}

func TestRun_UnparseableResponseFallsThrough(t *testing.T) {
	ai := &scriptedAI{responses: []string{"no json here", "also no json"}}
	e := NewEngine(ai)

	rec, err := e.Run(context.Background(), resumeWith("Go"), jobWith("Go"), "posting text")
	require.NoError(t, err)
	assert.Equal(t, 2, ai.calls)
	assert.Equal(t, float64(50), rec["overall_match"].(map[string]any)["percentage"])
}

func TestRun_PromptsEmbedRawJobText(t *testing.T) {
	// Both ladder rungs must carry the scraped posting text, not just the
	// structured records.
	ai := &scriptedAI{errs: []error{errors.New("timeout"), errors.New("timeout")}}
	e := NewEngine(ai)

	jobText := "We are hiring a Staff Engineer to lead the payments platform."
	_, err := e.Run(context.Background(), resumeWith("Go"), jobWith("Go"), jobText)
	require.NoError(t, err)

	require.Len(t, ai.prompts, 2)
	assert.Contains(t, ai.prompts[0], jobText)
	assert.Contains(t, ai.prompts[1], jobText)
}

func TestHeuristic_SubstringMatchIsBidirectional(t *testing.T) {
	// "Java" on the resume matches a "JavaScript" requirement, and a short
	// requirement matches a longer resume skill the same way.
	rec := Heuristic(resumeWith("Java"), jobWith("JavaScript"))
	matching := rec["skill_match"].(map[string]any)["matching_skills"].([]any)
	require.Len(t, matching, 1)
	assert.Equal(t, "JavaScript", matching[0].(domain.Record)["skill"])

	rec = Heuristic(resumeWith("Microsoft SQL Server"), jobWith("sql"))
	matching = rec["skill_match"].(map[string]any)["matching_skills"].([]any)
	require.Len(t, matching, 1)
}

func TestHeuristic_FlattensAllResumeSkillCategories(t *testing.T) {
	resume := domain.Record{
		"skills": map[string]any{
			"technical": []any{"Go"},
			"tools":     []any{"Docker"},
			"soft":      []any{"Communication"},
		},
	}
	job := domain.Record{
		"technical_skills": []any{"Docker"},
		"soft_skills":      []any{"Communication"},
	}

	rec := Heuristic(resume, job)
	matching := rec["skill_match"].(map[string]any)["matching_skills"].([]any)
	assert.Len(t, matching, 2)
	missing := rec["skill_match"].(map[string]any)["missing_skills"].([]any)
	assert.Empty(t, missing)
}

func TestSummarize(t *testing.T) {
	rec := domain.Record{
		"overall_match": map[string]any{
			"percentage":     float64(75),
			"assessment":     "Good fit.",
			"recommendation": "Apply",
		},
		"skill_match": map[string]any{
			"matching_skills": []any{map[string]any{"skill": "Go"}},
			"missing_skills":  []any{map[string]any{"skill": "Kubernetes"}},
		},
	}

	s := Summarize(rec)
	assert.Contains(t, s, "75%")
	assert.Contains(t, s, "Good fit.")
	assert.Contains(t, s, "Matching skills (1): Go")
	assert.Contains(t, s, "Missing skills (1): Kubernetes")
	assert.Contains(t, s, "Recommendation: Apply")
}

func TestSummarize_EmptyRecord(t *testing.T) {
	assert.Equal(t, "Overall match: 0%.", Summarize(domain.Record{}))
}
