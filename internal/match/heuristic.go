package match

import (
	"strings"

	"job-assistant/internal/domain"
	"job-assistant/internal/schema"
)

const (
	heuristicPercentage     = 50
	heuristicAssessment     = "Basic analysis based on keyword matching."
	heuristicRecommendation = "Review the job description and resume manually for a more accurate assessment."
)

// Heuristic compares skills locally with no LLM involved. It is the last
// line of the match fallback ladder and never fails.
//
// Skills are compared case-insensitively with bidirectional substring
// containment, so "Java" on a resume matches a "JavaScript" requirement
// and vice versa. The fixed 50 overall percentage signals a degraded
// result to callers that know to look for it.
func Heuristic(resumeRec, jobRec domain.Record) domain.Record {
	resumeSkills := resumeSkillList(resumeRec)
	jobSkills := jobSkillList(jobRec)

	matching := make([]any, 0, len(jobSkills))
	missing := make([]any, 0, len(jobSkills))
	for _, js := range jobSkills {
		if containsEither(resumeSkills, js) {
			matching = append(matching, domain.Record{
				"skill":             js,
				"job_importance":    "medium",
				"proficiency_level": "intermediate",
			})
		} else {
			missing = append(missing, domain.Record{
				"skill":      js,
				"importance": "medium",
			})
		}
	}

	rec := schema.For(domain.KindMatch).Defaults()
	overall := rec["overall_match"].(domain.Record)
	overall["percentage"] = float64(heuristicPercentage)
	overall["assessment"] = heuristicAssessment
	overall["recommendation"] = heuristicRecommendation
	skillMatch := rec["skill_match"].(domain.Record)
	skillMatch["matching_skills"] = matching
	skillMatch["missing_skills"] = missing
	return rec
}

func containsEither(haystack []string, needle string) bool {
	n := strings.ToLower(needle)
	for _, h := range haystack {
		hl := strings.ToLower(h)
		if strings.Contains(hl, n) || strings.Contains(n, hl) {
			return true
		}
	}
	return false
}

// resumeSkillList flattens every category of the resume's skills map.
func resumeSkillList(rec domain.Record) []string {
	skills, _ := rec["skills"].(map[string]any)
	var out []string
	for _, cat := range skills {
		out = append(out, stringSlice(cat)...)
	}
	return out
}

func jobSkillList(rec domain.Record) []string {
	out := stringSlice(rec["technical_skills"])
	return append(out, stringSlice(rec["soft_skills"])...)
}

func stringSlice(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
