package match

import (
	"fmt"
	"strings"

	"job-assistant/internal/domain"
)

// Summarize renders a match record into a short human-readable digest for
// API responses. It tolerates partially filled records.
func Summarize(rec domain.Record) string {
	overall, _ := rec["overall_match"].(map[string]any)
	skillMatch, _ := rec["skill_match"].(map[string]any)

	pct := numberOrZero(overall["percentage"])
	matching := skillNames(skillMatch["matching_skills"])
	missing := skillNames(skillMatch["missing_skills"])

	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall match: %.0f%%.", pct)
	if assessment, _ := overall["assessment"].(string); assessment != "" {
		sb.WriteString(" " + assessment)
	}
	if len(matching) > 0 {
		fmt.Fprintf(&sb, " Matching skills (%d): %s.", len(matching), strings.Join(matching, ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&sb, " Missing skills (%d): %s.", len(missing), strings.Join(missing, ", "))
	}
	if rec, _ := overall["recommendation"].(string); rec != "" {
		sb.WriteString(" Recommendation: " + rec)
	}
	return sb.String()
}

// skillNames pulls the "skill" field from a list of skill entry maps. Plain
// string entries are accepted too since LLM output varies.
func skillNames(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch e := item.(type) {
		case string:
			out = append(out, e)
		case map[string]any:
			if s, ok := e["skill"].(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func numberOrZero(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
