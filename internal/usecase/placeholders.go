package usecase

import (
	"job-assistant/internal/domain"
	"job-assistant/internal/schema"
)

const processing = "Processing..."

// PlaceholderResume is the record returned while resume extraction is still
// running. It carries the full schema shape so clients can bind to it.
func PlaceholderResume() domain.Record {
	rec := schema.For(domain.KindResumeInitial).Defaults()
	if pi, ok := rec["personal_info"].(map[string]any); ok {
		pi["name"] = processing
	}
	rec["summary"] = "Your resume is being processed. Poll for the result."
	return rec
}

// PlaceholderJob is the record returned while job extraction is running.
func PlaceholderJob() domain.Record {
	rec := schema.For(domain.KindJobInitial).Defaults()
	rec["company_name"] = processing
	rec["job_title"] = processing
	rec["job_summary"] = "The job posting is being processed. Poll for the result."
	return rec
}

// PlaceholderMatch is the record returned while matching is running.
func PlaceholderMatch() domain.Record {
	rec := schema.For(domain.KindMatch).Defaults()
	if overall, ok := rec["overall_match"].(map[string]any); ok {
		overall["assessment"] = processing
	}
	return rec
}

// PlaceholderFor maps a task kind to its placeholder record.
func PlaceholderFor(kind domain.TaskKind) domain.Record {
	switch kind {
	case domain.TaskResume:
		return PlaceholderResume()
	case domain.TaskJob:
		return PlaceholderJob()
	default:
		return PlaceholderMatch()
	}
}
