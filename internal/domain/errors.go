package domain

import "errors"

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")

	// ErrExtractionFailed means an LLM response did not contain a parseable
	// JSON object. Absorbed locally: callers substitute the schema's full
	// default record, never a partial one.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrScrapeFailed means no qualifying content block was found on the
	// fetched page. Surfaced to the caller as a user-visible failure.
	ErrScrapeFailed = errors.New("scrape failed")

	// ErrPreconditionNotMet means an operation required a prior stage's
	// output that is absent. Surfaced as a rejection, never retried.
	ErrPreconditionNotMet = errors.New("precondition not met")

	// ErrUpstreamCall means the LLM or fetch collaborator itself errored
	// (timeout, quota, network). Degraded per operation: extraction falls
	// back to defaults, matching to the heuristic matcher, Q&A to an
	// apology string.
	ErrUpstreamCall = errors.New("upstream call failed")

	ErrInternal = errors.New("internal error")
)
