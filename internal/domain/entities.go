// Package domain holds the core entities, ports, and error taxonomy.
package domain

import (
	"context"
	"time"
)

// Context is an alias so adapters and usecases pass context.Context through.
type Context = context.Context

// Record is a structured extraction result: a fully-keyed mapping from field
// name to string, []any, or map[string]any values. Every field of the owning
// schema is always present; absent information is a typed empty default,
// never a missing key and never nil.
type Record = map[string]any

// RecordKind names one schema default table.
type RecordKind string

const (
	KindJobInitial     RecordKind = "job_initial"
	KindJobDetailed    RecordKind = "job_detailed"
	KindJobSummary     RecordKind = "job_summary"
	KindResumeInitial  RecordKind = "resume_initial"
	KindResumeDetailed RecordKind = "resume_detailed"
	KindResumeSummary  RecordKind = "resume_summary"
	KindMatch          RecordKind = "match"
)

// SessionState tracks which documents a session has processed.
type SessionState string

const (
	StateEmpty      SessionState = "empty"
	StateResumeOnly SessionState = "resume_only"
	StateJobOnly    SessionState = "job_only"
	StateBoth       SessionState = "both"
	StateMatched    SessionState = "matched"
)

// TaskKind names a background unit of work within a session.
type TaskKind string

const (
	TaskResume TaskKind = "resume"
	TaskJob    TaskKind = "job"
	TaskMatch  TaskKind = "match"
)

// TaskStatus is the lifecycle of a background task handle.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// Task is the poll handle stored alongside a session's placeholder record.
type Task struct {
	ID         string
	Kind       TaskKind
	Status     TaskStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Terminal reports whether the task has finished, successfully or not.
func (t Task) Terminal() bool { return t.Status == TaskDone || t.Status == TaskFailed }

// Session owns at most one of each document text, structured record, and
// match record. It is mutated only through SessionStore.Update, which
// serializes access per session token.
type Session struct {
	ID           string
	State        SessionState
	JobText      string
	JobRecord    Record
	ResumeText   string
	ResumeRecord Record
	MatchRecord  Record
	Tasks        map[TaskKind]*Task
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasResume reports whether resume extraction has completed for the session.
func (s *Session) HasResume() bool { return len(s.ResumeRecord) > 0 }

// HasJob reports whether job extraction has completed for the session.
func (s *Session) HasJob() bool { return len(s.JobRecord) > 0 }

// RecomputeState derives the state from which records are present.
func (s *Session) RecomputeState() {
	switch {
	case len(s.MatchRecord) > 0:
		s.State = StateMatched
	case s.HasResume() && s.HasJob():
		s.State = StateBoth
	case s.HasResume():
		s.State = StateResumeOnly
	case s.HasJob():
		s.State = StateJobOnly
	default:
		s.State = StateEmpty
	}
}

// SessionStore is the session map port. Implementations must serialize
// Update calls per session token and keep distinct sessions independent.
type SessionStore interface {
	Create(ctx Context, id string) (*Session, error)
	Get(ctx Context, id string) (Session, error)
	Update(ctx Context, id string, fn func(*Session) error) error
	Delete(ctx Context, id string) error
}

// AIClient is the LLM call port: an opaque, possibly slow, possibly failing
// chat completion. No retries are attempted; a single failure is terminal
// for that call.
type AIClient interface {
	ChatText(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// JobFetcher is the page-scrape port. It returns the longest qualifying
// plain-text block from the rendered page, whitespace collapsed, or
// ErrScrapeFailed when no block qualifies.
type JobFetcher interface {
	FetchJobText(ctx Context, url string) (string, error)
}

// TextExtractor extracts plain text from an uploaded document file.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// ResumeVault persists exactly one personal resume record in a flat file.
// Last write wins; no schema versioning.
type ResumeVault interface {
	Save(ctx Context, rec Record) error
	Load(ctx Context) (Record, error)
}
