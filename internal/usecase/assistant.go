// Package usecase orchestrates the application flows over the domain ports:
// document submission with background extraction, match runs, question
// answering, and the personal resume vault.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"job-assistant/internal/domain"
	"job-assistant/internal/extract"
	"job-assistant/internal/match"
	"job-assistant/internal/observability"
	"job-assistant/internal/qa"
)

// Assistant wires the ports together. All methods are safe for concurrent
// use; per-session ordering is delegated to the store.
type Assistant struct {
	store       domain.SessionStore
	extractor   *extract.Extractor
	engine      *match.Engine
	answerer    *qa.Answerer
	fetcher     domain.JobFetcher
	text        domain.TextExtractor
	vault       domain.ResumeVault
	taskTimeout time.Duration

	jobChain    extract.Chain
	resumeChain extract.Chain
}

func NewAssistant(
	store domain.SessionStore,
	extractor *extract.Extractor,
	engine *match.Engine,
	answerer *qa.Answerer,
	fetcher domain.JobFetcher,
	text domain.TextExtractor,
	vault domain.ResumeVault,
	taskTimeout time.Duration,
) *Assistant {
	return &Assistant{
		store:       store,
		extractor:   extractor,
		engine:      engine,
		answerer:    answerer,
		fetcher:     fetcher,
		text:        text,
		vault:       vault,
		taskTimeout: taskTimeout,
		jobChain:    extract.JobChain(),
		resumeChain: extract.ResumeChain(),
	}
}

// SubmitResume registers a resume upload and starts extraction in the
// background. filePath must point at the stored upload; it is removed once
// processing finishes. The returned record is a placeholder; poll
// GetDocument for the real one.
func (a *Assistant) SubmitResume(ctx domain.Context, sessionID, fileName, filePath string) (string, domain.Record, error) {
	sid, err := a.getOrCreate(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	task, err := a.beginTask(ctx, sid, domain.TaskResume)
	if err != nil {
		return "", nil, err
	}
	go a.processResume(sid, task.ID, fileName, filePath)
	return sid, PlaceholderResume(), nil
}

// SubmitJob registers a job posting URL and starts scrape plus extraction
// in the background.
func (a *Assistant) SubmitJob(ctx domain.Context, sessionID, url string) (string, domain.Record, error) {
	sid, err := a.getOrCreate(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	task, err := a.beginTask(ctx, sid, domain.TaskJob)
	if err != nil {
		return "", nil, err
	}
	go a.processJob(sid, task.ID, url)
	return sid, PlaceholderJob(), nil
}

// RequestMatch starts (or joins) the match run for the session. Both
// documents must be processed. A live match task makes this a no-op join;
// a finished match is discarded and re-run.
func (a *Assistant) RequestMatch(ctx domain.Context, sessionID string) (domain.Record, error) {
	var started *domain.Task
	err := a.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if err := missingSideErr(s); err != nil {
			return err
		}
		if t := s.Tasks[domain.TaskMatch]; t != nil && !t.Terminal() {
			return nil
		}
		task := newTask(domain.TaskMatch)
		s.Tasks[domain.TaskMatch] = task
		s.MatchRecord = nil
		s.RecomputeState()
		started = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	if started != nil {
		go a.processMatch(sessionID, started.ID)
	}
	return PlaceholderMatch(), nil
}

// GetDocument returns the stored record and task handle for one document
// kind. A nil task with an empty record means nothing was ever submitted.
func (a *Assistant) GetDocument(ctx domain.Context, sessionID string, kind domain.TaskKind) (domain.Record, *domain.Task, error) {
	s, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	var rec domain.Record
	switch kind {
	case domain.TaskResume:
		rec = s.ResumeRecord
	case domain.TaskJob:
		rec = s.JobRecord
	case domain.TaskMatch:
		rec = s.MatchRecord
	}
	return rec, s.Tasks[kind], nil
}

// Session returns a snapshot of the whole session.
func (a *Assistant) Session(ctx domain.Context, sessionID string) (domain.Session, error) {
	return a.store.Get(ctx, sessionID)
}

// Answer responds to a free-text application question synchronously.
func (a *Assistant) Answer(ctx domain.Context, sessionID, question string) (string, error) {
	s, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return a.answerer.Answer(ctx, &s, question)
}

// SuggestedQuestions returns likely interview questions. When both
// documents are ready but no match exists yet, the match runs inline on
// the request context first. A live background match task is left alone:
// running a second match alongside it would duplicate the LLM work, so
// this call falls back to the template questions until it commits.
func (a *Assistant) SuggestedQuestions(ctx domain.Context, sessionID string) ([]string, error) {
	s, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	matchLive := s.Tasks[domain.TaskMatch] != nil && !s.Tasks[domain.TaskMatch].Terminal()
	if len(s.MatchRecord) == 0 && s.HasResume() && s.HasJob() && !matchLive {
		rec, err := a.engine.Run(ctx, s.ResumeRecord, s.JobRecord, s.JobText)
		if err == nil {
			s.MatchRecord = rec
			_ = a.store.Update(ctx, sessionID, func(live *domain.Session) error {
				if len(live.MatchRecord) == 0 {
					live.MatchRecord = rec
					live.RecomputeState()
				}
				return nil
			})
		}
	}
	return qa.SuggestedQuestions(&s), nil
}

// DeleteSession removes the session and everything in it.
func (a *Assistant) DeleteSession(ctx domain.Context, sessionID string) error {
	return a.store.Delete(ctx, sessionID)
}

// SavePersonalResume stores the session's resume record in the vault.
func (a *Assistant) SavePersonalResume(ctx domain.Context, sessionID string) error {
	s, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !s.HasResume() {
		return fmt.Errorf("%w: no resume has been processed", domain.ErrPreconditionNotMet)
	}
	return a.vault.Save(ctx, s.ResumeRecord)
}

// LoadPersonalResume loads the vaulted resume into a brand-new session and
// returns the new session token with the record.
func (a *Assistant) LoadPersonalResume(ctx domain.Context) (string, domain.Record, error) {
	rec, err := a.vault.Load(ctx)
	if err != nil {
		return "", nil, err
	}
	sid := uuid.NewString()
	if _, err := a.store.Create(ctx, sid); err != nil {
		return "", nil, err
	}
	err = a.store.Update(ctx, sid, func(s *domain.Session) error {
		s.ResumeRecord = rec
		s.RecomputeState()
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return sid, rec, nil
}

func (a *Assistant) getOrCreate(ctx domain.Context, sessionID string) (string, error) {
	if sessionID == "" {
		sid := uuid.NewString()
		_, err := a.store.Create(ctx, sid)
		return sid, err
	}
	if _, err := a.store.Get(ctx, sessionID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		if _, err := a.store.Create(ctx, sessionID); err != nil {
			return "", err
		}
	}
	return sessionID, nil
}

// beginTask installs a fresh task handle for the kind and invalidates any
// prior match, since a resubmitted document makes it stale.
func (a *Assistant) beginTask(ctx domain.Context, sessionID string, kind domain.TaskKind) (*domain.Task, error) {
	task := newTask(kind)
	err := a.store.Update(ctx, sessionID, func(s *domain.Session) error {
		s.Tasks[kind] = task
		if kind != domain.TaskMatch {
			s.MatchRecord = nil
			delete(s.Tasks, domain.TaskMatch)
		}
		s.RecomputeState()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func newTask(kind domain.TaskKind) *domain.Task {
	return &domain.Task{
		ID:        ulid.Make().String(),
		Kind:      kind,
		Status:    domain.TaskPending,
		StartedAt: time.Now().UTC(),
	}
}

func (a *Assistant) processResume(sessionID, taskID, fileName, filePath string) {
	defer os.Remove(filePath)
	ctx, cancel := context.WithTimeout(context.Background(), a.taskTimeout)
	defer cancel()
	observability.StartTask(string(domain.TaskResume))

	a.markRunning(ctx, sessionID, domain.TaskResume, taskID)
	text, err := a.text.ExtractPath(ctx, fileName, filePath)
	if err != nil {
		a.failTask(ctx, sessionID, domain.TaskResume, taskID, err)
		return
	}

	rec, err := a.extractor.Extract(ctx, text, a.resumeChain)
	if err != nil {
		// Degraded to the default record but still a completed task.
		slog.Error("resume extraction degraded to defaults",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}
	a.commitDocument(ctx, sessionID, domain.TaskResume, taskID, text, rec)
}

func (a *Assistant) processJob(sessionID, taskID, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.taskTimeout)
	defer cancel()
	observability.StartTask(string(domain.TaskJob))

	a.markRunning(ctx, sessionID, domain.TaskJob, taskID)
	text, err := a.fetcher.FetchJobText(ctx, url)
	if err != nil {
		a.failTask(ctx, sessionID, domain.TaskJob, taskID, err)
		return
	}

	rec, err := a.extractor.Extract(ctx, text, a.jobChain)
	if err != nil {
		slog.Error("job extraction degraded to defaults",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}
	a.commitDocument(ctx, sessionID, domain.TaskJob, taskID, text, rec)
}

func (a *Assistant) processMatch(sessionID, taskID string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.taskTimeout)
	defer cancel()
	observability.StartTask(string(domain.TaskMatch))

	a.markRunning(ctx, sessionID, domain.TaskMatch, taskID)
	s, err := a.store.Get(ctx, sessionID)
	if err != nil {
		observability.FinishTask(string(domain.TaskMatch), "failed")
		return
	}
	rec, err := a.engine.Run(ctx, s.ResumeRecord, s.JobRecord, s.JobText)
	if err != nil {
		a.failTask(ctx, sessionID, domain.TaskMatch, taskID, err)
		return
	}

	commitErr := a.store.Update(ctx, sessionID, func(live *domain.Session) error {
		t := live.Tasks[domain.TaskMatch]
		if t == nil || t.ID != taskID {
			// A resubmission invalidated this run; drop the result.
			return nil
		}
		live.MatchRecord = rec
		finish(t)
		live.RecomputeState()
		return nil
	})
	if commitErr != nil {
		slog.Warn("match result dropped, session gone",
			slog.String("session_id", sessionID), slog.Any("error", commitErr))
	}
	observability.FinishTask(string(domain.TaskMatch), "done")
	if pct, ok := matchPercentage(rec); ok {
		observability.MatchPercentage.Observe(pct)
	}
}

// commitDocument stores the extracted record and completes the task. The
// auto-match trigger fires inside the same critical section: if the
// session now holds both documents and no match task exists, one is
// created before the lock is released.
func (a *Assistant) commitDocument(ctx domain.Context, sessionID string, kind domain.TaskKind, taskID, text string, rec domain.Record) {
	var matchTask *domain.Task
	err := a.store.Update(ctx, sessionID, func(s *domain.Session) error {
		t := s.Tasks[kind]
		if t == nil || t.ID != taskID {
			return nil
		}
		switch kind {
		case domain.TaskResume:
			s.ResumeText = text
			s.ResumeRecord = rec
		case domain.TaskJob:
			s.JobText = text
			s.JobRecord = rec
		}
		finish(t)
		s.RecomputeState()
		if s.HasResume() && s.HasJob() && s.Tasks[domain.TaskMatch] == nil {
			matchTask = newTask(domain.TaskMatch)
			s.Tasks[domain.TaskMatch] = matchTask
		}
		return nil
	})
	if err != nil {
		slog.Warn("extraction result dropped, session gone",
			slog.String("session_id", sessionID), slog.Any("error", err))
		observability.FinishTask(string(kind), "failed")
		return
	}
	observability.FinishTask(string(kind), "done")
	if matchTask != nil {
		go a.processMatch(sessionID, matchTask.ID)
	}
}

func (a *Assistant) markRunning(ctx domain.Context, sessionID string, kind domain.TaskKind, taskID string) {
	_ = a.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if t := s.Tasks[kind]; t != nil && t.ID == taskID {
			t.Status = domain.TaskRunning
		}
		return nil
	})
}

func (a *Assistant) failTask(ctx domain.Context, sessionID string, kind domain.TaskKind, taskID string, cause error) {
	slog.Error("background task failed",
		slog.String("session_id", sessionID),
		slog.String("kind", string(kind)),
		slog.Any("error", cause))
	_ = a.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if t := s.Tasks[kind]; t != nil && t.ID == taskID {
			t.Status = domain.TaskFailed
			t.Error = cause.Error()
			t.FinishedAt = time.Now().UTC()
		}
		return nil
	})
	observability.FinishTask(string(kind), "failed")
}

func finish(t *domain.Task) {
	t.Status = domain.TaskDone
	t.FinishedAt = time.Now().UTC()
}

func missingSideErr(s *domain.Session) error {
	switch {
	case !s.HasResume() && !s.HasJob():
		return fmt.Errorf("%w: no resume or job description has been processed", domain.ErrPreconditionNotMet)
	case !s.HasResume():
		return fmt.Errorf("%w: no resume has been processed", domain.ErrPreconditionNotMet)
	case !s.HasJob():
		return fmt.Errorf("%w: no job description has been processed", domain.ErrPreconditionNotMet)
	}
	return nil
}

func matchPercentage(rec domain.Record) (float64, bool) {
	overall, _ := rec["overall_match"].(map[string]any)
	if overall == nil {
		return 0, false
	}
	switch v := overall["percentage"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
