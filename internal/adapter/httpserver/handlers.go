// Package httpserver exposes the assistant over a JSON HTTP API.
package httpserver

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"job-assistant/internal/domain"
	"job-assistant/internal/match"
	"job-assistant/internal/usecase"
)

var allowedExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
}

var allowedMIMEs = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"text/rtf",
	"application/rtf",
}

type Handler struct {
	svc            *usecase.Assistant
	validate       *validator.Validate
	maxUploadBytes int64
}

func NewHandler(svc *usecase.Assistant, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:            svc,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

type documentResponse struct {
	SessionID string        `json:"session_id"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Analysis  domain.Record `json:"analysis,omitempty"`
	Summary   string        `json:"summary,omitempty"`
}

// SubmitResume accepts a multipart upload under "resume_file" and starts
// background extraction. The response carries a placeholder record.
func (h *Handler) SubmitResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "upload exceeds size limit")
		return
	}
	file, header, err := r.FormFile("resume_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "resume_file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "unsupported file type "+ext)
		return
	}

	tmp, err := os.CreateTemp("", "resume-upload-*"+ext)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		writeDomainError(w, err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		writeDomainError(w, err)
		return
	}
	if !sniffAllowed(tmp.Name()) {
		os.Remove(tmp.Name())
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "file content does not match a supported document type")
		return
	}

	sid, placeholder, err := h.svc.SubmitResume(r.Context(), r.FormValue("session_id"), header.Filename, tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{SessionID: sid, Status: "processing", Analysis: placeholder})
}

// sniffAllowed checks the stored upload's real content type. Extensions
// are easy to lie about; bytes less so.
func sniffAllowed(path string) bool {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for _, allowed := range allowedMIMEs {
		if mt.Is(allowed) {
			return true
		}
	}
	return false
}

type submitJobRequest struct {
	URL       string `json:"url" validate:"required,url"`
	SessionID string `json:"session_id"`
}

func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	sid, placeholder, err := h.svc.SubmitJob(r.Context(), req.SessionID, req.URL)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{SessionID: sid, Status: "processing", Analysis: placeholder})
}

type sessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

func (h *Handler) RequestMatch(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	placeholder, err := h.svc.RequestMatch(r.Context(), req.SessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{SessionID: req.SessionID, Status: "processing", Analysis: placeholder})
}

func (h *Handler) GetResume(w http.ResponseWriter, r *http.Request) {
	h.pollDocument(w, r, domain.TaskResume)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	h.pollDocument(w, r, domain.TaskJob)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	h.pollDocument(w, r, domain.TaskMatch)
}

// pollDocument implements the shared poll contract: 202 while the task
// runs, 200 with the record once done, and the task's failure surfaced
// with its domain error code when it failed.
func (h *Handler) pollDocument(w http.ResponseWriter, r *http.Request, kind domain.TaskKind) {
	sid := chi.URLParam(r, "session_id")
	rec, task, err := h.svc.GetDocument(r.Context(), sid, kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "nothing submitted for "+string(kind))
		return
	}
	switch task.Status {
	case domain.TaskPending, domain.TaskRunning:
		writeJSON(w, http.StatusAccepted, documentResponse{
			SessionID: sid,
			Status:    string(task.Status),
			Analysis:  usecase.PlaceholderFor(kind),
		})
	case domain.TaskFailed:
		code := "PROCESSING_FAILED"
		if strings.Contains(task.Error, domain.ErrScrapeFailed.Error()) {
			code = "SCRAPE_FAILED"
		}
		writeJSON(w, http.StatusBadGateway, errorBody{Error: errorInfo{
			Code:    code,
			Message: task.Error,
			Details: map[string]any{"session_id": sid, "status": "failed"},
		}})
	default:
		resp := documentResponse{SessionID: sid, Status: "done", Analysis: rec}
		if kind == domain.TaskMatch {
			resp.Summary = match.Summarize(rec)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type questionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Question  string `json:"question" validate:"required"`
}

func (h *Handler) Question(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	answer, err := h.svc.Answer(r.Context(), req.SessionID, req.Question)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": req.SessionID,
		"question":   req.Question,
		"answer":     answer,
	})
}

func (h *Handler) SuggestedQuestions(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "session_id")
	questions, err := h.svc.SuggestedQuestions(r.Context(), sid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sid,
		"questions":  questions,
	})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "session_id")
	if err := h.svc.DeleteSession(r.Context(), sid); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sid, "deleted": true})
}

func (h *Handler) SavePersonalResume(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.SavePersonalResume(r.Context(), req.SessionID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": req.SessionID, "saved": true})
}

func (h *Handler) LoadPersonalResume(w http.ResponseWriter, r *http.Request) {
	sid, rec, err := h.svc.LoadPersonalResume(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{SessionID: sid, Status: "done", Analysis: rec})
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := jsonDecoder(r)
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", field+" failed validation on "+verrs[0].Tag())
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body")
		return false
	}
	return true
}
