package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-assistant/internal/app"
	"job-assistant/internal/config"
	"job-assistant/internal/domain"
	"job-assistant/internal/extract"
	"job-assistant/internal/match"
	"job-assistant/internal/qa"
	"job-assistant/internal/session"
	"job-assistant/internal/usecase"
)

type funcAI func(system, user string) (string, error)

func (f funcAI) ChatText(_ context.Context, system, user string, _ int) (string, error) {
	return f(system, user)
}

// happyAI answers every structured prompt with small valid JSON and match
// prompts with a full-enough record.
func happyAI(_, user string) (string, error) {
	switch {
	case strings.Contains(user, "matches the job requirements"):
		return `{"overall_match": {"percentage": 70, "assessment": "Solid", "recommendation": "Apply"},
			"application_strategy": {"potential_questions": ["Why Acme?"]}}`, nil
	case strings.Contains(user, "Resume Text:"):
		return `{"summary": "Engineer", "skills": {"technical": ["Go"]}}`, nil
	case strings.Contains(user, "Job Description:"):
		return `{"job_title": "Backend Engineer", "company_name": "Acme", "technical_skills": ["Go"]}`, nil
	case strings.Contains(user, "application question"):
		return "I am a strong fit because I ship Go services.", nil
	default:
		return `{}`, nil
	}
}

type fakeFetcher struct {
	text string
	err  error
}

func (f fakeFetcher) FetchJobText(context.Context, string) (string, error) { return f.text, f.err }

type fakeText struct{ text string }

func (f fakeText) ExtractPath(context.Context, string, string) (string, error) { return f.text, nil }

type fakeVault struct{ rec domain.Record }

func (v *fakeVault) Save(_ context.Context, rec domain.Record) error { v.rec = rec; return nil }
func (v *fakeVault) Load(context.Context) (domain.Record, error) {
	if v.rec == nil {
		return nil, fmt.Errorf("%w: no personal resume saved", domain.ErrNotFound)
	}
	return v.rec, nil
}

func newServer(t *testing.T, ai domain.AIClient, fetcher domain.JobFetcher) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		AppEnv:           "test",
		Version:          "test",
		MaxUploadMB:      10,
		CORSAllowOrigins: "*",
		HTTPWriteTimeout: 10 * time.Second,
	}
	svc := usecase.NewAssistant(
		session.NewStore(),
		extract.New(ai, nil, 0),
		match.NewEngine(ai),
		qa.NewAnswerer(ai),
		fetcher,
		fakeText{text: "resume body"},
		&fakeVault{},
		5*time.Second,
	)
	srv := httptest.NewServer(app.NewRouter(cfg, svc))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func uploadResume(t *testing.T, srvURL, sessionID string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume_file", "resume.txt")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "John Doe, software engineer, Go and Postgres.")
	require.NoError(t, err)
	if sessionID != "" {
		require.NoError(t, mw.WriteField("session_id", sessionID))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(srvURL+"/v1/resume", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func pollUntilDone(t *testing.T, url string) map[string]any {
	t.Helper()
	var body map[string]any
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return false
		}
		body = decodeBody(t, resp)
		return true
	}, 5*time.Second, 20*time.Millisecond)
	return body
}

func TestResumeFlow(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})

	resp := uploadResume(t, srv.URL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	sid := body["session_id"].(string)
	require.NotEmpty(t, sid)
	assert.Equal(t, "processing", body["status"])
	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, "Processing...", analysis["personal_info"].(map[string]any)["name"])

	done := pollUntilDone(t, srv.URL+"/v1/resume/"+sid)
	assert.Equal(t, "done", done["status"])
	rec := done["analysis"].(map[string]any)
	assert.Equal(t, "Engineer", rec["summary"])
}

func TestResumeUpload_RejectsUnsupportedExtension(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume_file", "resume.exe")
	require.NoError(t, err)
	_, _ = io.WriteString(fw, "binary")
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/v1/resume", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", body["error"].(map[string]any)["code"])
}

func TestJobFlow_AndAutoMatch(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{text: "We hire Go engineers at Acme."})

	resp := uploadResume(t, srv.URL, "")
	sid := decodeBody(t, resp)["session_id"].(string)
	pollUntilDone(t, srv.URL+"/v1/resume/"+sid)

	resp = postJSON(t, srv.URL+"/v1/job", map[string]string{
		"url":        "https://example.com/jobs/1",
		"session_id": sid,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "processing", decodeBody(t, resp)["status"])

	jobDone := pollUntilDone(t, srv.URL+"/v1/job/"+sid)
	assert.Equal(t, "Backend Engineer", jobDone["analysis"].(map[string]any)["job_title"])

	// Both documents present: the match ran without an explicit request.
	matchDone := pollUntilDone(t, srv.URL+"/v1/match/"+sid)
	overall := matchDone["analysis"].(map[string]any)["overall_match"].(map[string]any)
	assert.Equal(t, float64(70), overall["percentage"])
	assert.Contains(t, matchDone["summary"], "70%")
}

func TestSubmitJob_InvalidURL(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})
	resp := postJSON(t, srv.URL+"/v1/job", map[string]string{"url": "not a url"})
	body := decodeBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", body["error"].(map[string]any)["code"])
}

func TestJobPoll_ScrapeFailureSurfaces(t *testing.T) {
	fetcher := fakeFetcher{err: fmt.Errorf("%w: no content block", domain.ErrScrapeFailed)}
	srv := newServer(t, funcAI(happyAI), fetcher)

	resp := postJSON(t, srv.URL+"/v1/job", map[string]string{"url": "https://example.com/jobs/1"})
	sid := decodeBody(t, resp)["session_id"].(string)

	var body map[string]any
	var status int
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/v1/job/" + sid)
		if err != nil {
			return false
		}
		status = resp.StatusCode
		body = decodeBody(t, resp)
		return status != http.StatusAccepted
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "SCRAPE_FAILED", body["error"].(map[string]any)["code"])
}

func TestRequestMatch_Precondition(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})

	resp := uploadResume(t, srv.URL, "")
	sid := decodeBody(t, resp)["session_id"].(string)
	pollUntilDone(t, srv.URL+"/v1/resume/"+sid)

	resp = postJSON(t, srv.URL+"/v1/match", map[string]string{"session_id": sid})
	body := decodeBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errInfo := body["error"].(map[string]any)
	assert.Equal(t, "PRECONDITION_NOT_MET", errInfo["code"])
	assert.Contains(t, errInfo["message"], "job description")
}

func TestQuestionFlow(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{text: "We hire Go engineers."})

	resp := uploadResume(t, srv.URL, "")
	sid := decodeBody(t, resp)["session_id"].(string)
	pollUntilDone(t, srv.URL+"/v1/resume/"+sid)
	postJSON(t, srv.URL+"/v1/job", map[string]string{"url": "https://example.com/j", "session_id": sid}).Body.Close()
	pollUntilDone(t, srv.URL+"/v1/job/"+sid)

	resp = postJSON(t, srv.URL+"/v1/question", map[string]string{
		"session_id": sid,
		"question":   "Why should we hire you?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "I am a strong fit because I ship Go services.", body["answer"])
}

func TestQuestion_DegradesToApology(t *testing.T) {
	ai := funcAI(func(_, user string) (string, error) {
		if strings.Contains(user, "application question") {
			return "", errors.New("model down")
		}
		return happyAI("", user)
	})
	srv := newServer(t, ai, fakeFetcher{text: "We hire Go engineers."})

	resp := uploadResume(t, srv.URL, "")
	sid := decodeBody(t, resp)["session_id"].(string)
	pollUntilDone(t, srv.URL+"/v1/resume/"+sid)
	postJSON(t, srv.URL+"/v1/job", map[string]string{"url": "https://example.com/j", "session_id": sid}).Body.Close()
	pollUntilDone(t, srv.URL+"/v1/job/"+sid)

	resp = postJSON(t, srv.URL+"/v1/question", map[string]string{"session_id": sid, "question": "Why?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["answer"], "I'm sorry, I couldn't generate an answer due to an error: model down")
}

func TestSuggestedQuestions(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{text: "We hire Go engineers."})

	resp := uploadResume(t, srv.URL, "")
	sid := decodeBody(t, resp)["session_id"].(string)
	pollUntilDone(t, srv.URL+"/v1/resume/"+sid)
	postJSON(t, srv.URL+"/v1/job", map[string]string{"url": "https://example.com/j", "session_id": sid}).Body.Close()
	pollUntilDone(t, srv.URL+"/v1/match/"+sid)

	r, err := http.Get(srv.URL + "/v1/questions/" + sid)
	require.NoError(t, err)
	body := decodeBody(t, r)
	questions := body["questions"].([]any)
	assert.Equal(t, []any{"Why Acme?"}, questions)
}

func TestDeleteSession(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})

	resp := uploadResume(t, srv.URL, "")
	sid := decodeBody(t, resp)["session_id"].(string)
	pollUntilDone(t, srv.URL+"/v1/resume/"+sid)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/session/"+sid, nil)
	require.NoError(t, err)
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	r.Body.Close()

	r, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
	r.Body.Close()
}

func TestPersonalResumeEndpoints(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})

	r, err := http.Get(srv.URL + "/v1/resume/personal")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
	r.Body.Close()

	resp := uploadResume(t, srv.URL, "")
	sid := decodeBody(t, resp)["session_id"].(string)
	pollUntilDone(t, srv.URL+"/v1/resume/"+sid)

	resp = postJSON(t, srv.URL+"/v1/resume/personal", map[string]string{"session_id": sid})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	r, err = http.Get(srv.URL + "/v1/resume/personal")
	require.NoError(t, err)
	body := decodeBody(t, r)
	newSID := body["session_id"].(string)
	assert.NotEqual(t, sid, newSID)
	assert.Equal(t, "Engineer", body["analysis"].(map[string]any)["summary"])
}

func TestStatusAndHealthEndpoints(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})

	r, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body := decodeBody(t, r)
	assert.Equal(t, "job-assistant", body["service"])
	assert.Equal(t, "running", body["status"])

	r, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	r.Body.Close()

	r, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	r.Body.Close()
}

func TestUnknownSessionPollIs404(t *testing.T) {
	srv := newServer(t, funcAI(happyAI), fakeFetcher{})
	r, err := http.Get(srv.URL + "/v1/resume/does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
	r.Body.Close()
}
