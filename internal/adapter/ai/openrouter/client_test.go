package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-assistant/internal/domain"
)

func TestChatText(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	t.Cleanup(srv.Close)

	c := New("sk-test", "openai/gpt-4o-mini", srv.URL, 5*time.Second)
	out, err := c.ChatText(context.Background(), "system", "user prompt", 2000)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "openai/gpt-4o-mini", gotReq.Model)
	assert.Equal(t, 2000, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
}

func TestChatText_Non200IsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := New("sk-test", "m", srv.URL, 5*time.Second)
	_, err := c.ChatText(context.Background(), "s", "u", 0)
	require.ErrorIs(t, err, domain.ErrUpstreamCall)
	assert.Contains(t, err.Error(), "429")
}

func TestChatText_APIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","code":404}}`))
	}))
	t.Cleanup(srv.Close)

	c := New("sk-test", "m", srv.URL, 5*time.Second)
	_, err := c.ChatText(context.Background(), "s", "u", 0)
	require.ErrorIs(t, err, domain.ErrUpstreamCall)
	assert.Contains(t, err.Error(), "model not found")
}

func TestChatText_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := New("sk-test", "m", srv.URL, 5*time.Second)
	_, err := c.ChatText(context.Background(), "s", "u", 0)
	require.ErrorIs(t, err, domain.ErrUpstreamCall)
}
