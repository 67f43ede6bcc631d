package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-assistant/internal/domain"
)

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newScraper() *Scraper {
	return New(5*time.Second, "job-assistant-test/1.0", 100)
}

func TestFetchJobText_PrefersDescriptionContainer(t *testing.T) {
	long := strings.Repeat("We are hiring a backend engineer. ", 10)
	srv := serve(t, `<html><body>
		<div class="nav">`+strings.Repeat("menu item ", 30)+`</div>
		<div class="job-description">`+long+`</div>
	</body></html>`)

	text, err := newScraper().FetchJobText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "We are hiring a backend engineer.")
	assert.NotContains(t, text, "menu item")
}

func TestFetchJobText_FallsBackToArticle(t *testing.T) {
	long := strings.Repeat("Responsibilities include building services. ", 5)
	srv := serve(t, `<html><body><article>`+long+`</article></body></html>`)

	text, err := newScraper().FetchJobText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Responsibilities include building services.")
}

func TestFetchJobText_BodyFallbackAndWhitespaceCollapse(t *testing.T) {
	srv := serve(t, "<html><body><p>Senior   Go\n\nengineer "+strings.Repeat("wanted ", 20)+"</p></body></html>")

	text, err := newScraper().FetchJobText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Senior Go engineer")
	assert.NotContains(t, text, "  ")
}

func TestFetchJobText_SkipsScriptAndStyle(t *testing.T) {
	long := strings.Repeat("Actual posting content here. ", 5)
	srv := serve(t, `<html><body><div class="description">
		<script>var hidden = "do-not-include";</script>
		<style>.x{color:red}</style>`+long+`</div></body></html>`)

	text, err := newScraper().FetchJobText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotContains(t, text, "do-not-include")
	assert.Contains(t, text, "Actual posting content here.")
}

func TestFetchJobText_TooShortIsScrapeFailure(t *testing.T) {
	srv := serve(t, `<html><body><div class="job-description">Too short.</div></body></html>`)

	_, err := newScraper().FetchJobText(context.Background(), srv.URL)
	require.ErrorIs(t, err, domain.ErrScrapeFailed)
}

func TestFetchJobText_HTTPErrorIsScrapeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := newScraper().FetchJobText(context.Background(), srv.URL)
	require.ErrorIs(t, err, domain.ErrScrapeFailed)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetchJobText_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body><article>` + strings.Repeat("content ", 30) + `</article></body></html>`))
	}))
	t.Cleanup(srv.Close)

	_, err := newScraper().FetchJobText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "job-assistant-test/1.0", gotUA)
}
