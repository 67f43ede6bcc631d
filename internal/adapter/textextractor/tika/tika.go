// Package tika extracts plain text from uploaded documents through an
// Apache Tika server.
package tika

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"job-assistant/internal/domain"
	"job-assistant/pkg/textx"
)

const maxTextBytes = 16 << 20

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// ExtractPath sends the file at path to Tika and returns sanitized text.
// fileName is only used for error context; Tika detects the format from
// the bytes.
func (c *Client) ExtractPath(ctx domain.Context, fileName, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fileName, err)
	}
	defer f.Close()

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", f)
	if err != nil {
		return "", fmt.Errorf("%w: tika: build request: %v", domain.ErrInternal, err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: tika: %v", domain.ErrUpstreamCall, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: tika: status %d for %s", domain.ErrUpstreamCall, resp.StatusCode, fileName)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("%w: tika: read body: %v", domain.ErrUpstreamCall, err)
	}
	text := textx.SanitizeText(string(raw))
	if text == "" {
		return "", fmt.Errorf("%w: tika: no text extracted from %s", domain.ErrUpstreamCall, fileName)
	}
	return text, nil
}
