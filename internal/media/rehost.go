// Package media re-hosts remote images on the durable image service.
// Rehosting is best-effort: a failed call keeps the original URL.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

// Rehoster copies a remote image to durable storage and returns the public
// URL. ok=false is an expected outcome, not an error; callers keep the
// source URL in that case.
type Rehoster interface {
	Rehost(ctx context.Context, sourceURL, folder string) (string, bool)
}

// HTTPRehoster talks to the external image service.
type HTTPRehoster struct {
	serviceURL string
	httpClient *http.Client
}

// NewHTTPRehoster creates a rehoster for the given image service URL.
func NewHTTPRehoster(serviceURL string) *HTTPRehoster {
	return &HTTPRehoster{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rehostRequest struct {
	SourceURL string `json:"source_url"`
	Folder    string `json:"folder"`
}

type rehostResponse struct {
	URL string `json:"url"`
}

// Rehost asks the image service to persist sourceURL under the folder key.
func (r *HTTPRehoster) Rehost(ctx context.Context, sourceURL, folder string) (string, bool) {
	if r.serviceURL == "" || sourceURL == "" {
		return sourceURL, false
	}

	payload, err := json.Marshal(rehostRequest{SourceURL: sourceURL, Folder: folder})
	if err != nil {
		return sourceURL, false
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.serviceURL, bytes.NewBuffer(payload))
	if err != nil {
		return sourceURL, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️ Failed to rehost image %s: %v", sourceURL, err)
		return sourceURL, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ Image service returned %s for %s", resp.Status, sourceURL)
		return sourceURL, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sourceURL, false
	}

	var result rehostResponse
	if err := json.Unmarshal(body, &result); err != nil || result.URL == "" {
		return sourceURL, false
	}

	return result.URL, true
}

// NoopRehoster keeps every URL as-is. Used when no image service is
// configured and in tests.
type NoopRehoster struct{}

// Rehost returns the source URL unchanged.
func (NoopRehoster) Rehost(ctx context.Context, sourceURL, folder string) (string, bool) {
	return sourceURL, false
}
