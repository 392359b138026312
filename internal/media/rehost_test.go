package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRehostReturnsDurableURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rehostRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "http://x/img.jpg", req.SourceURL)
		assert.Equal(t, "facebook", req.Folder)

		json.NewEncoder(w).Encode(rehostResponse{URL: "https://cdn.example.com/facebook/img.jpg"})
	}))
	defer server.Close()

	rehoster := NewHTTPRehoster(server.URL)
	url, ok := rehoster.Rehost(context.Background(), "http://x/img.jpg", "facebook")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/facebook/img.jpg", url)
}

func TestRehostKeepsOriginalOnServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	rehoster := NewHTTPRehoster(server.URL)
	url, ok := rehoster.Rehost(context.Background(), "http://x/img.jpg", "facebook")
	assert.False(t, ok)
	assert.Equal(t, "http://x/img.jpg", url)
}

func TestRehostKeepsOriginalOnEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rehoster := NewHTTPRehoster(server.URL)
	url, ok := rehoster.Rehost(context.Background(), "http://x/img.jpg", "facebook")
	assert.False(t, ok)
	assert.Equal(t, "http://x/img.jpg", url)
}

func TestNoopRehoster(t *testing.T) {
	url, ok := NoopRehoster{}.Rehost(context.Background(), "http://x/img.jpg", "facebook")
	assert.False(t, ok)
	assert.Equal(t, "http://x/img.jpg", url)
}
