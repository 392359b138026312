package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleVideoPage = `<!DOCTYPE html>
<html>
<head>
	<title>Fallback Title - Video Host</title>
	<meta property="og:title" content="Easter Service Highlights" />
	<meta property="og:description" content="Highlights from our Easter celebration service." />
	<meta property="og:image" content="https://example.com/thumb.jpg" />
	<meta property="og:site_name" content="Video Host" />
</head>
<body>
	<video src="https://example.com/video.mp4"></video>
</body>
</html>`

func TestExtractMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(sampleVideoPage))
	}))
	defer server.Close()

	extractor := NewMetadataExtractor()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	metadata, err := extractor.ExtractMetadata(ctx, server.URL)
	if err != nil {
		t.Fatalf("Failed to extract metadata: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Title", metadata.Title, "Easter Service Highlights"},
		{"Description", metadata.Description, "Highlights from our Easter celebration service."},
		{"ImageURL", metadata.ImageURL, "https://example.com/thumb.jpg"},
		{"SiteName", metadata.SiteName, "Video Host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %s = %q, got %q", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestExtractMetadataTitleFallback(t *testing.T) {
	minimalHTML := `<!DOCTYPE html>
<html>
<head>
	<title>Simple Title</title>
</head>
<body>
	<p>No Open Graph tags on this page.</p>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(minimalHTML))
	}))
	defer server.Close()

	extractor := NewMetadataExtractor()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	metadata, err := extractor.ExtractMetadata(ctx, server.URL)
	if err != nil {
		t.Fatalf("Failed to extract metadata: %v", err)
	}

	if metadata.Title != "Simple Title" {
		t.Errorf("Expected title = 'Simple Title', got %q", metadata.Title)
	}

	if metadata.ImageURL != "" {
		t.Errorf("Expected no image URL, got %q", metadata.ImageURL)
	}
}

func TestExtractMetadataHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
	}))
	defer server.Close()

	extractor := NewMetadataExtractor()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := extractor.ExtractMetadata(ctx, server.URL)
	if err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestExtractMetadataInvalidURL(t *testing.T) {
	extractor := NewMetadataExtractor()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := extractor.ExtractMetadata(ctx, "not-a-valid-url")
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestExtractMetadataTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	extractor := NewMetadataExtractor()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := extractor.ExtractMetadata(ctx, server.URL)
	if err == nil {
		t.Error("Expected timeout error")
	}
}
