// Package youtube is a typed client for the YouTube Data API v3 search and
// videos endpoints used by the channel poller.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Data API root used in production.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client represents a YouTube Data API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Data API client. An empty baseURL selects the
// production endpoint; tests point it at an httptest server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is returned for non-2xx Data API responses.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube API error: %s", e.Status)
}

// Thumbnail is one thumbnail rendition.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Thumbnails holds the renditions the API returns per video.
type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty"`
}

// Best returns the largest available rendition URL.
func (t *Thumbnails) Best() string {
	if t == nil {
		return ""
	}
	if t.High != nil {
		return t.High.URL
	}
	if t.Medium != nil {
		return t.Medium.URL
	}
	if t.Default != nil {
		return t.Default.URL
	}
	return ""
}

// Snippet is the shared metadata block of search and video results.
type Snippet struct {
	PublishedAt          string      `json:"publishedAt,omitempty"`
	ChannelID            string      `json:"channelId,omitempty"`
	Title                string      `json:"title,omitempty"`
	Description          string      `json:"description,omitempty"`
	Thumbnails           *Thumbnails `json:"thumbnails,omitempty"`
	LiveBroadcastContent string      `json:"liveBroadcastContent,omitempty"` // none, upcoming, live
}

// SearchResult is one item of a search response.
type SearchResult struct {
	ID      SearchResultID `json:"id"`
	Snippet Snippet        `json:"snippet"`
}

// SearchResultID wraps the video reference of a search result.
type SearchResultID struct {
	Kind    string `json:"kind,omitempty"`
	VideoID string `json:"videoId,omitempty"`
}

// SearchResponse is the search endpoint response.
type SearchResponse struct {
	Items         []SearchResult `json:"items"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

// SearchParams controls one search call.
type SearchParams struct {
	EventType  string // "", "live", "completed"
	MaxResults int
	Order      string // e.g. "date"
}

// Search queries the channel's videos. Search results lack live-stream
// timing metadata, so callers follow up with GetVideos for the merged set.
func (c *Client) Search(ctx context.Context, channelID, apiKey string, params SearchParams) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("channelId", channelID)
	q.Set("type", "video")
	q.Set("key", apiKey)
	if params.Order != "" {
		q.Set("order", params.Order)
	}
	if params.EventType != "" {
		q.Set("eventType", params.EventType)
	}
	if params.MaxResults > 0 {
		q.Set("maxResults", fmt.Sprintf("%d", params.MaxResults))
	}

	var result SearchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LiveStreamingDetails carries the broadcast timing of a video.
type LiveStreamingDetails struct {
	ActualStartTime    string `json:"actualStartTime,omitempty"`
	ActualEndTime      string `json:"actualEndTime,omitempty"`
	ScheduledStartTime string `json:"scheduledStartTime,omitempty"`
}

// Video is one item of a videos response.
type Video struct {
	ID                   string                `json:"id"`
	Snippet              Snippet               `json:"snippet"`
	LiveStreamingDetails *LiveStreamingDetails `json:"liveStreamingDetails,omitempty"`
}

// VideosResponse is the videos endpoint response.
type VideosResponse struct {
	Items []Video `json:"items"`
}

// GetVideos fetches full details (snippet + live timing) for the given IDs.
func (c *Client) GetVideos(ctx context.Context, apiKey string, videoIDs []string) (*VideosResponse, error) {
	if len(videoIDs) == 0 {
		return &VideosResponse{}, nil
	}

	q := url.Values{}
	q.Set("part", "snippet,liveStreamingDetails")
	q.Set("id", strings.Join(videoIDs, ","))
	q.Set("key", apiKey)

	var result VideosResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/videos?%s", c.baseURL, q.Encode()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WatchURL returns the canonical watch URL for a video.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	return json.Unmarshal(body, out)
}
