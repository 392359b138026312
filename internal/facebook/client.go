// Package facebook is a typed client for the subset of the Facebook Graph
// API the sync engine polls: the page feed and the live-video listing.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Graph API root used in production.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// feedFields is the field projection requested for every feed page.
const feedFields = "id,message,full_picture,permalink_url,created_time,attachments{media,media_type,type,url,subattachments}"

// Client represents a Facebook Graph API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Graph API client. An empty baseURL selects the
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

// APIError is returned for non-2xx Graph API responses. The upstream body is
// kept verbatim so the sync debug record can persist it.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API error: %s", e.Status)
}

// FeedPost is one raw item of a page feed response.
type FeedPost struct {
	ID           string       `json:"id"`
	Message      string       `json:"message,omitempty"`
	FullPicture  string       `json:"full_picture,omitempty"`
	PermalinkURL string       `json:"permalink_url,omitempty"`
	CreatedTime  string       `json:"created_time,omitempty"`
	Attachments  *Attachments `json:"attachments,omitempty"`
}

// Attachments wraps the attachment list of a post.
type Attachments struct {
	Data []Attachment `json:"data"`
}

// Attachment is a single post attachment, possibly a gallery.
type Attachment struct {
	Type           string          `json:"type,omitempty"`
	MediaType      string          `json:"media_type,omitempty"`
	URL            string          `json:"url,omitempty"`
	Media          *Media          `json:"media,omitempty"`
	Subattachments *Subattachments `json:"subattachments,omitempty"`
}

// Subattachments wraps the sub-images of a gallery attachment.
type Subattachments struct {
	Data []Attachment `json:"data"`
}

// Media holds the playable/viewable part of an attachment.
type Media struct {
	Image  *Image `json:"image,omitempty"`
	Source string `json:"source,omitempty"` // video source URL when present
}

// Image is an attachment image reference.
type Image struct {
	Src    string `json:"src"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Paging carries the opaque pagination cursors of a feed response.
type Paging struct {
	Cursors *Cursors `json:"cursors,omitempty"`
	Next    string   `json:"next,omitempty"`
}

// Cursors holds the before/after page cursors.
type Cursors struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// FeedPage is one page of a page-feed response.
type FeedPage struct {
	Data   []FeedPost `json:"data"`
	Paging *Paging    `json:"paging,omitempty"`
}

// HasNext reports whether the API advertises a further page.
func (p *FeedPage) HasNext() bool {
	return p.Paging != nil && (p.Paging.Next != "" || (p.Paging.Cursors != nil && p.Paging.Cursors.After != ""))
}

// NextCursor returns the opaque after-cursor, or "" when exhausted.
func (p *FeedPage) NextCursor() string {
	if p.Paging == nil || p.Paging.Cursors == nil {
		return ""
	}
	return p.Paging.Cursors.After
}

// FeedParams controls one page fetch of the page feed.
type FeedParams struct {
	Limit int
	Since int64  // epoch seconds lower bound; 0 omits the parameter
	After string // opaque cursor from the previous page
}

// FeedURL builds the request URL for one feed page. Exposed so the walker
// can record the exact URL in the debug telemetry before fetching.
func (c *Client) FeedURL(pageID, accessToken string, params FeedParams) string {
	q := url.Values{}
	q.Set("fields", feedFields)
	q.Set("access_token", accessToken)
	if params.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", params.Limit))
	}
	if params.Since > 0 {
		q.Set("since", fmt.Sprintf("%d", params.Since))
	}
	if params.After != "" {
		q.Set("after", params.After)
	}
	return fmt.Sprintf("%s/%s/feed?%s", c.baseURL, pageID, q.Encode())
}

// GetFeed retrieves one page of the page feed.
func (c *Client) GetFeed(ctx context.Context, pageID, accessToken string, params FeedParams) (*FeedPage, error) {
	return c.GetFeedPage(ctx, c.FeedURL(pageID, accessToken, params))
}

// LiveVideo is one entry of the live-video listing.
type LiveVideo struct {
	ID           string        `json:"id"`
	Status       string        `json:"status,omitempty"` // LIVE, LIVE_STOPPED, VOD, ...
	Title        string        `json:"title,omitempty"`
	Description  string        `json:"description,omitempty"`
	PermalinkURL string        `json:"permalink_url,omitempty"`
	EmbedHTML    string        `json:"embed_html,omitempty"`
	CreationTime string        `json:"creation_time,omitempty"`
	Video        *LiveVideoRef `json:"video,omitempty"`
}

// LiveVideoRef points at the underlying page video of a broadcast.
type LiveVideoRef struct {
	ID string `json:"id"`
}

// LiveVideosPage is the live-video listing response.
type LiveVideosPage struct {
	Data   []LiveVideo `json:"data"`
	Paging *Paging     `json:"paging,omitempty"`
}

// GetLiveVideos retrieves the page's currently-live broadcasts (the
// LIVE_NOW snapshot the live-status reconciler runs against).
func (c *Client) GetLiveVideos(ctx context.Context, pageID, accessToken string) (*LiveVideosPage, error) {
	q := url.Values{}
	q.Set("fields", "id,status,title,description,permalink_url,embed_html,creation_time,video")
	q.Set("broadcast_status", `["LIVE"]`)
	q.Set("access_token", accessToken)
	reqURL := fmt.Sprintf("%s/%s/live_videos?%s", c.baseURL, pageID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	var page LiveVideosPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// GetFeedPage fetches a fully-built feed URL. Backfill follows the cursor
// chain through here so the recorded URL and the fetched URL always match.
func (c *Client) GetFeedPage(ctx context.Context, feedURL string) (*FeedPage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	var page FeedPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// ParseCreatedTime parses a Graph API timestamp. The API emits RFC 3339
// with a colon-less zone offset ("2025-03-01T00:00:00+0000").
func ParseCreatedTime(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized created_time: %q", value)
}
