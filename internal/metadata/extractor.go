// Package metadata extracts Open Graph metadata from external pages. The
// normalizer uses it as a best-effort thumbnail fallback for generic video
// links whose Facebook attachment carries no platform thumbnail.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// LinkMetadata represents extracted metadata from an external page
type LinkMetadata struct {
	Title       string
	Description string
	ImageURL    string
	SiteName    string
}

// MetadataExtractor handles extracting metadata from external pages
type MetadataExtractor struct {
	httpClient *http.Client
}

// NewMetadataExtractor creates a new metadata extractor
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// ExtractMetadata fetches a URL and extracts its Open Graph metadata
func (me *MetadataExtractor) ExtractMetadata(ctx context.Context, pageURL string) (*LinkMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "BethelSocial/1.0 (+https://bethel.social)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := me.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	metadata := &LinkMetadata{}
	me.extractOGData(doc, metadata)
	me.extractTitle(doc, metadata)

	return metadata, nil
}

func (me *MetadataExtractor) extractOGData(doc *html.Node, metadata *LinkMetadata) {
	var findMeta func(*html.Node)
	findMeta = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string
			for _, attr := range n.Attr {
				if attr.Key == "property" && strings.HasPrefix(attr.Val, "og:") {
					property = attr.Val
				} else if attr.Key == "content" {
					content = attr.Val
				}
			}
			if property != "" && content != "" {
				switch property {
				case "og:title":
					if metadata.Title == "" {
						metadata.Title = content
					}
				case "og:description":
					if metadata.Description == "" {
						metadata.Description = content
					}
				case "og:image":
					if metadata.ImageURL == "" {
						metadata.ImageURL = content
					}
				case "og:site_name":
					if metadata.SiteName == "" {
						metadata.SiteName = content
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findMeta(c)
		}
	}

	findMeta(doc)
}

func (me *MetadataExtractor) extractTitle(doc *html.Node, metadata *LinkMetadata) {
	if metadata.Title != "" {
		return
	}

	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				metadata.Title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
		}
	}

	findTitle(doc)
}
