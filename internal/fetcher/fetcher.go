// Package fetcher downloads post feeds and turns their entries into posts.
package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"spam_bot/internal/filter"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Item is a single post taken from a feed.
type Item struct {
	Title string
	Body  string
	Link  string
	GUID  string
}

// Post returns the part of the item that filters classify.
func (i Item) Post() filter.Post {
	return filter.Post{Body: i.Body}
}

// Fetcher downloads and parses RSS and Atom feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// Fetch downloads and parses the feed at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "SpamWatchBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// Items converts feed entries into posts. The body is the entry description,
// or its content when the description is empty.
func Items(feed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		body := it.Description
		if body == "" {
			body = it.Content
		}
		items = append(items, Item{
			Title: it.Title,
			Body:  body,
			Link:  it.Link,
			GUID:  ItemGUID(it),
		})
	}
	return items
}

// ItemGUID returns the GUID for a feed entry.
// If the entry has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}
