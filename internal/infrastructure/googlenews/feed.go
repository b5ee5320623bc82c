// Package googlenews talks to the Google News RSS search endpoint and its
// link-decoding service.
package googlenews

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/infrastructure/httpx"
	"EnterpriseRiskNews/internal/ports"
)

const (
	// DefaultBaseURL is the Google News host used for search and decoding.
	DefaultBaseURL = "https://news.google.com"
	searchPath     = "/rss/search"
	defaultWindow  = 24 * time.Hour
)

// Locale adds the optional hl/gl/ceid parameters to search queries.
type Locale struct {
	Language string
	Country  string
}

// FeedClient queries the recency-windowed RSS search feed.
type FeedClient struct {
	client   *http.Client
	baseURL  string
	locale   Locale
	identity *httpx.Identity
	logger   *slog.Logger
}

var _ ports.FeedSource = (*FeedClient)(nil)

// NewFeedClient wires an HTTP client; baseURL defaults to DefaultBaseURL.
func NewFeedClient(client *http.Client, baseURL string, locale Locale, identity *httpx.Identity, log *slog.Logger) *FeedClient {
	if client == nil {
		client = httpx.NewClient(10 * time.Second)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FeedClient{
		client:   client,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		locale:   locale,
		identity: identity,
		logger:   log,
	}
}

// Search returns the feed items for one term in feed order. Any transport,
// status or XML error is reported as a transport failure for the term.
func (f *FeedClient) Search(ctx context.Context, term domain.SearchTerm, window time.Duration) ([]domain.FeedItem, error) {
	searchURL, err := buildSearchURL(f.baseURL, term.Query, window, f.locale)
	if err != nil {
		return nil, domain.NewStageError(domain.FailureTransport, "feed", err)
	}

	f.debug("query feed", "term", term.Query, "url", searchURL)

	feed, err := f.fetchFeed(ctx, searchURL)
	if err != nil {
		return nil, domain.NewStageError(domain.FailureTransport, "feed", err)
	}

	items := make([]domain.FeedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item, ok := toFeedItem(entry)
		if !ok {
			f.debug("skip feed entry without title or link", "term", term.Query)
			continue
		}
		items = append(items, item)
	}

	f.debug("feed returned items", "term", term.Query, "count", len(items))
	return items, nil
}

func (f *FeedClient) fetchFeed(ctx context.Context, searchURL string) (*rss.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	f.identity.Apply(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parser := rss.Parser{}
	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func toFeedItem(entry *rss.Item) (domain.FeedItem, bool) {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" || link == "" {
		return domain.FeedItem{}, false
	}

	item := domain.FeedItem{
		Title:      title,
		Link:       link,
		Published:  entry.PubDateParsed,
		RawPubDate: strings.TrimSpace(entry.PubDate),
	}
	if entry.Source != nil {
		item.Source = strings.ToLower(strings.TrimSpace(entry.Source.Title))
		item.SourceURL = strings.TrimSpace(entry.Source.URL)
	}
	return item, true
}

func buildSearchURL(base, query string, window time.Duration, locale Locale) (string, error) {
	parsed, err := url.Parse(base + searchPath)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %s: %w", base, err)
	}

	q := parsed.Query()
	q.Set("q", strings.TrimSpace(query)+" when:"+WindowToken(window))
	if locale.Language != "" && locale.Country != "" {
		q.Set("hl", locale.Language)
		q.Set("gl", locale.Country)
		q.Set("ceid", locale.Country+":"+locale.Language)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// WindowToken renders a recency window as the feed's `when:` token: whole
// days as "Nd", anything else as hours rounded up.
func WindowToken(window time.Duration) string {
	if window <= 0 {
		window = defaultWindow
	}
	if window%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", window/(24*time.Hour))
	}
	hours := (window + time.Hour - 1) / time.Hour
	return fmt.Sprintf("%dh", hours)
}

func (f *FeedClient) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
