// Package extractor downloads destination pages and turns them into article
// text and keywords.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/infrastructure/httpx"
	"EnterpriseRiskNews/internal/ports"
)

// DefaultMinLength is the shortest body, in characters, that counts as content.
const DefaultMinLength = 100

// Config tunes fetching and text reduction.
type Config struct {
	Timeout          time.Duration
	MinLength        int
	MaxBytes         int64
	SummarySentences int
	KeywordCount     int
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.MinLength <= 0 {
		c.MinLength = DefaultMinLength
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.SummarySentences <= 0 {
		c.SummarySentences = 5
	}
	if c.KeywordCount <= 0 {
		c.KeywordCount = 10
	}
}

// Extractor implements ports.ArticleExtractor over HTTP.
type Extractor struct {
	client   *http.Client
	identity *httpx.Identity
	cfg      Config
	logger   *slog.Logger
}

var _ ports.ArticleExtractor = (*Extractor)(nil)

// New wires an HTTP client; a nil client gets one with cfg.Timeout.
func New(client *http.Client, identity *httpx.Identity, cfg Config, log *slog.Logger) *Extractor {
	cfg.defaults()
	if client == nil {
		client = httpx.NewClient(cfg.Timeout)
	}
	return &Extractor{client: client, identity: identity, cfg: cfg, logger: log}
}

type page struct {
	title        string
	text         string
	metaKeywords []string
}

// Extract fetches, parses and reduces a page. Every failure degrades to an
// empty article carrying the failure; nothing escapes as an error or panic.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (article domain.ExtractedArticle) {
	defer func() {
		if r := recover(); r != nil {
			article = failed(domain.FailureParse, fmt.Errorf("panic: %v", r))
		}
	}()

	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		return failed(domain.FailureFetch, err)
	}

	pg, err := parse(body, pageURL)
	if err != nil {
		return failed(domain.FailureParse, err)
	}

	summary, keywords, err := analyze(pg.title, pg.text, e.cfg.SummarySentences, e.cfg.KeywordCount)
	if err != nil {
		e.debug("nlp failed, keeping parsed text", "url", pageURL, "error", err)
		summary, keywords = "", nil
	} else {
		keywords = mergeKeywords(pg.metaKeywords, keywords)
	}

	text := strings.TrimSpace(summary)
	if text == "" {
		text = strings.TrimSpace(pg.text)
	}

	text, ok := applyMinLength(text, e.cfg.MinLength)
	if !ok {
		return domain.ExtractedArticle{
			Title:    pg.title,
			Keywords: keywords,
			Failure: domain.NewStageError(domain.FailureShortContent, "extract",
				fmt.Errorf("body shorter than %d characters", e.cfg.MinLength)),
		}
	}

	return domain.ExtractedArticle{
		Title:    pg.title,
		Text:     text,
		Keywords: keywords,
		OK:       true,
	}
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	e.identity.Apply(req)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.cfg.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}

func parse(body []byte, pageURL string) (page, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return page{}, fmt.Errorf("parse url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return page{}, fmt.Errorf("parse html: %w", err)
	}

	art, readErr := readability.FromReader(bytes.NewReader(body), parsedURL)
	text, err := pageText(doc, art, readErr)
	if err != nil {
		return page{}, err
	}

	title := strings.TrimSpace(art.Title)
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return page{
		title:        title,
		text:         text,
		metaKeywords: metaKeywords(doc),
	}, nil
}

// pageText prefers the readable content and falls back to every <p> of
// the page when readability failed or found nothing.
func pageText(doc *goquery.Document, art readability.Article, readErr error) (string, error) {
	var text string
	if readErr == nil {
		text = paragraphText(art.Content)
		if text == "" {
			text = normalizeText(art.TextContent)
		}
	}
	if text == "" {
		text = selectionText(doc.Find("p"))
	}
	if text != "" {
		return text, nil
	}
	if readErr != nil {
		return "", fmt.Errorf("readability: %w", readErr)
	}
	return "", errors.New("no readable text")
}

// paragraphText keeps one line per <p> of the readable content so sentence
// splitting sees paragraph boundaries.
func paragraphText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return selectionText(doc.Find("p"))
}

func selectionText(paragraphs *goquery.Selection) string {
	var lines []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if line := normalizeText(p.Text()); line != "" {
			lines = append(lines, strings.ReplaceAll(line, "\n", " "))
		}
	})
	return strings.Join(lines, "\n")
}

func metaKeywords(doc *goquery.Document) []string {
	content, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content")
	if !ok {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(content, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// normalizeText collapses whitespace inside lines and drops blank lines,
// keeping one paragraph per line.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// applyMinLength blanks bodies shorter than minLength characters.
func applyMinLength(text string, minLength int) (string, bool) {
	if utf8.RuneCountInString(text) < minLength {
		return "", false
	}
	return text, true
}

func mergeKeywords(lists ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range lists {
		for _, kw := range list {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

func failed(kind domain.FailureKind, err error) domain.ExtractedArticle {
	return domain.ExtractedArticle{Failure: domain.NewStageError(kind, "extract", err)}
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
