package googlenews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"EnterpriseRiskNews/internal/infrastructure/httpx"
	"EnterpriseRiskNews/internal/ports"
)

const (
	batchExecutePath = "/_/DotsSplashUi/data/batchexecute"
	// DefaultInterval is the politeness delay between two decodes.
	DefaultInterval = 5 * time.Second
	maxResponseSize = 2 << 20
)

// Decoder resolves the obfuscated article links found in feed items.
type Decoder struct {
	client   *http.Client
	baseURL  string
	host     string
	identity *httpx.Identity
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ ports.LinkDecoder = (*Decoder)(nil)

// NewDecoder builds a decoder that performs at most one decode per interval.
func NewDecoder(client *http.Client, baseURL string, interval time.Duration, identity *httpx.Identity, log *slog.Logger) (*Decoder, error) {
	if client == nil {
		client = httpx.NewClient(10 * time.Second)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid decoder base url %q", baseURL)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Decoder{
		client:   client,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		host:     strings.ToLower(parsed.Host),
		identity: identity,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		logger:   log,
	}, nil
}

// Decode returns the destination URL of an obfuscated link. Problems with the
// link or the upstream service come back as Status=false with a message; the
// error is reserved for context cancellation.
func (d *Decoder) Decode(ctx context.Context, obfuscated string) (ports.DecodeResult, error) {
	id, err := d.articleID(obfuscated)
	if err != nil {
		return failed(err), nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return ports.DecodeResult{}, fmt.Errorf("wait politeness interval: %w", err)
	}

	sig, ts, err := d.decodingParams(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.DecodeResult{}, ctxErr
		}
		return failed(err), nil
	}

	decoded, err := d.batchExecute(ctx, id, sig, ts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.DecodeResult{}, ctxErr
		}
		return failed(err), nil
	}

	d.debug("decoded link", "id", id, "url", decoded)
	return ports.DecodeResult{Status: true, URL: decoded}, nil
}

func (d *Decoder) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func failed(err error) ports.DecodeResult {
	return ports.DecodeResult{Status: false, Message: err.Error()}
}

// articleID extracts the base64 id from .../articles/<id> or .../read/<id>.
func (d *Decoder) articleID(link string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("invalid link: %w", err)
	}
	if strings.ToLower(parsed.Host) != d.host {
		return "", fmt.Errorf("invalid Google News URL format: unexpected host %q", parsed.Host)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 {
		return "", errors.New("invalid Google News URL format")
	}
	kind, id := parts[len(parts)-2], parts[len(parts)-1]
	if (kind != "articles" && kind != "read") || id == "" {
		return "", errors.New("invalid Google News URL format")
	}
	return id, nil
}

// decodingParams reads the signature and timestamp attached to the article
// page, falling back to the RSS article page.
func (d *Decoder) decodingParams(ctx context.Context, id string) (string, string, error) {
	var lastErr error
	for _, path := range []string{"/articles/", "/rss/articles/"} {
		sig, ts, err := d.scrapeParams(ctx, d.baseURL+path+id)
		if err == nil {
			return sig, ts, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", "", fmt.Errorf("fetch decoding params: %w", lastErr)
}

func (d *Decoder) scrapeParams(ctx context.Context, pageURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	d.identity.Apply(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", "", fmt.Errorf("parse %s: %w", pageURL, err)
	}

	node := doc.Find("c-wiz > div[jscontroller]").First()
	sig, okSig := node.Attr("data-n-a-sg")
	ts, okTS := node.Attr("data-n-a-ts")
	if !okSig || !okTS || sig == "" || ts == "" {
		return "", "", errors.New("signature or timestamp missing")
	}
	return sig, ts, nil
}

func (d *Decoder) batchExecute(ctx context.Context, id, sig, ts string) (string, error) {
	inner := fmt.Sprintf(
		`["garturlreq",[["X","X",["X","X"],null,null,1,1,"US:en",null,1,null,null,null,null,null,0,1],"X","X",1,[1,1,1],1,1,null,0,0,null,0],%q,%s,%q]`,
		id, ts, sig,
	)
	envelope, err := json.Marshal([][][]string{{{"Fbv4je", inner}}})
	if err != nil {
		return "", fmt.Errorf("marshal batchexecute payload: %w", err)
	}
	form := url.Values{"f.req": {string(envelope)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+batchExecutePath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	d.identity.Apply(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("batchexecute: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("batchexecute returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read batchexecute: %w", err)
	}
	return parseBatchResponse(string(body))
}

// parseBatchResponse digs the decoded URL out of a batchexecute reply:
// the second blank-line separated chunk is a JSON array whose first entry
// holds, at index 2, a JSON-encoded ["garturlres", "<url>", ...] array.
func parseBatchResponse(body string) (string, error) {
	chunks := strings.SplitN(body, "\n\n", 3)
	if len(chunks) < 2 {
		return "", errors.New("unexpected batchexecute response")
	}

	var envelope []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(chunks[1])), &envelope); err != nil {
		return "", fmt.Errorf("decode batchexecute envelope: %w", err)
	}
	if len(envelope) < 3 {
		return "", errors.New("batchexecute envelope too short")
	}

	var entry []json.RawMessage
	if err := json.Unmarshal(envelope[0], &entry); err != nil || len(entry) < 3 {
		return "", errors.New("batchexecute entry malformed")
	}

	var payload string
	if err := json.Unmarshal(entry[2], &payload); err != nil {
		return "", fmt.Errorf("batchexecute payload: %w", err)
	}

	var fields []any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return "", fmt.Errorf("decode batchexecute payload: %w", err)
	}
	if len(fields) < 2 {
		return "", errors.New("batchexecute payload without url")
	}
	decoded, ok := fields[1].(string)
	if !ok || decoded == "" {
		return "", errors.New("batchexecute payload without url")
	}
	return decoded, nil
}
