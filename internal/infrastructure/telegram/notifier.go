package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"EnterpriseRiskNews/internal/ports"
)

// DefaultAPIURL is the Telegram Bot API root.
const DefaultAPIURL = "https://api.telegram.org"

// maxMessageRunes is the Bot API limit for one message text.
const maxMessageRunes = 4096

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	apiURL   string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty apiURL uses
// DefaultAPIURL.
func NewNotifier(apiURL, botToken, chatID string) *Notifier {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Notifier{
		apiURL:   strings.TrimRight(apiURL, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether both bot token and chat id are set.
func (n *Notifier) Enabled() bool {
	return n != nil && n.botToken != "" && n.chatID != ""
}

// PublishDigest posts a Markdown message to Telegram. Long digests are
// split on line boundaries.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if !n.Enabled() || n.client == nil {
		return errors.New("telegram notifier misconfigured")
	}
	if strings.TrimSpace(digest) == "" {
		return nil
	}

	for _, part := range split(digest, maxMessageRunes) {
		if err := n.send(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func split(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	size := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		n := len([]rune(line))
		if size > 0 && size+n > limit {
			parts = append(parts, current.String())
			current.Reset()
			size = 0
		}
		for n > limit {
			r := []rune(line)
			parts = append(parts, string(r[:limit]))
			line = string(r[limit:])
			n = len(r) - limit
		}
		current.WriteString(line)
		size += n
	}
	if size > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
