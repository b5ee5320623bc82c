package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnterpriseRiskNews/internal/domain"
)

func record(title string, label domain.SentimentLabel, score float64) domain.OutputRecord {
	return domain.OutputRecord{
		SearchTerm: "data_breach",
		Title:      title,
		Source:     "wire",
		Link:       "https://wire.com/" + strings.ToLower(title),
		Sentiment:  domain.SentimentResult{Label: label, Score: score},
	}
}

func TestBuildDigestListsNegativeOnly(t *testing.T) {
	t.Parallel()

	digest := BuildDigest([]domain.OutputRecord{
		record("Calm", domain.SentimentNeutral, 0),
		record("Bad", domain.SentimentNegative, -0.3),
		record("Good", domain.SentimentPositive, 0.4),
		record("Worse", domain.SentimentNegative, -0.9),
	}, 0)

	assert.Contains(t, digest, "*Negative risk news: 2*")
	assert.NotContains(t, digest, "Calm")
	assert.NotContains(t, digest, "Good")
	assert.Less(t, strings.Index(digest, "Worse"), strings.Index(digest, "Bad"))
	assert.Contains(t, digest, `data\_breach`)
	assert.Contains(t, digest, "-0.9")
}

func TestBuildDigestLimit(t *testing.T) {
	t.Parallel()

	digest := BuildDigest([]domain.OutputRecord{
		record("One", domain.SentimentNegative, -0.1),
		record("Two", domain.SentimentNegative, -0.2),
		record("Three", domain.SentimentNegative, -0.3),
	}, 2)

	assert.Contains(t, digest, "Three")
	assert.Contains(t, digest, "Two")
	assert.NotContains(t, digest, "- One")
	assert.Contains(t, digest, "...and 1 more")
}

func TestBuildDigestEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildDigest([]domain.OutputRecord{record("Fine", domain.SentimentPositive, 0.5)}, 0))
}

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("chat_id"))
		assert.Equal(t, "Markdown", r.PostForm.Get("parse_mode"))
		mu.Lock()
		texts = append(texts, r.PostForm.Get("text"))
		mu.Unlock()
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "token", "42")
	require.NoError(t, n.PublishDigest(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, texts)
}

func TestPublishDigestReportsStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL, "token", "42").PublishDigest(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "", "42")
	assert.False(t, n.Enabled())
	assert.Error(t, n.PublishDigest(context.Background(), "hello"))
}

func TestSplitOnLines(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("abcd\n", 5)
	parts := split(text, 12)
	assert.Equal(t, []string{"abcd\nabcd\n", "abcd\nabcd\n", "abcd\n"}, parts)
	assert.Equal(t, text, strings.Join(parts, ""))

	long := strings.Repeat("x", 25)
	parts = split(long, 10)
	assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, parts)
}
