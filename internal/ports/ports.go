package ports

import (
	"context"
	"time"

	"EnterpriseRiskNews/internal/domain"
)

// FeedSource queries the news feed for one term within a recency window.
type FeedSource interface {
	Search(ctx context.Context, term domain.SearchTerm, window time.Duration) ([]domain.FeedItem, error)
}

// DecodeResult is the answer of the link-decoding capability.
type DecodeResult struct {
	Status  bool
	URL     string
	Message string
}

// LinkDecoder turns an obfuscated feed link into its destination URL.
// Malformed links are reported through DecodeResult, not through the error.
type LinkDecoder interface {
	Decode(ctx context.Context, obfuscated string) (DecodeResult, error)
}

// LinkCache remembers decoded links across runs.
type LinkCache interface {
	Get(ctx context.Context, obfuscated string) (string, bool, error)
	Set(ctx context.Context, obfuscated, decoded string) error
}

// LinkResolver maps an obfuscated link to a canonical ResolvedLink.
type LinkResolver interface {
	Resolve(ctx context.Context, obfuscated string) (domain.ResolvedLink, error)
}

// LinkFilter applies the source/domain policy to a resolved link.
type LinkFilter interface {
	Evaluate(link domain.ResolvedLink, source string) domain.FilterVerdict
}

// ArticleExtractor downloads and parses a destination page. It never fails;
// problems are reported inside the returned article.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) domain.ExtractedArticle
}

// SentimentScorer yields a compound score in [-1, 1] for a text.
type SentimentScorer interface {
	Score(text string) float64
}

// SentimentClassifier maps text to a labelled sentiment.
type SentimentClassifier interface {
	Classify(text string) domain.SentimentResult
}

// IdentityRotator picks a new client identity (user agent) for a run.
type IdentityRotator interface {
	Rotate() string
}

// RecordRepository persists emitted records.
type RecordRepository interface {
	SaveRecords(ctx context.Context, runID string, records []domain.OutputRecord) error
}

// Notifier streams alert digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
