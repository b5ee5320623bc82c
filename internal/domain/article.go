package domain

import "time"

// SearchTerm is a decoded enterprise-risk query.
type SearchTerm struct {
	ID    string
	Query string
}

// FeedItem is one result returned by the news feed for a search term.
type FeedItem struct {
	Title      string
	Link       string
	Source     string
	SourceURL  string
	Published  *time.Time
	RawPubDate string
}

// LinkStatus distinguishes decoded links from failed decodes.
type LinkStatus int

const (
	LinkDecodeFailed LinkStatus = iota
	LinkResolved
)

// ResolvedLink is the canonical destination behind an obfuscated feed link.
type ResolvedLink struct {
	URL    string
	Domain string
	Status LinkStatus
}

// RejectReason tags why the filter chain refused a link.
type RejectReason string

const (
	RejectInvalidDomainExtension RejectReason = "invalid-domain-extension"
	RejectBlockedSource          RejectReason = "blocked-source"
	RejectLocaleMarker           RejectReason = "locale-marker"
)

// FilterVerdict is the outcome of the filter chain for a single link.
type FilterVerdict struct {
	Pass   bool
	Reason RejectReason
}

// ExtractedArticle is the text and keywords pulled from a destination page.
// OK is false whenever Text is empty.
type ExtractedArticle struct {
	Title    string
	Text     string
	Keywords []string
	OK       bool
	Failure  *StageError
}

// SentimentLabel is the discrete sentiment bucket.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// SentimentResult pairs a label with the compound polarity in [-1, 1].
type SentimentResult struct {
	Label SentimentLabel
	Score float64
}

// OutputRecord is one emitted row. Records are never mutated after being
// appended to a run result.
type OutputRecord struct {
	SearchTerm string
	Title      string
	Summary    string
	Keywords   []string
	Published  *time.Time
	Link       string
	Domain     string
	Source     string
	SourceURL  string
	Sentiment  SentimentResult
	RunAt      time.Time
}
