package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/metrics"
	"EnterpriseRiskNews/internal/ports"
)

// DefaultWindow is the feed recency window used when a request sets none.
const DefaultWindow = 24 * time.Hour

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Feed       ports.FeedSource
	Resolver   ports.LinkResolver
	Filter     ports.LinkFilter
	Extractor  ports.ArticleExtractor
	Classifier ports.SentimentClassifier
	Identity   ports.IdentityRotator
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
	Workers    int
	Clock      func() time.Time
}

// RunRequest carries the per-run knobs.
type RunRequest struct {
	Terms  []domain.SearchTerm
	Budget int
	Window time.Duration
}

// Report is the outcome of one run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Window    time.Duration
	Records   []domain.OutputRecord
	Stats     Stats
}

// Pipeline implements the term → feed → item enrichment workflow.
type Pipeline struct {
	feed       ports.FeedSource
	resolver   ports.LinkResolver
	filter     ports.LinkFilter
	extractor  ports.ArticleExtractor
	classifier ports.SentimentClassifier
	identity   ports.IdentityRotator
	metrics    *metrics.Recorder
	logger     *slog.Logger
	workers    int
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		feed:       deps.Feed,
		resolver:   deps.Resolver,
		filter:     deps.Filter,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		identity:   deps.Identity,
		metrics:    deps.Metrics,
		logger:     logger,
		workers:    workers,
		now:        now,
	}
}

// Run processes every term in order. Item and term failures are logged and
// counted, never returned; the run stops early only when the budget is
// reached or ctx is done.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) Report {
	started := p.now()
	window := req.Window
	if window <= 0 {
		window = DefaultWindow
	}

	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: started,
		Window:    window,
	}
	log := p.logger.With("run_id", report.RunID)

	if p.identity != nil {
		log.Debug("identity rotated", "user_agent", p.identity.Rotate())
	}

	log.Info("run started", "terms", len(req.Terms), "window", window, "budget", req.Budget, "workers", p.workers)

	st := &runState{
		log:     log,
		at:      started,
		window:  window,
		limit:   newBudget(req.Budget),
		results: NewResultBuilder(),
	}

	for _, term := range req.Terms {
		if p.halted(ctx, st) {
			break
		}
		p.processTerm(ctx, st, term)
	}
	p.halted(ctx, st)

	report.Records = st.results.Records()
	report.Stats = st.results.Stats()

	elapsed := p.now().Sub(started)
	p.metrics.RunFinished(elapsed, len(report.Records))
	log.Info("run finished",
		"records", len(report.Records),
		"items", report.Stats.ItemsSeen,
		"dropped", report.Stats.Dropped(),
		"feed_failures", report.Stats.FeedFailures,
		"budget_reached", report.Stats.BudgetReached,
		"elapsed", elapsed,
	)

	return report
}

// runState is shared by the workers of one run.
type runState struct {
	log     *slog.Logger
	at      time.Time
	window  time.Duration
	limit   *budget
	results *ResultBuilder
}

func (p *Pipeline) processTerm(ctx context.Context, st *runState, term domain.SearchTerm) {
	st.results.update(func(s *Stats) { s.Terms++ })
	log := st.log.With("term", term.Query)

	if p.feed == nil {
		return
	}

	items, err := p.feed.Search(ctx, term, st.window)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		st.results.update(func(s *Stats) {
			s.FeedFailures++
			s.Drops[domain.FailureTransport]++
		})
		p.metrics.FeedRequest(metrics.OutcomeError)
		log.Warn("feed query failed", "kind", domain.FailureTransport, "error", err)
		return
	}
	p.metrics.FeedRequest(metrics.OutcomeOK)
	log.Debug("feed returned", "items", len(items))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, item := range items {
		if p.halted(ctx, st) {
			break
		}
		g.Go(func() error {
			// The previous item may have filled the budget while this one
			// waited for a worker slot.
			if p.halted(ctx, st) {
				return nil
			}
			p.processItem(ctx, st, log, term, item)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Pipeline) processItem(ctx context.Context, st *runState, log *slog.Logger, term domain.SearchTerm, item domain.FeedItem) {
	st.results.update(func(s *Stats) { s.ItemsSeen++ })
	p.metrics.ItemSeen()
	log = log.With("title", item.Title)

	if stage := p.missingStage(); stage != "" {
		p.drop(ctx, st, log, stage, item.Link, errStageNotConfigured)
		return
	}

	link, err := p.resolver.Resolve(ctx, item.Link)
	if err != nil {
		p.drop(ctx, st, log, "resolve", item.Link, err)
		return
	}

	if p.filter != nil {
		verdict := p.filter.Evaluate(link, item.Source)
		if !verdict.Pass {
			st.results.update(func(s *Stats) { s.Rejections[verdict.Reason]++ })
			err := domain.NewStageError(domain.FailureRejected, "filter", errors.New(string(verdict.Reason)))
			p.drop(ctx, st, log, "filter", link.URL, err)
			return
		}
	}

	article := p.extractor.Extract(ctx, link.URL)
	if !article.OK || article.Text == "" {
		var err error = domain.NewStageError(domain.FailureShortContent, "extract", nil)
		if article.Failure != nil {
			err = article.Failure
		}
		p.drop(ctx, st, log, "extract", link.URL, err)
		return
	}

	result := p.classifier.Classify(article.Text)

	if !st.limit.acquire() {
		st.results.update(func(s *Stats) { s.BudgetReached = true })
		log.Debug("budget reached, record discarded", "link", link.URL)
		return
	}

	st.results.Append(domain.OutputRecord{
		SearchTerm: term.Query,
		Title:      item.Title,
		Summary:    article.Text,
		Keywords:   article.Keywords,
		Published:  item.Published,
		Link:       link.URL,
		Domain:     link.Domain,
		Source:     item.Source,
		SourceURL:  item.SourceURL,
		Sentiment:  result,
		RunAt:      st.at,
	})
	p.metrics.RecordEmitted()
	log.Debug("record emitted", "link", link.URL, "sentiment", result.Label, "polarity", result.Score)
}

var errStageNotConfigured = errors.New("stage not configured")

func (p *Pipeline) missingStage() string {
	switch {
	case p.resolver == nil:
		return "resolve"
	case p.extractor == nil:
		return "extract"
	case p.classifier == nil:
		return "classify"
	}
	return ""
}

// drop logs and counts an item removed at stage. Items abandoned because
// the run was canceled are not counted as failures.
func (p *Pipeline) drop(ctx context.Context, st *runState, log *slog.Logger, stage, link string, err error) {
	if ctx.Err() != nil {
		return
	}
	kind, ok := domain.KindOf(err)
	if !ok {
		kind = domain.FailureKind(fmt.Sprintf("%s-failure", stage))
	}
	st.results.update(func(s *Stats) { s.Drops[kind]++ })
	p.metrics.ItemDropped(stage, string(kind))

	if kind == domain.FailureRejected {
		log.Debug("item dropped", "stage", stage, "kind", kind, "link", link, "reason", err)
		return
	}
	log.Info("item dropped", "stage", stage, "kind", kind, "link", link, "error", err)
}

// halted reports whether the run must stop and records why.
func (p *Pipeline) halted(ctx context.Context, st *runState) bool {
	if st.limit.exhausted() {
		st.results.update(func(s *Stats) { s.BudgetReached = true })
		return true
	}
	if ctx.Err() != nil {
		st.results.update(func(s *Stats) { s.Canceled = true })
		return true
	}
	return false
}
