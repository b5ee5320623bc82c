package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"EnterpriseRiskNews/internal/config"
	"EnterpriseRiskNews/internal/extractor"
	"EnterpriseRiskNews/internal/filter"
	"EnterpriseRiskNews/internal/infrastructure/cache"
	"EnterpriseRiskNews/internal/infrastructure/googlenews"
	"EnterpriseRiskNews/internal/infrastructure/httpx"
	"EnterpriseRiskNews/internal/infrastructure/scheduler"
	"EnterpriseRiskNews/internal/infrastructure/storage"
	"EnterpriseRiskNews/internal/infrastructure/telegram"
	"EnterpriseRiskNews/internal/logging"
	"EnterpriseRiskNews/internal/metrics"
	"EnterpriseRiskNews/internal/ports"
	"EnterpriseRiskNews/internal/resolver"
	"EnterpriseRiskNews/internal/sentiment"
	"EnterpriseRiskNews/internal/terms"
	"EnterpriseRiskNews/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	identity *httpx.Identity
	feed     ports.FeedSource
	resolver ports.LinkResolver
	extract  ports.ArticleExtractor
	classify ports.SentimentClassifier
	metrics  *metrics.Recorder
	outputs  []ports.RecordRepository
	notifier *telegram.Notifier
	db       *sql.DB
	cache    *cache.LinkCache
}

// New builds the adapters described by cfg. Redis is optional and only
// logged when unreachable; an unreachable database is an error.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		identity: httpx.NewIdentity(cfg.Extractor.UserAgents),
		metrics:  metrics.NewRecorder(),
	}

	a.feed = googlenews.NewFeedClient(
		httpx.NewClient(cfg.Feed.Timeout),
		cfg.Feed.BaseURL,
		googlenews.Locale{Language: cfg.Feed.Language, Country: cfg.Feed.Country},
		a.identity,
		baseLogger.With("component", "feed"),
	)

	decoder, err := googlenews.NewDecoder(
		httpx.NewClient(cfg.Decoder.Timeout),
		cfg.Decoder.BaseURL,
		cfg.Decoder.Interval,
		a.identity,
		baseLogger.With("component", "decoder"),
	)
	if err != nil {
		return nil, fmt.Errorf("decoder: %w", err)
	}

	var linkCache ports.LinkCache
	if cfg.Cache.RedisAddr != "" {
		c, err := cache.Dial(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err != nil {
			baseLogger.Warn("link cache disabled", "addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			a.cache = c
			linkCache = c
		}
	}
	a.resolver = resolver.New(decoder, linkCache, baseLogger.With("component", "resolver"))

	a.extract = extractor.New(nil, a.identity, extractor.Config{
		Timeout:          cfg.Extractor.Timeout,
		MinLength:        cfg.Extractor.MinLength,
		MaxBytes:         cfg.Extractor.MaxBytes,
		SummarySentences: cfg.Extractor.SummarySentences,
		KeywordCount:     cfg.Extractor.KeywordCount,
	}, baseLogger.With("component", "extractor"))

	a.classify = sentiment.NewClassifier(sentiment.NewVaderScorer())

	if cfg.Output.CSVPath != "" {
		a.outputs = append(a.outputs, storage.NewCSVWriter(cfg.Output.CSVPath))
	}
	if cfg.Output.DatabaseDSN != "" {
		db, err := storage.OpenPostgres(ctx, cfg.Output.DatabaseDSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.outputs = append(a.outputs, repo)
	}

	tg := cfg.Notifications.Telegram
	if n := telegram.NewNotifier(tg.APIURL, tg.BotToken, tg.ChatID); n.Enabled() {
		a.notifier = n
	}

	return a, nil
}

// Run performs a single pipeline execution and writes its outputs.
func (a *Application) Run(ctx context.Context) (usecase.Report, error) {
	list, err := terms.LoadCSV(a.cfg.Inputs.TermsPath, a.cfg.Pipeline.TermLimit, a.logger.With("component", "terms"))
	if err != nil {
		return usecase.Report{}, fmt.Errorf("load terms: %w", err)
	}

	blocked, err := filter.LoadBlocklist(a.cfg.Inputs.BlocklistPath, a.logger.With("component", "filter"))
	if err != nil {
		return usecase.Report{}, fmt.Errorf("load blocklist: %w", err)
	}

	window, err := a.cfg.Feed.WindowDuration()
	if err != nil {
		return usecase.Report{}, err
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Feed:       a.feed,
		Resolver:   a.resolver,
		Filter:     filter.NewChain(blocked),
		Extractor:  a.extract,
		Classifier: a.classify,
		Identity:   a.identity,
		Metrics:    a.metrics,
		Logger:     a.logger.With("component", "pipeline"),
		Workers:    a.cfg.Pipeline.Workers,
	})

	report := pipeline.Run(ctx, usecase.RunRequest{
		Terms:  list,
		Budget: a.cfg.Pipeline.Budget,
		Window: window,
	})

	// Partial results of a canceled run are still written.
	outCtx := context.WithoutCancel(ctx)
	if err := a.save(outCtx, report); err != nil {
		return report, err
	}
	a.notify(outCtx, report)

	return report, nil
}

func (a *Application) save(ctx context.Context, report usecase.Report) error {
	var errs []error
	for _, out := range a.outputs {
		if err := out.SaveRecords(ctx, report.RunID, report.Records); err != nil {
			errs = append(errs, fmt.Errorf("save records: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *Application) notify(ctx context.Context, report usecase.Report) {
	if a.notifier == nil {
		return
	}
	digest := telegram.BuildDigest(report.Records, a.cfg.Notifications.Telegram.MaxEntries)
	if digest == "" {
		return
	}
	if err := a.notifier.PublishDigest(ctx, digest); err != nil {
		a.logger.Warn("digest not delivered", "run_id", report.RunID, "error", err)
	}
}

// Schedule runs the pipeline on the configured cron expression and serves
// /metrics until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), a.cfg.Scheduler.RunOnStart)
	runs := usecase.NewScheduler(driver, func(ctx context.Context, trigger time.Time) error {
		a.logger.Info("scheduled run triggered", "trigger", trigger)
		_, err := a.Run(ctx)
		return err
	}, a.logger.With("component", "scheduler"))

	srv := a.metricsServer()
	serveErr := make(chan error, 1)
	if srv != nil {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
		a.logger.Info("metrics listening", "addr", srv.Addr)
	}

	if err := runs.Start(ctx); err != nil {
		a.shutdownServer(srv)
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Location().String())

	var result error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		result = fmt.Errorf("metrics server: %w", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := runs.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	a.shutdownServer(srv)
	a.logger.Info("scheduler stopped")
	return result
}

func (a *Application) metricsServer() *http.Server {
	if a.cfg.Metrics.Addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	return &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *Application) shutdownServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Warn("metrics server shutdown", "error", err)
	}
}

// Close releases the database and cache connections.
func (a *Application) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("close link cache", "error", err)
		}
	}
}
