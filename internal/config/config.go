package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	defaultWindow     = "24h"
	configPathEnv     = "RISKNEWS_CONFIG"
	logLevelEnv       = "RISKNEWS_LOG_LEVEL"
	windowEnv         = "RISKNEWS_WINDOW"
	budgetEnv         = "RISKNEWS_BUDGET"
	databaseDSNEnv    = "DATABASE_DSN"
	redisAddrEnv      = "REDIS_ADDR"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Feed          FeedConfig         `yaml:"feed"`
	Decoder       DecoderConfig      `yaml:"decoder"`
	Extractor     ExtractorConfig    `yaml:"extractor"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Inputs        InputsConfig       `yaml:"inputs"`
	Output        OutputConfig       `yaml:"output"`
	Cache         CacheConfig        `yaml:"cache"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FeedConfig describes the news search endpoint.
type FeedConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Window   string        `yaml:"window"`
	Timeout  time.Duration `yaml:"timeout"`
	Language string        `yaml:"language"`
	Country  string        `yaml:"country"`
}

// WindowDuration parses Window, accepting Go durations and "Nd" day counts.
func (f FeedConfig) WindowDuration() (time.Duration, error) {
	return ParseWindow(f.Window)
}

// DecoderConfig tunes the link-decoding service client.
type DecoderConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ExtractorConfig tunes article download and reduction. Empty UserAgents
// uses the built-in browser list.
type ExtractorConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	MinLength        int           `yaml:"minLength"`
	MaxBytes         int64         `yaml:"maxBytes"`
	UserAgents       []string      `yaml:"userAgents"`
	SummarySentences int           `yaml:"summarySentences"`
	KeywordCount     int           `yaml:"keywordCount"`
}

// PipelineConfig holds the per-run knobs. Budget <= 0 means unlimited.
type PipelineConfig struct {
	Budget    int `yaml:"budget"`
	Workers   int `yaml:"workers"`
	TermLimit int `yaml:"termLimit"`
}

// InputsConfig points at the encoded terms and the source block-list.
type InputsConfig struct {
	TermsPath     string `yaml:"termsPath"`
	BlocklistPath string `yaml:"blocklistPath"`
}

// OutputConfig selects where records go. An empty DatabaseDSN disables
// Postgres.
type OutputConfig struct {
	CSVPath     string `yaml:"csvPath"`
	DatabaseDSN string `yaml:"databaseDsn"`
}

// CacheConfig enables the Redis decoded-link cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string        `yaml:"redisAddr"`
	TTL       time.Duration `yaml:"ttl"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	RunOnStart     bool           `yaml:"runOnStart"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIURL     string `yaml:"apiUrl"`
	BotToken   string `yaml:"botToken"`
	ChatID     string `yaml:"chatId"`
	MaxEntries int    `yaml:"maxEntries"`
}

// MetricsConfig sets the Prometheus listen address for schedule mode.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load builds the configuration: defaults, then .env, then the YAML file at
// path (or $RISKNEWS_CONFIG), then environment overrides.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	if err := cfg.bindTimezone(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Feed.WindowDuration(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ParseWindow accepts Go durations ("6h", "90m") and whole days ("7d").
func ParseWindow(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = defaultWindow
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid window %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid window %q", value)
	}
	return d, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(windowEnv); v != "" {
		c.Feed.Window = v
	}

	if v := os.Getenv(budgetEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", budgetEnv, err)
		}
		c.Pipeline.Budget = n
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Output.DatabaseDSN = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Cache.RedisAddr = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	return nil
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("scheduler timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Feed.BaseURL != "" {
		base.Feed.BaseURL = override.Feed.BaseURL
	}
	if override.Feed.Window != "" {
		base.Feed.Window = override.Feed.Window
	}
	if override.Feed.Timeout > 0 {
		base.Feed.Timeout = override.Feed.Timeout
	}
	if override.Feed.Language != "" {
		base.Feed.Language = override.Feed.Language
	}
	if override.Feed.Country != "" {
		base.Feed.Country = override.Feed.Country
	}

	if override.Decoder.BaseURL != "" {
		base.Decoder.BaseURL = override.Decoder.BaseURL
	}
	if override.Decoder.Interval > 0 {
		base.Decoder.Interval = override.Decoder.Interval
	}
	if override.Decoder.Timeout > 0 {
		base.Decoder.Timeout = override.Decoder.Timeout
	}

	if override.Extractor.Timeout > 0 {
		base.Extractor.Timeout = override.Extractor.Timeout
	}
	if override.Extractor.MinLength > 0 {
		base.Extractor.MinLength = override.Extractor.MinLength
	}
	if override.Extractor.MaxBytes > 0 {
		base.Extractor.MaxBytes = override.Extractor.MaxBytes
	}
	if len(override.Extractor.UserAgents) > 0 {
		base.Extractor.UserAgents = override.Extractor.UserAgents
	}
	if override.Extractor.SummarySentences > 0 {
		base.Extractor.SummarySentences = override.Extractor.SummarySentences
	}
	if override.Extractor.KeywordCount > 0 {
		base.Extractor.KeywordCount = override.Extractor.KeywordCount
	}

	if override.Pipeline.Budget != 0 {
		base.Pipeline.Budget = override.Pipeline.Budget
	}
	if override.Pipeline.Workers > 0 {
		base.Pipeline.Workers = override.Pipeline.Workers
	}
	if override.Pipeline.TermLimit > 0 {
		base.Pipeline.TermLimit = override.Pipeline.TermLimit
	}

	if override.Inputs.TermsPath != "" {
		base.Inputs.TermsPath = override.Inputs.TermsPath
	}
	if override.Inputs.BlocklistPath != "" {
		base.Inputs.BlocklistPath = override.Inputs.BlocklistPath
	}

	if override.Output.CSVPath != "" {
		base.Output.CSVPath = override.Output.CSVPath
	}
	if override.Output.DatabaseDSN != "" {
		base.Output.DatabaseDSN = override.Output.DatabaseDSN
	}

	if override.Cache.RedisAddr != "" {
		base.Cache.RedisAddr = override.Cache.RedisAddr
	}
	if override.Cache.TTL > 0 {
		base.Cache.TTL = override.Cache.TTL
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.RunOnStart {
		base.Scheduler.RunOnStart = true
	}

	if override.Notifications.Telegram.APIURL != "" {
		base.Notifications.Telegram.APIURL = override.Notifications.Telegram.APIURL
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.MaxEntries > 0 {
		base.Notifications.Telegram.MaxEntries = override.Notifications.Telegram.MaxEntries
	}

	if override.Metrics.Addr != "" {
		base.Metrics.Addr = override.Metrics.Addr
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Feed: FeedConfig{
			BaseURL: "https://news.google.com",
			Window:  defaultWindow,
			Timeout: 10 * time.Second,
		},
		Decoder: DecoderConfig{
			BaseURL:  "https://news.google.com",
			Interval: 5 * time.Second,
			Timeout:  10 * time.Second,
		},
		Extractor: ExtractorConfig{
			Timeout:          20 * time.Second,
			MinLength:        100,
			MaxBytes:         10 << 20,
			SummarySentences: 5,
			KeywordCount:     10,
		},
		Pipeline: PipelineConfig{Budget: 0, Workers: 1},
		Inputs: InputsConfig{
			TermsPath:     "data/search_terms.csv",
			BlocklistPath: "data/filtered_sources.csv",
		},
		Output:    OutputConfig{CSVPath: "output/risk_news.csv"},
		Cache:     CacheConfig{TTL: 7 * 24 * time.Hour},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: time.UTC},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{MaxEntries: 20},
		},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}
