package config

import (
	"fmt"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Profile  string `mapstructure:"profile"` // key for persisted filters
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SourceConfig controls the Reddit listing client.
type SourceConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   string `mapstructure:"timeout"` // duration string, e.g., "10s"
	PageSize  int    `mapstructure:"page_size"`
}

// FeedConfig holds the initial filters and the feed engine behaviour.
type FeedConfig struct {
	Mode     string `mapstructure:"mode"`     // client or server
	Debounce string `mapstructure:"debounce"` // search input quiet period
	Scope    string `mapstructure:"scope"`
	Sort     string `mapstructure:"sort"`
	Window   string `mapstructure:"window"`
}

// CollectorConfig controls the periodic leaderboard collector.
type CollectorConfig struct {
	Scopes   []string `mapstructure:"scopes"`
	Sort     string   `mapstructure:"sort"`
	Pages    int      `mapstructure:"pages"`    // pages fetched per scope and run
	Interval string   `mapstructure:"interval"` // duration string, e.g., "15m"
	TopN     int      `mapstructure:"top_n"`    // entries kept per leaderboard
}

// DigestConfig controls Markdown digests rendered from leaderboards.
type DigestConfig struct {
	Enabled   bool   `mapstructure:"enabled"` // run the builder inside serve
	OutputDir string `mapstructure:"output_dir"`
	Title     string `mapstructure:"title"`    // supports {.CurrentDate} and {.Scope}
	TopN      int    `mapstructure:"top_n"`    // posts per digest
	MinItems  int    `mapstructure:"min_items"`
	Interval  string `mapstructure:"interval"` // duration string, e.g., "1h"
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// OpenAIConfig holds thread summarizer credentials.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the top-level configuration structure.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Source    SourceConfig    `mapstructure:"source"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Collector CollectorConfig `mapstructure:"collector"`
	Digest    DigestConfig    `mapstructure:"digest"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = "https://www.reddit.com"
	}
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = "threadfeed/1.0"
	}
	if c.Source.Timeout == "" {
		c.Source.Timeout = "10s"
	}
	if c.Source.PageSize <= 0 {
		c.Source.PageSize = 25
	}
	if c.Feed.Mode == "" {
		c.Feed.Mode = "client"
	}
	if c.Feed.Debounce == "" {
		c.Feed.Debounce = "300ms"
	}
	if c.Feed.Scope == "" {
		c.Feed.Scope = "all"
	}
	if c.Feed.Sort == "" {
		c.Feed.Sort = "hot"
	}
	if c.Feed.Window == "" {
		c.Feed.Window = "day"
	}
	if len(c.Collector.Scopes) == 0 {
		c.Collector.Scopes = []string{"all"}
	}
	if c.Collector.Sort == "" {
		c.Collector.Sort = "hot"
	}
	if c.Collector.Pages <= 0 {
		c.Collector.Pages = 2
	}
	if c.Collector.Interval == "" {
		c.Collector.Interval = "15m"
	}
	if c.Collector.TopN <= 0 {
		c.Collector.TopN = 50
	}
	if c.Digest.OutputDir == "" {
		c.Digest.OutputDir = "./out"
	}
	if c.Digest.Title == "" {
		c.Digest.Title = "r/{.Scope} {.CurrentDate}"
	}
	if c.Digest.TopN <= 0 {
		c.Digest.TopN = 20
	}
	if c.Digest.MinItems <= 0 {
		c.Digest.MinItems = 5
	}
	if c.Digest.Interval == "" {
		c.Digest.Interval = "1h"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9108"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
}

// Duration parses a duration setting, naming the key on failure.
func Duration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
