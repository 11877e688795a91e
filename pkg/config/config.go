package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/adscope/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration. The same document is read
// from the YAML file on disk and round-trips through the config API as
// JSON, so every field carries both sets of tags.
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:5000,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"description=External base URL used in the RSS self link"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:adscope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Poll PollConfig `yaml:"poll" json:"poll" jsonschema:"description=Poll cycle configuration"`

	Browser BrowserConfig `yaml:"browser" json:"browser" jsonschema:"description=Browser-based page fetcher configuration"`

	// Currency is the price prefix that marks a span as a listing price
	Currency string `yaml:"currency" json:"currency" jsonschema:"default=$,description=Currency marker listing prices start with"`

	// LogFile is an optional log destination, empty means stderr only
	LogFile string `yaml:"log_file" json:"log_file" jsonschema:"description=Optional log file path"`

	// Targets maps a monitored search URL to its ordered filter levels
	// (level1, level2, ... each a list of keywords)
	Targets map[string]map[string][]string `yaml:"targets" json:"targets" jsonschema:"description=Monitored URLs with per-URL filter levels"`
}

// PollConfig holds scheduler and retention settings
type PollConfig struct {
	IntervalMinutes int           `yaml:"interval_minutes" json:"interval_minutes" jsonschema:"default=15,minimum=1,description=Minutes between poll cycles"`
	StartDelay      time.Duration `yaml:"start_delay" json:"start_delay" jsonschema:"default=10s,description=Delay before the first cycle after startup"`
	RetentionDays   int           `yaml:"retention_days" json:"retention_days" jsonschema:"default=14,minimum=1,description=Days to keep ads after their last sighting"`
	FeedWindowDays  int           `yaml:"feed_window_days" json:"feed_window_days" jsonschema:"default=7,minimum=1,description=Recency window of the RSS feed in days"`
	FeedLimit       int           `yaml:"feed_limit" json:"feed_limit" jsonschema:"default=100,minimum=1,description=Maximum number of items in the RSS feed"`
	MinTargetDelay  time.Duration `yaml:"min_target_delay" json:"min_target_delay" jsonschema:"default=2s,description=Minimum jittered delay between targets"`
	MaxTargetDelay  time.Duration `yaml:"max_target_delay" json:"max_target_delay" jsonschema:"default=10s,description=Maximum jittered delay between targets"`
}

// BrowserConfig holds settings for the remote-controlled browser session
type BrowserConfig struct {
	RemoteURL    string        `yaml:"remote_url" json:"remote_url" jsonschema:"description=DevTools control URL of a remote browser, empty launches a local headless one"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Hard timeout per page fetch"`
	WaitSelector string        `yaml:"wait_selector" json:"wait_selector" jsonschema:"description=CSS selector of the results container to wait for"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero-valued fields
func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":5000"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:adscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	if c.Poll.IntervalMinutes == 0 {
		c.Poll.IntervalMinutes = 15
	}
	if c.Poll.StartDelay == 0 {
		c.Poll.StartDelay = 10 * time.Second
	}
	if c.Poll.RetentionDays == 0 {
		c.Poll.RetentionDays = 14
	}
	if c.Poll.FeedWindowDays == 0 {
		c.Poll.FeedWindowDays = 7
	}
	if c.Poll.FeedLimit == 0 {
		c.Poll.FeedLimit = 100
	}
	if c.Poll.MinTargetDelay == 0 {
		c.Poll.MinTargetDelay = 2 * time.Second
	}
	if c.Poll.MaxTargetDelay == 0 {
		c.Poll.MaxTargetDelay = 10 * time.Second
	}

	if c.Browser.Timeout == 0 {
		c.Browser.Timeout = 30 * time.Second
	}

	if c.Currency == "" {
		c.Currency = "$"
	}
}

// Validate checks the configuration for correctness. All rules must hold
// or the document is rejected before any mutation.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("server.listen %q is not a valid host:port: %w", c.Server.Listen, err)
	}
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("server.timeout must be at least 1 second")
	}

	if c.Poll.IntervalMinutes <= 0 {
		return fmt.Errorf("poll.interval_minutes must be positive")
	}
	if c.Poll.RetentionDays <= 0 {
		return fmt.Errorf("poll.retention_days must be positive")
	}
	if c.Poll.FeedWindowDays <= 0 {
		return fmt.Errorf("poll.feed_window_days must be positive")
	}
	if c.Poll.FeedLimit <= 0 {
		return fmt.Errorf("poll.feed_limit must be positive")
	}
	if c.Poll.MinTargetDelay < 0 || c.Poll.MaxTargetDelay < c.Poll.MinTargetDelay {
		return fmt.Errorf("poll target delays must satisfy 0 <= min <= max")
	}

	if c.Browser.Timeout < time.Second {
		return fmt.Errorf("browser.timeout must be at least 1 second")
	}

	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}

	for target, levels := range c.Targets {
		u, err := url.Parse(target)
		if err != nil {
			return fmt.Errorf("target %q is not a valid URL: %w", target, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("target %q must have a scheme and a host", target)
		}

		for name, keywords := range levels {
			if !domain.ValidLevelName(name) {
				return fmt.Errorf("target %q: filter level %q does not follow the levelN naming convention", target, name)
			}
			if len(keywords) == 0 {
				return fmt.Errorf("target %q: filter level %q has no keywords", target, name)
			}
			for _, kw := range keywords {
				if kw == "" {
					return fmt.Errorf("target %q: filter level %q contains an empty keyword", target, name)
				}
			}
		}
	}

	return nil
}

// Interval returns the poll interval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Poll.IntervalMinutes) * time.Minute
}

// Retention returns how long ads are kept after their last sighting
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Poll.RetentionDays) * 24 * time.Hour
}

// FeedWindow returns the recency window of the feed
func (c *Config) FeedWindow() time.Duration {
	return time.Duration(c.Poll.FeedWindowDays) * 24 * time.Hour
}

// TargetList converts the raw target rules into ordered domain targets,
// sorted by URL for a stable cycle order
func (c *Config) TargetList() []domain.Target {
	targets := make([]domain.Target, 0, len(c.Targets))
	for u, levels := range c.Targets {
		targets = append(targets, domain.Target{URL: u, Filters: domain.MakeFilterSpec(levels)})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].URL < targets[j].URL })
	return targets
}

// Clone returns a deep copy of the config
func (c *Config) Clone() *Config {
	cp := *c
	if c.Targets != nil {
		cp.Targets = make(map[string]map[string][]string, len(c.Targets))
		for u, levels := range c.Targets {
			lv := make(map[string][]string, len(levels))
			for name, keywords := range levels {
				lv[name] = append([]string(nil), keywords...)
			}
			cp.Targets[u] = lv
		}
	}
	return &cp
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
