package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	Upstream      UpstreamConfig      `yaml:"upstream"`
	HTTP          HTTPConfig          `yaml:"http"`
	NATS          NATSConfig          `yaml:"nats"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// UpstreamConfig points at the arcade backend API.
type UpstreamConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig holds the display-facing HTTP server settings.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

// NATSConfig holds NATS configuration. An empty URL keeps snapshots in-process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// SchedulerConfig tunes the board and live timers. Zero values keep the built-in defaults.
type SchedulerConfig struct {
	RefreshInterval     time.Duration  `yaml:"refresh_interval"`
	RotateInterval      time.Duration  `yaml:"rotate_interval"`
	CardsPerPage        int            `yaml:"cards_per_page"`
	LiveRefreshInterval time.Duration  `yaml:"live_refresh_interval"`
	LivePageInterval    time.Duration  `yaml:"live_page_interval"`
	LiveTickInterval    time.Duration  `yaml:"live_tick_interval"`
	MaxVisibleLive      int            `yaml:"max_visible_live"`
	PreservePageCursor  *bool          `yaml:"preserve_page_cursor"`
	Priority            PriorityConfig `yaml:"priority"`
}

// PriorityConfig overrides base weights per status, e.g. leaderboard: {hot: 10}.
type PriorityConfig struct {
	Leaderboard map[string]int `yaml:"leaderboard"`
	Tournament  map[string]int `yaml:"tournament"`
}

// ObservabilityConfig holds logging, metrics and tracing settings.
// Traces are exported over OTLP/gRPC only when OTLPEndpoint is set.
type ObservabilityConfig struct {
	MetricsAddress  string  `yaml:"metrics_address"`
	Environment     string  `yaml:"environment"`
	LogLevel        string  `yaml:"log_level"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// LoadConfig loads the configuration from a YAML file, with environment overrides.
// When the file does not exist, configuration comes from the environment alone.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return loadConfigFromEnv()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Upstream.URL = os.Getenv("BIGSCREEN_UPSTREAM_URL")
	if cfg.Upstream.URL == "" {
		return nil, fmt.Errorf("BIGSCREEN_UPSTREAM_URL environment variable not set")
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BIGSCREEN_UPSTREAM_URL"); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv("BIGSCREEN_UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BIGSCREEN_UPSTREAM_TIMEOUT value: %w", err)
		}
		cfg.Upstream.Timeout = d
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("BIGSCREEN_PRESERVE_PAGE_CURSOR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid BIGSCREEN_PRESERVE_PAGE_CURSOR value: %w", err)
		}
		cfg.Scheduler.PreservePageCursor = &b
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OTLP_INSECURE value: %w", err)
		}
		cfg.Observability.OTLPInsecure = b
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %w", err)
		}
		cfg.Observability.TraceSampleRate = rate
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Upstream.Timeout <= 0 {
		cfg.Upstream.Timeout = 10 * time.Second
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.RateLimit <= 0 {
		cfg.HTTP.RateLimit = 10
	}
	if cfg.HTTP.RateBurst <= 0 {
		cfg.HTTP.RateBurst = 20
	}
	if cfg.Observability.Environment == "" {
		cfg.Observability.Environment = "development"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.TraceSampleRate <= 0 || cfg.Observability.TraceSampleRate > 1 {
		cfg.Observability.TraceSampleRate = 1
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is required")
	}
	if !strings.HasPrefix(c.Upstream.URL, "http://") && !strings.HasPrefix(c.Upstream.URL, "https://") {
		return fmt.Errorf("upstream.url must be an http(s) URL, got %q", c.Upstream.URL)
	}
	if c.Scheduler.CardsPerPage < 0 || c.Scheduler.MaxVisibleLive < 0 {
		return fmt.Errorf("scheduler page sizes must not be negative")
	}
	return nil
}

// PreserveCursor reports whether the board keeps its page across rebuilds. Defaults to true.
func (s SchedulerConfig) PreserveCursor() bool {
	if s.PreservePageCursor == nil {
		return true
	}
	return *s.PreservePageCursor
}

// IsProduction reports whether logs should be structured JSON.
func (c *Config) IsProduction() bool {
	return c.Observability.Environment == "production"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
