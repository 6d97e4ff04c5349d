package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
type Config struct {
	AI      AIConfig      `toml:"ai"`
	Sources SourcesConfig `toml:"sources"`
	Report  ReportConfig  `toml:"report"`
	Server  ServerConfig  `toml:"server"`
}

// AIConfig holds language-model provider settings.
type AIConfig struct {
	Provider       string  `toml:"provider"`
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	BaseURL        string  `toml:"base_url"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Retries        int     `toml:"retries"`
}

// SourcesConfig holds settings for the two news sources.
type SourcesConfig struct {
	HackerNewsEnabled  bool   `toml:"hackernews_enabled"`
	HackerNewsBaseURL  string `toml:"hackernews_base_url"`
	HackerNewsLimit    int    `toml:"hackernews_limit"`
	HackerNewsDelayMS  int    `toml:"hackernews_delay_ms"`
	BleepingEnabled    bool   `toml:"bleeping_enabled"`
	BleepingFeedURL    string `toml:"bleeping_feed_url"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
}

// ReportConfig holds settings for report generation.
type ReportConfig struct {
	KeywordsFile    string `toml:"keywords_file"`
	LogDir          string `toml:"log_dir"`
	PerSourceLimit  int    `toml:"per_source_limit"`
	Attempts        int    `toml:"attempts"`
	ThrottleSeconds int    `toml:"throttle_seconds"`
	Workers         int    `toml:"workers"`
	FetchArticles   bool   `toml:"fetch_articles"`
}

// ServerConfig holds settings for serve mode.
type ServerConfig struct {
	Port     int    `toml:"port"`
	Schedule string `toml:"schedule"`
}

const defaultConfigContent = `[ai]
provider = "openai"               # "openai" or "anthropic"
api_key = ""                      # Your API key (or set AI_API_KEY / OPENAI_API_KEY)
# model = "gpt-3.5-turbo"         # Defaults per provider: gpt-3.5-turbo or claude-haiku-4-5
max_tokens = 300
temperature = 0.7
timeout_seconds = 60
retries = 2

[sources]
hackernews_enabled = true
hackernews_base_url = "https://hacker-news.firebaseio.com/v0"
hackernews_limit = 100
hackernews_delay_ms = 250
bleeping_enabled = true
bleeping_feed_url = "https://www.bleepingcomputer.com/feed/"
http_timeout_seconds = 30

[report]
keywords_file = "keywords.txt"
log_dir = "logs"
per_source_limit = 5
attempts = 3
throttle_seconds = 2
workers = 1
fetch_articles = false

[server]
port = 8080
schedule = ""                     # cron spec, e.g. "@weekly"; empty disables
`

// Default returns a Config populated with default values only. Sources are
// enabled by default.
func Default() *Config {
	cfg := &Config{
		Sources: SourcesConfig{
			HackerNewsEnabled: true,
			BleepingEnabled:   true,
		},
	}
	applyDefaults(cfg, toml.MetaData{})
	return cfg
}

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Booleans default to true, so seed them before decoding.
	cfg := Config{
		Sources: SourcesConfig{
			HackerNewsEnabled: true,
			BleepingEnabled:   true,
		},
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// writing "port = 0" is an error rather than silently becoming 8080.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg, md)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	positive := []struct {
		section, key string
		value        int
	}{
		{"server", "port", cfg.Server.Port},
		{"ai", "max_tokens", cfg.AI.MaxTokens},
		{"ai", "timeout_seconds", cfg.AI.TimeoutSeconds},
		{"ai", "retries", cfg.AI.Retries},
		{"sources", "hackernews_limit", cfg.Sources.HackerNewsLimit},
		{"sources", "http_timeout_seconds", cfg.Sources.HTTPTimeoutSeconds},
		{"report", "per_source_limit", cfg.Report.PerSourceLimit},
		{"report", "attempts", cfg.Report.Attempts},
		{"report", "workers", cfg.Report.Workers},
	}
	for _, p := range positive {
		if md.IsDefined(p.section, p.key) && p.value < 1 {
			return fmt.Errorf("invalid %s.%s %d: must be >= 1", p.section, p.key, p.value)
		}
	}

	if md.IsDefined("sources", "hackernews_delay_ms") && cfg.Sources.HackerNewsDelayMS < 0 {
		return fmt.Errorf("invalid sources.hackernews_delay_ms %d: must be >= 0", cfg.Sources.HackerNewsDelayMS)
	}
	if md.IsDefined("report", "throttle_seconds") && cfg.Report.ThrottleSeconds < 0 {
		return fmt.Errorf("invalid report.throttle_seconds %d: must be >= 0", cfg.Report.ThrottleSeconds)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields. Fields that
// were explicitly set in the file are left alone, so "temperature = 0" and
// "hackernews_delay_ms = 0" are honored.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModel(cfg.AI.Provider)
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 300
	}
	if cfg.AI.Temperature == 0 && !md.IsDefined("ai", "temperature") {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.AI.Retries == 0 {
		cfg.AI.Retries = 2
	}

	if cfg.Sources.HackerNewsBaseURL == "" {
		cfg.Sources.HackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"
	}
	if cfg.Sources.HackerNewsLimit == 0 {
		cfg.Sources.HackerNewsLimit = 100
	}
	if cfg.Sources.HackerNewsDelayMS == 0 && !md.IsDefined("sources", "hackernews_delay_ms") {
		cfg.Sources.HackerNewsDelayMS = 250
	}
	if cfg.Sources.BleepingFeedURL == "" {
		cfg.Sources.BleepingFeedURL = "https://www.bleepingcomputer.com/feed/"
	}
	if cfg.Sources.HTTPTimeoutSeconds == 0 {
		cfg.Sources.HTTPTimeoutSeconds = 30
	}

	if cfg.Report.KeywordsFile == "" {
		cfg.Report.KeywordsFile = "keywords.txt"
	}
	if cfg.Report.LogDir == "" {
		cfg.Report.LogDir = "logs"
	}
	if cfg.Report.PerSourceLimit == 0 {
		cfg.Report.PerSourceLimit = 5
	}
	if cfg.Report.Attempts == 0 {
		cfg.Report.Attempts = 3
	}
	if cfg.Report.ThrottleSeconds == 0 && !md.IsDefined("report", "throttle_seconds") {
		cfg.Report.ThrottleSeconds = 2
	}
	if cfg.Report.Workers == 0 {
		cfg.Report.Workers = 1
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

func defaultModel(provider string) string {
	if provider == "anthropic" {
		return "claude-haiku-4-5"
	}
	return "gpt-3.5-turbo"
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. OPENAI_API_KEY (when provider is "openai")
//  3. ANTHROPIC_API_KEY (when provider is "anthropic")
func applyEnvOverrides(cfg *Config) {
	switch cfg.AI.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}

	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	if v := os.Getenv("CYBERDIGEST_LOG_DIR"); v != "" {
		cfg.Report.LogDir = v
	}
	if v := os.Getenv("CYBERDIGEST_KEYWORDS_FILE"); v != "" {
		cfg.Report.KeywordsFile = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
		// valid
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"openai\" or \"anthropic\"", cfg.AI.Provider)
	}

	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("invalid ai.temperature %v: must be between 0 and 2", cfg.AI.Temperature)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.Server.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Server.Schedule); err != nil {
			return fmt.Errorf("invalid server.schedule %q: %w", cfg.Server.Schedule, err)
		}
	}

	if !cfg.Sources.HackerNewsEnabled && !cfg.Sources.BleepingEnabled {
		slog.Warn("all news sources are disabled; every run will find no stories")
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: summaries will use offline fallback text (set AI_API_KEY or OPENAI_API_KEY)")
	}

	return nil
}
