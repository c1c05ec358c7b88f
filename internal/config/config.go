package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Dispatch DispatchConfig `yaml:"dispatch" mapstructure:"dispatch"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	Serve    ServeConfig    `yaml:"serve" mapstructure:"serve"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SearchConfig configures query resolution.
type SearchConfig struct {
	Backends      []string `yaml:"backends" mapstructure:"backends"`
	SearxURL      string   `yaml:"searx_url" mapstructure:"searx_url"`
	GoogleKey     string   `yaml:"google_key" mapstructure:"google_key"`
	GoogleCX      string   `yaml:"google_cx" mapstructure:"google_cx"`
	MaxResults    int      `yaml:"max_results" mapstructure:"max_results"`
	Retries       int      `yaml:"retries" mapstructure:"retries"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RejectDomains []string `yaml:"reject_domains" mapstructure:"reject_domains"`
}

// FetchConfig configures the direct and extracted fetch tiers.
type FetchConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinBodyBytes int    `yaml:"min_body_bytes" mapstructure:"min_body_bytes"`
	MinTextChars int    `yaml:"min_text_chars" mapstructure:"min_text_chars"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	ChromeTLS    bool   `yaml:"chrome_tls" mapstructure:"chrome_tls"`
}

// RenderConfig configures the headless rendering tier.
type RenderConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	PoolSize       int    `yaml:"pool_size" mapstructure:"pool_size"`
	SettleMS       int    `yaml:"settle_ms" mapstructure:"settle_ms"`
	NavTimeoutSecs int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	Bin            string `yaml:"bin" mapstructure:"bin"`
	Proxy          string `yaml:"proxy" mapstructure:"proxy"`
}

// DispatchConfig configures the bounded parallel dispatcher.
type DispatchConfig struct {
	MaxWorkers     int `yaml:"max_workers" mapstructure:"max_workers"`
	PollIntervalMS int `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
}

// SessionConfig configures session-level behavior.
type SessionConfig struct {
	Quota              int    `yaml:"quota" mapstructure:"quota"`
	GlobalDeadlineSecs int    `yaml:"global_deadline_secs" mapstructure:"global_deadline_secs"`
	PlanPath           string `yaml:"plan_path" mapstructure:"plan_path"`
}

// ServeConfig configures the HTTP API server.
type ServeConfig struct {
	Addr         string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownSecs int      `yaml:"shutdown_secs" mapstructure:"shutdown_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("search.backends", []string{"searxng", "duckduckgo"})
	v.SetDefault("search.searx_url", "http://localhost:8888")
	v.SetDefault("search.max_results", 15)
	v.SetDefault("search.retries", 2)
	v.SetDefault("search.timeout_secs", 10)
	v.SetDefault("search.reject_domains", []string{
		"lenovo.com", "daraz.com.bd", "reddit", "oracle.com",
		"salesforce.com", "microsoft.com", "adobe.com", "sap.com",
		"workday.com", "servicenow.com", "tableau.com", "zoom.us",
		"webex.com", "gotomeeting.com", "mobiledokan.com",
	})
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.min_body_bytes", 100)
	v.SetDefault("fetch.min_text_chars", 200)
	v.SetDefault("fetch.max_body_bytes", 2<<20)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	v.SetDefault("fetch.chrome_tls", false)
	v.SetDefault("render.enabled", true)
	v.SetDefault("render.pool_size", 2)
	v.SetDefault("render.settle_ms", 300)
	v.SetDefault("render.nav_timeout_secs", 20)
	v.SetDefault("dispatch.max_workers", 5)
	v.SetDefault("dispatch.poll_interval_ms", 250)
	v.SetDefault("session.quota", 2)
	v.SetDefault("session.global_deadline_secs", 90)
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.cors_origins", []string{"*"})
	v.SetDefault("serve.shutdown_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
// All problems are reported together.
func (c *Config) Validate() error {
	var problems []string

	if c.Session.Quota < 1 {
		problems = append(problems, "session.quota must be >= 1")
	}
	if c.Session.GlobalDeadlineSecs < 1 {
		problems = append(problems, "session.global_deadline_secs must be >= 1")
	}
	if c.Dispatch.MaxWorkers < 1 {
		problems = append(problems, "dispatch.max_workers must be >= 1")
	}
	if c.Dispatch.PollIntervalMS < 1 {
		problems = append(problems, "dispatch.poll_interval_ms must be >= 1")
	}
	if len(c.Search.Backends) == 0 {
		problems = append(problems, "search.backends must list at least one backend")
	}
	for _, b := range c.Search.Backends {
		switch b {
		case "searxng":
			if c.Search.SearxURL == "" {
				problems = append(problems, "search.searx_url is required for the searxng backend")
			}
		case "duckduckgo":
		case "googlecse":
			if c.Search.GoogleKey == "" || c.Search.GoogleCX == "" {
				problems = append(problems, "search.google_key and search.google_cx are required for the googlecse backend")
			}
		default:
			problems = append(problems, "search.backends: unknown backend "+b)
		}
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
