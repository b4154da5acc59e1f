package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values are loaded from helpdesk.yaml, .env and environment variables,
// in increasing order of precedence, with sensible defaults.
type Config struct {
	// Backend
	APIURL    string `mapstructure:"api_url"`
	AppOrigin string `mapstructure:"app_origin"` // same-origin base when APIURL is empty

	// Console server (helpdesk serve)
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// HTTP client
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// Resilience
	MaxNetworkRetries int           `mapstructure:"max_network_retries"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`

	// UI
	DebounceDelay   time.Duration `mapstructure:"debounce_delay"`
	PageSize        int           `mapstructure:"page_size"`
	ToastTTL        time.Duration `mapstructure:"toast_ttl"`
	DashboardRecent int           `mapstructure:"dashboard_recent"`

	// Session
	SessionStore  string        `mapstructure:"session_store"` // file | redis
	SessionFile   string        `mapstructure:"session_file"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	Profile       string        `mapstructure:"profile"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`

	// Observability
	OTLPEndpoint string `mapstructure:"otel_exporter_otlp_endpoint"`
}

var defaults = map[string]any{
	"api_url":                     "",
	"app_origin":                  "http://localhost:8000",
	"port":                        8080,
	"log_level":                   "info",
	"http_timeout":                "15s",
	"max_network_retries":         2,
	"retry_delay":                 "1s",
	"max_concurrency":             8,
	"debounce_delay":              "300ms",
	"page_size":                   20,
	"toast_ttl":                   "4s",
	"dashboard_recent":            5,
	"session_store":               "file",
	"session_file":                "",
	"session_ttl":                 "0s",
	"profile":                     "default",
	"redis_addr":                  "localhost:6379",
	"redis_password":              "",
	"redis_db":                    0,
	"otel_exporter_otlp_endpoint": "",
}

// Load reads configuration. configFile may be empty, in which case
// ./helpdesk.yaml is used when present.
func Load(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("helpdesk")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		// AutomaticEnv only resolves keys viper already knows about
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// BaseURL returns the URL every API path is resolved against.
func (c *Config) BaseURL() string {
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	return strings.TrimRight(c.AppOrigin, "/") + "/api"
}

func (c *Config) normalize() {
	if c.MaxNetworkRetries < 0 {
		c.MaxNetworkRetries = 0
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 1
	}
	c.SessionStore = strings.ToLower(c.SessionStore)
	if c.SessionStore != "redis" {
		c.SessionStore = "file"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}
