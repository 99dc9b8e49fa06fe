package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DevelopmentAPIURL is the API root used in development builds.
const DevelopmentAPIURL = "http://localhost:8000/api/v1"

// ProductionAPIPath is the API root used in production builds, relative to
// the origin the app is served from.
const ProductionAPIPath = "/api/v1"

// Config holds the full application configuration.
type Config struct {
	Env    string       `yaml:"env" mapstructure:"env"`
	API    APIConfig    `yaml:"api" mapstructure:"api"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// APIConfig configures the analytics API client.
type APIConfig struct {
	URL          string  `yaml:"url" mapstructure:"url"`
	Origin       string  `yaml:"origin" mapstructure:"origin"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// ServerConfig configures the web server.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	RenderWaitMs int      `yaml:"render_wait_ms" mapstructure:"render_wait_ms"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	StaleAfterSecs int `yaml:"stale_after_secs" mapstructure:"stale_after_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// APIBaseURL resolves the analytics API root. An explicit api.url wins;
// otherwise production uses the relative path against api.origin and
// development uses the local backend.
func (c *Config) APIBaseURL() string {
	if c.API.URL != "" {
		return strings.TrimRight(c.API.URL, "/")
	}
	if c.Env != EnvProduction {
		return DevelopmentAPIURL
	}
	origin, err := url.Parse(c.API.Origin)
	if err != nil || origin.Host == "" {
		return ProductionAPIPath
	}
	return origin.ResolveReference(&url.URL{Path: ProductionAPIPath}).String()
}

// Timeout returns the API client timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// RenderWait returns how long a page waits for its queries.
func (s ServerConfig) RenderWait() time.Duration {
	return time.Duration(s.RenderWaitMs) * time.Millisecond
}

// StaleAfter returns the cache staleness window. Zero disables it.
func (c CacheConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterSecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVENTLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("api.url", "")
	v.SetDefault("api.origin", "http://localhost:8080")
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.rate_limit_rps", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.render_wait_ms", 1500)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("cache.stale_after_secs", 0)
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the app cannot run with.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return eris.Errorf("config: env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.API.URL != "" {
		if _, err := url.Parse(c.API.URL); err != nil {
			return eris.Wrap(err, "config: parse api.url")
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port out of range: %d", c.Server.Port)
	}
	if c.API.TimeoutSecs < 0 || c.Server.RenderWaitMs < 0 || c.Cache.StaleAfterSecs < 0 {
		return eris.New("config: durations must not be negative")
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
