package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration.
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper with the precedence
// ENV > file > defaults.
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a new ViperLoader. configFile may be empty;
// envPrefix prefixes every environment variable (e.g. "COSMETIA").
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{configFile: configFile, envPrefix: envPrefix}
}

// Load loads configuration with precedence ENV > file > defaults.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (l *ViperLoader) Validate(cfg *Config) error {
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be in (0, 65535], got %d", cfg.HTTP.Port)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if cfg.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if cfg.Cache.Enabled && cfg.Cache.URL == "" {
		return fmt.Errorf("cache.url is required when cache is enabled")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.Search.DefaultPageSize <= 0 {
		return fmt.Errorf("search.default_page_size must be positive, got %d", cfg.Search.DefaultPageSize)
	}
	if cfg.Search.MaxPageSize < cfg.Search.DefaultPageSize {
		return fmt.Errorf("search.max_page_size %d is below search.default_page_size %d",
			cfg.Search.MaxPageSize, cfg.Search.DefaultPageSize)
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be positive when enabled")
	}
	if cfg.Observability.Tracing.Enabled {
		if cfg.Observability.Tracing.Endpoint == "" {
			return fmt.Errorf("observability.tracing.endpoint is required when tracing is enabled")
		}
		if rate := cfg.Observability.Tracing.SampleRate; rate < 0 || rate > 1 {
			return fmt.Errorf("observability.tracing.sample_rate must be in [0, 1], got %v", rate)
		}
	}
	return nil
}

// setDefaults seeds viper with the baseline configuration so that file and
// env values only override the keys they set.
func (l *ViperLoader) setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("service.name", d.Service.Name)
	v.SetDefault("service.environment", d.Service.Environment)

	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", d.HTTP.IdleTimeout)

	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.connect_timeout", d.Database.ConnectTimeout)
	v.SetDefault("database.operation_timeout", d.Database.OperationTimeout)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.url", d.Cache.URL)
	v.SetDefault("cache.max_conns", d.Cache.MaxConns)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.operation_timeout", d.Cache.OperationTimeout)

	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.issuer", d.Auth.Issuer)

	v.SetDefault("search.score_template_file", d.Search.ScoreTemplateFile)
	v.SetDefault("search.default_page_size", d.Search.DefaultPageSize)
	v.SetDefault("search.max_page_size", d.Search.MaxPageSize)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("observability.log_level", d.Observability.LogLevel)
	v.SetDefault("observability.log_format", d.Observability.LogFormat)
	v.SetDefault("observability.tracing.enabled", d.Observability.Tracing.Enabled)
	v.SetDefault("observability.tracing.endpoint", d.Observability.Tracing.Endpoint)
	v.SetDefault("observability.tracing.sample_rate", d.Observability.Tracing.SampleRate)
}

// bindEnvVars explicitly binds environment variables for nested structs.
// Viper's AutomaticEnv does not see nested mapstructure keys, so every key
// is bound by hand.
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	bind := func(key, env string) {
		_ = v.BindEnv(key, l.prefixedEnv(env))
	}

	bind("service.name", "SERVICE_NAME")
	bind("service.environment", "SERVICE_ENVIRONMENT")

	bind("http.port", "HTTP_PORT")
	bind("http.read_timeout", "HTTP_READ_TIMEOUT")
	bind("http.write_timeout", "HTTP_WRITE_TIMEOUT")
	bind("http.idle_timeout", "HTTP_IDLE_TIMEOUT")

	bind("database.url", "DATABASE_URL")
	bind("database.database", "DATABASE_NAME")
	bind("database.connect_timeout", "DATABASE_CONNECT_TIMEOUT")
	bind("database.operation_timeout", "DATABASE_OPERATION_TIMEOUT")

	bind("cache.enabled", "CACHE_ENABLED")
	bind("cache.url", "CACHE_URL")
	bind("cache.max_conns", "CACHE_MAX_CONNS")
	bind("cache.ttl", "CACHE_TTL")
	bind("cache.operation_timeout", "CACHE_OPERATION_TIMEOUT")

	bind("auth.jwt_secret", "AUTH_JWT_SECRET")
	bind("auth.issuer", "AUTH_ISSUER")

	bind("search.score_template_file", "SEARCH_SCORE_TEMPLATE_FILE")
	bind("search.default_page_size", "SEARCH_DEFAULT_PAGE_SIZE")
	bind("search.max_page_size", "SEARCH_MAX_PAGE_SIZE")

	bind("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	bind("rate_limit.requests_per_second", "RATE_LIMIT_RPS")
	bind("rate_limit.burst", "RATE_LIMIT_BURST")

	bind("observability.log_level", "LOG_LEVEL")
	bind("observability.log_format", "LOG_FORMAT")
	bind("observability.tracing.enabled", "TRACING_ENABLED")
	bind("observability.tracing.endpoint", "TRACING_ENDPOINT")
	bind("observability.tracing.sample_rate", "TRACING_SAMPLE_RATE")
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return strings.ToUpper(l.envPrefix) + "_" + name
}
