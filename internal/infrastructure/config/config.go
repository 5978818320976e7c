package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the storefront server
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Redis      RedisConfig
	Storefront StorefrontConfig
	Session    SessionConfig
	Menu       MenuConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// RedisConfig holds Redis connection settings. When disabled, session
// stores live in process memory.
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
	// Required fails startup instead of falling back to memory
	Required bool
}

// StorefrontConfig holds the remote storefront API settings
type StorefrontConfig struct {
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	MockFallback      bool
	LocationID        string
	FulfillmentMethod string
}

// SessionConfig holds shopper session settings
type SessionConfig struct {
	CookieName      string
	CookieDomain    string
	CookieSecure    bool
	CookieSameSite  string // strict, lax, none
	CookieMaxAge    time.Duration
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
	IdentityTTL     time.Duration
	TokenTTL        time.Duration
}

// MenuConfig holds menu service settings
type MenuConfig struct {
	CacheTTL time.Duration
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled               bool    // Export traces
	CollectorEndpoint     string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio         float64 // 0.0-1.0
	ServiceName           string
	Insecure              bool // Non-TLS connection (development only)
	MetricsEnabled        bool
	MetricsExportInterval time.Duration
	LogsEnabled           bool
	LogsLevel             string
}

// Load reads configuration from config.toml (optional) and STOREFRONT_* environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
			Required:  v.GetBool("redis.required"),
		},
		Storefront: StorefrontConfig{
			APIKey:            v.GetString("storefront.api_key"),
			BaseURL:           v.GetString("storefront.base_url"),
			TimeoutSeconds:    v.GetInt("storefront.timeout_seconds"),
			MockFallback:      v.GetBool("storefront.mock_fallback"),
			LocationID:        v.GetString("storefront.location_id"),
			FulfillmentMethod: v.GetString("storefront.fulfillment_method"),
		},
		Session: SessionConfig{
			CookieName:      v.GetString("session.cookie_name"),
			CookieDomain:    v.GetString("session.cookie_domain"),
			CookieSecure:    v.GetBool("session.cookie_secure"),
			CookieSameSite:  v.GetString("session.cookie_same_site"),
			CookieMaxAge:    v.GetDuration("session.cookie_max_age"),
			IdleTimeout:     v.GetDuration("session.idle_timeout"),
			CleanupInterval: v.GetDuration("session.cleanup_interval"),
			IdentityTTL:     v.GetDuration("session.identity_ttl"),
			TokenTTL:        v.GetDuration("session.token_ttl"),
		},
		Menu: MenuConfig{
			CacheTTL: v.GetDuration("menu.cache_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:               v.GetBool("telemetry.enabled"),
			CollectorEndpoint:     v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:         v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:           v.GetString("telemetry.service_name"),
			Insecure:              v.GetBool("telemetry.insecure"),
			MetricsEnabled:        v.GetBool("telemetry.metrics_enabled"),
			MetricsExportInterval: v.GetDuration("telemetry.metrics_export_interval"),
			LogsEnabled:           v.GetBool("telemetry.logs_enabled"),
			LogsLevel:             v.GetString("telemetry.logs_level"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills unset values
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "leclerc-storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 120
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// No default origins: cross-origin requests are refused until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Session-ID"}
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "storefront:"
	}
	if cfg.Storefront.TimeoutSeconds == 0 {
		cfg.Storefront.TimeoutSeconds = 30
	}
	if cfg.Storefront.FulfillmentMethod == "" {
		cfg.Storefront.FulfillmentMethod = "takeout"
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "storefront_session"
	}
	if cfg.Session.CookieSameSite == "" {
		cfg.Session.CookieSameSite = "lax"
	}
	if cfg.Session.CookieMaxAge == 0 {
		cfg.Session.CookieMaxAge = 30 * 24 * time.Hour
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = 30 * time.Minute
	}
	if cfg.Session.CleanupInterval == 0 {
		cfg.Session.CleanupInterval = time.Minute
	}
	if cfg.Session.IdentityTTL == 0 {
		cfg.Session.IdentityTTL = 7 * 24 * time.Hour
	}
	if cfg.Session.TokenTTL == 0 {
		cfg.Session.TokenTTL = 24 * time.Hour
	}
	if cfg.Menu.CacheTTL == 0 {
		cfg.Menu.CacheTTL = 5 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsExportInterval == 0 {
		cfg.Telemetry.MetricsExportInterval = 60 * time.Second
	}
	if cfg.Telemetry.LogsLevel == "" {
		cfg.Telemetry.LogsLevel = "info"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Storefront.TimeoutSeconds < 0 {
		return fmt.Errorf("storefront.timeout_seconds cannot be negative")
	}
	switch strings.ToLower(c.Session.CookieSameSite) {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("session.cookie_same_site must be strict, lax or none, got %q", c.Session.CookieSameSite)
	}
	if c.Session.CookieSameSite == "none" && !c.Session.CookieSecure {
		return fmt.Errorf("session.cookie_same_site=none requires session.cookie_secure=true")
	}

	if c.IsProduction() {
		if c.Storefront.APIKey == "" {
			return fmt.Errorf("storefront.api_key is required in production")
		}
		if c.Storefront.BaseURL == "" {
			return fmt.Errorf("storefront.base_url is required in production")
		}
		// Synthetic responses would hide real outages from shoppers.
		if c.Storefront.MockFallback {
			return fmt.Errorf("storefront.mock_fallback must be false in production")
		}
		if !c.Session.CookieSecure {
			return fmt.Errorf("session.cookie_secure must be true in production (HTTPS required for secure cookies)")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
