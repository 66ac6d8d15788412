package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Translation TranslationConfig `mapstructure:"translation"`
	Categories  CategoriesConfig  `mapstructure:"categories"`
	Suggestion  SuggestionConfig  `mapstructure:"suggestion"`
	Display     DisplayConfig     `mapstructure:"display"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl"`
}

// CatalogConfig holds Open Food Facts API configuration
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	MarketTag         string        `mapstructure:"market_tag"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	SearchPageSize    int           `mapstructure:"search_page_size"`
	CandidatePageSize int           `mapstructure:"candidate_page_size"`
	LatestPageSize    int           `mapstructure:"latest_page_size"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// TranslationConfig holds translation service configuration
type TranslationConfig struct {
	URL        string        `mapstructure:"url"`
	TargetLang string        `mapstructure:"target_lang"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Separator  string        `mapstructure:"separator"`
}

// CategoriesConfig controls display category selection
type CategoriesConfig struct {
	Max         int    `mapstructure:"max"`
	NativeLang  string `mapstructure:"native_lang"`
	ForeignLang string `mapstructure:"foreign_lang"`
}

// SuggestionConfig controls healthier-alternative ranking
type SuggestionConfig struct {
	Limit           int     `mapstructure:"limit"`
	MinCompleteness float64 `mapstructure:"min_completeness"`
	Enrich          bool    `mapstructure:"enrich"`
	ScopeByTerm     bool    `mapstructure:"scope_by_term"`
}

// DisplayConfig controls date formatting
type DisplayConfig struct {
	Locale   string `mapstructure:"locale"`
	Timezone string `mapstructure:"timezone"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "redis"
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Location resolves the display timezone
func (d DisplayConfig) Location() (*time.Location, error) {
	return time.LoadLocation(d.Timezone)
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path when non-empty, otherwise from the
// default search paths. Environment variables override file values.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutriswap/")
	}

	// NUTRISWAP_CATALOG_BASE_URL -> catalog.base_url
	v.SetEnvPrefix("NUTRISWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional when searching default paths
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.session_idle_ttl", "2h")

	// Catalog defaults
	v.SetDefault("catalog.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("catalog.market_tag", "france")
	v.SetDefault("catalog.user_agent", "NutriSwap/1.0")
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.search_page_size", 20)
	v.SetDefault("catalog.candidate_page_size", 300)
	v.SetDefault("catalog.latest_page_size", 300)
	v.SetDefault("catalog.requests_per_minute", 100)

	// Translation defaults
	v.SetDefault("translation.url", "")
	v.SetDefault("translation.target_lang", "FR")
	v.SetDefault("translation.timeout", "10s")
	v.SetDefault("translation.separator", "<SEP>")

	// Category defaults
	v.SetDefault("categories.max", 4)
	v.SetDefault("categories.native_lang", "fr")
	v.SetDefault("categories.foreign_lang", "en")

	// Suggestion defaults
	v.SetDefault("suggestion.limit", 4)
	v.SetDefault("suggestion.min_completeness", 0.35)
	v.SetDefault("suggestion.enrich", true)
	v.SetDefault("suggestion.scope_by_term", true)

	// Display defaults
	v.SetDefault("display.locale", "fr-FR")
	v.SetDefault("display.timezone", "Europe/Paris")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.key_prefix", "nutriswap:")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("logging.level", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Translation.URL == "" {
		return fmt.Errorf("translation URL is required (set NUTRISWAP_TRANSLATION_URL)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisAddr == "" {
		return fmt.Errorf("redis address is required when cache type is 'redis'")
	}

	c := config.Catalog
	if c.SearchPageSize <= 0 || c.CandidatePageSize <= 0 || c.LatestPageSize <= 0 {
		return fmt.Errorf("catalog page sizes must be positive")
	}

	if s := config.Suggestion; s.MinCompleteness < 0 || s.MinCompleteness > 1 {
		return fmt.Errorf("suggestion min_completeness must be within [0,1], got: %v", s.MinCompleteness)
	}

	if config.Suggestion.Limit < 1 {
		return fmt.Errorf("suggestion limit must be at least 1")
	}

	if config.Categories.Max < 1 {
		return fmt.Errorf("categories max must be at least 1")
	}

	if _, err := config.Display.Location(); err != nil {
		return fmt.Errorf("unknown display timezone %q: %w", config.Display.Timezone, err)
	}

	return nil
}

// RedisAddrs splits the comma-separated redis address list
func (c CacheConfig) RedisAddrs() []string {
	var addrs []string
	for _, addr := range strings.Split(c.RedisAddr, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
