package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/voyagen/pimplecast/internal/models"
)

// ErrInvalidTimezone is returned when TIMEZONE does not name a known location.
var ErrInvalidTimezone = errors.New("invalid timezone")

const (
	defaultServerPort   = "8080"
	defaultSiteURL      = "https://www.pimpletv.ru/"
	defaultListingsPath = "/category/football/"
	defaultUserAgent    = "PimpleCast/1.0"
	defaultTimeout      = 30 * time.Second
	defaultRPS          = 2
	defaultTimezone     = "Europe/Moscow"
	defaultEngineAddr   = "127.0.0.1:6878"
	defaultPageCacheTTL = time.Minute
)

// Config holds application configuration. An empty DatabaseURL selects
// stateless mode; an empty RedisURL disables the page cache.
type Config struct {
	DatabaseURL  string        `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL     string        `yaml:"redis_url" env:"REDIS_URL"`
	ServerPort   string        `yaml:"server_port" env:"SERVER_PORT"`
	SiteURL      string        `yaml:"site_url" env:"SITE_URL"`
	ListingsPath string        `yaml:"listings_path" env:"LISTINGS_PATH"`
	UserAgent    string        `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	Timeout      time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT"`
	RPS          float64       `yaml:"rps" env:"FETCHER_RPS"`
	Timezone     string        `yaml:"timezone" env:"TIMEZONE"`
	EngineAddr   string        `yaml:"engine_addr" env:"ENGINE_ADDR"`
	EntryTTL     time.Duration `yaml:"entry_ttl" env:"ENTRY_TTL"`
	PageCacheTTL time.Duration `yaml:"page_cache_ttl" env:"PAGE_CACHE_TTL"`
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL"`
	// Channels adds or overrides channel name -> id mappings. File config only.
	Channels map[string]int `yaml:"channels"`

	location *time.Location
	envFiles []string
}

func defaults() *Config {
	return &Config{
		ServerPort:   defaultServerPort,
		SiteURL:      defaultSiteURL,
		ListingsPath: defaultListingsPath,
		UserAgent:    defaultUserAgent,
		Timeout:      defaultTimeout,
		RPS:          defaultRPS,
		Timezone:     defaultTimezone,
		EngineAddr:   defaultEngineAddr,
		EntryTTL:     models.DefaultEntryTTL,
		PageCacheTTL: defaultPageCacheTTL,
		LogLevel:     "info",
	}
}

// Load builds config from environment variables. Variables missing from the
// environment are read from .env.local and .env when present.
func Load() (*Config, error) {
	files := loadEnvFiles()
	c := defaults()
	c.envFiles = files
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.ServerPort, "SERVER_PORT")
	setString(&c.SiteURL, "SITE_URL")
	setString(&c.ListingsPath, "LISTINGS_PATH")
	setString(&c.UserAgent, "FETCHER_USER_AGENT")
	setDuration(&c.Timeout, "FETCHER_TIMEOUT")
	setString(&c.Timezone, "TIMEZONE")
	setString(&c.EngineAddr, "ENGINE_ADDR")
	setDuration(&c.EntryTTL, "ENTRY_TTL")
	setDuration(&c.PageCacheTTL, "PAGE_CACHE_TTL")
	setString(&c.LogLevel, "LOG_LEVEL")
	if s := os.Getenv("FETCHER_RPS"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			c.RPS = v
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Location returns the reference timezone listings are published in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// EnvFiles lists the env files Load read variables from.
func (c *Config) EnvFiles() []string {
	return c.envFiles
}

// Cached reports whether a cache database is configured.
func (c *Config) Cached() bool {
	return c.DatabaseURL != ""
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidTimezone, c.Timezone, err)
	}
	c.location = loc
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			*dst = d
		}
	}
}
