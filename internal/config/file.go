package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL  string         `yaml:"database_url"`
	RedisURL     string         `yaml:"redis_url"`
	ServerPort   string         `yaml:"server_port"`
	SiteURL      string         `yaml:"site_url"`
	ListingsPath string         `yaml:"listings_path"`
	UserAgent    string         `yaml:"user_agent"`
	Timeout      string         `yaml:"timeout"`
	RPS          *float64       `yaml:"rps"`
	Timezone     string         `yaml:"timezone"`
	EngineAddr   string         `yaml:"engine_addr"`
	EntryTTL     string         `yaml:"entry_ttl"`
	PageCacheTTL string         `yaml:"page_cache_ttl"`
	LogLevel     string         `yaml:"log_level"`
	Channels     map[string]int `yaml:"channels"`
}

// LoadFromFile loads config from a YAML file. Omitted keys keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	c := defaults()
	c.DatabaseURL = f.DatabaseURL
	c.RedisURL = f.RedisURL
	c.Channels = f.Channels
	for dst, v := range map[*string]string{
		&c.ServerPort:   f.ServerPort,
		&c.SiteURL:      f.SiteURL,
		&c.ListingsPath: f.ListingsPath,
		&c.UserAgent:    f.UserAgent,
		&c.Timezone:     f.Timezone,
		&c.EngineAddr:   f.EngineAddr,
		&c.LogLevel:     f.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	for dst, v := range map[*time.Duration]string{
		&c.Timeout:      f.Timeout,
		&c.EntryTTL:     f.EntryTTL,
		&c.PageCacheTTL: f.PageCacheTTL,
	} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
	if f.RPS != nil {
		c.RPS = *f.RPS
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
