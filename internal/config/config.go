package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // zone database for minimal images

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimezone           = "Asia/Seoul"
	DefaultClosingSoonMinutes = 30
	DefaultParseCacheSize     = 1024
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address    string `yaml:"address"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Hours struct {
		Timezone           string `yaml:"timezone"`
		ClosingSoonMinutes int    `yaml:"closing_soon_minutes"`
		ParseCacheSize     int    `yaml:"parse_cache_size"`
	} `yaml:"hours"`

	// Authoring endpoints (parse, format, lint) are rate limited per client IP.
	API struct {
		Port           int     `yaml:"port"`
		AuthoringRPS   float64 `yaml:"authoring_rps"`
		AuthoringBurst int     `yaml:"authoring_burst"`
	} `yaml:"api"`

	Catalog struct {
		Path                 string `yaml:"path"`
		WatchIntervalSeconds int    `yaml:"watch_interval_seconds"`
	} `yaml:"catalog"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	location *time.Location
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data and applies defaults.
func Parse(data []byte) (*Config, error) {
	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Database.Path == "" {
		c.Database.Path = "data/placehours.db"
	}
	if c.Hours.Timezone == "" {
		c.Hours.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(c.Hours.Timezone)
	if err != nil {
		return fmt.Errorf("hours.timezone %q: %w", c.Hours.Timezone, err)
	}
	c.location = loc

	if c.Hours.ClosingSoonMinutes <= 0 {
		c.Hours.ClosingSoonMinutes = DefaultClosingSoonMinutes
	}
	if c.Hours.ParseCacheSize <= 0 {
		c.Hours.ParseCacheSize = DefaultParseCacheSize
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.AuthoringRPS <= 0 {
		c.API.AuthoringRPS = 5
	}
	if c.API.AuthoringBurst <= 0 {
		c.API.AuthoringBurst = 10
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "configs/places.yaml"
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	return nil
}

// Location is the zone operating hours are written in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func (c *Config) ClosingSoon() time.Duration {
	return time.Duration(c.Hours.ClosingSoonMinutes) * time.Minute
}

func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

func (c *Config) CatalogWatchInterval() time.Duration {
	if c.Catalog.WatchIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Catalog.WatchIntervalSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) BackupRetention() time.Duration {
	if c.Backup.RetentionDays <= 0 {
		return 14 * 24 * time.Hour
	}
	return time.Duration(c.Backup.RetentionDays) * 24 * time.Hour
}

// LoadCatalog loads the seed catalog referenced by the config.
func (c *Config) LoadCatalog() (*Catalog, error) {
	return LoadCatalog(c.Catalog.Path)
}
