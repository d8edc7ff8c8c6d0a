// Package config loads event-discovery settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pfrederiksen/event-discovery/internal/scheduler"
)

type Config struct {
	City     string         `yaml:"city" env:"EVENTS_CITY" env-default:"mumbai"`
	Storage  StorageConfig  `yaml:"storage"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
}

type StorageConfig struct {
	Path string `yaml:"path" env:"EVENTS_STORAGE_PATH" env-default:"events_data.xlsx"`
}

type ScheduleConfig struct {
	At       string `yaml:"at" env:"EVENTS_SCHEDULE_AT" env-default:"10:00"` // HH:MM
	Timezone string `yaml:"timezone" env:"EVENTS_TIMEZONE" env-default:"Local"`
}

type ScraperConfig struct {
	URLTemplate string        `yaml:"url_template" env:"EVENTS_URL_TEMPLATE" env-default:"https://in.bookmyshow.com/explore/events-%s"`
	Timeout     time.Duration `yaml:"timeout" env:"EVENTS_SCRAPER_TIMEOUT" env-default:"30s"`
	UserAgent   string        `yaml:"user_agent" env:"EVENTS_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"EVENTS_LOG_LEVEL" env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"EVENTS_LOG_PRETTY" env-default:"false"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"EVENTS_HTTP_ADDR" env-default:""` // empty disables the server
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"EVENTS_HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads path (if non-empty) and then the environment, which takes precedence
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if strings.TrimSpace(c.City) == "" {
		return fmt.Errorf("city must not be empty")
	}
	switch strings.ToLower(filepath.Ext(c.Storage.Path)) {
	case ".xlsx", ".csv":
	default:
		return fmt.Errorf("storage.path %q: extension must be .xlsx or .csv", c.Storage.Path)
	}
	if _, err := scheduler.ParseClock(c.Schedule.At); err != nil {
		return fmt.Errorf("schedule.at: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if strings.Count(c.Scraper.URLTemplate, "%s") != 1 {
		return fmt.Errorf("scraper.url_template %q must contain exactly one %%s", c.Scraper.URLTemplate)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper.timeout must be positive")
	}
	return nil
}

// Location resolves schedule.timezone; "Local" and "" mean the host zone
func (c *Config) Location() (*time.Location, error) {
	switch c.Schedule.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}
