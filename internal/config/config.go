// Package config provides configuration loading for course-plan.
//
// Configuration comes from an optional YAML file layered over DefaultConfig.
// Command-line flags that were set explicitly take precedence over both.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/course-plan/internal/curriculum"
	"github.com/pfrederiksen/course-plan/internal/scraper"
	"github.com/pfrederiksen/course-plan/internal/table"
)

const (
	DefaultCacheFile  = "courses.html"
	DefaultOutputFile = "courses.csv"
)

// Config represents the complete course-plan configuration
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Output  OutputConfig  `yaml:"output"`
	Scraper ScraperConfig `yaml:"scraper"`
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
}

// CacheConfig configures the local copy of the fetched document
type CacheConfig struct {
	// File is where the downloaded page is stored and reused from
	File string `yaml:"file"`
}

// OutputConfig configures the written table
type OutputConfig struct {
	File string `yaml:"file"`
	// Format is "tsv" or "json"
	Format string `yaml:"format"`
}

// ScraperConfig configures the HTTP download
type ScraperConfig struct {
	UserAgent string `yaml:"user_agent"`
	// Timeout bounds the whole request; zero means no timeout
	Timeout time.Duration `yaml:"timeout"`
}

// CatalogConfig configures course record construction
type CatalogConfig struct {
	// CourseURLBase is prefixed to the lowercased course code in the name hyperlink
	CourseURLBase string `yaml:"course_url_base"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			File: DefaultCacheFile,
		},
		Output: OutputConfig{
			File:   DefaultOutputFile,
			Format: string(table.FormatTSV),
		},
		Scraper: ScraperConfig{
			UserAgent: scraper.UserAgent,
			Timeout:   0,
		},
		Catalog: CatalogConfig{
			CourseURLBase: curriculum.DefaultCourseURLBase,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns DefaultConfig overlaid with the YAML file at path.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Cache.File) == "" {
		return fmt.Errorf("cache.file is required")
	}
	if strings.TrimSpace(c.Output.File) == "" {
		return fmt.Errorf("output.file is required")
	}
	switch table.Format(strings.ToLower(c.Output.Format)) {
	case table.FormatTSV, table.FormatJSON:
	default:
		return fmt.Errorf("invalid output.format: %s (must be 'tsv' or 'json')", c.Output.Format)
	}
	if c.Scraper.Timeout < 0 {
		return fmt.Errorf("scraper.timeout must not be negative")
	}
	if c.Catalog.CourseURLBase == "" {
		return fmt.Errorf("catalog.course_url_base is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}
	return nil
}
