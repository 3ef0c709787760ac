package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/aluiziolira/go-scrape-parts/models"
)

// Config holds scraper configuration.
type Config struct {
	// Listing page per category. Categories left empty are not scraped.
	CPUURL string
	GPUURL string
	RAMURL string
	PSUURL string

	Parallelism       int
	Timeout           time.Duration
	RequestsPerSecond float64 // per host, 0 disables pacing
	MaxRetries        int
	RetryBackoff      time.Duration
	RetryBackoffMax   time.Duration
	CacheSize         int // pages kept in memory, 0 disables caching
	UserAgent         string
	RespectRobotsTxt  bool

	OutputFile   string
	OutputFormat string // csv, json, dual, or postgres
	DatabaseURL  string

	PipelineBufferSize int
	BatchSize          int
	DedupeMaxSize      int

	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns conservative defaults. No category URL is set.
func DefaultConfig() *Config {
	return &Config{
		Parallelism:        4,
		Timeout:            15 * time.Second,
		RequestsPerSecond:  1,
		MaxRetries:         2,
		RetryBackoff:       200 * time.Millisecond,
		RetryBackoffMax:    2 * time.Second,
		CacheSize:          32,
		UserAgent:          "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RespectRobotsTxt:   false,
		OutputFile:         "output/products.csv",
		OutputFormat:       "csv",
		PipelineBufferSize: 256,
		BatchSize:          50,
		DedupeMaxSize:      100000,
		Verbose:            false,
	}
}

// URLs returns the configured listing page for each category that has one.
func (c *Config) URLs() map[models.Category]string {
	all := map[models.Category]string{
		models.CategoryCPU: c.CPUURL,
		models.CategoryGPU: c.GPUURL,
		models.CategoryRAM: c.RAMURL,
		models.CategoryPSU: c.PSUURL,
	}
	out := make(map[models.Category]string, len(all))
	for category, raw := range all {
		if raw != "" {
			out[category] = raw
		}
	}
	return out
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	urls := c.URLs()
	if len(urls) == 0 {
		return fmt.Errorf("at least one category URL must be set")
	}
	for _, category := range models.Categories {
		raw, ok := urls[category]
		if !ok {
			continue
		}
		parsedURL, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s URL: %w", category, err)
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("%s URL must include a host", category)
		}
	}

	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	switch c.OutputFormat {
	case "csv", "json", "dual":
		if c.OutputFile == "" {
			return fmt.Errorf("output file cannot be empty")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres output")
		}
	default:
		return fmt.Errorf("output format must be csv, json, dual, or postgres")
	}

	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return nil
}
