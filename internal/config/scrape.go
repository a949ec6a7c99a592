package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Scrape configuration validation errors.
var (
	ErrNoTargets        = errors.New("at least one scrape target is required")
	ErrNoEnabledTargets = errors.New("at least one scrape target must be enabled")
	ErrTargetMissingURL = errors.New("target url is required")
	ErrTargetBadURL     = errors.New("target url must be absolute http(s)")
	ErrTargetBadKind    = errors.New("target kind must be 'listing' or 'product'")
	ErrInvalidLimit     = errors.New("scrape.concurrency must be at least 1")
	ErrInvalidRate      = errors.New("scrape.requests_per_second must be positive")
	ErrInvalidTimeout   = errors.New("scrape.timeout_sec must be at least 1")
	ErrMissingOutput    = errors.New("scrape.output is required")
)

// Target kinds.
const (
	KindListing = "listing"
	KindProduct = "product"
)

// ScrapeFile is the YAML document describing marketplace targets.
type ScrapeFile struct {
	Scrape ScrapeConfig `yaml:"scrape"`
}

// ScrapeConfig holds scraper settings and targets.
type ScrapeConfig struct {
	Concurrency       int                 `yaml:"concurrency"`
	RequestsPerSecond float64             `yaml:"requests_per_second"`
	TimeoutSec        int                 `yaml:"timeout_sec"`
	UserAgent         string              `yaml:"user_agent"`
	Output            string              `yaml:"output"`
	ProductOutput     string              `yaml:"product_output"`
	SaveHTMLDir       string              `yaml:"save_html_dir"`
	Targets           []Target            `yaml:"targets"`
	Selectors         map[string][]string `yaml:"selectors"`
}

// Target is one marketplace page.
type Target struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Kind    string `yaml:"kind"`
	Enabled *bool  `yaml:"enabled"`
}

// IsEnabled treats a missing flag as enabled.
func (t Target) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// EnabledTargets returns the enabled targets in file order.
func (c *ScrapeConfig) EnabledTargets() []Target {
	var out []Target
	for _, t := range c.Targets {
		if t.IsEnabled() {
			out = append(out, t)
		}
	}
	return out
}

// LoadScrape reads and validates a scrape targets file.
func LoadScrape(path string) (*ScrapeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scrape config: %w", err)
	}
	return ParseScrape(data)
}

// ParseScrape applies defaults and validates a YAML document.
func ParseScrape(data []byte) (*ScrapeConfig, error) {
	var f ScrapeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scrape config: %w", err)
	}
	c := &f.Scrape
	applyScrapeDefaults(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func applyScrapeDefaults(c *ScrapeConfig) {
	if c.Concurrency == 0 {
		c.Concurrency = 2
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 1
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 20
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	}
	if c.Output == "" {
		c.Output = "laptops_output.json"
	}
	if c.ProductOutput == "" {
		c.ProductOutput = "laptop_data.json"
	}
	for i := range c.Targets {
		if c.Targets[i].Kind == "" {
			c.Targets[i].Kind = KindListing
		}
	}
}

// Validate checks the scrape configuration.
func (c *ScrapeConfig) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	if len(c.EnabledTargets()) == 0 {
		return ErrNoEnabledTargets
	}
	for i, t := range c.Targets {
		if t.URL == "" {
			return fmt.Errorf("%w at index %d", ErrTargetMissingURL, i)
		}
		u, err := url.Parse(t.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w at index %d", ErrTargetBadURL, i)
		}
		if t.Kind != KindListing && t.Kind != KindProduct {
			return fmt.Errorf("%w at index %d", ErrTargetBadKind, i)
		}
	}
	if c.Concurrency < 1 {
		return ErrInvalidLimit
	}
	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRate
	}
	if c.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.Output == "" {
		return ErrMissingOutput
	}
	return nil
}
