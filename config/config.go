// Package config provides configuration loading and management for panelprobe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete panelprobe configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Scan      ScanConfig      `yaml:"scan"`
	Pages     PagesConfig     `yaml:"pages"`
}

// BrowserConfig configures how the browser is reached.
type BrowserConfig struct {
	// DebuggerURL is the DevTools websocket URL of a running browser.
	// Empty launches a browser instead of attaching.
	DebuggerURL string `yaml:"debugger_url"`

	// Headless controls the launched browser's mode. Ignored when attaching.
	Headless bool `yaml:"headless"`

	// ConnectTimeout bounds browser attach/launch.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// SummarizeConfig tunes the chunked summarization engine.
type SummarizeConfig struct {
	// ChunkSize is the largest text one summarization call accepts, in
	// characters.
	ChunkSize int `yaml:"chunk_size"`

	// MaxPasses bounds the recursive reduce loop.
	MaxPasses int `yaml:"max_passes"`
}

// ScanConfig tunes the word-extraction phase.
type ScanConfig struct {
	// SnippetLimit is how much page text the scan samples, in characters.
	SnippetLimit int `yaml:"snippet_limit"`
}

// PagesConfig guards which pages may be read or rewritten.
type PagesConfig struct {
	// Allow lists URL glob patterns that may be rewritten. Empty allows all
	// (subject to Deny and the restricted schemes).
	Allow []string `yaml:"allow"`

	// Deny lists URL glob patterns that must never be rewritten.
	Deny []string `yaml:"deny"`

	// RestrictedSchemes are URL schemes that always fail fast.
	RestrictedSchemes []string `yaml:"restricted_schemes"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			DebuggerURL:    "",
			Headless:       false,
			ConnectTimeout: 30 * time.Second,
		},
		Summarize: SummarizeConfig{
			ChunkSize: 4000,
			MaxPasses: 8,
		},
		Scan: ScanConfig{
			SnippetLimit: 3000,
		},
		Pages: PagesConfig{
			RestrictedSchemes: []string{"chrome", "chrome-extension", "devtools", "about", "view-source", "edge"},
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Summarize.ChunkSize <= 0 {
		return fmt.Errorf("summarize.chunk_size must be positive, got %d", c.Summarize.ChunkSize)
	}
	if c.Summarize.MaxPasses <= 0 {
		return fmt.Errorf("summarize.max_passes must be positive, got %d", c.Summarize.MaxPasses)
	}
	if c.Scan.SnippetLimit <= 0 {
		return fmt.Errorf("scan.snippet_limit must be positive, got %d", c.Scan.SnippetLimit)
	}
	return nil
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Browser.DebuggerURL != "" {
		c.Browser.DebuggerURL = other.Browser.DebuggerURL
	}
	if other.Browser.Headless {
		c.Browser.Headless = true
	}
	if other.Browser.ConnectTimeout > 0 {
		c.Browser.ConnectTimeout = other.Browser.ConnectTimeout
	}
	if other.Summarize.ChunkSize > 0 {
		c.Summarize.ChunkSize = other.Summarize.ChunkSize
	}
	if other.Summarize.MaxPasses > 0 {
		c.Summarize.MaxPasses = other.Summarize.MaxPasses
	}
	if other.Scan.SnippetLimit > 0 {
		c.Scan.SnippetLimit = other.Scan.SnippetLimit
	}
	if len(other.Pages.Allow) > 0 {
		c.Pages.Allow = other.Pages.Allow
	}
	if len(other.Pages.Deny) > 0 {
		c.Pages.Deny = other.Pages.Deny
	}
	if len(other.Pages.RestrictedSchemes) > 0 {
		c.Pages.RestrictedSchemes = other.Pages.RestrictedSchemes
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
