package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	DocmarkAPIKey string `yaml:"api_key"`

	// Highlighting
	Palette           []string `yaml:"palette"`
	MaxHighlightNodes int      `yaml:"max_highlight_nodes"`

	// Navigation caret
	BlinkInterval time.Duration `yaml:"blink_interval"`

	// Layout metrics, in CSS pixels
	ViewportWidth float64 `yaml:"viewport_width"`
	CharWidth     float64 `yaml:"char_width"`
	LineHeight    float64 `yaml:"line_height"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Page sessions
	PageTTL  time.Duration `yaml:"page_ttl"`
	MaxPages int           `yaml:"max_pages"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// DefaultPalette is the highlight colour rotation.
var DefaultPalette = []string{"yellow", "lightgreen", "lightblue", "pink", "orange"}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		DocmarkAPIKey: os.Getenv("DOCMARK_API_KEY"),

		Palette:           envList("HIGHLIGHT_PALETTE", DefaultPalette),
		MaxHighlightNodes: envInt("MAX_HIGHLIGHT_NODES", 500),

		BlinkInterval: envDuration("BLINK_INTERVAL", 530*time.Millisecond),

		ViewportWidth: envFloat("VIEWPORT_WIDTH", 1024),
		CharWidth:     envFloat("CHAR_WIDTH", 8),
		LineHeight:    envFloat("LINE_HEIGHT", 16),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		PageTTL:  envDuration("PAGE_TTL", 1*time.Hour),
		MaxPages: envInt("MAX_PAGES", 256),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	cfg.applyDefaults()
	return cfg
}

// LoadFile loads the environment configuration and overlays the YAML file at
// path on top of it. Keys missing from the file keep their env values.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Palette) == 0 {
		c.Palette = DefaultPalette
	}
	if c.MaxHighlightNodes <= 0 {
		c.MaxHighlightNodes = 500
	}
	if c.BlinkInterval <= 0 {
		c.BlinkInterval = 530 * time.Millisecond
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1024
	}
	if c.CharWidth <= 0 {
		c.CharWidth = 8
	}
	if c.LineHeight <= 0 {
		c.LineHeight = 16
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10485760
	}
	if c.PageTTL <= 0 {
		c.PageTTL = 1 * time.Hour
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 256
	}
}

func (c Config) Validate() error {
	if c.DocmarkAPIKey == "" {
		return fmt.Errorf("DOCMARK_API_KEY is required")
	}
	if c.ViewportWidth < c.CharWidth {
		return fmt.Errorf("VIEWPORT_WIDTH (%v) must be at least CHAR_WIDTH (%v)", c.ViewportWidth, c.CharWidth)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
