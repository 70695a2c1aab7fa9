package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Auth for /api routes; empty disables it.
	APIKey string

	// Catalog and templates
	FieldsFile      string
	TemplateDir     string
	DefaultTemplate string
	WatchFiles      bool

	// Placeholder delimiters
	PlaceholderOpen  string
	PlaceholderClose string

	// Date and filename layouts (Go reference time)
	DateInputLayout  string
	DateOutputLayout string
	OutputTimeLayout string

	// Limits
	MaxFormBytes     int64
	MaxTemplateBytes int64
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "5000"),

		APIKey: os.Getenv("DOCFILL_API_KEY"),

		FieldsFile:      envOr("FIELDS_FILE", "fields.yaml"),
		TemplateDir:     envOr("TEMPLATE_DIR", "templates"),
		DefaultTemplate: envOr("DEFAULT_TEMPLATE", "template"),
		WatchFiles:      envBool("WATCH_FILES", true),

		PlaceholderOpen:  envOr("PLACEHOLDER_OPEN", "{{"),
		PlaceholderClose: envOr("PLACEHOLDER_CLOSE", "}}"),

		DateInputLayout:  envOr("DATE_INPUT_LAYOUT", "2006-01-02"),
		DateOutputLayout: envOr("DATE_OUTPUT_LAYOUT", "02 January 2006"),
		OutputTimeLayout: envOr("OUTPUT_TIME_LAYOUT", "02_01_2006T15_04_05"),

		MaxFormBytes:     envInt64("MAX_FORM_BYTES", 1048576),      // 1MB
		MaxTemplateBytes: envInt64("MAX_TEMPLATE_BYTES", 52428800), // 50MB
	}

	if cfg.MaxFormBytes <= 0 {
		cfg.MaxFormBytes = 1048576
	}
	if cfg.MaxTemplateBytes <= 0 {
		cfg.MaxTemplateBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PlaceholderOpen == "" || c.PlaceholderClose == "" {
		return fmt.Errorf("PLACEHOLDER_OPEN and PLACEHOLDER_CLOSE must not be empty")
	}
	if c.PlaceholderOpen == c.PlaceholderClose {
		return fmt.Errorf("PLACEHOLDER_OPEN and PLACEHOLDER_CLOSE must differ")
	}
	if c.DateInputLayout == "" || c.DateOutputLayout == "" || c.OutputTimeLayout == "" {
		return fmt.Errorf("date and time layouts must not be empty")
	}
	if c.FieldsFile == "" {
		return fmt.Errorf("FIELDS_FILE is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
