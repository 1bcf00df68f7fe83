// Package config handles extractor configuration: the YAML tables file,
// environment overrides, and defaults.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sumoflow/internal/domain"
)

// windowLayout is the YYYY-MM-DDTHH:mm:ss format of the start/end bounds.
const windowLayout = "2006-01-02T15:04:05"

// Defaults applied when the configuration leaves them unset. They match the
// Sumo Logic search UI behavior.
const (
	DefaultQueryType       = domain.QueryTypeMessages
	DefaultAutoParsingMode = "intelligent"
	DefaultTimeZone        = "UTC"
)

// TableSpec is the YAML shape of one table entry.
type TableSpec struct {
	TableName       string    `yaml:"table_name"`
	Query           string    `yaml:"query"`
	QueryType       string    `yaml:"query_type"`
	PrimaryKeys     []string  `yaml:"primary_keys"`
	ByReceiptTime   bool      `yaml:"by_receipt_time"`
	AutoParsingMode string    `yaml:"auto_parsing_mode"`
	Quantization    *int64    `yaml:"quantization"`
	Rollup          *string   `yaml:"rollup"`
	Timeshift       *int64    `yaml:"timeshift"`
	Schema          yaml.Node `yaml:"schema"`
}

// Config is the full extractor configuration. Credentials can come from the
// file or from the environment; environment variables win.
type Config struct {
	AccessID  string  `yaml:"access_id"`
	AccessKey string  `yaml:"access_key"`
	RootURL   string  `yaml:"root_url"`
	StartDate string  `yaml:"start_date"`
	EndDate   string  `yaml:"end_date"`
	TimeZone  string  `yaml:"time_zone"`
	LogLevel  string  `yaml:"log_level"`
	RateLimit float64 `yaml:"rate_limit"` // API requests per second, 0 = unlimited

	Tables []TableSpec `yaml:"tables"`

	// Warnings collects non-fatal notes generated during loading. They are
	// logged by the caller once the logger exists.
	Warnings []string `yaml:"-"`
}

// Load reads the YAML config file, applies environment overrides and
// defaults, and returns the result. Credential validation is deferred to
// Validate so the caller can prompt interactively first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Environment takes precedence over the file.
	if v := os.Getenv("SUMO_ACCESS_ID"); v != "" {
		cfg.AccessID = v
	}
	if v := os.Getenv("SUMO_ACCESS_KEY"); v != "" {
		cfg.AccessKey = v
	}
	if v := os.Getenv("SUMO_ENDPOINT"); v != "" {
		cfg.RootURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	now := time.Now().UTC()
	if cfg.StartDate == "" {
		cfg.StartDate = now.AddDate(0, 0, -1).Format(windowLayout)
		cfg.Warnings = append(cfg.Warnings, "start_date not set, defaulting to 24 hours ago")
	}
	if cfg.EndDate == "" {
		cfg.EndDate = now.Format(windowLayout)
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RootURL == "" {
		cfg.Warnings = append(cfg.Warnings, "no endpoint configured, it will be resolved from the global API endpoint")
	}

	return cfg, nil
}

// Validate checks that the configuration is complete enough to run.
func (c *Config) Validate() error {
	if c.AccessID == "" || c.AccessKey == "" {
		return domain.ErrAuthentication("access_id and access_key are required (set SUMO_ACCESS_ID / SUMO_ACCESS_KEY)")
	}
	if len(c.Tables) == 0 {
		return domain.ErrConfiguration("at least one table must be configured")
	}
	if _, err := time.Parse(windowLayout, c.StartDate); err != nil {
		return domain.ErrConfiguration("start_date %q is not in YYYY-MM-DDTHH:mm:ss form", c.StartDate)
	}
	if _, err := time.Parse(windowLayout, c.EndDate); err != nil {
		return domain.ErrConfiguration("end_date %q is not in YYYY-MM-DDTHH:mm:ss form", c.EndDate)
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Window returns the global extraction window.
func (c *Config) Window() domain.TimeWindow {
	return domain.TimeWindow{StartDate: c.StartDate, EndDate: c.EndDate, TimeZone: c.TimeZone}
}

// TableConfigs materializes the table specs into immutable table
// configurations, applying per-table defaults and validating each one.
func (c *Config) TableConfigs() ([]*domain.TableConfig, error) {
	tables := make([]*domain.TableConfig, 0, len(c.Tables))
	for idx := range c.Tables {
		spec := &c.Tables[idx]

		queryType := domain.QueryType(spec.QueryType)
		if spec.QueryType == "" {
			queryType = DefaultQueryType
		}
		parsingMode := spec.AutoParsingMode
		if parsingMode == "" {
			parsingMode = DefaultAutoParsingMode
		}

		table := &domain.TableConfig{
			TableName:       spec.TableName,
			Query:           spec.Query,
			QueryType:       queryType,
			Window:          c.Window(),
			ByReceiptTime:   spec.ByReceiptTime,
			AutoParsingMode: parsingMode,
			Metrics: domain.MetricsOptions{
				Quantization: spec.Quantization,
				Rollup:       spec.Rollup,
				Timeshift:    spec.Timeshift,
			},
			PrimaryKeys: spec.PrimaryKeys,
		}

		if err := decodeSchemaNode(&spec.Schema, table); err != nil {
			return nil, err
		}
		if err := table.Validate(); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// decodeSchemaNode interprets the optional `schema` entry: a scalar is a
// path to a JSON schema file, a mapping is an inline (possibly partial)
// schema object.
func decodeSchemaNode(node *yaml.Node, table *domain.TableConfig) error {
	if node.IsZero() {
		return nil
	}
	switch node.Kind {
	case yaml.ScalarNode:
		var path string
		if err := node.Decode(&path); err != nil {
			return domain.ErrConfiguration("table %q: invalid schema path: %v", table.TableName, err)
		}
		table.SchemaPath = path
	case yaml.MappingNode:
		var schema domain.Schema
		if err := node.Decode(&schema); err != nil {
			return domain.ErrConfiguration("table %q: invalid inline schema: %v", table.TableName, err)
		}
		table.Schema = &schema
	default:
		return domain.ErrConfiguration("table %q: schema must be a file path or an object", table.TableName)
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines are KEY=VALUE; comments (#) and blank lines are
// skipped. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value when
// both ends match.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
