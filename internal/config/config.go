package config

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"rxprev/domain/prevalence"
	"rxprev/internal"
	"rxprev/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Report   ReportConfig
	Database DatabaseConfig
	Server   ServerConfig
	LogLevel internal.LogLevel
}

// ReportConfig holds the settings consumed by the prevalence report
type ReportConfig struct {
	MajorSubtypes []string
	NoSubtype     bool
	Test          string
	FlagSelection bool
}

// Layout converts the report settings into a report layout.
func (c ReportConfig) Layout() prevalence.Layout {
	if c.NoSubtype {
		return prevalence.Layout{FlagSelection: c.FlagSelection}
	}
	return prevalence.Layout{
		MajorSubtypes: slices.Clone(c.MajorSubtypes),
		Subtypes:      true,
		FlagSelection: c.FlagSelection,
	}
}

// DatabaseConfig holds the optional run store connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether runs should be persisted.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// Supported contingency tests.
const (
	TestFisher = "fisher"
	TestChi2   = "chi2"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	level, ok := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if !ok {
		return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}

	config := &Config{
		Report:   loadReportConfig(),
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Server:   ServerConfig{Port: getEnvOrDefault("PORT", "8080")},
		LogLevel: level,
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadReportConfig() ReportConfig {
	subtypes := slices.Clone(prevalence.DefaultMajorSubtypes)
	if v := os.Getenv("RXPREV_MAJOR_SUBTYPES"); v != "" {
		subtypes = SplitList(v)
	}
	return ReportConfig{
		MajorSubtypes: subtypes,
		NoSubtype:     getEnvBoolOrDefault("RXPREV_NO_SUBTYPE", false),
		Test:          strings.ToLower(getEnvOrDefault("RXPREV_TEST", TestFisher)),
		FlagSelection: getEnvBoolOrDefault("RXPREV_FLAG_SELECTION", false),
	}
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Report.Test {
	case TestFisher, TestChi2:
	default:
		return errors.ConfigInvalid("unsupported test " + strconv.Quote(c.Report.Test) + ", want fisher or chi2")
	}
	seen := make(map[string]bool, len(c.Report.MajorSubtypes))
	for _, st := range c.Report.MajorSubtypes {
		if prevalence.IsAggregateSubtype(st) {
			return errors.ConfigInvalid("major subtypes cannot include the aggregate bucket " + strconv.Quote(st))
		}
		if seen[st] {
			return errors.ConfigInvalid("duplicate major subtype " + strconv.Quote(st))
		}
		seen[st] = true
	}
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
