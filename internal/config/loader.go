package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct fills the tagged fields of v, descending into nested sections.
func loadStruct(v reflect.Value) error {
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			if err := loadStruct(fv); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		value, err := lookupEnv(sf.Tag)
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		if err := setField(fv, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}
	return nil
}

// lookupEnv returns the value for a field: env, then envAlt, then default.
func lookupEnv(tag reflect.StructTag) (string, error) {
	name := tag.Get("env")
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	if alt := tag.Get("envAlt"); alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v, nil
		}
	}
	if tag.Get("required") == "true" {
		return "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return tag.Get("default"), nil
}

// setField parses value into field according to its kind.
func setField(field reflect.Value, value string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))

	case field.Kind() == reflect.String:
		field.SetString(value)

	case field.Kind() == reflect.Int || field.Kind() == reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		var items []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Field rules validation
	if c.Fields.ReloadInterval < 0 {
		errs = append(errs, "FIELD_RULES_RELOAD_INTERVAL must be non-negative")
	}
	if c.Fields.ReloadInterval > 0 && c.Fields.RulesFile == "" {
		errs = append(errs, "FIELD_RULES_RELOAD_INTERVAL is set but FIELD_RULES_FILE is empty")
	}

	// Dashboard validation
	if c.Dashboard.UsersPerPage <= 0 || c.Dashboard.UsersPerPage > 100 {
		errs = append(errs, fmt.Sprintf("DASHBOARD_USERS_PER_PAGE (%d) must be 1-100", c.Dashboard.UsersPerPage))
	}
	if c.Dashboard.LogsPerPage <= 0 || c.Dashboard.LogsPerPage > 100 {
		errs = append(errs, fmt.Sprintf("DASHBOARD_LOGS_PER_PAGE (%d) must be 1-100", c.Dashboard.LogsPerPage))
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ",
		c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("Fields: {RulesFile: %q, ReloadInterval: %s}",
		c.Fields.RulesFile, c.Fields.ReloadInterval))
	b.WriteString("}")
	return b.String()
}
