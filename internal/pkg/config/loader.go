// Package config provides fail-open environment loading for the snapshot
// worker: every getter returns a usable value, substituting the default and
// reporting a warning instead of failing startup on a bad variable. A worker
// that cannot read its tuning should still sweep with defaults rather than
// crash-loop and leave every profile's snapshot to expire.
package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult carries a loaded value together with the fallback
// diagnostics the worker logs and counts.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func fallback(envKey, raw string, err error, def interface{}) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           def,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, def)},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the variable's value, or the default when unset.
// No validation; use LoadEnvWithFallback when a bad value must not pass.
func LoadEnvString(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// LoadEnvWithFallback reads a string variable and runs it through the given
// validator. An unset variable is the default with no warning; a value that
// fails validation is the default with a warning. A nil validator accepts
// everything.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	v := os.Getenv(envKey)
	if v == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	if validator != nil {
		if err := validator(v); err != nil {
			return fallback(envKey, v, err, defaultValue)
		}
	}
	return ConfigLoadResult{Value: v}
}

// LoadEnvDuration reads a Go duration string ("20m", "1h30m") and validates
// it. Both a parse failure and a validation failure fall back to the
// default with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	v := os.Getenv(envKey)
	if v == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback(envKey, v, err, defaultValue)
	}
	if validator != nil {
		if err := validator(d); err != nil {
			return fallback(envKey, v, err, defaultValue)
		}
	}
	return ConfigLoadResult{Value: d}
}

// LoadEnvInt reads an integer variable and validates it, falling back to the
// default with a warning when either step fails.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	v := os.Getenv(envKey)
	if v == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback(envKey, v, fmt.Errorf("invalid integer format"), defaultValue)
	}
	if validator != nil {
		if err := validator(n); err != nil {
			return fallback(envKey, v, err, defaultValue)
		}
	}
	return ConfigLoadResult{Value: n}
}

// LoadEnvBool reads a boolean variable. Accepted spellings match
// strconv.ParseBool ("1"/"0", "t"/"f", "true"/"false" in any common case);
// anything else falls back to the default with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	v := os.Getenv(envKey)
	if v == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	switch v {
	case "1", "t", "T", "true", "TRUE", "True":
		return ConfigLoadResult{Value: true}
	case "0", "f", "F", "false", "FALSE", "False":
		return ConfigLoadResult{Value: false}
	}
	return fallback(envKey, v, fmt.Errorf("invalid boolean format, expected 'true' or 'false'"), defaultValue)
}
