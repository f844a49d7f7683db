// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic. The CLI, the environment overlay and the MCP server all
// address settings by dotted keys (e.g., "remote.project_id").
//
// Design: Pointers are used for optional numeric fields so we can
// distinguish between "not set" (nil) and "explicitly set". Defaults are
// only applied when the user hasn't set a value.

package config

import (
	"fmt"
	"slices"
	"strconv"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"remote.host", "remote.project_id", "remote.api_key",
		"flags.dir",
		"generate.output", "generate.convention", "generate.package",
		"limits.max_file_size",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string, with defaults
// applied.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "remote.host":
		return c.Host(), nil
	case "remote.project_id":
		return c.Remote.ProjectID, nil
	case "remote.api_key":
		return c.Remote.APIKey, nil
	case "flags.dir":
		return c.FlagsDir(), nil
	case "generate.output":
		return c.Output(), nil
	case "generate.convention":
		return c.Convention(), nil
	case "generate.package":
		return c.Package(), nil
	case "limits.max_file_size":
		return strconv.FormatInt(c.MaxFileSize(), 10), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key. The value is checked with the
// same rules Validate applies.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "remote.host":
		next.Remote.Host = value
	case "remote.project_id":
		next.Remote.ProjectID = value
	case "remote.api_key":
		next.Remote.APIKey = value
	case "flags.dir":
		next.Flags.Dir = value
	case "generate.output":
		next.Generate.Output = value
	case "generate.convention":
		next.Generate.Convention = value
	case "generate.package":
		next.Generate.Package = value
	case "limits.max_file_size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: limits.max_file_size must be an integer", ErrInvalidValue)
		}
		next.Limits.MaxFileSize = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	m := make(map[string]string, len(ValidKeys()))
	for _, k := range ValidKeys() {
		m[k], _ = c.Get(k)
	}
	return m
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "remote.host":
		return c.Remote.Host != ""
	case "remote.project_id":
		return c.Remote.ProjectID != ""
	case "remote.api_key":
		return c.Remote.APIKey != ""
	case "flags.dir":
		return c.Flags.Dir != ""
	case "generate.output":
		return c.Generate.Output != ""
	case "generate.convention":
		return c.Generate.Convention != ""
	case "generate.package":
		return c.Generate.Package != ""
	case "limits.max_file_size":
		return c.Limits.MaxFileSize != nil
	default:
		return false
	}
}
