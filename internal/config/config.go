// Package config provides reading and writing of flagsync configuration.
// Supports both global (~/.flagsync/config.yaml) and local
// (<project>/.flagsync/config.yaml).
// Reading: global values first, local values override them, then
// environment variables override both (see ApplyEnv).
// Writing: defaults to local, use --global for the user-wide file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/generate"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Dir is the name of the configuration directory in the project and home.
const Dir = ".flagsync"

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeLocal is project config in <project>/.flagsync/config.yaml (default)
	ScopeLocal Scope = iota
	// ScopeGlobal is user-wide config in ~/.flagsync/config.yaml
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

// Remote holds the connection to the remote flag service.
type Remote struct {
	Host      string `yaml:"host,omitempty"`
	ProjectID string `yaml:"project_id,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
}

// Flags locates the flag definitions.
type Flags struct {
	Dir string `yaml:"dir,omitempty"`
}

// Generate holds code generation options.
type Generate struct {
	Output     string `yaml:"output,omitempty"`
	Convention string `yaml:"convention,omitempty"`
	Package    string `yaml:"package,omitempty"`
}

// Limits holds size limit configuration options.
type Limits struct {
	MaxFileSize *int64 `yaml:"max_file_size,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultHost        = "https://us.posthog.com"
	DefaultFlagsDir    = "feature-flags"
	DefaultOutput      = "src/feature-flags.ts"
	DefaultConvention  = string(generate.CamelCase)
	DefaultPackage     = "flags"
	DefaultMaxFileSize = 1 << 20 // 1 MiB
)

// Validation bounds for configuration values.
const (
	MinMaxFileSize = 1
	MaxMaxFileSize = 64 << 20 // 64 MiB
)

// Config contains configuration for flagsync.
type Config struct {
	Remote   Remote   `yaml:"remote,omitempty"`
	Flags    Flags    `yaml:"flags,omitempty"`
	Generate Generate `yaml:"generate,omitempty"`
	Limits   Limits   `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are well formed.
// Returns nil if all values are valid or not set (defaults will be used).
// Failures are ConfigErrors wrapping ErrInvalidValue.
func (c *Config) Validate() error {
	if h := c.Remote.Host; h != "" {
		u, err := url.Parse(h)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return invalid("remote.host", "remote.host must be an http(s) URL, got %q", h)
		}
	}
	for key, v := range map[string]string{"flags.dir": c.Flags.Dir, "generate.output": c.Generate.Output} {
		if strings.ContainsRune(v, 0) {
			return invalid(key, "%s must not contain a null byte", key)
		}
	}
	if cv := c.Generate.Convention; cv != "" {
		if _, err := generate.ParseConvention(cv); err != nil {
			return invalid("generate.convention", "generate.convention must be one of %s, got %q", conventionList(), cv)
		}
	}
	if p := c.Generate.Package; p != "" && !isIdent(p) {
		return invalid("generate.package", "generate.package must be a Go identifier, got %q", p)
	}
	if c.Limits.MaxFileSize != nil {
		v := *c.Limits.MaxFileSize
		if v < MinMaxFileSize || v > MaxMaxFileSize {
			return invalid("limits.max_file_size", "limits.max_file_size must be between %d and %d, got %d",
				MinMaxFileSize, MaxMaxFileSize, v)
		}
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return errs.Config(format, args...).With("key", key).Wrap(ErrInvalidValue)
}

func conventionList() string {
	names := make([]string, len(generate.Conventions))
	for i, c := range generate.Conventions {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}

// Host returns the remote host (defaults to PostHog US cloud).
func (c *Config) Host() string {
	if c.Remote.Host == "" {
		return DefaultHost
	}
	return c.Remote.Host
}

// FlagsDir returns the flags directory relative to the project.
func (c *Config) FlagsDir() string {
	if c.Flags.Dir == "" {
		return DefaultFlagsDir
	}
	return c.Flags.Dir
}

// Output returns the generated file path relative to the project.
func (c *Config) Output() string {
	if c.Generate.Output == "" {
		return DefaultOutput
	}
	return c.Generate.Output
}

// Convention returns the identifier naming convention.
func (c *Config) Convention() string {
	if c.Generate.Convention == "" {
		return DefaultConvention
	}
	return c.Generate.Convention
}

// Package returns the Go package name for Go output.
func (c *Config) Package() string {
	if c.Generate.Package == "" {
		return DefaultPackage
	}
	return c.Generate.Package
}

// MaxFileSize returns the per-file size ceiling in bytes (defaults to 1 MiB).
func (c *Config) MaxFileSize() int64 {
	if c.Limits.MaxFileSize == nil {
		return DefaultMaxFileSize
	}
	return *c.Limits.MaxFileSize
}

// LocalPath returns the path to the project config file under base.
func LocalPath(base string) string {
	return filepath.Join(base, Dir, "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.flagsync/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, Dir, "config.yaml")
}

// Load reads the global config and overlays the local config from base.
func Load(base string) (*Config, error) {
	global, err := LoadScope(ScopeGlobal, base)
	if err != nil {
		return nil, err
	}
	local, err := LoadScope(ScopeLocal, base)
	if err != nil {
		return nil, err
	}
	global.merge(local)
	global.path = local.path
	global.scope = ScopeLocal
	return global, nil
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope, base string) (*Config, error) {
	path := pathForScope(scope, base)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, errs.FileSystem(errs.OpRead, path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Config("malformed config file %s\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path).
			With("path", path).
			Wrap(err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		if e, ok := errs.As(err); ok {
			e.With("path", path)
		}
		return nil, err
	}
	return &cfg, nil
}

// merge copies every value set in o over c.
func (c *Config) merge(o *Config) {
	for _, k := range ValidKeys() {
		if o.IsSet(k) {
			v, _ := o.Get(k)
			_ = c.Set(k, v)
		}
	}
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Path returns the file this config was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755. The file may hold an
// API key, so it is written with mode 0600.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.FileSystem(errs.OpCreate, dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errs.FileSystem(errs.OpWrite, path, err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope, base string) string {
	switch scope {
	case ScopeLocal:
		if base == "" {
			return ""
		}
		return LocalPath(base)
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}

// Redacted returns All with secrets masked, for display.
func (c *Config) Redacted() map[string]string {
	m := c.All()
	for _, k := range secretKeys {
		if v := m[k]; v != "" {
			m[k] = mask(v)
		}
	}
	return m
}

var secretKeys = []string{"remote.api_key"}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return slices.Contains(secretKeys, key)
}

func mask(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "****" + v[len(v)-4:]
}
