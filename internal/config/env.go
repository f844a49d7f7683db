// env.go overlays environment variables onto a loaded config.
//
// Every key can be set as FLAGSYNC_<SECTION>_<NAME> (for example
// FLAGSYNC_REMOTE_PROJECT_ID). The remote keys also accept the variable
// names the PostHog tooling uses, which take lower precedence.

package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/jpl-au/flagsync/internal/errs"
)

// EnvPrefix prefixes every flagsync environment variable.
const EnvPrefix = "FLAGSYNC"

// aliases lists extra environment variables per key, in precedence order.
var aliases = map[string][]string{
	"remote.host":       {"POSTHOG_HOST"},
	"remote.project_id": {"POSTHOG_PROJECT_ID"},
	"remote.api_key":    {"POSTHOG_PERSONAL_API_KEY"},
}

// EnvName returns the primary environment variable for key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ApplyEnv overrides c with any values set in the environment and returns
// the keys that were overridden. An invalid value is a ConfigError naming
// the variable.
func (c *Config) ApplyEnv() ([]string, error) {
	v := viper.New()
	for _, k := range ValidKeys() {
		names := append([]string{EnvName(k)}, aliases[k]...)
		if err := v.BindEnv(append([]string{k}, names...)...); err != nil {
			return nil, err
		}
	}

	var applied []string
	for _, k := range ValidKeys() {
		if !v.IsSet(k) {
			continue
		}
		if err := c.Set(k, v.GetString(k)); err != nil {
			return applied, invalidEnv(k, err)
		}
		applied = append(applied, k)
	}
	return applied, nil
}

func invalidEnv(key string, err error) error {
	return errs.Config("invalid value for %s in environment", EnvName(key)).
		With("key", key).
		Wrap(err)
}
