// config.go implements the "flagsync config" command for configuration management.
//
// Separated from extension.go to isolate config-specific logic including
// the local vs global config precedence rules.
//
// Design: Config follows a cascade model similar to git: global
// (~/.flagsync/config.yaml), then local (.flagsync/config.yaml), then
// FLAGSYNC_* environment variables. Reads show the effective value; writes
// go to the local file unless --global is given. Secrets are masked on
// display and never written to the audit log.

package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/config"
	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/log"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  flagsync config                          # show effective config
  flagsync config flags.dir                # show one value
  flagsync config generate.convention snake_case
  flagsync config remote.api_key phx_... --global

Configuration locations:
  Global: ~/.flagsync/config.yaml
  Local:  .flagsync/config.yaml (created by init)

Environment variables (FLAGSYNC_FLAGS_DIR, POSTHOG_PERSONAL_API_KEY, ...)
override both files. Writes go to the local file unless --global is given.

Keys: ` + strings.Join(config.ValidKeys(), ", "),
		Args: cobra.MaximumNArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagGlobal, false, "Write to the global config (~/.flagsync/config.yaml)")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	global, _ := c.Flags().GetBool(extension.FlagGlobal)

	if len(args) == 2 {
		return setConfig(args[0], args[1], global)
	}

	cfg, err := effective()
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if len(args) == 0 {
		all := cfg.Redacted()
		log.Event("core:config", "list").Write(nil)
		if cmd.JSON() {
			return cmd.PrintJSON(all)
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.Out(), "%s: %s\n", k, all[k])
		}
		return nil
	}

	key := args[0]
	v, err := cfg.Get(key)
	log.Event("core:config", "get").Detail("key", key).Write(err)
	if err != nil {
		return cmd.PrintJSONError(keyError(key, err))
	}
	if config.IsSecret(key) {
		v = cfg.Redacted()[key]
	}
	if cmd.JSON() {
		return cmd.PrintJSON(map[string]string{key: v})
	}
	fmt.Fprintln(cmd.Out(), v)
	return nil
}

// keyError reports an unknown key or malformed value as a ConfigError.
func keyError(key string, err error) error {
	if _, ok := errs.As(err); ok {
		return err
	}
	return errs.Config("config %s", key).With("key", key).Wrap(err)
}

// effective loads the merged config with the environment applied.
func effective() (*config.Config, error) {
	cfg, err := config.Load(cmd.Base())
	if err != nil {
		return nil, err
	}
	if _, err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setConfig(key, value string, global bool) error {
	scope := config.ScopeLocal
	if global {
		scope = config.ScopeGlobal
	}

	cfg, err := config.LoadScope(scope, cmd.Base())
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	if err := cfg.Set(key, value); err != nil {
		log.Event("core:config", "set").Detail("key", key).Write(err)
		return cmd.PrintJSONError(keyError(key, err))
	}
	if err := cfg.Validate(); err != nil {
		log.Event("core:config", "set").Detail("key", key).Write(err)
		return cmd.PrintJSONError(err)
	}

	saveErr := cfg.Save()
	// The value is not logged: it may be an API key.
	log.Event("core:config", "set").Path(cfg.Path()).Detail("key", key).Detail("scope", scope.String()).Write(saveErr)
	if saveErr != nil {
		return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
	}

	shown := value
	if config.IsSecret(key) {
		shown = cfg.Redacted()[key]
	}
	if cmd.JSON() {
		return cmd.PrintJSON(map[string]string{"key": key, "value": shown, "scope": scope.String(), "path": cfg.Path()})
	}
	fmt.Fprintf(cmd.Out(), "%s = %s (%s)\n", key, shown, scope)
	return nil
}
