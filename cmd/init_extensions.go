/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go handles extension initialisation and command registration.
//
// Separated from root.go to isolate the initialisation logic that loads
// the project config and wires up extensions.
//
// Design: Extensions register during init() but aren't initialised until
// first command execution. This two-phase pattern allows extensions to
// declare commands before the project is loaded. The service is created
// once and shared across all extensions via the Context.

package cmd

import (
	"fmt"
	"sync"

	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/service"
)

// standaloneCommands lists commands that bypass project loading.
// Built from bootstrap commands plus extension-declared standalone commands.
var standaloneCommands map[string]bool

// buildStandaloneCommands creates the set of commands that skip project
// loading.
//
// Most commands need the loaded config, but some must work without it:
//
//  1. Bootstrap commands (init, guide, config, version) help users set up
//     or learn about flagsync. Running "flagsync guide" shouldn't fail
//     because the config file has a typo.
//
//  2. Extension-declared standalone commands. Extensions implement
//     extension.Standalone for commands that build their own Service,
//     such as serve, which reloads config on every call.
//
// cobra's own help and completion commands are always standalone.
func buildStandaloneCommands() map[string]bool {
	cmds := map[string]bool{
		"init":       true,
		"guide":      true,
		"config":     true,
		"version":    true,
		"help":       true,
		"completion": true,
		// Root itself only prints help.
		rootCmd.Name(): true,
	}

	for _, name := range extension.StandaloneCommands() {
		cmds[name] = true
	}
	return cmds
}

// Global extension context, created during initialisation.
var (
	extContext extension.Context
	initOnce   sync.Once
	initErr    error
)

// initExtensions loads the project and injects it into extensions.
//
// sync.Once guarantees a single config load per process; every extension
// sees the same Service.
func initExtensions() error {
	initOnce.Do(func() {
		svc, err := service.New(Base())
		if err != nil {
			initErr = err
			return
		}
		extContext = extension.NewContext(svc)

		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
	})
	return initErr
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}

		// Build after all extensions are registered
		standaloneCommands = buildStandaloneCommands()
	})
}
