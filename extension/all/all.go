// Package all imports all core flagsync extensions.
// Import this package to register all built-in commands.
package all

import (
	// Core extensions - each registers itself via init()
	_ "github.com/jpl-au/flagsync/extension/core"
	_ "github.com/jpl-au/flagsync/extension/local"
	_ "github.com/jpl-au/flagsync/extension/remote"
)
