// flags.go defines constants for CLI flag names shared across extensions.
//
// Naming convention: Flag<PascalCaseName> where name matches the kebab-case
// CLI flag (e.g., "dry-run" -> FlagDryRun).

package extension

// Flag name constants for CLI commands.
const (
	// Boolean flags

	FlagDiff    = "diff"     // Show diff output
	FlagDryRun  = "dry-run"  // Preview without making changes
	FlagForce   = "force"    // Overwrite existing files
	FlagGlobal  = "global"   // Use the global config (~/.flagsync/config.yaml)
	FlagNoColor = "no-color" // Disable ANSI colour
	FlagWatch   = "watch"    // Keep running and regenerate on change

	// String flags

	FlagConvention = "convention" // Identifier naming convention
	FlagOut        = "out"        // Generated file path
	FlagProjectID  = "project-id" // Remote project id
)
