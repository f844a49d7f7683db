/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Separated from init_extensions.go to isolate cobra setup from project
// loading.
//
// Design: PersistentPreRunE configures logging and resolves the project
// directory for every command, then loads the project lazily - only
// commands that need it trigger extension init. Bootstrap commands (init,
// guide, config) work in a directory that has no configuration yet.
//
// Errors: commands return errors instead of printing them. Execute prints
// the single-line errs.Format rendering to stderr, or the structured form
// as JSON on stdout with -o json, and exits with errs.ExitCode.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/log"
)

// Exit codes beyond the default 1.
const (
	ExitUsage       = 2   // Bad arguments or flags
	ExitInterrupted = 130 // Stopped by SIGINT
)

var rootCmd = &cobra.Command{
	Use:   "flagsync",
	Short: "Validate, generate and sync feature flag definitions",
	Long: `flagsync keeps feature flag definitions as JSON files in your repository,
validates them against a strict schema, generates typed constants from them
and synchronises them with a PostHog-compatible flag service.

Run "flagsync guide" for an overview.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return errs.CLI(cmd.Name(), ExitUsage,
				fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats))
		}

		configureLogging()

		if err := resolveBase(); err != nil {
			return err
		}
		log.SetProject(base)

		// Load the project for commands that need it
		if !standaloneCommands[topLevelCmdName(cmd)] {
			if err := initExtensions(); err != nil {
				return err
			}
		}
		return nil
	},
}

// configureLogging sends diagnostics to stderr so stdout stays clean for
// command output and -o json.
func configureLogging() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.WarnLevel)
}

// resolveBase fixes the project directory: --dir when given, otherwise the
// working directory. It is read once here; packages receive it explicitly.
func resolveBase() error {
	b := dir
	if b == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errs.FileSystem(errs.OpAccess, ".", err)
		}
		b = wd
	}
	abs, err := filepath.Abs(b)
	if err != nil {
		return errs.FileSystem(errs.OpAccess, b, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errs.FileSystem(errs.OpAccess, abs, err)
	}
	if !info.IsDir() {
		return errs.CLI("flagsync", ExitUsage, fmt.Errorf("--dir %s is not a directory", b))
	}
	base = abs
	return nil
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "flagsync config remote.host", returns "config".
func topLevelCmdName(cmd *cobra.Command) string {
	// Walk up until we find a command whose parent has no parent (the root)
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, registers extensions, executes the command, reports
// any error and exits with its code.
func Execute() {
	// Initialise audit logger (warn if it fails, but continue)
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	registerExtensions()
	c, err := rootCmd.ExecuteContextC(ctx)
	stop()

	code := report(c, err)
	log.Close()
	if code != 0 {
		os.Exit(code)
	}
}

// report prints err and returns the process exit code.
func report(c *cobra.Command, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	var r *reported
	if errors.As(err, &r) {
		return errs.ExitCode(r.err)
	}
	if _, ok := errs.As(err); !ok {
		// Plain errors come from cobra itself: unknown commands, bad flags
		// and argument counts.
		name := rootCmd.Name()
		if c != nil {
			name = c.Name()
		}
		err = errs.CLI(name, ExitUsage, err)
	}

	if JSON() {
		_ = PrintJSON(map[string]any{"error": errs.Structured(err)})
	} else {
		fmt.Fprintln(errOut, errs.Format(err))
	}
	return errs.ExitCode(err)
}

// RootCmd returns the root command for testing and extension access.
func RootCmd() *cobra.Command {
	return rootCmd
}
