// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"crossforge/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// cacheDirFlag overrides the cache bundle directory for one invocation
	cacheDirFlag string

	// appInstance is the production composition root shared by all handlers.
	appInstance = NewApp(Dependencies{})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "crossforge",
		Short: "A cross-compilation build provisioner",
		Long: TitleStyle.Render("crossforge") + SubtitleStyle.Render(" - A cross-compilation build provisioner") + `

crossforge prepares a CI agent for cross-compiled builds and runs them:
it derives Android NDK toolchain paths, writes cargo cross-compilation
config, registers rustup targets, restores and saves lockfile-keyed
dependency caches, and invokes the build, all from a declarative
pipeline definition.

Pipelines are defined in a 'forgefile.cue' file using CUE format and
execute strictly in order: the first failing step aborts the run.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a forgefile in your project directory: crossforge init
  2. Point ANDROID_NDK_ROOT at your NDK installation
  3. Run the default pipeline with: crossforge run

` + SubtitleStyle.Render("Examples:") + `
  crossforge run            Run the 'default' pipeline
  crossforge run nightly    Run the 'nightly' pipeline
  crossforge plan           Show what a run would execute
  crossforge cache key      Print the dependency cache key
  crossforge config show    Show current configuration`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/crossforge/config.cue)")
	rootCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "cache bundle directory (overrides cache_dir from the config)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
