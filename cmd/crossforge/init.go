// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"crossforge/pkg/forgefile"
)

var (
	initForce  bool
	initTriple string

	// initCmd creates a new forgefile
	initCmd = &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a new forgefile in the current directory",
		Long: `Create a new forgefile in the current directory.

This command generates a starter forgefile with a default pipeline that
restores the dependency cache, registers the rustup target, writes the
cargo cross-compilation config, builds, and saves the cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing forgefile")
	initCmd.Flags().StringVarP(&initTriple, "triple", "t", "armv7-linux-androideabi", "target triple for the scaffold")
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := forgefile.FileName
	if len(args) > 0 {
		filename = args[0]
	}

	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	content := forgefile.GenerateCUE(initTriple)

	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Fprintf(appInstance.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Fprintln(appInstance.stdout)
	fmt.Fprintln(appInstance.stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(appInstance.stdout, "  1. Point ANDROID_NDK_ROOT at your NDK installation")
	fmt.Fprintln(appInstance.stdout, "  2. Adjust the target triple and pipeline steps to your project")
	fmt.Fprintln(appInstance.stdout, "  3. Run 'crossforge plan' to preflight, then 'crossforge run'")

	return nil
}
