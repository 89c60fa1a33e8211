// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"crossforge/internal/config"
	"crossforge/internal/issue"
)

// configCmd manages the crossforge configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage crossforge configuration",
	Long: `Manage crossforge configuration.

Configuration is stored in:
  - Linux: ~/.config/crossforge/config.cue
  - macOS: ~/Library/Application Support/crossforge/config.cue
  - Windows: %APPDATA%\crossforge\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return err
			}
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(appInstance.stdout, "%s Configuration at %s\n",
				SuccessStyle.Render("✓"),
				filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(appInstance.stdout, filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appInstance.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			fmt.Fprint(appInstance.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig(cmd *cobra.Command) error {
	cfg, err := appInstance.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		renderIssue(appInstance.stderr, issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := StepStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(appInstance.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(appInstance.stdout)

	cfgDir, dirErr := config.ConfigDir()
	cfgPath := ""
	if dirErr == nil {
		cfgPath = filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	}
	if cfgPath != "" && fileExistsCheck(cfgPath) {
		fmt.Fprintf(appInstance.stdout, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(appInstance.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(appInstance.stdout)

	cacheDir, err := config.CacheDir(cfg)
	if err != nil {
		cacheDir = string(cfg.CacheDir)
	}

	fmt.Fprintf(appInstance.stdout, "%s: %s\n", keyStyle.Render("cache_dir"), valueStyle.Render(cacheDir))
	fmt.Fprintf(appInstance.stdout, "%s: %s\n", keyStyle.Render("default_runner"), valueStyle.Render(string(cfg.DefaultRunner)))
	if cfg.CargoConfigPath != "" {
		fmt.Fprintf(appInstance.stdout, "%s: %s\n", keyStyle.Render("cargo_config_path"), valueStyle.Render(cfg.CargoConfigPath))
	}
	fmt.Fprintf(appInstance.stdout, "%s: %s\n", keyStyle.Render("ui.color_scheme"), valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(appInstance.stdout, "%s: %v\n", keyStyle.Render("ui.verbose"), cfg.UI.Verbose)

	return nil
}

// fileExistsCheck reports whether path names an existing regular file.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
