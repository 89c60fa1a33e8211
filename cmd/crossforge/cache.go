// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"crossforge/internal/cache"
	"crossforge/internal/config"
)

var (
	cacheForgefilePath string

	// cacheCmd groups dependency cache operations
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the dependency cache",
		Long: `Inspect and manage the dependency cache.

Cache bundles are tar.gz archives keyed by a hash of the forgefile's
lock file. They live in the platform cache directory unless cache_dir
is set in the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	cacheCmd.PersistentFlags().StringVarP(&cacheForgefilePath, "forgefile", "f", "", "path to the forgefile (default is ./forgefile.cue)")

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "key",
		Short: "Print the cache key for the current lock file",
		RunE:  runCacheKey,
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all stored cache bundles",
		RunE:  runCacheClear,
	})
}

func runCacheKey(cmd *cobra.Command, args []string) error {
	ff, err := loadForgefile(appInstance.stderr, cacheForgefilePath)
	if err != nil {
		return err
	}

	if ff.Cache.LockFile == "" {
		return fmt.Errorf("forgefile %s does not configure a cache lock file", ff.FilePath)
	}

	lock := ff.Cache.LockFile
	if !filepath.IsAbs(lock) {
		lock = filepath.Join(filepath.Dir(ff.FilePath), lock)
	}

	key, err := cache.Key(ff.Cache.Prefix, lock)
	if err != nil {
		return err
	}

	store, err := openCacheStore(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(appInstance.stdout, key)
	if store.Exists(key) {
		fmt.Fprintf(appInstance.stderr, "%s bundle present at %s\n", SuccessStyle.Render("✓"), store.BundlePath(key))
	} else {
		fmt.Fprintf(appInstance.stderr, "%s no bundle stored for this key\n", SubtitleStyle.Render("·"))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCacheStore(cmd)
	if err != nil {
		return err
	}

	removed, err := store.Clear()
	if err != nil {
		return err
	}

	fmt.Fprintf(appInstance.stdout, "%s Removed %d cache bundle(s)\n", SuccessStyle.Render("✓"), removed)
	return nil
}

// openCacheStore resolves the configured cache directory into a store.
func openCacheStore(cmd *cobra.Command) (*cache.Store, error) {
	cfg, err := appInstance.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: cfgFile,
		CacheDirPath:   cacheDirFlag,
	})
	if err != nil {
		return nil, err
	}

	dir, err := config.CacheDir(cfg)
	if err != nil {
		return nil, err
	}

	return &cache.Store{Dir: dir}, nil
}
