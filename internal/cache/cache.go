// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// keyHashLen is the number of hex digits of the lock file hash kept in the
// cache key.
const keyHashLen = 16

// Store is a bundle store rooted at a single directory. One bundle file per
// key, named "<key>.tar.gz".
type Store struct {
	// Dir is the directory holding the bundles.
	Dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Key derives the cache key for a lock file: "<prefix>-<sha256 hex>",
// truncated. Identical lock file content always yields an identical key.
func Key(prefix, lockFile string) (string, error) {
	f, err := os.Open(lockFile)
	if err != nil {
		return "", fmt.Errorf("failed to open lock file %s: %w", lockFile, err)
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash lock file %s: %w", lockFile, err)
	}

	digest := hex.EncodeToString(h.Sum(nil))
	if prefix == "" {
		prefix = "deps"
	}
	return prefix + "-" + digest[:keyHashLen], nil
}

// BundlePath returns where the bundle for key lives (whether or not it
// exists yet).
func (s *Store) BundlePath(key string) string {
	return filepath.Join(s.Dir, key+".tar.gz")
}

// Exists reports whether a bundle is stored for key.
func (s *Store) Exists(key string) bool {
	info, err := os.Stat(s.BundlePath(key))
	return err == nil && !info.IsDir()
}

// Save bundles the given paths into the store under key, replacing any
// previous bundle. Paths may be absolute, relative to baseDir, or
// "~/"-prefixed; sources that do not exist are skipped so a partially
// populated workspace still produces a bundle.
func (s *Store) Save(key, baseDir string, paths []string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	bundle := s.BundlePath(key)
	tmp := bundle + ".tmp"

	if err := writeBundle(tmp, baseDir, paths); err != nil {
		_ = os.Remove(tmp) // Best-effort cleanup on error path
		return err
	}

	if err := os.Rename(tmp, bundle); err != nil {
		_ = os.Remove(tmp) // Best-effort cleanup on error path
		return fmt.Errorf("failed to store cache bundle: %w", err)
	}

	return nil
}

// Restore unpacks the bundle for key, if one exists. The first return value
// reports whether a bundle was found; a miss is not an error.
func (s *Store) Restore(key, baseDir string) (bool, error) {
	bundle := s.BundlePath(key)
	if _, err := os.Stat(bundle); os.IsNotExist(err) {
		return false, nil
	}

	if err := readBundle(bundle, baseDir); err != nil {
		return true, fmt.Errorf("failed to restore cache bundle %s: %w", bundle, err)
	}
	return true, nil
}

// Clear removes every stored bundle. Returns the number removed.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tar.gz") {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// resolvePath expands a configured cache path against the home directory
// ("~/" prefix) or baseDir (relative paths).
func resolvePath(spec, baseDir string) (string, error) {
	if strings.HasPrefix(spec, "~/") || spec == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %q: %w", spec, err)
		}
		return filepath.Join(home, strings.TrimPrefix(spec, "~")), nil
	}
	if filepath.IsAbs(spec) {
		return spec, nil
	}
	return filepath.Join(baseDir, spec), nil
}
