// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
)

// Prune removes every directory (or file) matching the glob pattern and
// returns the removed paths. A pattern with no matches is a successful
// no-op, so re-running a prune step is idempotent.
func Prune(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid prune pattern %q: %w", pattern, err)
	}

	removed := make([]string, 0, len(matches))
	for _, match := range matches {
		if err := os.RemoveAll(match); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", match, err)
		}
		removed = append(removed, match)
	}

	return removed, nil
}
