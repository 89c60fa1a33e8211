// SPDX-License-Identifier: MPL-2.0

// Package cache stores and restores dependency bundles keyed by a hash of
// the dependency lock file.
//
// A bundle is a tar.gz archive of the configured directories. Keys are
// stable for an unchanged lock file, so repeated runs reuse the bundle; a
// missing bundle is a cache miss that degrades to a cold build, never a
// failure. There is no eviction beyond an explicit Clear; storage limits
// belong to whatever owns the cache directory.
package cache
