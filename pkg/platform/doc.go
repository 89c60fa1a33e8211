// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes platform-specific constants and lookups
// used when resolving configuration and cache directories.
package platform
