// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/crossforge/config.cue (or XDG equivalent on
// Linux, ~/Library/Application Support/crossforge/config.cue on macOS,
// %APPDATA%\crossforge\config.cue on Windows). It covers the cache bundle directory,
// the default script runner and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to
// ensure type safety and provide clear error messages for invalid configurations.
package config
