// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride is consulted by ConfigDir before any platform lookup.
// Tests set it to pin the crossforge config directory without relying on
// HOME, which os.UserHomeDir() does not honor on every platform.
var configDirOverride string

// SetConfigDirOverride pins ConfigDir to dir until Reset is called.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset restores platform-default directory resolution. Call from test
// cleanup.
func Reset() {
	configDirOverride = ""
}
