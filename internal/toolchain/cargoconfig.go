// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TargetConfig is the `[target.<triple>]` section written to the cargo
// configuration file. Paths are absolute; no existence check is performed
// at authoring time.
type TargetConfig struct {
	AR     string `toml:"ar"`
	Linker string `toml:"linker"`
}

// DefaultCargoConfigPath returns the per-user cargo configuration path,
// `~/.cargo/config.toml`.
func DefaultCargoConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cargo", "config.toml"), nil
}

// WriteCargoConfig writes (or updates) the cargo configuration at path so
// that building for the toolchain's triple uses its archiver and linker.
// Unrelated sections of an existing file are preserved; only the
// `[target.<triple>]` table is replaced.
func WriteCargoConfig(path string, tc *Toolchain) error {
	doc := make(map[string]any)

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse existing cargo config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read cargo config %s: %w", path, err)
	}

	targets, ok := doc["target"].(map[string]any)
	if !ok {
		targets = make(map[string]any)
	}
	targets[tc.Triple] = TargetConfig{
		AR:     tc.ARPath(),
		Linker: tc.LinkerPath(),
	}
	doc["target"] = targets

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal cargo config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cargo config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cargo config: %w", err)
	}

	return nil
}
