// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.DefaultRunner != RunnerNative {
		t.Errorf("DefaultRunner = %q, want %q", cfg.DefaultRunner, RunnerNative)
	}
	if cfg.CacheDir != "" {
		t.Errorf("CacheDir = %q, want empty", cfg.CacheDir)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want %q", cfg.UI.ColorScheme, ColorSchemeAuto)
	}
	if cfg.UI.Verbose {
		t.Error("UI.Verbose should default to false")
	}
}

func TestProviderLoadDefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	if cfg.DefaultRunner != want.DefaultRunner || cfg.UI.ColorScheme != want.UI.ColorScheme {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestProviderLoadFromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfigFile(t, dir, `
default_runner: "virtual"
cache_dir:      "/var/cache/forge"

ui: {
	verbose: true
}
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultRunner != RunnerVirtual {
		t.Errorf("DefaultRunner = %q, want %q", cfg.DefaultRunner, RunnerVirtual)
	}
	if cfg.CacheDir != "/var/cache/forge" {
		t.Errorf("CacheDir = %q, want /var/cache/forge", cfg.CacheDir)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be true")
	}
	// Unset fields keep their defaults.
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want default %q", cfg.UI.ColorScheme, ColorSchemeAuto)
	}
}

func TestProviderLoadExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, t.TempDir(), `default_runner: "virtual"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultRunner != RunnerVirtual {
		t.Errorf("DefaultRunner = %q, want %q", cfg.DefaultRunner, RunnerVirtual)
	}
}

func TestProviderCacheDirFlagOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfigFile(t, dir, `cache_dir: "/var/cache/from-file"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: dir,
		CacheDirPath:  "/var/cache/from-flag",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CacheDir != "/var/cache/from-flag" {
		t.Errorf("CacheDir = %q, want the flag override to win", cfg.CacheDir)
	}
}

func TestProviderCacheDirFlagInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		CacheDirPath:  "   ",
	})
	if !errors.Is(err, ErrInvalidCacheDirPath) {
		t.Errorf("Load() error = %v, want ErrInvalidCacheDirPath", err)
	}
}

func TestProviderLoadExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "nope.cue") {
		t.Errorf("error should name the missing file, got: %v", err)
	}
}

func TestProviderLoadInvalidCUE(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfigFile(t, dir, `default_runner: "virtual`)

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error for invalid CUE syntax")
	}
}

func TestProviderLoadSchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown runner", content: `default_runner: "container"`},
		{name: "unknown color scheme", content: `ui: color_scheme: "solarized"`},
		{name: "wrong type", content: `ui: verbose: "yes"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfigFile(t, dir, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected schema violation error")
			}
		})
	}
}

func TestProviderLoadCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	orig := &Config{
		CacheDir:        "/tmp/forge-cache",
		DefaultRunner:   RunnerVirtual,
		CargoConfigPath: "/workspace/.cargo/config.toml",
		UI: UIConfig{
			ColorScheme: ColorSchemeDark,
			Verbose:     true,
		},
	}

	dir := t.TempDir()
	writeConfigFile(t, dir, GenerateCUE(orig))

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if *cfg != *orig {
		t.Errorf("round trip = %+v, want %+v", cfg, orig)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid",
			cfg:  *DefaultConfig(),
		},
		{
			name:    "whitespace cache dir",
			cfg:     Config{CacheDir: "   "},
			wantErr: ErrInvalidCacheDirPath,
		},
		{
			name:    "unknown runner",
			cfg:     Config{DefaultRunner: "container"},
			wantErr: ErrInvalidConfigRunnerMode,
		},
		{
			name:    "unknown color scheme",
			cfg:     Config{UI: UIConfig{ColorScheme: "sepia"}},
			wantErr: ErrInvalidColorScheme,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error should wrap %v", ErrInvalidConfig)
			}
		})
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestCacheDir(t *testing.T) {
	t.Parallel()

	t.Run("config override wins", func(t *testing.T) {
		t.Parallel()

		got, err := CacheDir(&Config{CacheDir: "/custom/cache"})
		if err != nil {
			t.Fatalf("CacheDir() error = %v", err)
		}
		if got != "/custom/cache" {
			t.Errorf("CacheDir() = %q, want /custom/cache", got)
		}
	})

	t.Run("default is app scoped", func(t *testing.T) {
		t.Parallel()

		got, err := CacheDir(DefaultConfig())
		if err != nil {
			t.Fatalf("CacheDir() error = %v", err)
		}
		if filepath.Base(got) != AppName {
			t.Errorf("CacheDir() = %q, want a %q directory", got, AppName)
		}
	})
}
