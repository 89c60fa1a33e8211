// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// RunnerNative runs scripts in the host system shell.
	// Defined locally to avoid coupling config to pkg/forgefile.
	RunnerNative RunnerMode = "native"
	// RunnerVirtual runs scripts in the embedded mvdan/sh interpreter.
	RunnerVirtual RunnerMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidConfigRunnerMode is returned when a config RunnerMode value is not recognized.
	ErrInvalidConfigRunnerMode = errors.New("invalid runner mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RunnerMode specifies the execution backend for script steps.
	// Defined locally to avoid coupling config to pkg/forgefile;
	// the command layer casts to forgefile.RunnerMode at the boundary.
	RunnerMode string

	// InvalidConfigRunnerModeError is returned when a config RunnerMode value is not
	// recognized. It wraps ErrInvalidConfigRunnerMode for errors.Is() compatibility.
	InvalidConfigRunnerModeError struct {
		Value RunnerMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// CacheDirPath represents a filesystem path to the cache bundle directory.
	// The zero value ("") is valid and means "use the default cache directory".
	// Non-zero values must not be whitespace-only.
	CacheDirPath string

	// InvalidCacheDirPathError is returned when a CacheDirPath value is
	// non-empty but whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// UIConfig holds user interface settings.
	UIConfig struct {
		// ColorScheme controls terminal color output.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables detailed logging output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the application configuration.
	Config struct {
		// CacheDir overrides where dependency cache bundles are stored.
		CacheDir CacheDirPath `json:"cache_dir" mapstructure:"cache_dir"`
		// DefaultRunner sets the runner for script steps without an override.
		DefaultRunner RunnerMode `json:"default_runner" mapstructure:"default_runner"`
		// CargoConfigPath overrides the cargo config file written by
		// cargo-config steps. Empty means ~/.cargo/config.toml.
		CargoConfigPath string `json:"cargo_config_path,omitempty" mapstructure:"cargo_config_path"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}
)

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:      "",
		DefaultRunner: RunnerNative,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

func (e *InvalidConfigRunnerModeError) Error() string {
	return fmt.Sprintf("%v: %q (must be %q or %q)", ErrInvalidConfigRunnerMode, e.Value, RunnerNative, RunnerVirtual)
}

func (e *InvalidConfigRunnerModeError) Unwrap() error { return ErrInvalidConfigRunnerMode }

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("%v: %q (must be %q, %q or %q)", ErrInvalidColorScheme, e.Value, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("%v: %q is whitespace-only", ErrInvalidCacheDirPath, e.Value)
}

func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks the runner mode value. The zero value is accepted and
// means "use the built-in default".
func (m RunnerMode) Validate() error {
	switch m {
	case "", RunnerNative, RunnerVirtual:
		return nil
	default:
		return &InvalidConfigRunnerModeError{Value: m}
	}
}

// Validate checks the color scheme value.
func (c ColorScheme) Validate() error {
	switch c {
	case "", ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// Validate checks the cache dir path value.
func (p CacheDirPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidCacheDirPathError{Value: p}
	}
	return nil
}

// Validate checks all config fields and collects their errors.
func (c *Config) Validate() error {
	var fieldErrors []error

	if err := c.CacheDir.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if err := c.DefaultRunner.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}

	if len(fieldErrors) > 0 {
		return &InvalidConfigError{FieldErrors: fieldErrors}
	}
	return nil
}
