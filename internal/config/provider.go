// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs. The zero value
// loads config.cue from the platform config directory.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// Carries the --config flag.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// CacheDirPath replaces cache_dir after loading, regardless of what the
	// config file says. Carries the --cache-dir flag.
	CacheDirPath string
}

// Provider loads crossforge configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates the file-backed configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source and applies the
// flag-level overrides on top of it.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	if opts.CacheDirPath != "" {
		cfg.CacheDir = CacheDirPath(opts.CacheDirPath)
		if err := cfg.CacheDir.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
