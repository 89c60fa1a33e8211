// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvOptions configures environment construction for one step.
// Precedence, lowest to highest:
//
//  1. Host environment
//  2. Injected engine variables (derived toolchain paths)
//  3. Forgefile target env
//  4. Step env
//  5. --env-file files (godotenv format, in flag order)
//  6. --env-var flags
type EnvOptions struct {
	// Environ returns the host environment; nil defaults to os.Environ.
	Environ func() []string
	// Injected contains engine-derived variables.
	Injected map[string]string
	// Target contains the forgefile target-level env.
	Target map[string]string
	// Step contains the step-level env.
	Step map[string]string
	// EnvFiles are dotenv paths, resolved against WorkDir when relative.
	EnvFiles []string
	// EnvVars are the highest-priority overrides.
	EnvVars map[string]string
	// WorkDir anchors relative EnvFiles paths.
	WorkDir string
}

// BuildEnv constructs the step environment following the documented
// precedence.
func BuildEnv(opts EnvOptions) (map[string]string, error) {
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ
	}

	env := make(map[string]string)
	for _, kv := range environ() {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			env[kv[:idx]] = kv[idx+1:]
		}
	}

	for k, v := range opts.Injected {
		env[k] = v
	}
	for k, v := range opts.Target {
		env[k] = v
	}
	for k, v := range opts.Step {
		env[k] = v
	}

	for _, path := range opts.EnvFiles {
		if !filepath.IsAbs(path) && opts.WorkDir != "" {
			path = filepath.Join(opts.WorkDir, path)
		}
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		for k, v := range vars {
			env[k] = v
		}
	}

	for k, v := range opts.EnvVars {
		env[k] = v
	}

	return env, nil
}
