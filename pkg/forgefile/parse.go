// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	_ "embed"
	"fmt"
	"os"

	"crossforge/pkg/cueutil"
)

//go:embed forgefile_schema.cue
var forgefileSchema string

// FileName is the conventional forgefile name searched for in the working
// directory when no explicit path is given.
const FileName = "forgefile.cue"

// Parse reads and parses a forgefile from the given path.
func Parse(path string) (*Forgefile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forgefile at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses forgefile content from bytes. The path parameter is used
// only for error messages and FilePath bookkeeping.
func ParseBytes(data []byte, path string) (*Forgefile, error) {
	result, err := cueutil.DecodeString[Forgefile](
		forgefileSchema,
		data,
		"#Forgefile",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return nil, err
	}

	ff := result.Value
	ff.FilePath = path
	applyDefaults(ff)

	if errs := ff.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return ff, nil
}

// applyDefaults fills the NDK fields the schema leaves optional.
func applyDefaults(ff *Forgefile) {
	ndk := &ff.Target.NDK
	if ndk.RootEnv == "" {
		ndk.RootEnv = "ANDROID_NDK_ROOT"
	}
	if ndk.HostTag == "" {
		ndk.HostTag = "linux-x86_64"
	}
	if ff.Cache.Prefix == "" && ff.Cache.LockFile != "" {
		ff.Cache.Prefix = "deps"
	}
}
