// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"crossforge/internal/issue"
	"crossforge/pkg/forgefile"
)

type (
	// Toolchain is a resolved NDK toolchain for one target triple. All tool
	// paths are absolute and live under BinDir. Resolution does not check
	// that the binaries exist; a dangling path surfaces when the build runs.
	Toolchain struct {
		// Root is the NDK root directory.
		Root string
		// BinDir is the prebuilt toolchain bin directory under Root.
		BinDir string
		// Triple is the target triple the tools produce output for.
		Triple string

		tools forgefile.ToolNames
	}
)

// Resolve locates the NDK named by spec.RootEnv and derives the toolchain
// bin prefix `<root>/toolchains/llvm/prebuilt/<host tag>/bin`. The getenv
// parameter defaults to os.Getenv when nil.
func Resolve(target forgefile.Target, getenv func(string) string) (*Toolchain, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	root := getenv(target.NDK.RootEnv)
	if root == "" {
		return nil, issue.NewErrorContext().
			WithOperation("locate NDK").
			WithResource(target.NDK.RootEnv).
			WithSuggestion(fmt.Sprintf("Set %s to the NDK installation directory", target.NDK.RootEnv)).
			WithSuggestion("Install an NDK, e.g. via sdkmanager 'ndk;21.4.7075529'").
			Wrap(fmt.Errorf("environment variable %s is not set", target.NDK.RootEnv)).
			BuildError()
	}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, issue.NewErrorContext().
			WithOperation("locate NDK").
			WithResource(root).
			WithSuggestion(fmt.Sprintf("Check that %s points at an existing directory", target.NDK.RootEnv)).
			Wrap(fmt.Errorf("NDK root is not a directory: %s", root)).
			BuildError()
	}

	return &Toolchain{
		Root:   root,
		BinDir: filepath.Join(root, "toolchains", "llvm", "prebuilt", target.NDK.HostTag, "bin"),
		Triple: target.Triple,
		tools:  effectiveTools(target),
	}, nil
}

// effectiveTools fills unset tool names from the triple's conventions.
// Binutils (ar, ld, ranlib) use the GNU prefix; the compilers use the
// API-suffixed clang wrappers when an API level is configured.
func effectiveTools(target forgefile.Target) forgefile.ToolNames {
	tools := target.NDK.Tools
	prefix := binutilsPrefix(target.Triple)

	if tools.AR == "" {
		tools.AR = prefix + "-ar"
	}
	if tools.Linker == "" {
		tools.Linker = prefix + "-ld"
	}
	if tools.Ranlib == "" {
		tools.Ranlib = prefix + "-ranlib"
	}
	if tools.CC == "" {
		tools.CC = clangName(target, "clang")
	}
	if tools.CXX == "" {
		tools.CXX = clangName(target, "clang++")
	}

	return tools
}

// binutilsPrefix maps a target triple to its GNU binutils prefix. The NDK
// names the 32-bit ARM binutils "arm-linux-androideabi" regardless of the
// armv7 triple used by the build tool.
func binutilsPrefix(triple string) string {
	if strings.HasPrefix(triple, "armv7") {
		return "arm" + strings.TrimPrefix(triple, "armv7")
	}
	if strings.HasPrefix(triple, "thumbv7neon") {
		return "arm" + strings.TrimPrefix(triple, "thumbv7neon")
	}
	return triple
}

// clangName returns the clang wrapper file name for the target. With an API
// level the NDK r19+ wrappers are used, e.g. "armv7a-linux-androideabi21-clang".
func clangName(target forgefile.Target, tool string) string {
	triple := target.Triple
	if strings.HasPrefix(triple, "armv7-") {
		triple = "armv7a-" + strings.TrimPrefix(triple, "armv7-")
	}
	if target.NDK.APILevel > 0 {
		return fmt.Sprintf("%s%d-%s", triple, target.NDK.APILevel, tool)
	}
	return fmt.Sprintf("%s-%s", triple, tool)
}

// ToolPath joins a tool file name to the toolchain bin directory.
func (tc *Toolchain) ToolPath(name string) string {
	return filepath.Join(tc.BinDir, name)
}

// ARPath returns the absolute archiver path.
func (tc *Toolchain) ARPath() string { return tc.ToolPath(tc.tools.AR) }

// LinkerPath returns the absolute linker path.
func (tc *Toolchain) LinkerPath() string { return tc.ToolPath(tc.tools.Linker) }

// BuildEnv returns the compiler environment for the build step: CC, CXX,
// AR, LD and RANLIB all rooted at BinDir.
func (tc *Toolchain) BuildEnv() map[string]string {
	return map[string]string{
		"CC":     tc.ToolPath(tc.tools.CC),
		"CXX":    tc.ToolPath(tc.tools.CXX),
		"AR":     tc.ToolPath(tc.tools.AR),
		"LD":     tc.ToolPath(tc.tools.Linker),
		"RANLIB": tc.ToolPath(tc.tools.Ranlib),
	}
}
