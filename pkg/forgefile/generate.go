// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"fmt"
	"strings"
)

// GenerateCUE renders a starter forgefile for `crossforge init`.
func GenerateCUE(triple string) string {
	if triple == "" {
		triple = "armv7-linux-androideabi"
	}

	var sb strings.Builder

	sb.WriteString("// crossforge pipeline definition\n\n")
	sb.WriteString("version: \"1\"\n\n")

	sb.WriteString("target: {\n")
	fmt.Fprintf(&sb, "\ttriple: %q\n", triple)
	sb.WriteString("\tndk: {\n")
	sb.WriteString("\t\troot_env: \"ANDROID_NDK_ROOT\"\n")
	sb.WriteString("\t\thost_tag: \"linux-x86_64\"\n")
	sb.WriteString("\t}\n")
	sb.WriteString("}\n\n")

	sb.WriteString("cache: {\n")
	sb.WriteString("\tlock_file: \"Cargo.lock\"\n")
	sb.WriteString("\tpaths: [\"~/.cargo/registry\", \"~/.cargo/git\", \"target\"]\n")
	sb.WriteString("\tprefix: \"cargo-deps\"\n")
	sb.WriteString("}\n\n")

	sb.WriteString("pipelines: default: [\n")
	sb.WriteString("\t{name: \"restore-deps\", kind: \"cache-restore\"},\n")
	fmt.Fprintf(&sb, "\t{name: \"register-target\", kind: \"target-add\"},\n")
	sb.WriteString("\t{name: \"cross-config\", kind: \"cargo-config\"},\n")
	sb.WriteString("\t{name: \"build\", kind: \"build\", args: [\"--release\"]},\n")
	sb.WriteString("\t{name: \"save-deps\", kind: \"cache-save\"},\n")
	sb.WriteString("]\n")

	return sb.String()
}
