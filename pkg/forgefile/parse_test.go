// SPDX-License-Identifier: MPL-2.0

package forgefile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crossforge/pkg/forgefile"
)

const validDoc = `
version: "1"
description: "engine release build"

target: {
	triple: "armv7-linux-androideabi"
	ndk: {
		api_level: 21
	}
}

cache: {
	lock_file: "Cargo.lock"
	paths: ["~/.cargo/registry", "~/.cargo/git", "target"]
	prefix: "cargo-deps"
}

pipelines: default: [
	{name: "restore-deps", kind: "cache-restore"},
	{name: "install-jdk", kind: "script", script: "sdkman install java 8.0.282-zulu"},
	{name: "drop-old-ndk", kind: "prune", pattern: "/usr/local/lib/android/sdk/ndk/21.*"},
	{name: "install-rust", kind: "script", script: "rustup toolchain install stable --profile minimal"},
	{name: "cross-config", kind: "cargo-config"},
	{name: "register-target", kind: "target-add"},
	{name: "build", kind: "build", args: ["--release"]},
	{name: "save-deps", kind: "cache-save"},
]
`

func TestParseBytes_ValidDocument(t *testing.T) {
	t.Parallel()

	ff, err := forgefile.ParseBytes([]byte(validDoc), "forgefile.cue")
	if err != nil {
		t.Fatalf("ParseBytes() unexpected error: %v", err)
	}

	if ff.Target.Triple != "armv7-linux-androideabi" {
		t.Errorf("Triple = %q, want armv7-linux-androideabi", ff.Target.Triple)
	}
	if ff.FilePath != "forgefile.cue" {
		t.Errorf("FilePath = %q, want forgefile.cue", ff.FilePath)
	}

	steps, ok := ff.Pipeline(forgefile.DefaultPipeline)
	if !ok {
		t.Fatal("Pipeline(default) not found")
	}
	if len(steps) != 8 {
		t.Fatalf("len(steps) = %d, want 8", len(steps))
	}
	if steps[6].Kind != forgefile.KindBuild {
		t.Errorf("steps[6].Kind = %q, want build", steps[6].Kind)
	}
	if got := steps[6].Args; len(got) != 1 || got[0] != "--release" {
		t.Errorf("build args = %v, want [--release]", got)
	}
}

func TestParseBytes_AppliesNDKDefaults(t *testing.T) {
	t.Parallel()

	ff, err := forgefile.ParseBytes([]byte(validDoc), "forgefile.cue")
	if err != nil {
		t.Fatalf("ParseBytes() unexpected error: %v", err)
	}

	if got := ff.Target.NDK.RootEnv; got != "ANDROID_NDK_ROOT" {
		t.Errorf("RootEnv default = %q, want ANDROID_NDK_ROOT", got)
	}
	if got := ff.Target.NDK.HostTag; got != "linux-x86_64" {
		t.Errorf("HostTag default = %q, want linux-x86_64", got)
	}
	if got := ff.Target.NDK.APILevel; got != 21 {
		t.Errorf("APILevel = %d, want 21", got)
	}
}

func TestParseBytes_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing target",
			doc:  `version: "1", pipelines: default: [{name: "a", kind: "script", script: "true"}]`,
			want: "target",
		},
		{
			name: "unknown step kind",
			doc: `version: "1"
target: {triple: "t", ndk: {}}
pipelines: default: [{name: "a", kind: "compile"}]`,
			want: "kind",
		},
		{
			name: "bad step name",
			doc: `version: "1"
target: {triple: "t", ndk: {}}
pipelines: default: [{name: "Bad Name", kind: "script", script: "true"}]`,
			want: "name",
		},
		{
			name: "unknown field",
			doc: `version: "1"
target: {triple: "t", ndk: {}}
retries: 3
pipelines: default: [{name: "a", kind: "script", script: "true"}]`,
			want: "retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := forgefile.ParseBytes([]byte(tt.doc), "forgefile.cue")
			if err == nil {
				t.Fatal("ParseBytes() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParse_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := forgefile.Parse(filepath.Join(t.TempDir(), "missing.cue"))
	if err == nil {
		t.Error("Parse() on missing file returned nil error")
	}
}

func TestParse_RoundTripFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "forgefile.cue")
	if err := os.WriteFile(path, []byte(validDoc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ff, err := forgefile.Parse(path)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if ff.FilePath != path {
		t.Errorf("FilePath = %q, want %q", ff.FilePath, path)
	}
}

func TestGenerateCUE_ParsesCleanly(t *testing.T) {
	t.Parallel()

	doc := forgefile.GenerateCUE("aarch64-linux-android")
	ff, err := forgefile.ParseBytes([]byte(doc), "forgefile.cue")
	if err != nil {
		t.Fatalf("generated forgefile does not parse: %v", err)
	}
	if ff.Target.Triple != "aarch64-linux-android" {
		t.Errorf("Triple = %q, want aarch64-linux-android", ff.Target.Triple)
	}
	if _, ok := ff.Pipeline(forgefile.DefaultPipeline); !ok {
		t.Error("generated forgefile has no default pipeline")
	}
}
