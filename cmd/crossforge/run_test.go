// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crossforge/internal/config"
	"crossforge/internal/engine"
	"crossforge/pkg/forgefile"
)

const testForgefileDoc = `
version: "1"

target: {
	triple: "armv7-linux-androideabi"
	ndk: {
		api_level: 21
	}
}

cache: {
	lock_file: "Cargo.lock"
	paths: ["target"]
}

pipelines: default: [
	{name: "restore-deps", kind: "cache-restore"},
	{name: "register-target", kind: "target-add"},
	{name: "build", kind: "build", args: ["--release"]},
	{name: "save-deps", kind: "cache-save"},
]
`

type stubConfigProvider struct {
	cfg *config.Config
	err error
}

func (s *stubConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return s.cfg, s.err
}

func writeForgefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, forgefile.FileName)
	if err := os.WriteFile(path, []byte(testForgefileDoc), 0o644); err != nil {
		t.Fatalf("failed to write forgefile: %v", err)
	}
	return path
}

func testApp(cfg *config.Config) *App {
	return NewApp(Dependencies{
		Config: &stubConfigProvider{cfg: cfg},
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
}

func TestParseEnvVarPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "empty",
			pairs: nil,
			want:  nil,
		},
		{
			name:  "single pair",
			pairs: []string{"FOO=bar"},
			want:  map[string]string{"FOO": "bar"},
		},
		{
			name:  "value containing equals",
			pairs: []string{"RUSTFLAGS=-C target-feature=+neon"},
			want:  map[string]string{"RUSTFLAGS": "-C target-feature=+neon"},
		},
		{
			name:  "empty value",
			pairs: []string{"EMPTY="},
			want:  map[string]string{"EMPTY": ""},
		},
		{
			name:    "missing separator",
			pairs:   []string{"NOTAPAIR"},
			wantErr: true,
		},
		{
			name:    "empty key",
			pairs:   []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseEnvVarPairs(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEnvVarPairs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseEnvVarPairs() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseEnvVarPairs()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestLoadForgefile(t *testing.T) {
	t.Parallel()

	path := writeForgefile(t, t.TempDir())

	ff, err := loadForgefile(io.Discard, path)
	if err != nil {
		t.Fatalf("loadForgefile() error = %v", err)
	}
	if ff.Target.Triple != "armv7-linux-androideabi" {
		t.Errorf("Triple = %q, want armv7-linux-androideabi", ff.Target.Triple)
	}
	if !filepath.IsAbs(ff.FilePath) {
		t.Errorf("FilePath = %q, want absolute", ff.FilePath)
	}
}

func TestLoadForgefileMissing(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	_, err := loadForgefile(&stderr, filepath.Join(t.TempDir(), "nope.cue"))
	if err == nil {
		t.Fatal("expected error for missing forgefile")
	}
	if !strings.Contains(err.Error(), "nope.cue") {
		t.Errorf("error should name the missing file, got: %v", err)
	}
	if !strings.Contains(stderr.String(), "forgefile") {
		t.Error("missing forgefile should render the catalog entry to stderr")
	}
}

func TestLoadForgefileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), forgefile.FileName)
	if err := os.WriteFile(path, []byte(`pipelines: default: [{name: "x"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	_, err := loadForgefile(&stderr, path)
	if err == nil {
		t.Fatal("expected error for invalid forgefile")
	}
	if stderr.Len() == 0 {
		t.Error("invalid forgefile should render the catalog entry to stderr")
	}
}

func TestNewPipelineExecutor(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeForgefile(t, dir)

	cfg := config.DefaultConfig()
	cfg.CacheDir = config.CacheDirPath(filepath.Join(dir, "cache"))
	cfg.CargoConfigPath = filepath.Join(dir, "config.toml")

	executor, err := newPipelineExecutor(context.Background(), testApp(cfg), executorOptions{
		forgefilePath: path,
		workdir:       dir,
		envVarPairs:   []string{"CI=true"},
		skipCache:     true,
	})
	if err != nil {
		t.Fatalf("newPipelineExecutor() error = %v", err)
	}

	if executor.Forgefile.Target.Triple != "armv7-linux-androideabi" {
		t.Errorf("Triple = %q", executor.Forgefile.Target.Triple)
	}
	if !executor.SkipCache {
		t.Error("SkipCache should carry through")
	}
	if executor.DefaultRunner != forgefile.RunnerNative {
		t.Errorf("DefaultRunner = %q, want %q", executor.DefaultRunner, forgefile.RunnerNative)
	}
	if executor.Cache == nil || executor.Cache.Dir != filepath.Join(dir, "cache") {
		t.Errorf("Cache = %+v, want dir %s", executor.Cache, filepath.Join(dir, "cache"))
	}
	if executor.CargoConfigPath != cfg.CargoConfigPath {
		t.Errorf("CargoConfigPath = %q, want %q", executor.CargoConfigPath, cfg.CargoConfigPath)
	}
	if executor.EnvVars["CI"] != "true" {
		t.Errorf("EnvVars = %v, want CI=true", executor.EnvVars)
	}
}

func TestNewPipelineExecutorConfigError(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{
		Config: &stubConfigProvider{err: os.ErrPermission},
		Stdout: io.Discard,
		Stderr: io.Discard,
	})

	_, err := newPipelineExecutor(context.Background(), app, executorOptions{})
	if err == nil {
		t.Fatal("expected config load error to propagate")
	}
}

func TestRenderPlan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderPlan(&buf, &engine.Plan{
		Pipeline: "default",
		Steps: []forgefile.Step{
			{Name: "restore-deps", Kind: forgefile.KindCacheRestore},
			{Name: "build", Kind: forgefile.KindBuild, ContinueOnError: true},
		},
		ToolchainBin: "/opt/ndk/toolchains/llvm/prebuilt/linux-x86_64/bin",
		BuildEnv: map[string]string{
			"CC": "/opt/ndk/toolchains/llvm/prebuilt/linux-x86_64/bin/armv7a-linux-androideabi21-clang",
		},
	})

	out := buf.String()
	for _, want := range []string{"default", "restore-deps", "build", "continue-on-error", "/opt/ndk/toolchains/llvm/prebuilt/linux-x86_64/bin"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}
