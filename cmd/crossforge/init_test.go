// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crossforge/pkg/forgefile"
)

func TestRunInitCreatesForgefile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	initForce = false
	initTriple = "aarch64-linux-android"
	t.Cleanup(func() { initTriple = "armv7-linux-androideabi" })

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, forgefile.FileName))
	if err != nil {
		t.Fatalf("forgefile not created: %v", err)
	}
	if !strings.Contains(string(data), "aarch64-linux-android") {
		t.Error("scaffold should use the requested triple")
	}

	// The scaffold must itself be a valid forgefile.
	if _, err := forgefile.ParseBytes(data, forgefile.FileName); err != nil {
		t.Errorf("scaffold does not parse: %v", err)
	}
}

func TestRunInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(forgefile.FileName, []byte("version: \"1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	initForce = false
	err := runInit(initCmd, nil)
	if err == nil {
		t.Fatal("expected error when forgefile exists")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("error should mention --force, got: %v", err)
	}
}

func TestRunInitForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(forgefile.FileName, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	initForce = true
	t.Cleanup(func() { initForce = false })

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}

	data, err := os.ReadFile(forgefile.FileName)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "stale" {
		t.Error("forgefile should have been overwritten")
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	wrapped := errors.New("step 'build' failed")
	err := &ExitError{Code: 101, Err: wrapped}

	if err.Error() != wrapped.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), wrapped.Error())
	}
	if !errors.Is(err, wrapped) {
		t.Error("ExitError should unwrap to the underlying error")
	}

	bare := &ExitError{Code: 3}
	if bare.Error() != "exit status 3" {
		t.Errorf("Error() = %q, want \"exit status 3\"", bare.Error())
	}
}

func TestGetVersionString(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "dev"
	if got := getVersionString(); got != "dev (built from source)" {
		t.Errorf("getVersionString() = %q", got)
	}

	Version = "1.2.3"
	if got := getVersionString(); !strings.Contains(got, "1.2.3") || !strings.Contains(got, "commit") {
		t.Errorf("getVersionString() = %q, want version and commit", got)
	}
}
