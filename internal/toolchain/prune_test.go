// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrune_RemovesMatches(t *testing.T) {
	t.Parallel()

	ndkDir := t.TempDir()
	for _, version := range []string{"21.4.7075529", "21.0.6113669", "25.2.9519653"} {
		if err := os.MkdirAll(filepath.Join(ndkDir, version, "toolchains"), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}

	removed, err := Prune(filepath.Join(ndkDir, "21.*"))
	if err != nil {
		t.Fatalf("Prune() unexpected error: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("removed %d entries, want 2: %v", len(removed), removed)
	}

	if _, err := os.Stat(filepath.Join(ndkDir, "25.2.9519653")); err != nil {
		t.Errorf("unmatched version was removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ndkDir, "21.4.7075529")); !os.IsNotExist(err) {
		t.Error("matched version still present after prune")
	}
}

func TestPrune_NoMatchesIsIdempotent(t *testing.T) {
	t.Parallel()

	pattern := filepath.Join(t.TempDir(), "ndk", "21.*")

	for i := 0; i < 2; i++ {
		removed, err := Prune(pattern)
		if err != nil {
			t.Fatalf("Prune() run %d unexpected error: %v", i+1, err)
		}
		if len(removed) != 0 {
			t.Errorf("Prune() run %d removed %v, want nothing", i+1, removed)
		}
	}
}

func TestPrune_BadPattern(t *testing.T) {
	t.Parallel()

	if _, err := Prune("[unclosed"); err == nil {
		t.Error("Prune() with malformed pattern returned nil error")
	}
}
