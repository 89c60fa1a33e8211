// SPDX-License-Identifier: MPL-2.0

package cueutil_test

import (
	"strings"
	"testing"

	"cuelang.org/go/cue"

	"crossforge/pkg/cueutil"
)

const testSchema = `
#Thing: {
	name:  string & !=""
	count: int & >=0
}
`

type thing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecodeString_Valid(t *testing.T) {
	t.Parallel()

	result, err := cueutil.DecodeString[thing](testSchema, []byte(`name: "ndk", count: 3`), "#Thing")
	if err != nil {
		t.Fatalf("DecodeString() unexpected error: %v", err)
	}
	if result.Value.Name != "ndk" {
		t.Errorf("Name = %q, want %q", result.Value.Name, "ndk")
	}
	if result.Value.Count != 3 {
		t.Errorf("Count = %d, want 3", result.Value.Count)
	}

	// The unified value stays available for metadata lookups the decoded
	// struct does not carry.
	if result.Unified.Err() != nil {
		t.Errorf("unified value has error: %v", result.Unified.Err())
	}
	name, err := result.Unified.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		t.Fatalf("LookupPath(name): %v", err)
	}
	if name != "ndk" {
		t.Errorf("unified name = %q, want %q", name, "ndk")
	}
}

func TestDecodeString_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "wrong type", data: `name: "x", count: "three"`},
		{name: "empty name", data: `name: "", count: 1`},
		{name: "negative count", data: `name: "x", count: -1`},
		{name: "missing field", data: `name: "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cueutil.DecodeString[thing](testSchema, []byte(tt.data), "#Thing")
			if err == nil {
				t.Errorf("DecodeString(%q) expected error, got nil", tt.data)
			}
		})
	}
}

func TestDecodeString_FilenameInError(t *testing.T) {
	t.Parallel()

	_, err := cueutil.DecodeString[thing](testSchema, []byte(`count: {`), "#Thing",
		cueutil.WithFilename("forgefile.cue"))
	if err == nil {
		t.Fatal("expected syntax error, got nil")
	}
	if !strings.Contains(err.Error(), "forgefile.cue") {
		t.Errorf("error %q does not mention the filename", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := cueutil.CheckFileSize(make([]byte, 10), 10, "f.cue"); err != nil {
		t.Errorf("CheckFileSize() at limit returned error: %v", err)
	}
	if err := cueutil.CheckFileSize(make([]byte, 11), 10, "f.cue"); err == nil {
		t.Error("CheckFileSize() over limit returned nil error")
	}
}
