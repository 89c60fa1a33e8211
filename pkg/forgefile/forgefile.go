// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Step kind constants, one per provisioning operation.
const (
	KindCheckout     StepKind = "checkout"
	KindScript       StepKind = "script"
	KindPrune        StepKind = "prune"
	KindCargoConfig  StepKind = "cargo-config"
	KindTargetAdd    StepKind = "target-add"
	KindCacheRestore StepKind = "cache-restore"
	KindCacheSave    StepKind = "cache-save"
	KindBuild        StepKind = "build"
)

// Runner mode constants for script-bearing steps.
const (
	RunnerDefault RunnerMode = ""
	RunnerNative  RunnerMode = "native"
	RunnerVirtual RunnerMode = "virtual"
)

// DefaultPipeline is the pipeline executed when no name is given on the
// command line.
const DefaultPipeline = "default"

type (
	// StepKind identifies what a step does.
	StepKind string

	// RunnerMode selects the execution backend for script steps.
	RunnerMode string

	// Forgefile is the root of a parsed pipeline document.
	Forgefile struct {
		// Version is the schema version of the document.
		Version string `json:"version"`
		// Description is an optional human-readable summary.
		Description string `json:"description,omitempty"`
		// Target describes the cross-compilation target.
		Target Target `json:"target"`
		// Cache describes the lockfile-keyed dependency cache.
		Cache CacheSpec `json:"cache,omitempty"`
		// Pipelines maps pipeline names to ordered step lists.
		Pipelines map[string][]Step `json:"pipelines"`

		// FilePath records where the document was loaded from. Populated by
		// Parse, not part of the document itself.
		FilePath string `json:"-"`
	}

	// Target names the cross-compilation target and the NDK toolchain that
	// produces binaries for it.
	Target struct {
		// Triple is the target triple, e.g. "armv7-linux-androideabi".
		Triple string `json:"triple"`
		// NDK locates and describes the NDK toolchain.
		NDK NDKSpec `json:"ndk"`
		// Env contains extra environment variables applied to every step.
		Env map[string]string `json:"env,omitempty"`
	}

	// NDKSpec locates the NDK and names the per-target tool binaries under
	// its prebuilt toolchain directory.
	NDKSpec struct {
		// RootEnv is the environment variable naming the NDK root directory.
		RootEnv string `json:"root_env,omitempty"`
		// HostTag selects the prebuilt host directory, e.g. "linux-x86_64".
		HostTag string `json:"host_tag,omitempty"`
		// APILevel is the Android API level for API-suffixed clang wrappers.
		APILevel int `json:"api_level,omitempty"`
		// Tools names the tool binaries relative to the toolchain bin dir.
		Tools ToolNames `json:"tools,omitempty"`
	}

	// ToolNames holds the file names of the toolchain binaries.
	ToolNames struct {
		CC     string `json:"cc,omitempty"`
		CXX    string `json:"cxx,omitempty"`
		AR     string `json:"ar,omitempty"`
		Linker string `json:"linker,omitempty"`
		Ranlib string `json:"ranlib,omitempty"`
	}

	// CacheSpec describes the dependency cache bundle.
	CacheSpec struct {
		// LockFile is the file whose hash keys the cache.
		LockFile string `json:"lock_file"`
		// Paths are the directories bundled into the cache.
		Paths []string `json:"paths"`
		// Prefix namespaces cache keys, e.g. "cargo-deps".
		Prefix string `json:"prefix,omitempty"`
	}

	// Step is one pipeline entry. Exactly the fields relevant to its Kind
	// are set; Validate enforces this.
	Step struct {
		// Name identifies the step in logs and error reports.
		Name string `json:"name"`
		// Kind selects the step behavior.
		Kind StepKind `json:"kind"`
		// Runner overrides the execution backend for script steps.
		Runner RunnerMode `json:"runner,omitempty"`
		// Script is the shell script body for script steps.
		Script string `json:"script,omitempty"`
		// Repo and Ref configure checkout steps.
		Repo string `json:"repo,omitempty"`
		Ref  string `json:"ref,omitempty"`
		// Pattern is the glob removed by prune steps.
		Pattern string `json:"pattern,omitempty"`
		// Path overrides the output file for cargo-config steps.
		Path string `json:"path,omitempty"`
		// Args are extra arguments for build steps.
		Args []string `json:"args,omitempty"`
		// Env contains step-scoped environment variables.
		Env map[string]string `json:"env,omitempty"`
		// ContinueOnError logs a failure and proceeds instead of aborting.
		ContinueOnError bool `json:"continue_on_error,omitempty"`
	}
)

// Pipeline returns the named step list, or false when absent.
func (f *Forgefile) Pipeline(name string) ([]Step, bool) {
	steps, ok := f.Pipelines[name]
	return steps, ok
}

// PipelineNames returns the defined pipeline names in sorted order.
func (f *Forgefile) PipelineNames() []string {
	names := maps.Keys(f.Pipelines)
	slices.Sort(names)
	return names
}

// IsScript reports whether the step executes a shell script.
func (s *Step) IsScript() bool {
	return s.Kind == KindScript || s.Kind == KindCheckout
}

// EffectiveRunner resolves the runner mode, falling back to the given
// default when the step does not override it.
func (s *Step) EffectiveRunner(fallback RunnerMode) RunnerMode {
	if s.Runner != RunnerDefault {
		return s.Runner
	}
	if fallback != RunnerDefault {
		return fallback
	}
	return RunnerNative
}
