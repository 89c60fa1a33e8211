// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"crossforge/pkg/forgefile"
)

// Runner type constants for the script execution backends.
const (
	RunnerTypeNative  RunnerType = "native"
	RunnerTypeVirtual RunnerType = "virtual"
)

type (
	// ExecutionContext contains everything a Runner needs to execute one
	// script step.
	ExecutionContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// Step is the step being executed.
		Step *forgefile.Step
		// Script is the resolved script body.
		Script string
		// Env is the fully resolved environment for the step.
		Env map[string]string
		// WorkDir is the working directory.
		WorkDir string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
	}

	// Result contains the outcome of a step execution.
	Result struct {
		// ExitCode is the exit code of the step.
		ExitCode int
		// Error contains any infrastructure error that occurred.
		Error error
	}

	// Runner defines the interface for script step execution.
	Runner interface {
		// Name returns the runner name.
		Name() string
		// Available returns whether this runner works on the current system.
		Available() bool
		// Validate checks if the context can be executed with this runner.
		Validate(ctx *ExecutionContext) error
		// Execute runs the script step.
		Execute(ctx *ExecutionContext) *Result
	}

	// RunnerType identifies a script execution backend.
	//
	//nolint:revive // RunnerType is more descriptive than Type for external callers
	RunnerType string

	// Registry holds the available runners.
	Registry struct {
		runners map[RunnerType]Runner
	}
)

// Success returns true if the step executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}

// NewRegistry creates a registry with the production runners registered.
func NewRegistry() *Registry {
	r := &Registry{runners: make(map[RunnerType]Runner)}
	r.Register(RunnerTypeNative, NewNativeRunner())
	r.Register(RunnerTypeVirtual, NewVirtualRunner())
	return r
}

// Register adds a runner to the registry.
func (r *Registry) Register(typ RunnerType, rt Runner) {
	r.runners[typ] = rt
}

// Get returns a runner by type.
func (r *Registry) Get(typ RunnerType) (Runner, error) {
	rt, ok := r.runners[typ]
	if !ok {
		return nil, fmt.Errorf("runner '%s' not registered", typ)
	}
	return rt, nil
}

// ForMode resolves a forgefile runner mode to a registered runner.
func (r *Registry) ForMode(mode forgefile.RunnerMode) (Runner, error) {
	return r.Get(RunnerType(mode))
}

// Execute validates and runs a script step with the runner for mode.
func (r *Registry) Execute(mode forgefile.RunnerMode, ctx *ExecutionContext) *Result {
	rt, err := r.ForMode(mode)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	if !rt.Available() {
		return &Result{
			ExitCode: 1,
			Error:    fmt.Errorf("runner '%s' is not available on this system", rt.Name()),
		}
	}

	if err := rt.Validate(ctx); err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	return rt.Execute(ctx)
}

// EnvToSlice converts an environment map to "KEY=VALUE" form.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}

// defaultIO fills unset IO fields with the process streams.
func (ctx *ExecutionContext) defaultIO() {
	if ctx.Stdout == nil {
		ctx.Stdout = os.Stdout
	}
	if ctx.Stderr == nil {
		ctx.Stderr = os.Stderr
	}
	if ctx.Stdin == nil {
		ctx.Stdin = os.Stdin
	}
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
}
