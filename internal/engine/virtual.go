// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRunner executes scripts with the in-process mvdan/sh interpreter.
// It needs no shell on the agent, which keeps minimal CI images workable.
type VirtualRunner struct{}

// NewVirtualRunner creates a new virtual runner.
func NewVirtualRunner() *VirtualRunner {
	return &VirtualRunner{}
}

// Name returns the runner name.
func (r *VirtualRunner) Name() string {
	return "virtual"
}

// Available returns true; the interpreter is built in.
func (r *VirtualRunner) Available() bool {
	return true
}

// Validate parses the script to catch syntax errors before execution.
func (r *VirtualRunner) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Script) == "" {
		return fmt.Errorf("step '%s' has no script content to execute", ctx.Step.Name)
	}

	if _, err := syntax.NewParser().Parse(strings.NewReader(ctx.Script), ctx.Step.Name); err != nil {
		return fmt.Errorf("step '%s' script syntax error: %w", ctx.Step.Name, err)
	}

	return nil
}

// Execute runs the script in the interpreter.
func (r *VirtualRunner) Execute(ctx *ExecutionContext) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(ctx.Script), ctx.Step.Name)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to parse script: %w", err)}
	}

	ctx.defaultIO()

	runner, err := interp.New(
		interp.Dir(ctx.WorkDir),
		interp.Env(expand.ListEnviron(EnvToSlice(ctx.Env)...)),
		interp.StdIO(ctx.Stdin, ctx.Stdout, ctx.Stderr),
	)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	if err := runner.Run(ctx.Context, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &Result{ExitCode: int(exitStatus)}
		}
		return &Result{ExitCode: 1, Error: fmt.Errorf("script execution failed: %w", err)}
	}

	return &Result{ExitCode: 0}
}
