// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"crossforge/internal/issue"
	"crossforge/pkg/platform"
)

// NativeRunner executes scripts using the system's default shell.
type NativeRunner struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the script
	ShellArgs []string
}

// NewNativeRunner creates a new native runner.
func NewNativeRunner() *NativeRunner {
	return &NativeRunner{}
}

// Name returns the runner name.
func (r *NativeRunner) Name() string {
	return "native"
}

// Available returns whether a usable shell exists.
func (r *NativeRunner) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Validate checks if the step can be executed.
func (r *NativeRunner) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Script) == "" {
		return fmt.Errorf("step '%s' has no script content to execute", ctx.Step.Name)
	}
	return nil
}

// Execute runs the script using the system shell.
func (r *NativeRunner) Execute(ctx *ExecutionContext) *Result {
	shell, err := r.getShell()
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	ctx.defaultIO()

	args := r.getShellArgs(shell)
	args = append(args, ctx.Script)

	cmd := exec.CommandContext(ctx.Context, shell, args...)
	cmd.Dir = ctx.WorkDir
	cmd.Env = EnvToSlice(ctx.Env)
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	cmd.Stdin = ctx.Stdin

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &Result{ExitCode: exitErr.ExitCode()}
		}
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to execute step '%s': %w", ctx.Step.Name, err)}
	}

	return &Result{ExitCode: 0}
}

// getShell determines which shell to use.
func (r *NativeRunner) getShell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	switch runtime.GOOS {
	case platform.Windows:
		if pwsh, err := exec.LookPath("pwsh"); err == nil {
			return pwsh, nil
		}
		if ps, err := exec.LookPath("powershell"); err == nil {
			return ps, nil
		}
		return exec.LookPath("cmd")
	default:
		if shell := os.Getenv("SHELL"); shell != "" {
			return shell, nil
		}
		if bash, err := exec.LookPath("bash"); err == nil {
			return bash, nil
		}
		if sh, err := exec.LookPath("sh"); err == nil {
			return sh, nil
		}
		return "", issue.NewErrorContext().
			WithOperation("find a shell").
			WithSuggestion("Install bash or set the SHELL environment variable").
			WithSuggestion("Or mark the step with runner: \"virtual\" to use the built-in interpreter").
			Wrap(fmt.Errorf("no shell found")).
			BuildError()
	}
}

// getShellArgs returns the arguments to pass to the shell.
func (r *NativeRunner) getShellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return r.ShellArgs
	}

	base := filepath.Base(shell)
	base = strings.TrimSuffix(base, ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		// Assume POSIX shell
		return []string{"-c"}
	}
}
