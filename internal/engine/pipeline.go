// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"crossforge/internal/cache"
	"crossforge/internal/issue"
	"crossforge/internal/toolchain"
	"crossforge/pkg/forgefile"
)

// ToolchainBinVar is the environment variable through which the derived
// toolchain bin prefix is exposed to every step.
const ToolchainBinVar = "CROSSFORGE_TOOLCHAIN_BIN"

// Step status constants.
const (
	StatusOK      StepStatus = "ok"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

type (
	// StepStatus describes how a step ended.
	StepStatus string

	// StepResult records the outcome of one executed step.
	StepResult struct {
		Name     string
		Kind     forgefile.StepKind
		Status   StepStatus
		ExitCode int
		Err      error
		Duration time.Duration
		// Detail carries step-specific information such as "cache hit" or
		// the list of pruned directories.
		Detail string
	}

	// RunSummary aggregates the results of a pipeline run. ExitCode is the
	// exit code of the first failing step, or 0 when all steps succeeded.
	RunSummary struct {
		Pipeline string
		Steps    []StepResult
		ExitCode int
		Failed   *StepResult
	}

	// Plan is the resolved but unexecuted view of a pipeline, for
	// `crossforge plan`.
	Plan struct {
		Pipeline     string
		Steps        []forgefile.Step
		ToolchainBin string
		BuildEnv     map[string]string
	}

	// Executor runs pipelines from one forgefile. Fields other than
	// Forgefile are optional and default to production behavior.
	Executor struct {
		Forgefile *forgefile.Forgefile
		Runners   *Registry
		Cache     *cache.Store
		Logger    *log.Logger

		// WorkDir is the working directory for steps and relative paths.
		// Defaults to the forgefile's directory.
		WorkDir string

		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader

		// EnvFiles and EnvVars come from the --env-file / --env-var flags.
		EnvFiles []string
		EnvVars  map[string]string

		// SkipCache turns cache-restore and cache-save into logged no-ops.
		SkipCache bool

		// DefaultRunner applies to script steps without a runner override.
		DefaultRunner forgefile.RunnerMode

		// CargoConfigPath overrides the cargo config location for
		// cargo-config steps without an explicit path.
		CargoConfigPath string

		// RustupBin and CargoBin name the toolchain management and build
		// binaries. Defaults: "rustup", "cargo".
		RustupBin string
		CargoBin  string

		// Getenv and Environ are test seams; nil means the real process
		// environment.
		Getenv  func(string) string
		Environ func() []string

		tc *toolchain.Toolchain
	}
)

// Run executes the named pipeline sequentially, fail-fast. A non-nil error
// means the run could not start (unknown pipeline, unresolvable toolchain);
// step failures are reported through the summary instead.
func (e *Executor) Run(ctx context.Context, name string) (*RunSummary, error) {
	steps, ok := e.Forgefile.Pipeline(name)
	if !ok {
		return nil, issue.NewErrorContext().
			WithOperation("find pipeline").
			WithResource(name).
			WithSuggestion(fmt.Sprintf("Defined pipelines: %s", strings.Join(e.Forgefile.PipelineNames(), ", "))).
			Wrap(fmt.Errorf("pipeline %q is not defined in %s", name, e.Forgefile.FilePath)).
			BuildError()
	}

	if err := e.resolveToolchain(steps); err != nil {
		return nil, err
	}

	summary := &RunSummary{Pipeline: name}
	logger := e.logger()

	for i := range steps {
		step := &steps[i]

		logger.Info("step starting", "pipeline", name, "step", step.Name, "kind", step.Kind)
		start := time.Now()

		result := e.runStep(ctx, step)

		sr := StepResult{
			Name:     step.Name,
			Kind:     step.Kind,
			Status:   StatusOK,
			ExitCode: result.ExitCode,
			Err:      result.Error,
			Duration: time.Since(start),
			Detail:   result.detail,
		}

		if result.Success() {
			logger.Info("step finished", "step", step.Name, "duration", sr.Duration.Round(time.Millisecond))
			summary.Steps = append(summary.Steps, sr)
			continue
		}

		sr.Status = StatusFailed
		if sr.ExitCode == 0 {
			sr.ExitCode = 1
		}
		summary.Steps = append(summary.Steps, sr)

		if step.ContinueOnError {
			logger.Warn("step failed, continuing", "step", step.Name, "exit_code", sr.ExitCode, "error", sr.Err)
			continue
		}

		logger.Error("step failed", "step", step.Name, "exit_code", sr.ExitCode, "error", sr.Err)
		failed := summary.Steps[len(summary.Steps)-1]
		summary.Failed = &failed
		summary.ExitCode = sr.ExitCode
		break
	}

	return summary, nil
}

// Plan resolves the named pipeline without executing it.
func (e *Executor) Plan(name string) (*Plan, error) {
	steps, ok := e.Forgefile.Pipeline(name)
	if !ok {
		return nil, issue.NewErrorContext().
			WithOperation("find pipeline").
			WithResource(name).
			WithSuggestion(fmt.Sprintf("Defined pipelines: %s", strings.Join(e.Forgefile.PipelineNames(), ", "))).
			Wrap(fmt.Errorf("pipeline %q is not defined in %s", name, e.Forgefile.FilePath)).
			BuildError()
	}

	if err := e.resolveToolchain(steps); err != nil {
		return nil, err
	}

	plan := &Plan{Pipeline: name, Steps: steps}
	if e.tc != nil {
		plan.ToolchainBin = e.tc.BinDir
		plan.BuildEnv = e.tc.BuildEnv()
	}
	return plan, nil
}

// stepResult is the internal result form with an optional detail string.
type stepResult struct {
	Result
	detail string
}

func (e *Executor) runStep(ctx context.Context, step *forgefile.Step) *stepResult {
	switch step.Kind {
	case forgefile.KindCheckout:
		return e.runCheckout(ctx, step)
	case forgefile.KindScript:
		return e.runScript(ctx, step, step.Script)
	case forgefile.KindPrune:
		return e.runPrune(step)
	case forgefile.KindCargoConfig:
		return e.runCargoConfig(step)
	case forgefile.KindTargetAdd:
		return e.runScript(ctx, step, fmt.Sprintf("%s target add %s", e.rustup(), e.Forgefile.Target.Triple))
	case forgefile.KindCacheRestore:
		return e.runCacheRestore()
	case forgefile.KindCacheSave:
		return e.runCacheSave()
	case forgefile.KindBuild:
		return e.runBuild(ctx, step)
	default:
		return failure(fmt.Errorf("unknown step kind %q", step.Kind))
	}
}

func (e *Executor) runCheckout(ctx context.Context, step *forgefile.Step) *stepResult {
	if step.Repo == "" {
		// Bare checkout: the CI runner already placed the sources; just make
		// sure the workdir exists.
		if err := os.MkdirAll(e.workDir(), 0o755); err != nil {
			return failure(fmt.Errorf("failed to prepare workdir: %w", err))
		}
		return success("")
	}

	var sb strings.Builder
	sb.WriteString("if [ -d .git ]; then\n")
	sb.WriteString("\tgit fetch origin\n")
	if step.Ref != "" {
		fmt.Fprintf(&sb, "\tgit checkout %s\n", step.Ref)
	}
	sb.WriteString("else\n")
	fmt.Fprintf(&sb, "\tgit clone %s .\n", step.Repo)
	if step.Ref != "" {
		fmt.Fprintf(&sb, "\tgit checkout %s\n", step.Ref)
	}
	sb.WriteString("fi\n")

	return e.runScript(ctx, step, sb.String())
}

func (e *Executor) runScript(ctx context.Context, step *forgefile.Step, script string) *stepResult {
	env, err := e.buildStepEnv(step, nil)
	if err != nil {
		return failure(err)
	}

	execCtx := &ExecutionContext{
		Context: ctx,
		Step:    step,
		Script:  script,
		Env:     env,
		WorkDir: e.workDir(),
		Stdout:  e.Stdout,
		Stderr:  e.Stderr,
		Stdin:   e.Stdin,
	}

	result := e.runners().Execute(step.EffectiveRunner(e.DefaultRunner), execCtx)
	return &stepResult{Result: *result}
}

func (e *Executor) runPrune(step *forgefile.Step) *stepResult {
	removed, err := toolchain.Prune(step.Pattern)
	if err != nil {
		return failure(err)
	}
	if len(removed) == 0 {
		return success("nothing matched")
	}
	return success(fmt.Sprintf("removed %s", strings.Join(removed, ", ")))
}

func (e *Executor) runCargoConfig(step *forgefile.Step) *stepResult {
	path := step.Path
	if path == "" {
		path = e.CargoConfigPath
	}
	if path == "" {
		var err error
		path, err = toolchain.DefaultCargoConfigPath()
		if err != nil {
			return failure(err)
		}
	}

	if err := toolchain.WriteCargoConfig(path, e.tc); err != nil {
		return failure(err)
	}
	return success("wrote " + path)
}

func (e *Executor) runCacheRestore() *stepResult {
	if e.SkipCache {
		return success("cache skipped")
	}

	key, err := e.cacheKey()
	if err != nil {
		return failure(err)
	}

	hit, err := e.Cache.Restore(key, e.workDir())
	if err != nil {
		return failure(err)
	}
	if !hit {
		// Cache miss degrades to a cold build.
		e.logger().Info("cache miss", "key", key)
		return success("miss: " + key)
	}
	return success("hit: " + key)
}

func (e *Executor) runCacheSave() *stepResult {
	if e.SkipCache {
		return success("cache skipped")
	}

	key, err := e.cacheKey()
	if err != nil {
		return failure(err)
	}

	if err := e.Cache.Save(key, e.workDir(), e.Forgefile.Cache.Paths); err != nil {
		return failure(err)
	}
	return success("saved: " + key)
}

func (e *Executor) runBuild(ctx context.Context, step *forgefile.Step) *stepResult {
	args := append([]string{"build", "--target", e.Forgefile.Target.Triple}, step.Args...)
	script := e.cargo() + " " + strings.Join(args, " ")

	env, err := e.buildStepEnv(step, e.tc.BuildEnv())
	if err != nil {
		return failure(err)
	}

	execCtx := &ExecutionContext{
		Context: ctx,
		Step:    step,
		Script:  script,
		Env:     env,
		WorkDir: e.workDir(),
		Stdout:  e.Stdout,
		Stderr:  e.Stderr,
		Stdin:   e.Stdin,
	}

	result := e.runners().Execute(step.EffectiveRunner(e.DefaultRunner), execCtx)
	return &stepResult{Result: *result}
}

// resolveToolchain resolves the NDK toolchain once per run when the
// pipeline contains a step needing it. Missing NDK configuration only
// fails pipelines that would use it.
func (e *Executor) resolveToolchain(steps []forgefile.Step) error {
	if e.tc != nil {
		return nil
	}

	needed := false
	for _, step := range steps {
		if step.Kind == forgefile.KindCargoConfig || step.Kind == forgefile.KindBuild {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	tc, err := toolchain.Resolve(e.Forgefile.Target, e.Getenv)
	if err != nil {
		return err
	}
	e.tc = tc
	return nil
}

// buildStepEnv assembles the environment for one step, injecting the
// derived toolchain bin prefix and any extra engine variables.
func (e *Executor) buildStepEnv(step *forgefile.Step, extra map[string]string) (map[string]string, error) {
	injected := make(map[string]string, len(extra)+1)
	if e.tc != nil {
		injected[ToolchainBinVar] = e.tc.BinDir
	}
	for k, v := range extra {
		injected[k] = v
	}

	return BuildEnv(EnvOptions{
		Environ:  e.Environ,
		Injected: injected,
		Target:   e.Forgefile.Target.Env,
		Step:     step.Env,
		EnvFiles: e.EnvFiles,
		EnvVars:  e.EnvVars,
		WorkDir:  e.workDir(),
	})
}

func (e *Executor) cacheKey() (string, error) {
	lock := e.Forgefile.Cache.LockFile
	if !filepath.IsAbs(lock) {
		lock = filepath.Join(e.workDir(), lock)
	}
	return cache.Key(e.Forgefile.Cache.Prefix, lock)
}

func (e *Executor) workDir() string {
	if e.WorkDir != "" {
		return e.WorkDir
	}
	return filepath.Dir(e.Forgefile.FilePath)
}

func (e *Executor) runners() *Registry {
	if e.Runners == nil {
		e.Runners = NewRegistry()
	}
	return e.Runners
}

func (e *Executor) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

func (e *Executor) rustup() string {
	if e.RustupBin != "" {
		return e.RustupBin
	}
	return "rustup"
}

func (e *Executor) cargo() string {
	if e.CargoBin != "" {
		return e.CargoBin
	}
	return "cargo"
}

func success(detail string) *stepResult {
	return &stepResult{detail: detail}
}

func failure(err error) *stepResult {
	return &stepResult{Result: Result{ExitCode: 1, Error: err}}
}
