// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"crossforge/internal/cache"
	"crossforge/internal/config"
	"crossforge/internal/engine"
	"crossforge/internal/issue"
	"crossforge/pkg/forgefile"
)

var (
	runForgefilePath string
	runWorkdir       string
	runEnvFiles      []string
	runEnvVars       []string
	runSkipCache     bool
	runDryRun        bool

	// runCmd executes a pipeline from the forgefile
	runCmd = &cobra.Command{
		Use:   "run [pipeline]",
		Short: "Execute a provisioning pipeline",
		Long: `Execute a provisioning pipeline from the forgefile.

Steps run strictly in the order they are defined. The first failing step
aborts the run and its exit code becomes the exit code of crossforge,
unless the step sets continue_on_error.

Without a pipeline argument the 'default' pipeline runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringVarP(&runForgefilePath, "forgefile", "f", "", "path to the forgefile (default is ./forgefile.cue)")
	runCmd.Flags().StringVarP(&runWorkdir, "workdir", "w", "", "working directory for steps (default is the forgefile's directory)")
	runCmd.Flags().StringArrayVar(&runEnvFiles, "env-file", nil, "dotenv file(s) loaded into the step environment")
	runCmd.Flags().StringArrayVar(&runEnvVars, "env-var", nil, "KEY=VALUE override(s) with highest precedence")
	runCmd.Flags().BoolVar(&runSkipCache, "skip-cache", false, "turn cache-restore and cache-save steps into no-ops")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "resolve the pipeline and print it without executing")

	planCmd.Flags().StringVarP(&runForgefilePath, "forgefile", "f", "", "path to the forgefile (default is ./forgefile.cue)")
	planCmd.Flags().StringVarP(&runWorkdir, "workdir", "w", "", "working directory for steps (default is the forgefile's directory)")
}

func runRun(cmd *cobra.Command, args []string) error {
	pipeline := forgefile.DefaultPipeline
	if len(args) > 0 {
		pipeline = args[0]
	}

	executor, err := newPipelineExecutor(cmd.Context(), appInstance, executorOptions{
		forgefilePath: runForgefilePath,
		workdir:       runWorkdir,
		envFiles:      runEnvFiles,
		envVarPairs:   runEnvVars,
		skipCache:     runSkipCache,
	})
	if err != nil {
		return err
	}

	if runDryRun {
		plan, err := executor.Plan(pipeline)
		if err != nil {
			renderRunError(appInstance.stderr, err)
			return err
		}
		renderPlan(appInstance.stdout, plan)
		return nil
	}

	start := time.Now()
	summary, err := executor.Run(cmd.Context(), pipeline)
	if err != nil {
		renderRunError(appInstance.stderr, err)
		return err
	}

	if summary.ExitCode != 0 {
		stepErr := summary.Failed.Err
		if stepErr == nil {
			// Nonzero exits without a Go-level error (a plain `exit 1`)
			// still get the catalog treatment.
			stepErr = fmt.Errorf("step '%s' failed with exit code %d", summary.Failed.Name, summary.ExitCode)
		}
		renderRunError(appInstance.stderr, stepErr)
		return &ExitError{
			Code: summary.ExitCode,
			Err:  fmt.Errorf("step '%s' failed with exit code %d", summary.Failed.Name, summary.ExitCode),
		}
	}

	fmt.Fprintf(appInstance.stdout, "%s Pipeline %s finished (%d steps, %s)\n",
		SuccessStyle.Render("✓"),
		StepStyle.Render(pipeline),
		len(summary.Steps),
		time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// executorOptions carries the run/plan flag values into executor construction.
type executorOptions struct {
	forgefilePath string
	workdir       string
	envFiles      []string
	envVarPairs   []string
	skipCache     bool
}

// newPipelineExecutor loads configuration and the forgefile and assembles the
// engine executor all pipeline-facing commands share.
func newPipelineExecutor(ctx context.Context, app *App, opts executorOptions) (*engine.Executor, error) {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: cfgFile,
		CacheDirPath:   cacheDirFlag,
	})
	if err != nil {
		renderIssue(app.stderr, issue.ConfigLoadFailedId)
		return nil, err
	}

	ff, err := loadForgefile(app.stderr, opts.forgefilePath)
	if err != nil {
		return nil, err
	}

	envVars, err := parseEnvVarPairs(opts.envVarPairs)
	if err != nil {
		return nil, err
	}

	cacheDir, err := config.CacheDir(cfg)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "crossforge",
		ReportTimestamp: true,
	})
	if verbose || cfg.UI.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return &engine.Executor{
		Forgefile:       ff,
		Runners:         engine.NewRegistry(),
		Cache:           &cache.Store{Dir: cacheDir},
		Logger:          logger,
		WorkDir:         opts.workdir,
		Stdout:          app.stdout,
		Stderr:          app.stderr,
		EnvFiles:        opts.envFiles,
		EnvVars:         envVars,
		SkipCache:       opts.skipCache,
		DefaultRunner:   forgefile.RunnerMode(cfg.DefaultRunner),
		CargoConfigPath: cfg.CargoConfigPath,
	}, nil
}

// loadForgefile resolves and parses the forgefile, rendering the matching
// issue catalog entry to w on failure. An empty path means the conventional
// forgefile.cue in the current directory.
func loadForgefile(w io.Writer, path string) (*forgefile.Forgefile, error) {
	flagged := path != ""
	if path == "" {
		path = forgefile.FileName
	}

	if _, err := os.Stat(path); err != nil {
		renderIssue(w, issue.ForgefileNotFoundId)
		ec := issue.NewErrorContext().
			WithOperation("locate forgefile").
			WithResource(path)
		if flagged {
			ec = ec.WithSuggestion("Verify the --forgefile path is correct")
		} else {
			ec = ec.WithSuggestion("Run 'crossforge init' to create a forgefile").
				WithSuggestion("Or pass --forgefile path/to/forgefile.cue")
		}
		return nil, ec.Wrap(fmt.Errorf("forgefile not found: %s", path)).BuildError()
	}

	ff, err := forgefile.Parse(path)
	if err != nil {
		renderIssue(w, issue.ForgefileParseErrorId)
		return nil, issue.NewErrorContext().
			WithOperation("parse forgefile").
			WithResource(path).
			WithSuggestion("Check the reported field path against the forgefile schema").
			WithSuggestion("Compare with a fresh scaffold from 'crossforge init'").
			Wrap(err).
			BuildError()
	}

	if abs, err := filepath.Abs(path); err == nil {
		ff.FilePath = abs
	}

	return ff, nil
}

// parseEnvVarPairs turns repeated KEY=VALUE flags into a map.
func parseEnvVarPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --env-var %q: expected KEY=VALUE", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
