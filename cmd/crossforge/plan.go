// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"crossforge/internal/engine"
	"crossforge/pkg/forgefile"
)

// planCmd resolves a pipeline without executing it
var planCmd = &cobra.Command{
	Use:   "plan [pipeline]",
	Short: "Resolve a pipeline and show what a run would execute",
	Long: `Resolve a pipeline and show what a run would execute.

This performs the same preflight work as 'crossforge run': it parses and
validates the forgefile, and resolves the NDK toolchain when the pipeline
contains cargo-config or build steps. It is suitable as a CI preflight
check before the actual build job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	pipeline := forgefile.DefaultPipeline
	if len(args) > 0 {
		pipeline = args[0]
	}

	executor, err := newPipelineExecutor(cmd.Context(), appInstance, executorOptions{
		forgefilePath: runForgefilePath,
		workdir:       runWorkdir,
	})
	if err != nil {
		return err
	}

	plan, err := executor.Plan(pipeline)
	if err != nil {
		renderRunError(appInstance.stderr, err)
		return err
	}

	renderPlan(appInstance.stdout, plan)
	return nil
}

// renderPlan writes the resolved pipeline in execution order.
func renderPlan(w io.Writer, plan *engine.Plan) {
	fmt.Fprintln(w, TitleStyle.Render("Pipeline: "+plan.Pipeline))
	fmt.Fprintln(w)

	for i, step := range plan.Steps {
		fmt.Fprintf(w, "  %2d. %s %s", i+1, StepStyle.Render(step.Name), SubtitleStyle.Render("("+string(step.Kind)+")"))
		if step.ContinueOnError {
			fmt.Fprintf(w, " %s", WarningStyle.Render("[continue-on-error]"))
		}
		fmt.Fprintln(w)
	}

	if plan.ToolchainBin != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, TitleStyle.Render("Toolchain"))
		fmt.Fprintf(w, "  %s: %s\n", StepStyle.Render("bin"), plan.ToolchainBin)
		for _, key := range []string{"CC", "CXX", "AR", "LD", "RANLIB"} {
			if value, ok := plan.BuildEnv[key]; ok {
				fmt.Fprintf(w, "  %s: %s\n", StepStyle.Render(key), VerboseStyle.Render(value))
			}
		}
	}
}
