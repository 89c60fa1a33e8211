// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"crossforge/internal/cache"
	"crossforge/internal/issue"
)

// classifyRunError maps pipeline startup and step failures to issue catalog
// IDs and returns a styled message for CLI rendering. It preserves actionable
// error details such as suggestions.
func classifyRunError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	issueID = issue.StepFailedId

	switch {
	case errors.Is(err, cache.ErrCorruptBundle):
		issueID = issue.CacheCorruptId
	default:
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			switch ae.Operation {
			case "find pipeline":
				issueID = issue.PipelineNotFoundId
			case "locate NDK":
				issueID = issue.NdkNotFoundId
			case "find a shell":
				issueID = issue.ShellNotFoundId
			}
		}
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// renderRunError writes the styled message and the matching issue catalog
// entry for a failed pipeline run or plan.
func renderRunError(w io.Writer, err error) {
	id, styled := classifyRunError(err, verbose)
	fmt.Fprint(w, styled)
	renderIssue(w, id)
}

// renderIssue writes an issue catalog entry. Rendering failures are dropped;
// the underlying error still reaches the user through the command's return.
func renderIssue(w io.Writer, id issue.Id) {
	if rendered, err := issue.Get(id).Render("dark"); err == nil {
		fmt.Fprint(w, rendered)
	}
}
