// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"fmt"
	"strings"
)

type (
	// ValidationError is a single validation issue found in a forgefile.
	ValidationError struct {
		// Field is the path to the offending value, e.g. "pipelines.release[2]".
		Field string
		// Message is the human-readable description.
		Message string
	}

	// ValidationErrors collects all issues from a validation pass so the user
	// sees every problem at once instead of fixing them one by one.
	ValidationErrors []ValidationError
)

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(errs))
	for _, e := range errs {
		sb.WriteString("\n  - ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Validate runs the checks the CUE schema cannot express. It returns nil
// when the document is valid.
func (f *Forgefile) Validate() ValidationErrors {
	var errs ValidationErrors

	if len(f.Pipelines) == 0 {
		errs = append(errs, ValidationError{Field: "pipelines", Message: "at least one pipeline is required"})
	}

	for name, steps := range f.Pipelines {
		errs = append(errs, validatePipeline(name, steps)...)
	}

	errs = append(errs, f.validateCacheUsage()...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validatePipeline(name string, steps []Step) ValidationErrors {
	var errs ValidationErrors
	field := func(i int) string { return fmt.Sprintf("pipelines.%s[%d]", name, i) }

	seen := make(map[string]int)
	builds := 0
	restoreAt, saveAt := -1, -1

	for i, step := range steps {
		if prev, dup := seen[step.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   field(i),
				Message: fmt.Sprintf("duplicate step name %q (first used at index %d)", step.Name, prev),
			})
		} else {
			seen[step.Name] = i
		}

		switch step.Kind {
		case KindScript:
			if strings.TrimSpace(step.Script) == "" {
				errs = append(errs, ValidationError{Field: field(i), Message: "script steps require a non-empty script"})
			}
		case KindPrune:
			if step.Pattern == "" {
				errs = append(errs, ValidationError{Field: field(i), Message: "prune steps require a pattern"})
			}
		case KindCacheRestore:
			if restoreAt == -1 {
				restoreAt = i
			}
		case KindCacheSave:
			saveAt = i
		case KindBuild:
			builds++
		case KindCheckout, KindCargoConfig, KindTargetAdd:
			// No step-local requirements beyond the schema.
		default:
			errs = append(errs, ValidationError{
				Field:   field(i),
				Message: fmt.Sprintf("unknown step kind %q", step.Kind),
			})
		}

		if step.Runner != RunnerDefault && !step.IsScript() {
			errs = append(errs, ValidationError{
				Field:   field(i),
				Message: fmt.Sprintf("runner override is only valid on script steps, not %q", step.Kind),
			})
		}
	}

	if builds > 1 {
		errs = append(errs, ValidationError{
			Field:   "pipelines." + name,
			Message: fmt.Sprintf("at most one build step is allowed, found %d", builds),
		})
	}
	if restoreAt != -1 && saveAt != -1 && saveAt < restoreAt {
		errs = append(errs, ValidationError{
			Field:   "pipelines." + name,
			Message: "cache-save must come after cache-restore",
		})
	}

	return errs
}

// validateCacheUsage rejects cache steps in documents with no cache section.
func (f *Forgefile) validateCacheUsage() ValidationErrors {
	if f.Cache.LockFile != "" {
		return nil
	}

	var errs ValidationErrors
	for name, steps := range f.Pipelines {
		for i, step := range steps {
			if step.Kind == KindCacheRestore || step.Kind == KindCacheSave {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("pipelines.%s[%d]", name, i),
					Message: fmt.Sprintf("%s step requires a cache section with lock_file", step.Kind),
				})
			}
		}
	}
	return errs
}
