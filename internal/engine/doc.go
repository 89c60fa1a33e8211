// SPDX-License-Identifier: MPL-2.0

// Package engine executes provisioning pipelines.
//
// Execution is strictly sequential: step N+1 never starts before step N has
// finished, and the first failing step terminates the run with that step's
// exit code. Script-bearing steps run through a Runner (system shell or the
// in-process mvdan/sh interpreter); the structural step kinds (prune,
// cargo-config, cache handling, build) are dispatched directly by the
// executor.
package engine
