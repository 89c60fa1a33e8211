// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
// Everything that is neither Windows nor Darwin follows the XDG and
// POSIX-shell paths, so no Linux constant is needed.
const (
	Windows = "windows"
	Darwin  = "darwin"
)
