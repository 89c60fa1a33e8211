// SPDX-License-Identifier: MPL-2.0

// Package main is the entry point for the crossforge CLI.
package main

import (
	cmd "crossforge/cmd/crossforge"
)

func main() {
	cmd.Execute()
}
