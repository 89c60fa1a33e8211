// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Both the forgefile and the application config are CUE documents validated
// against embedded schemas. The package consolidates the parsing pattern
// used by both:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with the schema
//  3. Validate and decode to a Go struct
package cueutil
