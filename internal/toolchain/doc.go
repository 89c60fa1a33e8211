// SPDX-License-Identifier: MPL-2.0

// Package toolchain locates the NDK cross-compilation toolchain, derives the
// per-target tool binary paths, prunes unwanted NDK installations, and
// authors the cargo configuration that points the build at those tools.
package toolchain
