// SPDX-License-Identifier: MPL-2.0

// Package forgefile defines the provisioning pipeline document format.
//
// A forgefile is a CUE document describing a cross-compilation target, a
// dependency cache, and one or more named pipelines: ordered lists of steps
// executed strictly in sequence by the engine. Parsing validates the
// document against the embedded #Forgefile schema before Go-level
// validation runs the checks CUE cannot express.
package forgefile
