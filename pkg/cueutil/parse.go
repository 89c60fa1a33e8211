// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize is the maximum accepted size of a user-provided CUE
// file. Larger files are rejected before compilation.
const DefaultMaxFileSize int64 = 1 << 20 // 1 MiB

type (
	// Options configures a decode operation.
	Options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}

	// Option mutates decode Options.
	Option func(*Options)

	// Result contains the outcome of a successful decode.
	Result[T any] struct {
		// Value is the decoded Go struct.
		Value *T

		// Unified is the unified CUE value, available for callers that need
		// to extract additional metadata beyond the decoded struct.
		Unified cue.Value
	}
)

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *Options) { o.filename = name }
}

// WithMaxFileSize overrides the file size limit.
func WithMaxFileSize(n int64) Option {
	return func(o *Options) { o.maxFileSize = n }
}

// WithConcrete requires all values to be concrete during validation.
func WithConcrete(concrete bool) Option {
	return func(o *Options) { o.concrete = concrete }
}

func defaultOptions() Options {
	return Options{maxFileSize: DefaultMaxFileSize, concrete: true}
}

// Decode validates user data against the schema definition at schemaPath
// (e.g. "#Forgefile") and decodes the unified value into T.
func Decode[T any](schema, data []byte, schemaPath string, opts ...Option) (*Result[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)

	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return nil, FormatError(err, filename)
	}

	var value T
	if err := unified.Decode(&value); err != nil {
		return nil, FormatError(err, filename)
	}

	return &Result[T]{Value: &value, Unified: unified}, nil
}

// DecodeString is a convenience wrapper that accepts the schema as a string,
// which is how //go:embed exposes it.
func DecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*Result[T], error) {
	return Decode[T]([]byte(schema), data, schemaPath, opts...)
}
