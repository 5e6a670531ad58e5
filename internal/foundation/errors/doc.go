// Package errors provides the classified error primitives used across puggle.
//
// Every failure the build can report belongs to one ErrorCategory. The
// categories mirror the failure kinds of the pipeline: filesystem access,
// path shape problems, front-matter decoding, missing front matter, template
// loading and template rendering. Configuration, validation and preview
// server failures have their own categories.
//
// Example usage:
//
//	err := errors.WrapError(ioErr, errors.CategoryIO, "read markdown").
//		WithContext("path", path).
//		Build()
package errors
