// Package errors provides error handling for specgraph.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadItem(path); err != nil {
//	    return errors.Wrapf(err, "load %s", path)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "remove the cache directory and retry")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle unresolved identifier
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors of the item repository.
// Use these with errors.Is(); wrap them with errors.Wrap() to add context
// while preserving the type.
var (
	// ErrNotFound indicates an identifier or key path that does not resolve
	ErrNotFound = New("not found")

	// ErrLoad indicates an item file that cannot be read or decoded
	ErrLoad = New("load error")

	// ErrDuplicate indicates two records with the same identifier
	ErrDuplicate = New("duplicate identifier")

	// ErrOutOfRange indicates a parent or child index beyond the link list
	ErrOutOfRange = New("index out of range")

	// ErrInvalidType indicates an item that the refinement chain cannot classify
	ErrInvalidType = New("invalid type")

	// ErrExpression indicates a malformed enabled-by expression
	ErrExpression = New("malformed expression")

	// ErrCorruptCache indicates a cache snapshot that exists but cannot be decoded
	ErrCorruptCache = New("corrupt cache snapshot")

	// ErrInvalidConfig indicates a configuration that fails validation
	ErrInvalidConfig = New("invalid configuration")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsLoadError checks if an error is or wraps ErrLoad
func IsLoadError(err error) bool {
	return err != nil && Is(err, ErrLoad)
}

// IsExpressionError checks if an error is or wraps ErrExpression
func IsExpressionError(err error) bool {
	return err != nil && Is(err, ErrExpression)
}

// Markf creates a formatted error that matches the given sentinel with errors.Is
// while keeping its own message, e.g.
//
//	errors.Markf(errors.ErrNotFound, "item '%s' links to non-existing item '%s'", a, b)
func Markf(sentinel error, format string, args ...interface{}) error {
	return crdb.Mark(crdb.NewWithDepthf(1, format, args...), sentinel)
}

// WrapMarkf wraps err with a formatted message and marks it with the sentinel.
func WrapMarkf(err error, sentinel error, format string, args ...interface{}) error {
	return crdb.Mark(crdb.WrapWithDepthf(1, err, format, args...), sentinel)
}
