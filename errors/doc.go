// Package errors provides structured error types for the lifecycle library.
//
// Errors are categorized by Phase (which lifecycle step failed) and Kind
// (what went wrong). The Error type carries the owner identity and entry key
// so that a failure can be traced back to the resource that caused it.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseTeardown, errors.KindFailed).
//		Owner("chat/42").
//		Key("poll").
//		Cause(closeErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Panicked(errors.PhaseResume, "chat/42", "poll", r)
//	err := errors.InvalidInput(errors.PhaseSetup, "setup must not be nil")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
