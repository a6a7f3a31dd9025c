// Package errors provides the unified error type and factory functions for the
// HitForge-Discovery pipeline.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier for structured error
// information, enabling consistent per-item failure reporting, HTTP responses,
// logging, and metrics.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout the pipeline.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.CodeInvalidStructure, "unbalanced ring closure")
//	return errors.Wrap(dbErr, errors.CodeDatabaseError, "failed to load stage output")
//	return errors.NoLigandFound("4HVP").WithDetail("set target.site_residue to proceed")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error, suitable
	// for inclusion in responses returned to callers.
	Message string

	// Detail carries supplementary context (molecule identifiers, stage names,
	// query parameters) that aids debugging without cluttering Message.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error

	// Stack contains the formatted call stack captured at the point of error
	// creation.  It is intentionally not included in Error() output; callers
	// that need it (the logging middleware, stage summaries) inspect the field
	// directly.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", the detail segment omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without additional boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string.  Safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithDetailf is WithDetail with fmt.Sprintf formatting applied.
func (e *AppError) WithDetailf(format string, args ...any) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
// Use this to attach a lower-level error to an already-constructed AppError
// without going through Wrap.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
// A call-stack snapshot is captured automatically.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with fmt.Sprintf formatting applied to the message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(store.Load(ctx, key), errors.CodeDatabaseError, "load failed")
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved, so adding context never loses the original classification.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// Wrapf is Wrap with fmt.Sprintf formatting applied to the message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code:
//
//	if errors.IsCode(err, errors.CodeStageMissing) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any error in err's chain is an *AppError with one
// of the not-found codes.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case CodeNotFound, CodeMoleculeNotFound, ErrCodeScaffoldNotFound,
				ErrCodeStructureNotFound, ErrCodeProjectUnknown, CodeStageMissing:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, CodeUnknown is returned; nil yields CodeOK.
//
// Useful in middleware and metrics layers that need a single code label
// without coupling to specific domain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories for the most common conditions
// ─────────────────────────────────────────────────────────────────────────────

// NotFound constructs a CodeNotFound AppError.  Prefer the domain-specific
// variants (CodeMoleculeNotFound and friends) where one exists; this generic
// form is appropriate in repository or router layers.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: captureStack(1)}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: captureStack(1)}
}

// Internal constructs a CodeInternal AppError.  Use it for unexpected failures
// where no more specific code applies; log the underlying cause alongside.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Stack: captureStack(1)}
}

// Conflict constructs a CodeConflict AppError, used for state violations.
func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Stack: captureStack(1)}
}

// InvalidStructure constructs a CodeInvalidStructure AppError for input that
// cannot be parsed into a chemically meaningful molecule.  The offending raw
// input goes in Detail so batch reports can show it verbatim.
func InvalidStructure(message string) *AppError {
	return &AppError{Code: CodeInvalidStructure, Message: message, Stack: captureStack(1)}
}

// InsufficientData constructs a CodeInsufficientData AppError.  Raised by
// model training when the usable row count falls below the configured minimum.
func InsufficientData(message string) *AppError {
	return &AppError{Code: CodeInsufficientData, Message: message, Stack: captureStack(1)}
}

// NoLigandFound constructs a CodeNoLigandFound AppError naming the structure
// that carried no usable co-crystallized ligand.
func NoLigandFound(structureID string) *AppError {
	return &AppError{
		Code:    CodeNoLigandFound,
		Message: fmt.Sprintf("no co-crystallized ligand in structure %s", structureID),
		Stack:   captureStack(1),
	}
}

// MissingDescriptor constructs a CodeMissingDescriptor AppError naming the
// descriptor a prediction required but the molecule did not carry.
func MissingDescriptor(name string) *AppError {
	return &AppError{
		Code:    CodeMissingDescriptor,
		Message: fmt.Sprintf("descriptor %q missing", name),
		Stack:   captureStack(1),
	}
}

// StageMissing constructs a CodeStageMissing AppError for a stage whose
// persisted output could not be found.  Recoverable: run the named stage.
func StageMissing(stage string) *AppError {
	return &AppError{
		Code:    CodeStageMissing,
		Message: fmt.Sprintf("no persisted output for stage %q", stage),
		Stack:   captureStack(1),
	}
}

// ExternalTimeout constructs a CodeExternalTimeout AppError for an external
// call that exceeded its deadline.
func ExternalTimeout(service string) *AppError {
	return &AppError{
		Code:    CodeExternalTimeout,
		Message: fmt.Sprintf("%s request timed out", service),
		Stack:   captureStack(1),
	}
}
