// Package errors provides structured error types for instctl.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode identifies specific error conditions
type ErrorCode string

const (
	ErrCodeParse            ErrorCode = "PARSE_ERROR"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnknownComponent ErrorCode = "UNKNOWN_COMPONENT"
	ErrCodeDependencyCycle  ErrorCode = "DEPENDENCY_CYCLE"
	ErrCodeSubstitution     ErrorCode = "SUBSTITUTION_ERROR"
	ErrCodeCredential       ErrorCode = "CREDENTIAL_ERROR"
	ErrCodeExecution        ErrorCode = "EXECUTION_ERROR"
	ErrCodeToolchain        ErrorCode = "TOOLCHAIN_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
)

// Error is the base error type for instctl
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Wrap creates a new error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a single detail to an error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// ParseError creates a parse error
func ParseError(filePath string, err error) *Error {
	return &Error{
		Code:    ErrCodeParse,
		Message: fmt.Sprintf("failed to parse %s", filePath),
		Cause:   err,
		Details: map[string]interface{}{
			"file": filePath,
		},
	}
}

// ValidationError creates a validation error
func ValidationError(message string, details map[string]interface{}) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// UnknownComponentError reports a dependsOn reference to an id that was never declared.
func UnknownComponentError(installable, reference string) *Error {
	return &Error{
		Code:    ErrCodeUnknownComponent,
		Message: fmt.Sprintf("installable %q depends on unknown component id %q", installable, reference),
		Details: map[string]interface{}{
			"installable": installable,
			"reference":   reference,
		},
	}
}

// DependencyCycleError reports a cycle in the dependency relation.
func DependencyCycleError(ids []string) *Error {
	return &Error{
		Code:    ErrCodeDependencyCycle,
		Message: fmt.Sprintf("dependency cycle detected involving: %s", strings.Join(ids, ", ")),
		Details: map[string]interface{}{
			"installables": ids,
		},
	}
}

// MissingVariableError reports an unresolvable ${VAR} placeholder.
func MissingVariableError(name string) *Error {
	return &Error{
		Code:    ErrCodeSubstitution,
		Message: fmt.Sprintf("missing variable %q: not set in the environment or env file", name),
		Details: map[string]interface{}{
			"variable": name,
		},
	}
}

// CredentialError creates a credential resolution error
func CredentialError(message string) *Error {
	return &Error{
		Code:    ErrCodeCredential,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// ExecutionError reports a failed subprocess for a specific installable.
func ExecutionError(installable string, err error, output string) *Error {
	return &Error{
		Code:    ErrCodeExecution,
		Message: fmt.Sprintf("installable %q failed", installable),
		Cause:   err,
		Details: map[string]interface{}{
			"installable": installable,
			"output":      output,
		},
	}
}

// ToolchainError reports a required external binary that could not be found.
func ToolchainError(binary string, err error) *Error {
	return &Error{
		Code:    ErrCodeToolchain,
		Message: fmt.Sprintf("required binary %q not found in PATH", binary),
		Cause:   err,
		Details: map[string]interface{}{
			"binary": binary,
		},
	}
}

// Is checks if the error matches the given code
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}
