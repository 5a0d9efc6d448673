// Package errors defines the error types surfaced by odooctl commands.
//
// Commands return a *CLIError where a plain message is not enough: the
// error carries a stable code, the component that produced it, and
// optional suggestions printed below the message. Everything else is a
// normally wrapped error.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes grouped by component.
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeConfigWrite      = "CONFIG_WRITE_FAILED"
	CodePluginDiscovery  = "PLUGIN_DISCOVERY_FAILED"
	CodePluginDescriptor = "PLUGIN_DESCRIPTOR_INVALID"
	CodeScaffoldExists   = "SCAFFOLD_TARGET_EXISTS"
	CodeScaffoldRender   = "SCAFFOLD_RENDER_FAILED"
	CodeViewAnchor       = "VIEW_ANCHOR_MISSING"
	CodeViewParse        = "VIEW_PARSE_FAILED"
	CodeRemoteGuard      = "REMOTE_ENVIRONMENT_GUARD"
	CodeRemoteCommand    = "REMOTE_COMMAND_FAILED"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
)

// CLIError is an error with a stable code and user-facing suggestions.
type CLIError struct {
	Code        string
	Component   string
	Message     string
	Suggestions []string
	Err         error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	if e.Component != "" {
		b.WriteString(e.Component)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error
func (e *CLIError) Unwrap() error {
	return e.Err
}

// WithSuggestions attaches remediation hints to the error.
func (e *CLIError) WithSuggestions(suggestions ...string) *CLIError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// New creates a CLIError with the given code and message.
func New(code, component, format string, args ...interface{}) *CLIError {
	return &CLIError{
		Code:      code,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Wrap creates a CLIError wrapping an underlying cause.
func Wrap(err error, code, component, format string, args ...interface{}) *CLIError {
	return &CLIError{
		Code:      code,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
		Err:       err,
	}
}

// IsCode reports whether err is (or wraps) a CLIError with the given code.
func IsCode(err error, code string) bool {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code == code
	}
	return false
}

// Suggestions extracts suggestions from err, if any.
func Suggestions(err error) []string {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Suggestions
	}
	return nil
}
