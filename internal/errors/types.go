package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeLocale   ErrorType = "locale"
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeInternal ErrorType = "internal"
)

// Error codes.
const (
	ErrCodeConfigMissing       = "CONFIG_MISSING"
	ErrCodeInvalidMatchPattern = "INVALID_MATCH_PATTERN"
	ErrCodeInvalidGlobPattern  = "INVALID_GLOB_PATTERN"
	ErrCodeLocaleNotFound      = "LOCALE_NOT_FOUND"
	ErrCodeParseFailure        = "PARSE_FAILURE"
	ErrCodeReadFailed          = "READ_FAILED"
	ErrCodeWriteFailed         = "WRITE_FAILED"
	ErrCodeDiscoveryFailed     = "DISCOVERY_FAILED"
	ErrCodeMkdirFailed         = "MKDIR_FAILED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Sentinels for errors.Is comparisons. Matching is by Type and Code only.
var (
	ErrConfigurationMissing = &MergeError{Type: ErrorTypeConfig, Code: ErrCodeConfigMissing}
	ErrLocaleNotFound       = &MergeError{Type: ErrorTypeLocale, Code: ErrCodeLocaleNotFound}
	ErrParseFailure         = &MergeError{Type: ErrorTypeParse, Code: ErrCodeParseFailure}
)

// MergeError is a structured error type with context.
type MergeError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *MergeError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *MergeError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *MergeError) Is(target error) bool {
	var t *MergeError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *MergeError) WithContext(key string, value interface{}) *MergeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds the offending file path.
func (e *MergeError) WithFile(filePath string) *MergeError {
	e.FilePath = filePath

	return e
}

// WithComponent adds component context.
func (e *MergeError) WithComponent(component string) *MergeError {
	e.Component = component

	return e
}

// Error creation functions

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *MergeError {
	return &MergeError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewMissingSettingError reports an absent required configuration field.
func NewMissingSettingError(setting string) *MergeError {
	return NewConfigError(ErrCodeConfigMissing, "Missing Setting: "+setting).
		WithContext("setting", setting)
}

// NewLocaleNotFoundError reports a file whose name did not yield a locale.
func NewLocaleNotFoundError(fileName string) *MergeError {
	return &MergeError{
		Type:    ErrorTypeLocale,
		Code:    ErrCodeLocaleNotFound,
		Message: "the locale matcher did not find the locale in the filename: " + fileName,
	}
}

// NewParseError reports a fragment that is not a JSON object.
func NewParseError(filePath string, cause error) *MergeError {
	return &MergeError{
		Type:     ErrorTypeParse,
		Code:     ErrCodeParseFailure,
		Message:  "invalid translation fragment",
		Cause:    cause,
		FilePath: filePath,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *MergeError {
	return &MergeError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *MergeError {
	return &MergeError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Classification helpers

func hasType(err error, errType ErrorType) bool {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Type == errType
	}

	return false
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool { return hasType(err, ErrorTypeConfig) }

// IsLocaleError checks if an error came from locale extraction.
func IsLocaleError(err error) bool { return hasType(err, ErrorTypeLocale) }

// IsParseError checks if an error came from fragment parsing.
func IsParseError(err error) bool { return hasType(err, ErrorTypeParse) }

// IsIOError checks if an error is I/O-related.
func IsIOError(err error) bool { return hasType(err, ErrorTypeIO) }

// IsRecoverable checks if an error is recoverable. Every merge failure is
// fatal for its run, so this only reports flags set explicitly by callers.
func IsRecoverable(err error) bool {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Recoverable
	}

	return false
}

// GetErrorContext extracts context from a MergeError.
func GetErrorContext(err error) map[string]interface{} {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Context
	}

	return nil
}
