package errors

import (
	"errors"
	"sort"
)

// Wrap wraps an error with additional context, creating a MergeError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *MergeError {
	if err == nil {
		return nil
	}

	// Keep file and component details from an inner MergeError
	var me *MergeError
	if errors.As(err, &me) {
		return &MergeError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       me,
			Context:     me.Context,
			Component:   me.Component,
			FilePath:    me.FilePath,
			Recoverable: me.Recoverable,
		}
	}

	return &MergeError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error for the given path
func WrapIO(err error, code, message, filePath string) *MergeError {
	me := Wrap(err, ErrorTypeIO, code, message)
	if me != nil {
		me.FilePath = filePath
	}
	return me
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *MergeError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, code, message string) *MergeError {
	return Wrap(err, ErrorTypeInternal, code, message)
}

// ExtractCode returns the code of the outermost MergeError, or "" for foreign errors
func ExtractCode(err error) string {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// ErrorFields flattens a MergeError into logger key/value pairs
func ErrorFields(err error) []interface{} {
	var me *MergeError
	if !errors.As(err, &me) {
		return nil
	}

	fields := []interface{}{"error_type", string(me.Type), "error_code", me.Code}
	if me.FilePath != "" {
		fields = append(fields, "file", me.FilePath)
	}
	if me.Component != "" {
		fields = append(fields, "error_component", me.Component)
	}
	keys := make([]string, 0, len(me.Context))
	for k := range me.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, k, me.Context[k])
	}
	return fields
}
