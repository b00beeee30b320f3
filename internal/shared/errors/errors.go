package errors

import (
	"fmt"
	"strings"
)

// Error is an error object with underlying error.
type Error struct {
	prefix  []interface{}
	message []interface{}
	inner   error
}

// Error implements error.Error().
func (err *Error) Error() string {
	builder := strings.Builder{}
	for _, prefix := range err.prefix {
		builder.WriteByte('[')
		builder.WriteString(toString(prefix))
		builder.WriteString("] ")
	}

	builder.WriteString(concat(err.message...))

	if err.inner != nil {
		builder.WriteString(" > ")
		builder.WriteString(err.inner.Error())
	}

	return builder.String()
}

// Base sets the underlying error.
func (err *Error) Base(e error) *Error {
	err.inner = e
	return err
}

// Prefix adds a bracketed tag in front of the message, e.g. the setup stage
// that failed.
func (err *Error) Prefix(p interface{}) *Error {
	err.prefix = append(err.prefix, p)
	return err
}

// Unwrap returns the underlying error so errors.Is and errors.As see through it.
func (err *Error) Unwrap() error {
	return err.inner
}

// String returns the string representation of this error.
func (err *Error) String() string {
	return err.Error()
}

// NewError returns a new error object with message formed from given arguments.
func NewError(msg ...interface{}) *Error {
	return &Error{
		message: msg,
	}
}

// Cause returns the root cause of this error.
func Cause(err error) error {
	if err == nil {
		return nil
	}
L:
	for {
		switch inner := err.(type) {
		case *Error:
			if inner.inner == nil {
				break L
			}
			err = inner.inner
		case interface{ Unwrap() error }:
			next := inner.Unwrap()
			if next == nil {
				break L
			}
			err = next
		default:
			break L
		}
	}
	return err
}

func concat(v ...interface{}) string {
	builder := strings.Builder{}
	for _, value := range v {
		builder.WriteString(toString(value))
	}
	return builder.String()
}

func toString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	case error:
		return value.Error()
	default:
		return fmt.Sprintf("%+v", value)
	}
}
