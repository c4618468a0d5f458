package messages

import (
	"fmt"
	"strings"
)

// InvalidArgumentError is returned when a value violates the immediate contract
// of the field it is assigned to.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func newInvalidArgumentError(field, format string, v ...interface{}) *InvalidArgumentError {
	return &InvalidArgumentError{
		Field:   field,
		Message: fmt.Sprintf(format, v...),
	}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s (Parameter '%s')", e.Message, e.Field)
}

// MissingValueError is returned when a required field is read before it was set.
type MissingValueError struct {
	Type  string
	Field string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("Attempted to get %s on an uninitialized '%s' object", e.Field, e.Type)
}

// AggregatedValidationError lists every required field of a message that is still unset.
type AggregatedValidationError struct {
	Type   string
	Fields []string
}

func (e *AggregatedValidationError) Error() string {
	return fmt.Sprintf("Object of type '%s' had one or more properties that were not set: %s", e.Type, strings.Join(e.Fields, ", "))
}

// IllegalNullCombinationError is returned when a field is unset while a field
// it depends on is set.
type IllegalNullCombinationError struct {
	Type      string
	Field     string
	DependsOn string
}

func (e *IllegalNullCombinationError) Error() string {
	return fmt.Sprintf("Illegal null %s on an instance of '%s' when %s is not null", e.Field, e.Type, e.DependsOn)
}

// UnknownMessageTypeError is returned when a discriminator has no registered factory.
type UnknownMessageTypeError struct {
	Type string
}

func (e *UnknownMessageTypeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("message has no '%s' discriminator", TypeKey)
	}
	return fmt.Sprintf("unknown message type '%s'", e.Type)
}
