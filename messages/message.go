// Package messages implements the messages reported during a test run
// (discovery, execution, completion and failure) and their self-describing
// wire format.
//
// Every message variant declares its fields as required or optional. Required
// fields start out unset; reading one before it was assigned returns a
// MissingValueError, and ValidateObjectState reports every unset required field
// at once. Serialization validates first, so a partially populated message never
// reaches the wire.
//
// Variants are looked up by their discriminator in a Registry:
//
//	data, err := messages.ToJSON(msg)
//	...
//	msg, err := messages.FromJSON(data)
package messages

import (
	"fmt"
	"reflect"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

// Message is implemented by every message variant of this package.
type Message interface {
	// MessageType returns the fixed discriminator of the variant.
	MessageType() string
	// String returns a one line summary for diagnostics.
	String() string

	serialize(w *ObjectWriter)
	deserialize(root serialized.Object) error
	validateObjectState(invalid PropertySet)
}

func typeName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

func quoted(s *string) string {
	if s == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *s)
}

func quotedRequired(r Required[string]) string {
	if v, ok := r.Value(); ok {
		return fmt.Sprintf("%q", v)
	}
	return "null"
}

// String is a helper for optional string fields.
func String(s string) *string {
	return &s
}

// Int is a helper for optional int fields.
func Int(i int) *int {
	return &i
}
