package messages

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ObjectWriter collects the fields of a message in write order. It renders as
// a JSON object whose keys keep that order.
type ObjectWriter struct {
	keys   []string
	values map[string]interface{}
}

// NewObjectWriter ...
func NewObjectWriter() *ObjectWriter {
	return &ObjectWriter{
		values: map[string]interface{}{},
	}
}

func (w *ObjectWriter) write(key string, value interface{}) {
	if _, exists := w.values[key]; !exists {
		w.keys = append(w.keys, key)
	}
	w.values[key] = value
}

// String ...
func (w *ObjectWriter) String(key, value string) {
	w.write(key, value)
}

// OptionalString writes value unless it is nil.
func (w *ObjectWriter) OptionalString(key string, value *string) {
	if value != nil {
		w.write(key, *value)
	}
}

// Int ...
func (w *ObjectWriter) Int(key string, value int) {
	w.write(key, value)
}

// OptionalInt writes value unless it is nil.
func (w *ObjectWriter) OptionalInt(key string, value *int) {
	if value != nil {
		w.write(key, *value)
	}
}

// Bool ...
func (w *ObjectWriter) Bool(key string, value bool) {
	w.write(key, value)
}

// Decimal writes value as a JSON number without losing precision.
func (w *ObjectWriter) Decimal(key string, value decimal.Decimal) {
	w.write(key, json.Number(value.String()))
}

// Time writes value in RFC 3339 format.
func (w *ObjectWriter) Time(key string, value time.Time) {
	w.write(key, value.Format(time.RFC3339Nano))
}

// StringSlice ...
func (w *ObjectWriter) StringSlice(key string, value []string) {
	w.write(key, append([]string{}, value...))
}

// OptionalStringSlice writes value unless it is empty.
func (w *ObjectWriter) OptionalStringSlice(key string, value []string) {
	if len(value) > 0 {
		w.StringSlice(key, value)
	}
}

// IntSlice ...
func (w *ObjectWriter) IntSlice(key string, value []int) {
	w.write(key, append([]int{}, value...))
}

// Traits writes a trait map as a nested object with sorted keys.
func (w *ObjectWriter) Traits(key string, traits map[string][]string) {
	names := make([]string, 0, len(traits))
	for name := range traits {
		names = append(names, name)
	}
	sort.Strings(names)

	nested := NewObjectWriter()
	for _, name := range names {
		nested.StringSlice(name, traits[name])
	}

	w.write(key, nested)
}

// Keys returns the written keys in order.
func (w *ObjectWriter) Keys() []string {
	return append([]string{}, w.keys...)
}

// Map returns the written fields as a generic map.
func (w *ObjectWriter) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(w.values))
	for key, value := range w.values {
		if nested, ok := value.(*ObjectWriter); ok {
			value = nested.Map()
		}
		m[key] = value
	}
	return m
}

// MarshalJSON ...
func (w *ObjectWriter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, key := range w.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyData, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueData, err := json.Marshal(w.values[key])
		if err != nil {
			return nil, err
		}

		buf.Write(keyData)
		buf.WriteByte(':')
		buf.Write(valueData)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
