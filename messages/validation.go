package messages

import (
	"sort"
)

// Required holds a field value that has to be assigned explicitly before the
// message owning it is valid. The zero value is unset.
type Required[T any] struct {
	value T
	set   bool
}

// Set assigns v and marks the field as set.
func (r *Required[T]) Set(v T) {
	r.value = v
	r.set = true
}

// IsSet ...
func (r Required[T]) IsSet() bool {
	return r.set
}

// Value returns the value and whether it was set.
func (r Required[T]) Value() (T, bool) {
	return r.value, r.set
}

func (r Required[T]) get(owner, field string) (T, error) {
	if !r.set {
		var zero T
		return zero, &MissingValueError{Type: owner, Field: field}
	}
	return r.value, nil
}

type settable interface {
	IsSet() bool
}

// PropertySet collects the names of invalid properties during validation.
type PropertySet map[string]struct{}

// Add ...
func (s PropertySet) Add(name string) {
	s[name] = struct{}{}
}

// Contains ...
func (s PropertySet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the collected names sorted.
func (s PropertySet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s PropertySet) require(name string, field settable) {
	if !field.IsSet() {
		s.Add(name)
	}
}

// ValidateObjectState checks every required field of m and returns an
// AggregatedValidationError naming all the unset ones, or nil.
func ValidateObjectState(m Message) error {
	invalid := PropertySet{}
	m.validateObjectState(invalid)

	if len(invalid) == 0 {
		return nil
	}

	return &AggregatedValidationError{
		Type:   typeName(m),
		Fields: invalid.Names(),
	}
}
