package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
	"github.com/pkg/errors"
)

// TypeKey is the reserved key holding the discriminator of a serialized message.
const TypeKey = "$type"

// Factory creates an empty message of a registered type.
type Factory func() Message

// Registry maps discriminators to message factories.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
	}
}

// NewDefaultRegistry creates a registry knowing every message type of this package.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, factory := range []Factory{
		func() Message { return NewDiscoveryComplete() },
		func() Message { return NewTestCaseDiscovered() },
		func() Message { return NewTestCaseStarting() },
		func() Message { return NewTestStarting() },
		func() Message { return NewTestPassed() },
		func() Message { return NewTestFailed() },
		func() Message { return NewTestSkipped() },
		func() Message { return NewTestNotRun() },
		func() Message { return NewTestClassFinished() },
		func() Message { return NewTestCollectionFinished() },
		func() Message { return NewTestAssemblyFinished() },
	} {
		if err := r.Register(factory().MessageType(), factory); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds factory under discriminator. Empty and already registered
// discriminators are rejected.
func (r *Registry) Register(discriminator string, factory Factory) error {
	if discriminator == "" {
		return fmt.Errorf("message type discriminator must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for message type '%s' must not be nil", discriminator)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[discriminator]; exists {
		return fmt.Errorf("message type '%s' is already registered", discriminator)
	}

	r.factories[discriminator] = factory
	return nil
}

// Types returns the registered discriminators sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New creates an empty message for discriminator.
func (r *Registry) New(discriminator string) (Message, error) {
	r.mu.RLock()
	factory, exists := r.factories[discriminator]
	r.mu.RUnlock()

	if !exists {
		return nil, &UnknownMessageTypeError{Type: discriminator}
	}
	return factory(), nil
}

// Serialize validates m and writes it with its discriminator as the first key.
func (r *Registry) Serialize(m Message) (*ObjectWriter, error) {
	if err := ValidateObjectState(m); err != nil {
		return nil, err
	}

	w := NewObjectWriter()
	w.String(TypeKey, m.MessageType())
	m.serialize(w)

	return w, nil
}

// Deserialize creates the message named by the discriminator of root and
// reads its fields. Required fields missing from root are left unset.
func (r *Registry) Deserialize(root serialized.Object) (Message, error) {
	discriminator, ok, err := lookup(root, TypeKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &UnknownMessageTypeError{}
	}

	typ, isString := discriminator.(string)
	if !isString {
		return nil, errors.Errorf("failed to read %s: %v (%T) is not a string", TypeKey, discriminator, discriminator)
	}

	m, err := r.New(typ)
	if err != nil {
		return nil, err
	}
	if err := m.deserialize(root); err != nil {
		return nil, err
	}
	return m, nil
}

// ToJSON serializes m into a single line JSON object.
func (r *Registry) ToJSON(m Message) ([]byte, error) {
	w, err := r.Serialize(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// FromJSON deserializes a single JSON object. Numbers keep their exact
// textual value.
func (r *Registry) FromJSON(data []byte) (Message, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var root map[string]interface{}
	if err := decoder.Decode(&root); err != nil {
		return nil, errors.Wrap(err, "failed to decode message")
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to decode message: unexpected data after the JSON object")
	}
	if root == nil {
		return nil, &UnknownMessageTypeError{}
	}

	return r.Deserialize(root)
}

var defaultRegistry = NewDefaultRegistry()

// DefaultRegistry returns the registry used by the package level functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Serialize ...
func Serialize(m Message) (*ObjectWriter, error) {
	return defaultRegistry.Serialize(m)
}

// Deserialize ...
func Deserialize(root serialized.Object) (Message, error) {
	return defaultRegistry.Deserialize(root)
}

// ToJSON ...
func ToJSON(m Message) ([]byte, error) {
	return defaultRegistry.ToJSON(m)
}

// FromJSON ...
func FromJSON(data []byte) (Message, error) {
	return defaultRegistry.FromJSON(data)
}
