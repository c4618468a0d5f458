package messages

import (
	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

// TestStartingType ...
const TestStartingType = "test-starting"

// TestStarting reports that a single test of a test case is about to run.
type TestStarting struct {
	Identity

	explicit        Required[bool]
	testDisplayName Required[string]
	timeout         Required[int]
	traits          Required[map[string][]string]
}

// NewTestStarting ...
func NewTestStarting() *TestStarting {
	return &TestStarting{
		Identity: newIdentity(testScope, "TestStarting"),
	}
}

// MessageType ...
func (m *TestStarting) MessageType() string { return TestStartingType }

// Explicit is true for tests that only run when asked for explicitly.
func (m *TestStarting) Explicit() (bool, error) {
	return m.explicit.get(m.owner, "Explicit")
}

// SetExplicit ...
func (m *TestStarting) SetExplicit(explicit bool) {
	m.explicit.Set(explicit)
}

// TestDisplayName ...
func (m *TestStarting) TestDisplayName() (string, error) {
	return m.testDisplayName.get(m.owner, "TestDisplayName")
}

// SetTestDisplayName rejects an empty name.
func (m *TestStarting) SetTestDisplayName(name string) error {
	if name == "" {
		return newInvalidArgumentError("TestDisplayName", "TestDisplayName cannot be empty")
	}
	m.testDisplayName.Set(name)
	return nil
}

// Timeout is in milliseconds, 0 means no timeout.
func (m *TestStarting) Timeout() (int, error) {
	return m.timeout.get(m.owner, "Timeout")
}

// SetTimeout ...
func (m *TestStarting) SetTimeout(milliseconds int) {
	m.timeout.Set(milliseconds)
}

// Traits ...
func (m *TestStarting) Traits() (map[string][]string, error) {
	traits, err := m.traits.get(m.owner, "Traits")
	if err != nil {
		return nil, err
	}
	return copyTraits(traits), nil
}

// SetTraits rejects a nil map.
func (m *TestStarting) SetTraits(traits map[string][]string) error {
	if traits == nil {
		return newInvalidArgumentError("Traits", "Traits cannot be nil")
	}
	m.traits.Set(copyTraits(traits))
	return nil
}

func (m *TestStarting) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)

	if v, ok := m.explicit.Value(); ok {
		w.Bool("Explicit", v)
	}
	if v, ok := m.testDisplayName.Value(); ok {
		w.String("TestDisplayName", v)
	}
	if v, ok := m.timeout.Value(); ok {
		w.Int("Timeout", v)
	}
	if v, ok := m.traits.Value(); ok {
		w.Traits("Traits", v)
	}
}

func (m *TestStarting) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}

	explicit, err := readBool(root, "Explicit")
	if err != nil {
		return err
	}
	if explicit != nil {
		m.explicit.Set(*explicit)
	}

	name, err := readString(root, "TestDisplayName")
	if err != nil {
		return err
	}
	if name != nil {
		if err := m.SetTestDisplayName(*name); err != nil {
			return err
		}
	}

	timeout, err := readInt(root, "Timeout")
	if err != nil {
		return err
	}
	if timeout != nil {
		m.timeout.Set(*timeout)
	}

	traits, ok, err := readTraits(root, "Traits")
	if err != nil {
		return err
	}
	if ok {
		m.traits.Set(traits)
	}

	return nil
}

func (m *TestStarting) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)

	invalid.require("Explicit", m.explicit)
	invalid.require("TestDisplayName", m.testDisplayName)
	invalid.require("Timeout", m.timeout)
	invalid.require("Traits", m.traits)
}

func (m *TestStarting) String() string {
	return m.Identity.String() + " name=" + quotedRequired(m.testDisplayName)
}
