package messages

import (
	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

// TestCaseDiscoveredType ...
const TestCaseDiscoveredType = "test-case-discovered"

// TestCaseDiscovered reports a test case found during discovery.
type TestCaseDiscovered struct {
	Identity
	TestCaseMetadata

	serialization Required[string]
}

// NewTestCaseDiscovered ...
func NewTestCaseDiscovered() *TestCaseDiscovered {
	const owner = "TestCaseDiscovered"
	return &TestCaseDiscovered{
		Identity:         newIdentity(testCaseScope, owner),
		TestCaseMetadata: TestCaseMetadata{owner: owner},
	}
}

// MessageType ...
func (m *TestCaseDiscovered) MessageType() string { return TestCaseDiscoveredType }

// Serialization is the opaque token that recreates the test case in another process.
func (m *TestCaseDiscovered) Serialization() (string, error) {
	return m.serialization.get(m.Identity.owner, "Serialization")
}

// SetSerialization rejects an empty token.
func (m *TestCaseDiscovered) SetSerialization(serialization string) error {
	if serialization == "" {
		return newInvalidArgumentError("Serialization", "Serialization cannot be empty")
	}
	m.serialization.Set(serialization)
	return nil
}

func (m *TestCaseDiscovered) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.TestCaseMetadata.serialize(w)

	if v, ok := m.serialization.Value(); ok {
		w.String("Serialization", v)
	}
}

func (m *TestCaseDiscovered) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	if err := m.TestCaseMetadata.deserialize(root); err != nil {
		return err
	}

	serialization, err := readString(root, "Serialization")
	if err != nil {
		return err
	}
	if serialization != nil {
		return m.SetSerialization(*serialization)
	}
	return nil
}

func (m *TestCaseDiscovered) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.TestCaseMetadata.validate(invalid)

	invalid.require("Serialization", m.serialization)
}

func (m *TestCaseDiscovered) String() string {
	return m.Identity.String() + " " + m.TestCaseMetadata.String()
}
