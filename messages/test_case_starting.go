package messages

import (
	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

// TestCaseStartingType ...
const TestCaseStartingType = "test-case-starting"

// TestCaseStarting reports that a test case is about to run. It carries the
// same metadata as TestCaseDiscovered.
type TestCaseStarting struct {
	Identity
	TestCaseMetadata
}

// NewTestCaseStarting ...
func NewTestCaseStarting() *TestCaseStarting {
	const owner = "TestCaseStarting"
	return &TestCaseStarting{
		Identity:         newIdentity(testCaseScope, owner),
		TestCaseMetadata: TestCaseMetadata{owner: owner},
	}
}

// MessageType ...
func (m *TestCaseStarting) MessageType() string { return TestCaseStartingType }

func (m *TestCaseStarting) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.TestCaseMetadata.serialize(w)
}

func (m *TestCaseStarting) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	return m.TestCaseMetadata.deserialize(root)
}

func (m *TestCaseStarting) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.TestCaseMetadata.validate(invalid)
}

func (m *TestCaseStarting) String() string {
	return m.Identity.String() + " " + m.TestCaseMetadata.String()
}
