package messages

import (
	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

// TestClassFinishedType ...
const TestClassFinishedType = "test-class-finished"

// TestClassFinished reports that every test case of a test class finished running.
type TestClassFinished struct {
	Identity
	ExecutionSummary
}

// NewTestClassFinished ...
func NewTestClassFinished() *TestClassFinished {
	const owner = "TestClassFinished"
	return &TestClassFinished{
		Identity:         newIdentity(classScope, owner),
		ExecutionSummary: ExecutionSummary{owner: owner},
	}
}

// MessageType ...
func (m *TestClassFinished) MessageType() string { return TestClassFinishedType }

func (m *TestClassFinished) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.ExecutionSummary.serialize(w)
}

func (m *TestClassFinished) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	return m.ExecutionSummary.deserialize(root)
}

func (m *TestClassFinished) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.ExecutionSummary.validate(invalid)
}

func (m *TestClassFinished) String() string {
	return m.Identity.String() + " " + m.ExecutionSummary.String()
}
