package messages

import (
	"time"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

const (
	// TestCollectionFinishedType ...
	TestCollectionFinishedType = "test-collection-finished"
	// TestAssemblyFinishedType ...
	TestAssemblyFinishedType = "test-assembly-finished"
)

// TestCollectionFinished reports that every test class of a collection finished running.
type TestCollectionFinished struct {
	Identity
	ExecutionSummary
}

// NewTestCollectionFinished ...
func NewTestCollectionFinished() *TestCollectionFinished {
	const owner = "TestCollectionFinished"
	return &TestCollectionFinished{
		Identity:         newIdentity(collectionScope, owner),
		ExecutionSummary: ExecutionSummary{owner: owner},
	}
}

// MessageType ...
func (m *TestCollectionFinished) MessageType() string { return TestCollectionFinishedType }

func (m *TestCollectionFinished) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.ExecutionSummary.serialize(w)
}

func (m *TestCollectionFinished) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	return m.ExecutionSummary.deserialize(root)
}

func (m *TestCollectionFinished) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.ExecutionSummary.validate(invalid)
}

func (m *TestCollectionFinished) String() string {
	return m.Identity.String() + " " + m.ExecutionSummary.String()
}

// TestAssemblyFinished reports that a whole test assembly finished running.
type TestAssemblyFinished struct {
	Identity
	ExecutionSummary

	finishTime Required[time.Time]
}

// NewTestAssemblyFinished ...
func NewTestAssemblyFinished() *TestAssemblyFinished {
	const owner = "TestAssemblyFinished"
	return &TestAssemblyFinished{
		Identity:         newIdentity(assemblyScope, owner),
		ExecutionSummary: ExecutionSummary{owner: owner},
	}
}

// MessageType ...
func (m *TestAssemblyFinished) MessageType() string { return TestAssemblyFinishedType }

// FinishTime ...
func (m *TestAssemblyFinished) FinishTime() (time.Time, error) {
	return m.finishTime.get(m.Identity.owner, "FinishTime")
}

// SetFinishTime ...
func (m *TestAssemblyFinished) SetFinishTime(t time.Time) {
	m.finishTime.Set(t)
}

func (m *TestAssemblyFinished) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.ExecutionSummary.serialize(w)

	if v, ok := m.finishTime.Value(); ok {
		w.Time("FinishTime", v)
	}
}

func (m *TestAssemblyFinished) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	if err := m.ExecutionSummary.deserialize(root); err != nil {
		return err
	}

	finishTime, err := readTime(root, "FinishTime")
	if err != nil {
		return err
	}
	if finishTime != nil {
		m.finishTime.Set(*finishTime)
	}
	return nil
}

func (m *TestAssemblyFinished) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.ExecutionSummary.validate(invalid)

	invalid.require("FinishTime", m.finishTime)
}

func (m *TestAssemblyFinished) String() string {
	return m.Identity.String() + " " + m.ExecutionSummary.String()
}
