package messages

import (
	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
)

const (
	// TestPassedType ...
	TestPassedType = "test-passed"
	// TestSkippedType ...
	TestSkippedType = "test-skipped"
	// TestNotRunType ...
	TestNotRunType = "test-not-run"
)

// TestPassed reports a test that passed.
type TestPassed struct {
	Identity
	TestResult
}

// NewTestPassed ...
func NewTestPassed() *TestPassed {
	const owner = "TestPassed"
	return &TestPassed{
		Identity:   newIdentity(testScope, owner),
		TestResult: TestResult{owner: owner},
	}
}

// MessageType ...
func (m *TestPassed) MessageType() string { return TestPassedType }

func (m *TestPassed) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.TestResult.serialize(w)
}

func (m *TestPassed) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	return m.TestResult.deserialize(root)
}

func (m *TestPassed) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.TestResult.validate(invalid)
}

func (m *TestPassed) String() string { return m.Identity.String() }

// TestNotRun reports a test that was selected out of the run, for example an
// explicit test in a run that does not include explicit tests.
type TestNotRun struct {
	Identity
	TestResult
}

// NewTestNotRun ...
func NewTestNotRun() *TestNotRun {
	const owner = "TestNotRun"
	return &TestNotRun{
		Identity:   newIdentity(testScope, owner),
		TestResult: TestResult{owner: owner},
	}
}

// MessageType ...
func (m *TestNotRun) MessageType() string { return TestNotRunType }

func (m *TestNotRun) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.TestResult.serialize(w)
}

func (m *TestNotRun) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	return m.TestResult.deserialize(root)
}

func (m *TestNotRun) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.TestResult.validate(invalid)
}

func (m *TestNotRun) String() string { return m.Identity.String() }

// TestSkipped reports a skipped test.
type TestSkipped struct {
	Identity
	TestResult

	reason Required[string]
}

// NewTestSkipped ...
func NewTestSkipped() *TestSkipped {
	const owner = "TestSkipped"
	return &TestSkipped{
		Identity:   newIdentity(testScope, owner),
		TestResult: TestResult{owner: owner},
	}
}

// MessageType ...
func (m *TestSkipped) MessageType() string { return TestSkippedType }

// Reason ...
func (m *TestSkipped) Reason() (string, error) {
	return m.reason.get(m.Identity.owner, "Reason")
}

// SetReason ...
func (m *TestSkipped) SetReason(reason string) {
	m.reason.Set(reason)
}

func (m *TestSkipped) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.TestResult.serialize(w)

	if v, ok := m.reason.Value(); ok {
		w.String("Reason", v)
	}
}

func (m *TestSkipped) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	if err := m.TestResult.deserialize(root); err != nil {
		return err
	}

	reason, err := readString(root, "Reason")
	if err != nil {
		return err
	}
	if reason != nil {
		m.reason.Set(*reason)
	}
	return nil
}

func (m *TestSkipped) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.TestResult.validate(invalid)

	invalid.require("Reason", m.reason)
}

func (m *TestSkipped) String() string {
	return m.Identity.String() + " reason=" + quotedRequired(m.reason)
}
