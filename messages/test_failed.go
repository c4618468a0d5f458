package messages

import (
	"fmt"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
	"github.com/shopspring/decimal"
)

// TestFailedType ...
const TestFailedType = "test-failed"

// TestFailed reports a test that failed, together with the flattened error
// tree that made it fail.
type TestFailed struct {
	Identity
	TestResult

	cause                  Required[FailureCause]
	exceptionParentIndices Required[[]int]
	exceptionTypes         Required[[]string]
	messages               Required[[]string]
	stackTraces            Required[[]string]
}

// NewTestFailed ...
func NewTestFailed() *TestFailed {
	const owner = "TestFailed"
	return &TestFailed{
		Identity:   newIdentity(testScope, owner),
		TestResult: TestResult{owner: owner},
	}
}

// NewTestFailedFromError builds a complete TestFailed message for err. The
// failure cause is derived with Classify.
func NewTestFailedFromError(err error, ids IDs, executionTime decimal.Decimal, output string, warnings []string) (*TestFailed, error) {
	return Classifier{}.NewTestFailed(err, ids, executionTime, output, warnings)
}

// NewTestFailed builds a complete TestFailed message for err, using c to
// derive the failure cause.
func (c Classifier) NewTestFailed(err error, ids IDs, executionTime decimal.Decimal, output string, warnings []string) (*TestFailed, error) {
	m := NewTestFailed()
	if setErr := m.SetIDs(ids); setErr != nil {
		return nil, setErr
	}
	m.SetExecutionTime(executionTime)
	m.SetOutput(output)
	m.SetWarnings(warnings)

	if setErr := m.SetCause(c.Classify(err)); setErr != nil {
		return nil, setErr
	}
	if setErr := m.SetErrorMetadata(NewErrorMetadata(err)); setErr != nil {
		return nil, setErr
	}

	return m, nil
}

// MessageType ...
func (m *TestFailed) MessageType() string { return TestFailedType }

// Cause ...
func (m *TestFailed) Cause() (FailureCause, error) {
	return m.cause.get(m.Identity.owner, "Cause")
}

// SetCause rejects values outside of the defined causes.
func (m *TestFailed) SetCause(cause FailureCause) error {
	if err := validateFailureCause("Cause", cause); err != nil {
		return err
	}
	m.cause.Set(cause)
	return nil
}

// ExceptionParentIndices ...
func (m *TestFailed) ExceptionParentIndices() ([]int, error) {
	v, err := m.exceptionParentIndices.get(m.Identity.owner, "ExceptionParentIndices")
	if err != nil {
		return nil, err
	}
	return append([]int{}, v...), nil
}

// SetExceptionParentIndices ...
func (m *TestFailed) SetExceptionParentIndices(indices []int) error {
	if indices == nil {
		return newInvalidArgumentError("ExceptionParentIndices", "ExceptionParentIndices cannot be nil")
	}
	m.exceptionParentIndices.Set(append([]int{}, indices...))
	return nil
}

// ExceptionTypes ...
func (m *TestFailed) ExceptionTypes() ([]string, error) {
	return m.stringList(m.exceptionTypes, "ExceptionTypes")
}

// SetExceptionTypes ...
func (m *TestFailed) SetExceptionTypes(types []string) error {
	return setStringList(&m.exceptionTypes, "ExceptionTypes", types)
}

// Messages ...
func (m *TestFailed) Messages() ([]string, error) {
	return m.stringList(m.messages, "Messages")
}

// SetMessages ...
func (m *TestFailed) SetMessages(messages []string) error {
	return setStringList(&m.messages, "Messages", messages)
}

// StackTraces ...
func (m *TestFailed) StackTraces() ([]string, error) {
	return m.stringList(m.stackTraces, "StackTraces")
}

// SetStackTraces ...
func (m *TestFailed) SetStackTraces(stackTraces []string) error {
	return setStringList(&m.stackTraces, "StackTraces", stackTraces)
}

// ErrorMetadata returns the four error lists together.
func (m *TestFailed) ErrorMetadata() (ErrorMetadata, error) {
	var metadata ErrorMetadata
	var err error

	if metadata.ParentIndices, err = m.ExceptionParentIndices(); err != nil {
		return ErrorMetadata{}, err
	}
	if metadata.Types, err = m.ExceptionTypes(); err != nil {
		return ErrorMetadata{}, err
	}
	if metadata.Messages, err = m.Messages(); err != nil {
		return ErrorMetadata{}, err
	}
	if metadata.StackTraces, err = m.StackTraces(); err != nil {
		return ErrorMetadata{}, err
	}
	return metadata, nil
}

// SetErrorMetadata assigns the four error lists together.
func (m *TestFailed) SetErrorMetadata(metadata ErrorMetadata) error {
	if err := m.SetExceptionParentIndices(metadata.ParentIndices); err != nil {
		return err
	}
	if err := m.SetExceptionTypes(metadata.Types); err != nil {
		return err
	}
	if err := m.SetMessages(metadata.Messages); err != nil {
		return err
	}
	return m.SetStackTraces(metadata.StackTraces)
}

func (m *TestFailed) stringList(r Required[[]string], field string) ([]string, error) {
	v, err := r.get(m.Identity.owner, field)
	if err != nil {
		return nil, err
	}
	return append([]string{}, v...), nil
}

func setStringList(r *Required[[]string], field string, values []string) error {
	if values == nil {
		return newInvalidArgumentError(field, "%s cannot be nil", field)
	}
	r.Set(append([]string{}, values...))
	return nil
}

func (m *TestFailed) serialize(w *ObjectWriter) {
	m.Identity.serialize(w)
	m.TestResult.serialize(w)

	if v, ok := m.cause.Value(); ok {
		w.String("Cause", v.String())
	}
	if v, ok := m.exceptionParentIndices.Value(); ok {
		w.IntSlice("ExceptionParentIndices", v)
	}
	for _, field := range []struct {
		key   string
		value Required[[]string]
	}{
		{"ExceptionTypes", m.exceptionTypes},
		{"Messages", m.messages},
		{"StackTraces", m.stackTraces},
	} {
		if v, ok := field.value.Value(); ok {
			w.StringSlice(field.key, v)
		}
	}
}

func (m *TestFailed) deserialize(root serialized.Object) error {
	if err := m.Identity.deserialize(root); err != nil {
		return err
	}
	if err := m.TestResult.deserialize(root); err != nil {
		return err
	}

	rawCause, ok, err := lookup(root, "Cause")
	if err != nil {
		return err
	}
	if ok {
		cause, err := parseFailureCause("Cause", rawCause)
		if err != nil {
			return err
		}
		m.cause.Set(cause)
	}

	indices, ok, err := readIntSlice(root, "ExceptionParentIndices")
	if err != nil {
		return err
	}
	if ok {
		m.exceptionParentIndices.Set(indices)
	}

	for key, target := range map[string]*Required[[]string]{
		"ExceptionTypes": &m.exceptionTypes,
		"Messages":       &m.messages,
		"StackTraces":    &m.stackTraces,
	} {
		values, ok, err := readStringSlice(root, key)
		if err != nil {
			return err
		}
		if ok {
			target.Set(values)
		}
	}

	return nil
}

func (m *TestFailed) validateObjectState(invalid PropertySet) {
	m.Identity.validate(invalid)
	m.TestResult.validate(invalid)

	invalid.require("Cause", m.cause)
	invalid.require("ExceptionParentIndices", m.exceptionParentIndices)
	invalid.require("ExceptionTypes", m.exceptionTypes)
	invalid.require("Messages", m.messages)
	invalid.require("StackTraces", m.stackTraces)
}

func (m *TestFailed) String() string {
	cause := "null"
	if v, ok := m.cause.Value(); ok {
		cause = v.String()
	}
	firstType := "null"
	if v, ok := m.exceptionTypes.Value(); ok && len(v) > 0 {
		firstType = fmt.Sprintf("%q", v[0])
	}
	return fmt.Sprintf("%s cause=%s type=%s", m.Identity.String(), cause, firstType)
}
