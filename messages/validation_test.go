package messages

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateObjectState_reportsEveryUnsetField(t *testing.T) {
	tests := []struct {
		message    Message
		wantType   string
		wantFields []string
	}{
		{
			message:    NewDiscoveryComplete(),
			wantType:   "DiscoveryComplete",
			wantFields: []string{"AssemblyUniqueID", "TestCasesToRun"},
		},
		{
			message:    NewTestCaseDiscovered(),
			wantType:   "TestCaseDiscovered",
			wantFields: []string{"AssemblyUniqueID", "Serialization", "TestCaseDisplayName", "TestCaseUniqueID", "TestCollectionUniqueID", "Traits"},
		},
		{
			message:    NewTestCaseStarting(),
			wantType:   "TestCaseStarting",
			wantFields: []string{"AssemblyUniqueID", "TestCaseDisplayName", "TestCaseUniqueID", "TestCollectionUniqueID", "Traits"},
		},
		{
			message:    NewTestStarting(),
			wantType:   "TestStarting",
			wantFields: []string{"AssemblyUniqueID", "Explicit", "TestCaseUniqueID", "TestCollectionUniqueID", "TestDisplayName", "TestUniqueID", "Timeout", "Traits"},
		},
		{
			message:    NewTestPassed(),
			wantType:   "TestPassed",
			wantFields: []string{"AssemblyUniqueID", "ExecutionTime", "Output", "TestCaseUniqueID", "TestCollectionUniqueID", "TestUniqueID"},
		},
		{
			message:  NewTestFailed(),
			wantType: "TestFailed",
			wantFields: []string{
				"AssemblyUniqueID",
				"Cause",
				"ExceptionParentIndices",
				"ExceptionTypes",
				"ExecutionTime",
				"Messages",
				"Output",
				"StackTraces",
				"TestCaseUniqueID",
				"TestCollectionUniqueID",
				"TestUniqueID",
			},
		},
		{
			message:    NewTestSkipped(),
			wantType:   "TestSkipped",
			wantFields: []string{"AssemblyUniqueID", "ExecutionTime", "Output", "Reason", "TestCaseUniqueID", "TestCollectionUniqueID", "TestUniqueID"},
		},
		{
			message:    NewTestClassFinished(),
			wantType:   "TestClassFinished",
			wantFields: []string{"AssemblyUniqueID", "ExecutionTime", "TestClassUniqueID", "TestCollectionUniqueID", "TestsFailed", "TestsNotRun", "TestsSkipped", "TestsTotal"},
		},
		{
			message:    NewTestAssemblyFinished(),
			wantType:   "TestAssemblyFinished",
			wantFields: []string{"AssemblyUniqueID", "ExecutionTime", "FinishTime", "TestsFailed", "TestsNotRun", "TestsSkipped", "TestsTotal"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			err := ValidateObjectState(tt.message)

			var validationErr *AggregatedValidationError
			require.True(t, errors.As(err, &validationErr), "%v", err)
			assert.Equal(t, tt.wantType, validationErr.Type)
			assert.Equal(t, tt.wantFields, validationErr.Fields)
			assert.Equal(t, "Object of type '"+tt.wantType+"' had one or more properties that were not set: "+strings.Join(tt.wantFields, ", "), err.Error())
		})
	}
}

func TestValidateObjectState_doesNotMutate(t *testing.T) {
	m := NewTestPassed()

	first := ValidateObjectState(m)
	second := ValidateObjectState(m)

	assert.Equal(t, first, second)
	_, err := m.Output()
	assert.Error(t, err)
}

func TestRequired_getBeforeSet(t *testing.T) {
	m := NewTestSkipped()

	_, err := m.Reason()

	var missing *MissingValueError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, &MissingValueError{Type: "TestSkipped", Field: "Reason"}, missing)
	assert.EqualError(t, err, "Attempted to get Reason on an uninitialized 'TestSkipped' object")

	m.SetReason("")
	reason, err := m.Reason()
	require.NoError(t, err)
	assert.Equal(t, "", reason)
}

func TestSetCause_rejectsUndefinedValue(t *testing.T) {
	m := NewTestFailed()

	err := m.SetCause(FailureCause(2112))

	var invalid *InvalidArgumentError
	require.True(t, errors.As(err, &invalid), "%v", err)
	assert.Equal(t, "Cause", invalid.Field)
	assert.True(t, strings.HasPrefix(invalid.Error(), "Cause is not a valid value from github.com/bitrise-steplib/steps-test-run-reporter/messages.FailureCause"), invalid.Error())

	_, err = m.Cause()
	assert.Error(t, err, "rejected value must not be stored")
}

func TestParseFailureCause(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    FailureCause
		wantErr bool
	}{
		{name: "name", raw: "Timeout", want: FailureCauseTimeout},
		{name: "number", raw: float64(1), want: FailureCauseAssertion},
		{name: "unknown name", raw: "Crash", wantErr: true},
		{name: "out of range number", raw: 2112, wantErr: true},
		{name: "wrong type", raw: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFailureCause("Cause", tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTestClassName_illegalNullCombination(t *testing.T) {
	m := NewTestCaseDiscovered()
	m.SetTestMethodName(String("Foo"))

	_, err := m.TestClassName()

	var illegal *IllegalNullCombinationError
	require.True(t, errors.As(err, &illegal), "%v", err)
	assert.EqualError(t, err, "Illegal null TestClassName on an instance of 'TestCaseDiscovered' when TestMethodName is not null")

	var validationErr *AggregatedValidationError
	require.True(t, errors.As(ValidateObjectState(m), &validationErr))
	assert.Contains(t, validationErr.Fields, "TestClassName")

	m.SetTestClassName(String("Bar"))
	className, err := m.TestClassName()
	require.NoError(t, err)
	assert.Equal(t, "Bar", *className)
}

func TestSetters_rejectMalformedValues(t *testing.T) {
	tests := []struct {
		name      string
		set       func() error
		wantField string
	}{
		{
			name:      "empty test case display name",
			set:       func() error { return NewTestCaseDiscovered().SetTestCaseDisplayName("") },
			wantField: "TestCaseDisplayName",
		},
		{
			name:      "empty serialization",
			set:       func() error { return NewTestCaseDiscovered().SetSerialization("") },
			wantField: "Serialization",
		},
		{
			name:      "nil traits",
			set:       func() error { return NewTestCaseStarting().SetTraits(nil) },
			wantField: "Traits",
		},
		{
			name:      "empty test display name",
			set:       func() error { return NewTestStarting().SetTestDisplayName("") },
			wantField: "TestDisplayName",
		},
		{
			name:      "nil exception types",
			set:       func() error { return NewTestFailed().SetExceptionTypes(nil) },
			wantField: "ExceptionTypes",
		},
		{
			name:      "empty class id on a class level message",
			set:       func() error { return NewTestClassFinished().SetIDs(IDs{TestClassUniqueID: String("")}) },
			wantField: "TestClassUniqueID",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set()

			var invalid *InvalidArgumentError
			require.True(t, errors.As(err, &invalid), "%v", err)
			assert.Equal(t, tt.wantField, invalid.Field)
		})
	}
}

func TestSetIDs_keepsOnlyScopedIDs(t *testing.T) {
	m := NewDiscoveryComplete()
	require.NoError(t, m.SetIDs(testIDs))
	m.SetTestCasesToRun(1)

	w, err := Serialize(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"$type", "AssemblyUniqueID", "TestCasesToRun"}, w.Keys())
	assert.Equal(t, `DiscoveryComplete asm="asm-id" toRun=1`, m.String())
}

func TestSetIDs_invalidIDsAreNotAssigned(t *testing.T) {
	m := NewTestClassFinished()

	err := m.SetIDs(IDs{AssemblyUniqueID: "asm", TestCollectionUniqueID: "coll", TestClassUniqueID: String("")})
	require.Error(t, err)

	_, err = m.AssemblyUniqueID()
	var missing *MissingValueError
	assert.True(t, errors.As(err, &missing), "%v", err)

	_, err = m.TestCollectionUniqueID()
	assert.True(t, errors.As(err, &missing), "%v", err)
}

func TestTestClassUniqueID(t *testing.T) {
	classFinished := NewTestClassFinished()
	_, err := classFinished.TestClassUniqueID()
	assert.Error(t, err)

	passed := NewTestPassed()
	classID, err := passed.TestClassUniqueID()
	require.NoError(t, err)
	assert.Nil(t, classID)
}

func TestString(t *testing.T) {
	m := NewTestCaseDiscovered()
	require.NoError(t, m.SetIDs(IDs{AssemblyUniqueID: "a", TestCollectionUniqueID: "c", TestCaseUniqueID: "k"}))
	require.NoError(t, m.SetTestCaseDisplayName("Sum"))

	assert.Equal(t, `TestCaseDiscovered asm="a" coll="c" class=null method=null case="k" name="Sum"`, m.String())
}
