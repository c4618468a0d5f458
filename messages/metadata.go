package messages

import (
	"fmt"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
	"github.com/shopspring/decimal"
)

// TestCaseMetadata describes a test case. It is shared by the discovery and
// the execution side messages of a test case.
type TestCaseMetadata struct {
	owner string

	skipReason          *string
	sourceFilePath      *string
	sourceLineNumber    *int
	testCaseDisplayName Required[string]
	testClassName       *string
	testClassNamespace  *string
	testMethodName      *string
	traits              Required[map[string][]string]
}

// SkipReason is non-nil when the test case is statically skipped.
func (m TestCaseMetadata) SkipReason() *string { return copyString(m.skipReason) }

// SetSkipReason ...
func (m *TestCaseMetadata) SetSkipReason(reason *string) { m.skipReason = copyString(reason) }

// SourceFilePath ...
func (m TestCaseMetadata) SourceFilePath() *string { return copyString(m.sourceFilePath) }

// SourceLineNumber ...
func (m TestCaseMetadata) SourceLineNumber() *int {
	if m.sourceLineNumber == nil {
		return nil
	}
	return Int(*m.sourceLineNumber)
}

// SetSourceInformation sets the source file path and line number together.
func (m *TestCaseMetadata) SetSourceInformation(filePath *string, lineNumber *int) {
	m.sourceFilePath = copyString(filePath)
	m.sourceLineNumber = nil
	if lineNumber != nil {
		m.sourceLineNumber = Int(*lineNumber)
	}
}

// TestCaseDisplayName ...
func (m TestCaseMetadata) TestCaseDisplayName() (string, error) {
	return m.testCaseDisplayName.get(m.owner, "TestCaseDisplayName")
}

// SetTestCaseDisplayName rejects an empty name.
func (m *TestCaseMetadata) SetTestCaseDisplayName(name string) error {
	if name == "" {
		return newInvalidArgumentError("TestCaseDisplayName", "TestCaseDisplayName cannot be empty")
	}
	m.testCaseDisplayName.Set(name)
	return nil
}

// TestClassName may only be nil when TestMethodName is nil too.
func (m TestCaseMetadata) TestClassName() (*string, error) {
	if m.testClassName == nil && m.testMethodName != nil {
		return nil, &IllegalNullCombinationError{Type: m.owner, Field: "TestClassName", DependsOn: "TestMethodName"}
	}
	return copyString(m.testClassName), nil
}

// SetTestClassName ...
func (m *TestCaseMetadata) SetTestClassName(name *string) { m.testClassName = copyString(name) }

// TestClassNamespace ...
func (m TestCaseMetadata) TestClassNamespace() *string { return copyString(m.testClassNamespace) }

// SetTestClassNamespace ...
func (m *TestCaseMetadata) SetTestClassNamespace(namespace *string) {
	m.testClassNamespace = copyString(namespace)
}

// TestMethodName ...
func (m TestCaseMetadata) TestMethodName() *string { return copyString(m.testMethodName) }

// SetTestMethodName ...
func (m *TestCaseMetadata) SetTestMethodName(name *string) { m.testMethodName = copyString(name) }

// Traits ...
func (m TestCaseMetadata) Traits() (map[string][]string, error) {
	traits, err := m.traits.get(m.owner, "Traits")
	if err != nil {
		return nil, err
	}
	return copyTraits(traits), nil
}

// SetTraits rejects a nil map.
func (m *TestCaseMetadata) SetTraits(traits map[string][]string) error {
	if traits == nil {
		return newInvalidArgumentError("Traits", "Traits cannot be nil")
	}
	m.traits.Set(copyTraits(traits))
	return nil
}

func (m TestCaseMetadata) serialize(w *ObjectWriter) {
	w.OptionalString("SkipReason", m.skipReason)
	w.OptionalString("SourceFilePath", m.sourceFilePath)
	w.OptionalInt("SourceLineNumber", m.sourceLineNumber)
	if v, ok := m.testCaseDisplayName.Value(); ok {
		w.String("TestCaseDisplayName", v)
	}
	w.OptionalString("TestClassName", m.testClassName)
	w.OptionalString("TestClassNamespace", m.testClassNamespace)
	w.OptionalString("TestMethodName", m.testMethodName)
	if v, ok := m.traits.Value(); ok {
		w.Traits("Traits", v)
	}
}

func (m *TestCaseMetadata) deserialize(root serialized.Object) error {
	var err error

	if m.skipReason, err = readString(root, "SkipReason"); err != nil {
		return err
	}
	if m.sourceFilePath, err = readString(root, "SourceFilePath"); err != nil {
		return err
	}
	if m.sourceLineNumber, err = readInt(root, "SourceLineNumber"); err != nil {
		return err
	}
	if m.testClassName, err = readString(root, "TestClassName"); err != nil {
		return err
	}
	if m.testClassNamespace, err = readString(root, "TestClassNamespace"); err != nil {
		return err
	}
	if m.testMethodName, err = readString(root, "TestMethodName"); err != nil {
		return err
	}

	displayName, err := readString(root, "TestCaseDisplayName")
	if err != nil {
		return err
	}
	if displayName != nil {
		if err := m.SetTestCaseDisplayName(*displayName); err != nil {
			return err
		}
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

func (m TestCaseMetadata) validate(invalid PropertySet) {
	invalid.require("TestCaseDisplayName", m.testCaseDisplayName)
	invalid.require("Traits", m.traits)

	if m.testMethodName != nil && m.testClassName == nil {
		invalid.Add("TestClassName")
	}
}

func (m TestCaseMetadata) String() string {
	return "name=" + quotedRequired(m.testCaseDisplayName)
}

// ExecutionSummary is the summary reported when a group of tests finished.
type ExecutionSummary struct {
	owner string

	executionTime Required[decimal.Decimal]
	testsFailed   Required[int]
	testsNotRun   Required[int]
	testsSkipped  Required[int]
	testsTotal    Required[int]
}

// ExecutionTime is in seconds.
func (s ExecutionSummary) ExecutionTime() (decimal.Decimal, error) {
	return s.executionTime.get(s.owner, "ExecutionTime")
}

// SetExecutionTime ...
func (s *ExecutionSummary) SetExecutionTime(seconds decimal.Decimal) { s.executionTime.Set(seconds) }

// TestsFailed ...
func (s ExecutionSummary) TestsFailed() (int, error) { return s.testsFailed.get(s.owner, "TestsFailed") }

// SetTestsFailed ...
func (s *ExecutionSummary) SetTestsFailed(n int) { s.testsFailed.Set(n) }

// TestsNotRun ...
func (s ExecutionSummary) TestsNotRun() (int, error) { return s.testsNotRun.get(s.owner, "TestsNotRun") }

// SetTestsNotRun ...
func (s *ExecutionSummary) SetTestsNotRun(n int) { s.testsNotRun.Set(n) }

// TestsSkipped ...
func (s ExecutionSummary) TestsSkipped() (int, error) {
	return s.testsSkipped.get(s.owner, "TestsSkipped")
}

// SetTestsSkipped ...
func (s *ExecutionSummary) SetTestsSkipped(n int) { s.testsSkipped.Set(n) }

// TestsTotal ...
func (s ExecutionSummary) TestsTotal() (int, error) { return s.testsTotal.get(s.owner, "TestsTotal") }

// SetTestsTotal ...
func (s *ExecutionSummary) SetTestsTotal(n int) { s.testsTotal.Set(n) }

// Summary bundles the values of an ExecutionSummary.
type Summary struct {
	ExecutionTime decimal.Decimal
	TestsFailed   int
	TestsNotRun   int
	TestsSkipped  int
	TestsTotal    int
}

// SetSummary assigns every summary field at once.
func (s *ExecutionSummary) SetSummary(summary Summary) {
	s.SetExecutionTime(summary.ExecutionTime)
	s.SetTestsFailed(summary.TestsFailed)
	s.SetTestsNotRun(summary.TestsNotRun)
	s.SetTestsSkipped(summary.TestsSkipped)
	s.SetTestsTotal(summary.TestsTotal)
}

// Summary returns every summary field, or a MissingValueError for the first unset one.
func (s ExecutionSummary) Summary() (Summary, error) {
	var summary Summary
	var err error

	if summary.ExecutionTime, err = s.ExecutionTime(); err != nil {
		return Summary{}, err
	}
	if summary.TestsFailed, err = s.TestsFailed(); err != nil {
		return Summary{}, err
	}
	if summary.TestsNotRun, err = s.TestsNotRun(); err != nil {
		return Summary{}, err
	}
	if summary.TestsSkipped, err = s.TestsSkipped(); err != nil {
		return Summary{}, err
	}
	if summary.TestsTotal, err = s.TestsTotal(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s ExecutionSummary) serialize(w *ObjectWriter) {
	if v, ok := s.executionTime.Value(); ok {
		w.Decimal("ExecutionTime", v)
	}
	for _, field := range []struct {
		key   string
		value Required[int]
	}{
		{"TestsFailed", s.testsFailed},
		{"TestsNotRun", s.testsNotRun},
		{"TestsSkipped", s.testsSkipped},
		{"TestsTotal", s.testsTotal},
	} {
		if v, ok := field.value.Value(); ok {
			w.Int(field.key, v)
		}
	}
}

func (s *ExecutionSummary) deserialize(root serialized.Object) error {
	executionTime, err := readDecimal(root, "ExecutionTime")
	if err != nil {
		return err
	}
	if executionTime != nil {
		s.executionTime.Set(*executionTime)
	}

	for key, target := range map[string]*Required[int]{
		"TestsFailed":  &s.testsFailed,
		"TestsNotRun":  &s.testsNotRun,
		"TestsSkipped": &s.testsSkipped,
		"TestsTotal":   &s.testsTotal,
	} {
		value, err := readInt(root, key)
		if err != nil {
			return err
		}
		if value != nil {
			target.Set(*value)
		}
	}

	return nil
}

func (s ExecutionSummary) validate(invalid PropertySet) {
	invalid.require("ExecutionTime", s.executionTime)
	invalid.require("TestsFailed", s.testsFailed)
	invalid.require("TestsNotRun", s.testsNotRun)
	invalid.require("TestsSkipped", s.testsSkipped)
	invalid.require("TestsTotal", s.testsTotal)
}

func (s ExecutionSummary) String() string {
	summary, err := s.Summary()
	if err != nil {
		return "summary=null"
	}
	return fmt.Sprintf("total=%d failed=%d skipped=%d notRun=%d time=%s",
		summary.TestsTotal, summary.TestsFailed, summary.TestsSkipped, summary.TestsNotRun, summary.ExecutionTime)
}

// TestResult is shared by the messages reporting the outcome of a single test.
type TestResult struct {
	owner string

	executionTime Required[decimal.Decimal]
	output        Required[string]
	warnings      []string
}

// ExecutionTime is in seconds.
func (r TestResult) ExecutionTime() (decimal.Decimal, error) {
	return r.executionTime.get(r.owner, "ExecutionTime")
}

// SetExecutionTime ...
func (r *TestResult) SetExecutionTime(seconds decimal.Decimal) { r.executionTime.Set(seconds) }

// Output is the captured output of the test, possibly empty.
func (r TestResult) Output() (string, error) { return r.output.get(r.owner, "Output") }

// SetOutput ...
func (r *TestResult) SetOutput(output string) { r.output.Set(output) }

// Warnings ...
func (r TestResult) Warnings() []string {
	if len(r.warnings) == 0 {
		return nil
	}
	return append([]string{}, r.warnings...)
}

// SetWarnings ...
func (r *TestResult) SetWarnings(warnings []string) {
	r.warnings = nil
	if len(warnings) > 0 {
		r.warnings = append([]string{}, warnings...)
	}
}

func (r TestResult) serialize(w *ObjectWriter) {
	if v, ok := r.executionTime.Value(); ok {
		w.Decimal("ExecutionTime", v)
	}
	if v, ok := r.output.Value(); ok {
		w.String("Output", v)
	}
	w.OptionalStringSlice("Warnings", r.warnings)
}

func (r *TestResult) deserialize(root serialized.Object) error {
	executionTime, err := readDecimal(root, "ExecutionTime")
	if err != nil {
		return err
	}
	if executionTime != nil {
		r.executionTime.Set(*executionTime)
	}

	output, err := readString(root, "Output")
	if err != nil {
		return err
	}
	if output != nil {
		r.output.Set(*output)
	}

	warnings, _, err := readStringSlice(root, "Warnings")
	if err != nil {
		return err
	}
	r.SetWarnings(warnings)

	return nil
}

func (r TestResult) validate(invalid PropertySet) {
	invalid.require("ExecutionTime", r.executionTime)
	invalid.require("Output", r.output)
}

func copyTraits(traits map[string][]string) map[string][]string {
	copied := make(map[string][]string, len(traits))
	for name, values := range traits {
		copied[name] = append([]string{}, values...)
	}
	return copied
}
