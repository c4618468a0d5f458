package messagestream

import (
	"sort"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-test-run-reporter/messages"
	"github.com/bitrise-steplib/steps-test-run-reporter/test/testreport"
)

const notRunMessage = "Test was not run"

type testCaseInfo struct {
	displayName string
	className   string
	file        string
	line        int
	traits      map[string][]string
	started     bool
}

type suite struct {
	id        string
	name      string
	testCases []testreport.TestCase
	summary   *messages.Summary
}

func (s suite) testSuite() testreport.TestSuite {
	ts := testreport.TestSuite{
		Name:      s.name,
		TestCases: s.testCases,
	}
	if ts.Name == "" {
		ts.Name = s.id
	}

	if s.summary != nil {
		ts.Tests = s.summary.TestsTotal
		ts.Failures = s.summary.TestsFailed
		ts.Skipped = s.summary.TestsSkipped + s.summary.TestsNotRun
		ts.Time = s.summary.ExecutionTime.InexactFloat64()
		return ts
	}

	ts.Tests = len(s.testCases)
	for _, tc := range s.testCases {
		if tc.Failure != nil {
			ts.Failures++
		}
		if tc.Skipped != nil {
			ts.Skipped++
		}
		ts.Time += tc.Time
	}
	return ts
}

// reportBuilder groups the test results of a message stream into one suite
// per test class. Tests without a class are grouped by their collection.
type reportBuilder struct {
	logger log.Logger

	suites     map[string]*suite
	suiteOrder []string
	testCases  map[string]testCaseInfo
	tests      map[string]*messages.TestStarting
}

func newReportBuilder(logger log.Logger) *reportBuilder {
	return &reportBuilder{
		logger:    logger,
		suites:    map[string]*suite{},
		testCases: map[string]testCaseInfo{},
		tests:     map[string]*messages.TestStarting{},
	}
}

func (b *reportBuilder) add(message messages.Message) error {
	switch m := message.(type) {
	case *messages.TestCaseDiscovered:
		return b.addTestCase(m.Identity, m.TestCaseMetadata, false)
	case *messages.TestCaseStarting:
		return b.addTestCase(m.Identity, m.TestCaseMetadata, true)
	case *messages.TestStarting:
		testID, err := m.TestUniqueID()
		if err != nil {
			return err
		}
		b.tests[testID] = m
		return nil
	case *messages.TestPassed:
		return b.addResult(m.Identity, m.TestResult, func(*testreport.TestCase) error { return nil })
	case *messages.TestFailed:
		return b.addResult(m.Identity, m.TestResult, func(tc *testreport.TestCase) error {
			failure, err := newFailure(m)
			if err != nil {
				return err
			}
			tc.Failure = failure
			return nil
		})
	case *messages.TestSkipped:
		return b.addResult(m.Identity, m.TestResult, func(tc *testreport.TestCase) error {
			reason, err := m.Reason()
			if err != nil {
				return err
			}
			tc.Skipped = &testreport.Skipped{Message: reason}
			return nil
		})
	case *messages.TestNotRun:
		return b.addResult(m.Identity, m.TestResult, func(tc *testreport.TestCase) error {
			tc.Skipped = &testreport.Skipped{Message: notRunMessage}
			return nil
		})
	case *messages.TestClassFinished:
		s, err := b.suite(m.Identity)
		if err != nil {
			return err
		}
		summary, err := m.Summary()
		if err != nil {
			return err
		}
		s.summary = &summary
		return nil
	default:
		b.logger.Debugf("%s", message)
		return nil
	}
}

func (b *reportBuilder) addTestCase(id messages.Identity, metadata messages.TestCaseMetadata, started bool) error {
	caseID, err := id.TestCaseUniqueID()
	if err != nil {
		return err
	}
	if existing, ok := b.testCases[caseID]; ok && existing.started && !started {
		return nil
	}

	displayName, err := metadata.TestCaseDisplayName()
	if err != nil {
		return err
	}
	className, err := metadata.TestClassName()
	if err != nil {
		return err
	}
	traits, err := metadata.Traits()
	if err != nil {
		return err
	}

	info := testCaseInfo{
		displayName: displayName,
		traits:      traits,
		started:     started,
	}
	if className != nil {
		info.className = *className
		if namespace := metadata.TestClassNamespace(); namespace != nil && *namespace != "" {
			info.className = *namespace + "." + *className
		}
	}
	if file := metadata.SourceFilePath(); file != nil {
		info.file = *file
	}
	if line := metadata.SourceLineNumber(); line != nil {
		info.line = *line
	}

	b.testCases[caseID] = info

	if info.className != "" {
		s, err := b.suite(id)
		if err != nil {
			return err
		}
		if s.name == "" {
			s.name = info.className
		}
	}

	return nil
}

func (b *reportBuilder) addResult(id messages.Identity, result messages.TestResult, decorate func(*testreport.TestCase) error) error {
	s, err := b.suite(id)
	if err != nil {
		return err
	}
	caseID, err := id.TestCaseUniqueID()
	if err != nil {
		return err
	}
	testID, err := id.TestUniqueID()
	if err != nil {
		return err
	}
	executionTime, err := result.ExecutionTime()
	if err != nil {
		return err
	}
	output, err := result.Output()
	if err != nil {
		return err
	}

	info := b.testCases[caseID]
	traits := info.traits

	tc := testreport.TestCase{
		Name:      info.displayName,
		ClassName: info.className,
		Time:      executionTime.InexactFloat64(),
		File:      info.file,
		Line:      info.line,
	}
	if started, ok := b.tests[testID]; ok {
		if name, err := started.TestDisplayName(); err == nil {
			tc.Name = name
		}
		if testTraits, err := started.Traits(); err == nil && len(testTraits) > 0 {
			traits = testTraits
		}
	}
	if tc.Name == "" {
		tc.Name = testID
	}
	if tc.ClassName == "" {
		tc.ClassName = s.id
	}
	if properties := newProperties(traits); properties != nil {
		tc.Properties = properties
	}
	if output != "" {
		tc.SystemOut = &testreport.SystemOut{Value: output}
	}
	if warnings := result.Warnings(); len(warnings) > 0 {
		tc.SystemErr = &testreport.SystemErr{Value: strings.Join(warnings, "\n")}
	}

	if err := decorate(&tc); err != nil {
		return err
	}

	s.testCases = append(s.testCases, tc)
	return nil
}

// suite returns the suite of the test class id belongs to, or the suite of
// its collection for tests without a class.
func (b *reportBuilder) suite(id messages.Identity) (*suite, error) {
	key, err := id.TestCollectionUniqueID()
	if err != nil {
		return nil, err
	}
	classID, err := id.TestClassUniqueID()
	if err != nil {
		return nil, err
	}
	if classID != nil {
		key = *classID
	}

	s, ok := b.suites[key]
	if !ok {
		s = &suite{id: key}
		b.suites[key] = s
		b.suiteOrder = append(b.suiteOrder, key)
	}
	return s, nil
}

func (b *reportBuilder) report() testreport.TestReport {
	var report testreport.TestReport
	for _, key := range b.suiteOrder {
		s := b.suites[key]
		if len(s.testCases) == 0 && (s.summary == nil || s.summary.TestsTotal == 0) {
			continue
		}
		report.TestSuites = append(report.TestSuites, s.testSuite())
	}
	return report
}

// newFailure flattens the error chain of m, outermost error first.
func newFailure(m *messages.TestFailed) (*testreport.Failure, error) {
	cause, err := m.Cause()
	if err != nil {
		return nil, err
	}
	metadata, err := m.ErrorMetadata()
	if err != nil {
		return nil, err
	}

	failure := &testreport.Failure{Type: cause.String()}

	var parts []string
	for i, typ := range metadata.Types {
		part := typ
		if i < len(metadata.Messages) && metadata.Messages[i] != "" {
			part += ": " + metadata.Messages[i]
			if failure.Message == "" {
				failure.Message = metadata.Messages[i]
			}
		}
		if i < len(metadata.StackTraces) && metadata.StackTraces[i] != "" {
			part += "\n" + metadata.StackTraces[i]
		}
		parts = append(parts, part)
	}
	failure.Value = strings.Join(parts, "\n")

	return failure, nil
}

func newProperties(traits map[string][]string) *testreport.Properties {
	if len(traits) == 0 {
		return nil
	}

	names := make([]string, 0, len(traits))
	for name := range traits {
		names = append(names, name)
	}
	sort.Strings(names)

	properties := &testreport.Properties{}
	for _, name := range names {
		for _, value := range traits[name] {
			properties.Property = append(properties.Property, testreport.Property{Name: name, Value: value})
		}
	}
	if len(properties.Property) == 0 {
		return nil
	}
	return properties
}
