// Package converters contains the interface a test result converter has to
// implement. Detect receives every file of a test run directory and reports
// whether the converter understands any of them; Convert turns the detected
// files into a JUnit report.
package converters

import (
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-test-run-reporter/test/converters/messagestream"
	"github.com/bitrise-steplib/steps-test-run-reporter/test/testreport"
)

// Intf is the required interface a converter need to match
type Intf interface {
	Detect([]string) bool
	Convert() (testreport.TestReport, error)
}

// List returns a fresh instance of every supported converter. Converters keep
// the detected files, so they must not be shared between test run directories.
func List(logger log.Logger) []Intf {
	return []Intf{
		messagestream.NewConverter(logger),
	}
}
