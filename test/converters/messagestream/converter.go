// Package messagestream converts newline delimited test run message streams
// (one serialized message per line) into JUnit reports.
package messagestream

import (
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-test-run-reporter/messages"
	"github.com/bitrise-steplib/steps-test-run-reporter/test/testreport"
)

// FileExtension is the extension of message stream files.
const FileExtension = ".jsonl"

// Converter holds data of the converter
type Converter struct {
	files    []string
	registry *messages.Registry
	logger   log.Logger
}

// NewConverter ...
func NewConverter(logger log.Logger) *Converter {
	return &Converter{
		registry: messages.DefaultRegistry(),
		logger:   logger,
	}
}

// Detect returns true if there is at least one message stream file among files.
func (c *Converter) Detect(files []string) bool {
	c.files = nil
	for _, file := range files {
		if strings.HasSuffix(file, FileExtension) {
			c.files = append(c.files, file)
		}
	}

	return len(c.files) > 0
}

// Convert reads every detected stream into a single report. Lines that are
// not valid messages are logged and skipped.
func (c *Converter) Convert() (testreport.TestReport, error) {
	builder := newReportBuilder(c.logger)

	for _, file := range c.files {
		stream, err := readStream(file, c.registry, c.logger)
		if err != nil {
			return testreport.TestReport{}, err
		}

		c.logger.Debugf("%s: %d messages", file, len(stream))

		for _, message := range stream {
			if err := builder.add(message); err != nil {
				c.logger.Warnf("Skipping message (%s): %s", message, err)
			}
		}
	}

	return builder.report(), nil
}
