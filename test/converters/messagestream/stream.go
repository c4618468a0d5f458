package messagestream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-test-run-reporter/messages"
	"github.com/docker/go-units"
)

// maxLineSize limits a single serialized message. Captured test output is
// part of the message, so lines can get long.
const maxLineSize = 16 * units.MiB

func readStream(pth string, registry *messages.Registry, logger log.Logger) ([]messages.Message, error) {
	f, err := os.Open(pth)
	if err != nil {
		return nil, fmt.Errorf("failed to open message stream (%s): %w", pth, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warnf("Failed to close file: %s", err)
		}
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*units.KiB), maxLineSize)

	var stream []messages.Message
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		message, err := registry.FromJSON(line)
		if err != nil {
			logger.Warnf("%s:%d: skipping invalid message: %s", pth, lineNumber, err)
			continue
		}
		if err := messages.ValidateObjectState(message); err != nil {
			logger.Warnf("%s:%d: skipping incomplete message: %s", pth, lineNumber, err)
			continue
		}

		stream = append(stream, message)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("failed to read message stream (%s): line %d is longer than %s", pth, lineNumber+1, units.BytesSize(maxLineSize))
		}
		return nil, fmt.Errorf("failed to read message stream (%s): %w", pth, err)
	}

	return stream, nil
}
