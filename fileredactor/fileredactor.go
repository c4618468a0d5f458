// Package fileredactor replaces secrets in generated test reports and in the
// text attachments copied next to them.
package fileredactor

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/redactwriter"
)

// FileRedactor redacts a fixed set of secrets from in-memory content and files.
type FileRedactor interface {
	Redact(content []byte) ([]byte, error)
	RedactFiles(filePaths []string) error
}

type fileRedactor struct {
	secrets     []string
	fileManager fileutil.FileManager
	logger      log.Logger
}

// NewFileRedactor returns a FileRedactor for secrets. Without secrets it
// leaves everything untouched.
func NewFileRedactor(secrets []string, manager fileutil.FileManager, logger log.Logger) FileRedactor {
	return fileRedactor{
		secrets:     secrets,
		fileManager: manager,
		logger:      logger,
	}
}

func (f fileRedactor) Redact(content []byte) ([]byte, error) {
	if len(f.secrets) == 0 {
		return content, nil
	}

	var buf bytes.Buffer
	if err := f.redact(&buf, bytes.NewReader(content)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f fileRedactor) RedactFiles(filePaths []string) error {
	if len(f.secrets) == 0 {
		return nil
	}

	for _, path := range filePaths {
		if err := f.redactFile(path); err != nil {
			return fmt.Errorf("failed to redact file (%s): %w", path, err)
		}
	}

	return nil
}

func (f fileRedactor) redactFile(path string) error {
	source, err := f.fileManager.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file for redaction (%s): %w", path, err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			f.logger.Warnf("Failed to close file: %s", err)
		}
	}()

	newPath := path + ".redacted"
	destination, err := os.Create(newPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file for redaction: %w", err)
	}
	defer func() {
		if err := destination.Close(); err != nil {
			f.logger.Warnf("Failed to close file: %s", err)
		}
	}()

	if err := f.redact(destination, source); err != nil {
		return err
	}

	if err := os.Rename(newPath, path); err != nil {
		return fmt.Errorf("failed to overwrite old file (%s) with redacted file: %w", path, err)
	}

	return nil
}

func (f fileRedactor) redact(destination io.Writer, source io.Reader) error {
	redactWriter := redactwriter.New(f.secrets, destination, f.logger)
	if _, err := io.Copy(redactWriter, source); err != nil {
		return fmt.Errorf("failed to redact secrets: %w", err)
	}

	if err := redactWriter.Close(); err != nil {
		return fmt.Errorf("failed to close redact writer: %w", err)
	}

	return nil
}
