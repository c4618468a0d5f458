package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-utils/fileutil"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	logV2 "github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	outputs map[string]string
}

func (e *fakeExporter) ExportOutput(key, value string) error {
	if e.outputs == nil {
		e.outputs = map[string]string{}
	}
	e.outputs[key] = value
	return nil
}

func Test_stepExporterIsOutputExporter(t *testing.T) {
	exporter := export.NewExporter(command.NewFactory(env.NewRepository()))

	assert.Implements(t, (*outputExporter)(nil), &exporter)
}

func Test_secretValues(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{name: "nothing to redact", config: Config{}, want: nil},
		{name: "newline separated values", config: Config{RedactValues: "first\n\n  second  \n"}, want: []string{"first", "second"}},
		{name: "api token", config: Config{RedactValues: "first", AddonAPIToken: "token"}, want: []string{"first", "token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secretValues(tt.config))
		})
	}
}

func createTestDeployDir(t *testing.T) string {
	testsDir := t.TempDir()
	runDir := filepath.Join(testsDir, "step", "unit_tests")
	require.NoError(t, os.MkdirAll(runDir, 0777))
	require.NoError(t, fileutil.WriteStringToFile(filepath.Join(testsDir, "step", "step-info.json"), `{"title": "Go test"}`))
	require.NoError(t, fileutil.WriteStringToFile(filepath.Join(runDir, "test-info.json"), `{"test-name": "unit_tests"}`))
	require.NoError(t, fileutil.WriteStringToFile(filepath.Join(runDir, "messages.jsonl"),
		`{"$type":"test-passed","AssemblyUniqueID":"asm","TestCollectionUniqueID":"coll","TestCaseUniqueID":"case","TestUniqueID":"test","ExecutionTime":0.1,"Output":"secret-value"}`))
	return testsDir
}

func Test_run(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "report")
	exporter := &fakeExporter{}
	config := Config{
		TestDeployDir: createTestDeployDir(t),
		OutputDir:     outputDir,
		RedactValues:  "secret-value",
	}

	require.NoError(t, run(config, exporter, logV2.NewLogger()))

	assert.Equal(t, map[string]string{reportDirOutputKey: outputDir}, exporter.outputs)

	report, err := os.ReadFile(filepath.Join(outputDir, "0_unit_tests", "test_result.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(report), `<testcase name="test" classname="coll"`)
	assert.NotContains(t, string(report), "secret-value")
}

func Test_run_compress(t *testing.T) {
	// ziputil shells out to zip
	if _, err := os.Stat("/usr/bin/zip"); err != nil {
		t.Skip("zip is not available")
	}

	outputDir := filepath.Join(t.TempDir(), "report")
	exporter := &fakeExporter{}
	config := Config{
		TestDeployDir: createTestDeployDir(t),
		OutputDir:     outputDir,
		IsCompress:    true,
	}

	require.NoError(t, run(config, exporter, logV2.NewLogger()))

	assert.Equal(t, outputDir+".zip", exporter.outputs[reportZipPathOutputKey])
	_, err := os.Stat(outputDir + ".zip")
	assert.NoError(t, err)
}
