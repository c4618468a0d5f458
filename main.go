package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bitrise-io/go-steputils/stepconf"
	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-utils/log"
	"github.com/bitrise-io/go-utils/pathutil"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	logV2 "github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/ziputil"
	"github.com/bitrise-steplib/steps-test-run-reporter/test"
)

const (
	reportDirOutputKey     = "BITRISE_TEST_RUN_REPORT_DIR"
	reportZipPathOutputKey = "BITRISE_TEST_RUN_REPORT_ZIP_PATH"
)

// Config ...
type Config struct {
	TestDeployDir   string          `env:"BITRISE_TEST_DEPLOY_DIR,dir"`
	OutputDir       string          `env:"output_dir,required"`
	IsCompress      bool            `env:"is_compress,opt[true,false]"`
	RedactValues    stepconf.Secret `env:"redact_values"`
	AddonAPIBaseURL string          `env:"addon_api_base_url"`
	AddonAPIToken   stepconf.Secret `env:"addon_api_token"`
	AppSlug         string          `env:"BITRISE_APP_SLUG"`
	BuildSlug       string          `env:"BITRISE_BUILD_SLUG"`
	DebugMode       bool            `env:"debug_mode,opt[true,false]"`
}

type outputExporter interface {
	ExportOutput(key, value string) error
}

func fail(format string, v ...interface{}) {
	log.Errorf(format, v...)
	os.Exit(1)
}

func main() {
	var config Config
	if err := stepconf.Parse(&config); err != nil {
		fail("Issue with input: %s", err)
	}

	stepconf.Print(config)
	fmt.Println()
	log.SetEnableDebugLog(config.DebugMode)

	logger := logV2.NewLogger()
	logger.EnableDebugLog(config.DebugMode)

	exporter := export.NewExporter(command.NewFactory(env.NewRepository()))
	if err := run(config, &exporter, logger); err != nil {
		fail("%s", err)
	}

	fmt.Println()
	log.Donef("Success")
}

func run(config Config, exporter outputExporter, logger logV2.Logger) error {
	outputDir, err := pathutil.AbsPath(config.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand path: %s: %w", config.OutputDir, err)
	}
	secrets := secretValues(config)

	log.Infof("Converting test run messages")

	results, err := test.ParseTestResults(config.TestDeployDir, logger)
	if err != nil {
		return fmt.Errorf("failed to parse test results: %w", err)
	}
	log.Printf("- found (%d) test results", len(results))

	if results, err = results.Redact(secrets, logger); err != nil {
		return err
	}
	if results, err = results.WriteTo(outputDir, secrets, logger); err != nil {
		return err
	}

	if err := exporter.ExportOutput(reportDirOutputKey, outputDir); err != nil {
		return fmt.Errorf("failed to export %s: %w", reportDirOutputKey, err)
	}
	log.Printf("The reports are now available in the Environment Variable: %s (value: %s)", reportDirOutputKey, outputDir)

	if config.IsCompress {
		fmt.Println()
		log.Infof("Compressing the report directory")

		zipPath := outputDir + ".zip"
		if err := ziputil.ZipDir(outputDir, zipPath, false); err != nil {
			return fmt.Errorf("failed to zip output dir: %w", err)
		}
		if err := exporter.ExportOutput(reportZipPathOutputKey, zipPath); err != nil {
			return fmt.Errorf("failed to export %s: %w", reportZipPathOutputKey, err)
		}
		log.Printf("The compressed reports are now available in the Environment Variable: %s (value: %s)", reportZipPathOutputKey, zipPath)
	}

	uploadTestResults(config, results, logger)

	return nil
}

func uploadTestResults(config Config, results test.Results, logger logV2.Logger) {
	if config.AddonAPIToken == "" {
		log.Debugf("addon_api_token is not set, skipping upload")
		return
	}
	if config.AddonAPIBaseURL == "" || config.AppSlug == "" || config.BuildSlug == "" {
		log.Warnf("addon_api_base_url, BITRISE_APP_SLUG and BITRISE_BUILD_SLUG are required to upload test results, skipping upload")
		return
	}

	fmt.Println()
	log.Infof("Upload test results")
	log.Printf("- uploading (%d) test results", len(results))

	if err := results.Upload(string(config.AddonAPIToken), config.AddonAPIBaseURL, config.AppSlug, config.BuildSlug, logger); err != nil {
		log.Warnf("Failed to upload test results: %s", err)
		return
	}
	log.Donef("Uploaded")
}

// secretValues returns the newline separated redact_values and the API token.
func secretValues(config Config) []string {
	var secrets []string
	for _, value := range strings.Split(string(config.RedactValues), "\n") {
		if value = strings.TrimSpace(value); value != "" {
			secrets = append(secrets, value)
		}
	}
	if config.AddonAPIToken != "" {
		secrets = append(secrets, string(config.AddonAPIToken))
	}
	return secrets
}
