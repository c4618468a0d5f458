package test

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bitrise-io/bitrise/models"
	"github.com/bitrise-io/go-utils/fileutil"
	"github.com/bitrise-io/go-utils/pathutil"
	fileutilV2 "github.com/bitrise-io/go-utils/v2/fileutil"
	logV2 "github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/bitrise-steplib/steps-test-run-reporter/fileredactor"
	"github.com/bitrise-steplib/steps-test-run-reporter/test/converters"
	"github.com/docker/go-units"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// maxTotalXMLSize limits the total size of all XML files uploaded in a single run
	maxTotalXMLSize = 100 * units.MiB

	// ResultFileName is the name of the generated report inside a result directory.
	ResultFileName = "test_result.xml"
	testInfoFileName = "test-info.json"
	stepInfoFileName = "step-info.json"
)

// attachmentTypes are the extensions of test run files uploaded next to the report.
var attachmentTypes = []string{".jpg", ".jpeg", ".png", ".txt", ".log", ".mp4", ".webm", ".ogg"}

// textAttachmentTypes may contain test output, so secrets are redacted from them.
var textAttachmentTypes = []string{".txt", ".log"}

// FileInfo ...
type FileInfo struct {
	FileName string `json:"filename"`
	FileSize int    `json:"filesize"`
}

// UploadURL ...
type UploadURL struct {
	FileName string `json:"filename"`
	URL      string `json:"upload_url"`
}

// UploadRequest ...
type UploadRequest struct {
	Name   string                    `json:"name"`
	Step   models.TestResultStepInfo `json:"step_info"`
	Assets []FileInfo                `json:"assets"`
	FileInfo
}

// UploadResponse ...
type UploadResponse struct {
	ID     string      `json:"id"`
	Assets []UploadURL `json:"assets"`
	UploadURL
}

// Result is the converted report of a single test run directory.
type Result struct {
	Name            string
	XMLContent      []byte
	AttachmentPaths []string
	StepInfo        models.TestResultStepInfo
}

// Results ...
type Results []Result

func httpCall(apiToken, method, url string, input io.Reader, output interface{}, logger logV2.Logger) error {
	if apiToken != "" {
		url = url + "/" + apiToken
	}
	req, err := retryablehttp.NewRequest(method, url, input)
	if err != nil {
		return err
	}

	client := retryhttp.NewClient(logger)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("Failed to close body: %s", err)
		}
	}()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		bodyData, err := io.ReadAll(resp.Body)
		if err != nil {
			logger.Warnf("Failed to read response: %s", err)
			return fmt.Errorf("unsuccessful status code: %d", resp.StatusCode)
		}
		return fmt.Errorf("unsuccessful status code: %d, response: %s", resp.StatusCode, bodyData)
	}

	if output != nil {
		return json.NewDecoder(resp.Body).Decode(&output)
	}
	return nil
}

func isAttachment(pth string, types []string) bool {
	return slices.Contains(types, strings.ToLower(filepath.Ext(pth)))
}

func findAttachments(testDir string, logger logV2.Logger) (attachmentPaths []string) {
	err := filepath.WalkDir(testDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if isAttachment(path, attachmentTypes) {
			attachmentPaths = append(attachmentPaths, path)
		}

		return nil
	})

	if err != nil {
		logger.Warnf("Failed to walk test dir (%s): %s", testDir, err)
		return nil
	}

	return
}

/*
ParseTestResults walks through the Test Deploy directory and converts the
message streams of every Step's test runs into JUnit XML reports.

The Test Deploy directory has the following directory structure:

	test_results ($BITRISE_TEST_DEPLOY_DIR)
	├── step_1_test_results ($BITRISE_TEST_RESULT_DIR)
	│	├── step-info.json
	│	├── test_run_1
	│	│	├── messages.jsonl
	│	│	└── test-info.json
	│	└── test_run_2
	│		├── messages.jsonl
	│		└── test-info.json
	└── step_2_test_results ($BITRISE_TEST_RESULT_DIR)
		├── step-info.json
		└── test_run
			├── messages.jsonl
			├── screenshot_1.jpg
			├── test_output.log
			└── test-info.json
*/
func ParseTestResults(testsRootDir string, logger logV2.Logger) (results Results, err error) {
	testDirs, err := os.ReadDir(testsRootDir)
	if err != nil {
		return nil, err
	}

	for _, testDir := range testDirs {
		// <root_tests_dir>/<test_dir>
		testDirPath := filepath.Join(testsRootDir, testDir.Name())

		if !testDir.IsDir() {
			logger.Debugf("%s is not a directory", testDirPath)
			continue
		}

		testPhaseDirs, err := os.ReadDir(testDirPath)
		if err != nil {
			return nil, err
		}

		// <root_tests_dir>/<test_dir>/step-info.json
		stepInfo, err := readStepInfo(testDirPath)
		if err != nil {
			logger.Warnf("%s", err)
			continue
		} else if stepInfo == nil {
			continue
		}

		for _, testPhaseDir := range testPhaseDirs {
			if !testPhaseDir.IsDir() {
				continue
			}

			// <root_tests_dir>/<test_dir>/<unique_dir>
			testPhaseDirPath := filepath.Join(testDirPath, testPhaseDir.Name())
			testFiles, err := filepath.Glob(filepath.Join(pathutil.EscapeGlobPath(testPhaseDirPath), "*"))
			if err != nil {
				return nil, err
			}

			for _, converter := range converters.List(logger) {
				logger.Debugf("Running converter: %T", converter)

				detected := converter.Detect(testFiles)

				logger.Debugf("known test result detected: %v", detected)

				if !detected {
					continue
				}

				name, err := readTestName(testPhaseDirPath)
				if err != nil {
					return nil, err
				}

				testReport, err := converter.Convert()
				if err != nil {
					return nil, err
				}
				xmlData, err := xml.MarshalIndent(testReport, "", " ")
				if err != nil {
					return nil, err
				}
				xmlData = append([]byte(xml.Header), xmlData...)

				attachments := findAttachments(testPhaseDirPath, logger)

				logger.Debugf("found attachments: %d", len(attachments))

				results = append(results, Result{
					Name:            name,
					XMLContent:      xmlData,
					AttachmentPaths: attachments,
					StepInfo:        *stepInfo,
				})
			}
		}
	}
	return results, nil
}

// readStepInfo returns nil without an error if the directory has no step-info.json.
func readStepInfo(testDirPath string) (*models.TestResultStepInfo, error) {
	stepInfoPth := filepath.Join(testDirPath, stepInfoFileName)
	if isExists, err := pathutil.IsPathExists(stepInfoPth); err != nil {
		return nil, fmt.Errorf("failed to check if %s file exists in dir: %s: %w", stepInfoFileName, testDirPath, err)
	} else if !isExists {
		return nil, nil
	}

	stepInfoFileContent, err := fileutil.ReadBytesFromFile(stepInfoPth)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file in dir: %s: %w", stepInfoFileName, testDirPath, err)
	}

	var stepInfo models.TestResultStepInfo
	if err := json.Unmarshal(stepInfoFileContent, &stepInfo); err != nil {
		return nil, fmt.Errorf("failed to parse %s file in dir: %s: %w", stepInfoFileName, testDirPath, err)
	}
	return &stepInfo, nil
}

// readTestName reads the required test-info.json of a test run directory.
func readTestName(testPhaseDirPath string) (string, error) {
	testInfoFileContent, err := fileutil.ReadBytesFromFile(filepath.Join(testPhaseDirPath, testInfoFileName))
	if err != nil {
		return "", err
	}

	var testInfo struct {
		Name string `json:"test-name"`
	}
	if err := json.Unmarshal(testInfoFileContent, &testInfo); err != nil {
		return "", err
	}
	return testInfo.Name, nil
}

// Redact returns a copy of results with every secret replaced in the XML reports.
func (results Results) Redact(secrets []string, logger logV2.Logger) (Results, error) {
	redactor := fileredactor.NewFileRedactor(secrets, fileutilV2.NewFileManager(), logger)

	redacted := make(Results, 0, len(results))
	for _, result := range results {
		content, err := redactor.Redact(result.XMLContent)
		if err != nil {
			return nil, fmt.Errorf("failed to redact test result (%s): %w", result.Name, err)
		}

		result.XMLContent = content
		redacted = append(redacted, result)
	}
	return redacted, nil
}

var unsafeDirNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// WriteTo writes every report and its attachments into its own directory
// under dir. Text attachments are redacted with secrets once copied. The
// returned results point to the written attachments.
func (results Results) WriteTo(dir string, secrets []string, logger logV2.Logger) (Results, error) {
	if err := pathutil.EnsureDirExist(dir); err != nil {
		return nil, fmt.Errorf("failed to create output dir (%s): %w", dir, err)
	}

	redactor := fileredactor.NewFileRedactor(secrets, fileutilV2.NewFileManager(), logger)

	written := make(Results, 0, len(results))
	for i, result := range results {
		resultDir := filepath.Join(dir, fmt.Sprintf("%d_%s", i, unsafeDirNameChars.ReplaceAllString(result.Name, "_")))
		if err := pathutil.EnsureDirExist(resultDir); err != nil {
			return nil, fmt.Errorf("failed to create result dir (%s): %w", resultDir, err)
		}

		if err := fileutil.WriteBytesToFile(filepath.Join(resultDir, ResultFileName), result.XMLContent); err != nil {
			return nil, fmt.Errorf("failed to write test result (%s): %w", result.Name, err)
		}

		testInfo, err := json.Marshal(map[string]string{"test-name": result.Name})
		if err != nil {
			return nil, err
		}
		if err := fileutil.WriteBytesToFile(filepath.Join(resultDir, testInfoFileName), testInfo); err != nil {
			return nil, fmt.Errorf("failed to write test info (%s): %w", result.Name, err)
		}

		var attachments, textAttachments []string
		for _, attachment := range result.AttachmentPaths {
			target := filepath.Join(resultDir, relativeFilePath(attachment, result.Name))
			if err := copyFile(attachment, target); err != nil {
				return nil, err
			}

			attachments = append(attachments, target)
			if isAttachment(target, textAttachmentTypes) {
				textAttachments = append(textAttachments, target)
			}
		}

		if err := redactor.RedactFiles(textAttachments); err != nil {
			return nil, err
		}

		result.AttachmentPaths = attachments
		written = append(written, result)
	}

	return written, nil
}

func copyFile(source, target string) error {
	content, err := fileutil.ReadBytesFromFile(source)
	if err != nil {
		return fmt.Errorf("failed to read test result attachment (%s): %w", source, err)
	}
	if err := pathutil.EnsureDirExist(filepath.Dir(target)); err != nil {
		return err
	}
	if err := fileutil.WriteBytesToFile(target, content); err != nil {
		return fmt.Errorf("failed to write test result attachment (%s): %w", target, err)
	}
	return nil
}

// Upload ...
func (results Results) Upload(apiToken, endpointBaseURL, appSlug, buildSlug string, logger logV2.Logger) error {
	if size := results.calculateTotalSizeOfXMLContent(); size > maxTotalXMLSize {
		return fmt.Errorf("the total size of the test result XML files (%s) exceeds the maximum allowed size of %s", units.BytesSize(float64(size)), units.BytesSize(maxTotalXMLSize))
	}

	for _, result := range results {
		logger.Printf("Uploading: %s", result.Name)

		uploadReq := UploadRequest{
			FileInfo: FileInfo{
				FileName: ResultFileName,
				FileSize: len(result.XMLContent),
			},
			Name: result.Name,
			Step: result.StepInfo,
		}
		for _, asset := range result.AttachmentPaths {
			fi, err := os.Stat(asset)
			if err != nil {
				return fmt.Errorf("failed to get file info for %s: %w", asset, err)
			}
			uploadReq.Assets = append(uploadReq.Assets, FileInfo{
				FileName: relativeFilePath(asset, result.Name),
				FileSize: int(fi.Size()),
			})
		}

		uploadRequestBodyData, err := json.Marshal(uploadReq)
		if err != nil {
			return fmt.Errorf("failed to json encode upload request: %w", err)
		}

		var (
			uploadResponse   UploadResponse
			uploadRequestURL = fmt.Sprintf("%s/apps/%s/builds/%s/test_reports", endpointBaseURL, appSlug, buildSlug)
		)
		if err := httpCall(apiToken, http.MethodPost, uploadRequestURL, bytes.NewReader(uploadRequestBodyData), &uploadResponse, logger); err != nil {
			return fmt.Errorf("failed to initialise test result: %w", err)
		}

		if err := httpCall("", http.MethodPut, uploadResponse.URL, bytes.NewReader(result.XMLContent), nil, logger); err != nil {
			return fmt.Errorf("failed to upload test result xml: %w", err)
		}

		for _, upload := range uploadResponse.Assets {
			for _, file := range result.AttachmentPaths {
				if relativeFilePath(file, result.Name) == upload.FileName {
					if err := uploadAttachment(file, upload.URL, logger); err != nil {
						return err
					}
					break
				}
			}
		}

		var uploadPatchURL = fmt.Sprintf("%s/apps/%s/builds/%s/test_reports/%s", endpointBaseURL, appSlug, buildSlug, uploadResponse.ID)
		if err := httpCall(apiToken, http.MethodPatch, uploadPatchURL, strings.NewReader(`{"uploaded":true}`), nil, logger); err != nil {
			return fmt.Errorf("failed to finalise test result: %w", err)
		}
	}

	return nil
}

func uploadAttachment(pth, url string, logger logV2.Logger) error {
	content, err := fileutil.ReadBytesFromFile(pth)
	if err != nil {
		return fmt.Errorf("failed to open test result attachment (%s): %w", pth, err)
	}
	if err := httpCall("", http.MethodPut, url, bytes.NewReader(content), nil, logger); err != nil {
		return fmt.Errorf("failed to upload test result attachment (%s): %w", pth, err)
	}
	return nil
}

func (results Results) calculateTotalSizeOfXMLContent() int {
	totalSize := 0
	for _, result := range results {
		totalSize += len(result.XMLContent)
	}
	return totalSize
}

func relativeFilePath(absoluteFilePath, reportName string) string {
	pathComponent := string(filepath.Separator) + reportName + string(filepath.Separator)
	if reportName != "" && strings.Contains(absoluteFilePath, pathComponent) {
		return strings.SplitN(absoluteFilePath, pathComponent, 2)[1]
	}
	return filepath.Base(absoluteFilePath)
}
