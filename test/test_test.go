package test

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bitrise-io/bitrise/models"
	"github.com/bitrise-io/go-utils/fileutil"
	logV2 "github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-test-run-reporter/test/testreport"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStream = `{"$type":"test-case-starting","AssemblyUniqueID":"asm","TestCollectionUniqueID":"coll","TestClassUniqueID":"class","TestCaseUniqueID":"case","TestCaseDisplayName":"Sum","TestClassName":"MathTests","Traits":{}}
{"$type":"test-passed","AssemblyUniqueID":"asm","TestCollectionUniqueID":"coll","TestClassUniqueID":"class","TestCaseUniqueID":"case","TestUniqueID":"test","ExecutionTime":0.1,"Output":"token=SUPER_SECRET_WORD"}
`

func createDummyFilesInDirWithContent(dir, content string, fileNames []string) error {
	for _, file := range fileNames {
		if err := os.MkdirAll(filepath.Dir(filepath.Join(dir, file)), 0777); err != nil {
			return err
		}
		if err := fileutil.WriteStringToFile(filepath.Join(dir, file), content); err != nil {
			return err
		}
	}
	return nil
}

// createTestDeployDir creates a test deploy dir with a single step and a single test run.
func createTestDeployDir(t *testing.T) (string, string) {
	testsDir := t.TempDir()
	stepDir := filepath.Join(testsDir, "step_1_test_results")
	runDir := filepath.Join(stepDir, "unit_tests")

	require.NoError(t, createDummyFilesInDirWithContent(stepDir, `{"title": "test title", "number": 3}`, []string{"step-info.json"}))
	require.NoError(t, createDummyFilesInDirWithContent(runDir, `{"test-name": "unit_tests"}`, []string{"test-info.json"}))
	require.NoError(t, createDummyFilesInDirWithContent(runDir, sampleStream, []string{"messages.jsonl"}))
	require.NoError(t, createDummyFilesInDirWithContent(runDir, "test content", []string{"image.png", "screens/image2.jpeg", "dirty.gif"}))
	require.NoError(t, createDummyFilesInDirWithContent(runDir, "password: SUPER_SECRET_WORD\n", []string{"output.log"}))

	return testsDir, runDir
}

func Test_ParseTestResults(t *testing.T) {
	testsDir, runDir := createTestDeployDir(t)

	results, err := ParseTestResults(testsDir, logV2.NewLogger())
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "unit_tests", result.Name)
	assert.Equal(t, models.TestResultStepInfo{Title: "test title", Number: 3}, result.StepInfo)
	assert.ElementsMatch(t, []string{
		filepath.Join(runDir, "image.png"),
		filepath.Join(runDir, "output.log"),
		filepath.Join(runDir, "screens", "image2.jpeg"),
	}, result.AttachmentPaths)

	require.True(t, strings.HasPrefix(string(result.XMLContent), xml.Header))

	var report testreport.TestReport
	require.NoError(t, xml.Unmarshal(result.XMLContent, &report))
	require.Len(t, report.TestSuites, 1)
	assert.Equal(t, "MathTests", report.TestSuites[0].Name)
	require.Len(t, report.TestSuites[0].TestCases, 1)
	assert.Equal(t, "Sum", report.TestSuites[0].TestCases[0].Name)
}

func Test_ParseTestResults_skipsDirsWithoutResults(t *testing.T) {
	testsDir := t.TempDir()

	// no step-info.json
	require.NoError(t, createDummyFilesInDirWithContent(filepath.Join(testsDir, "no_step_info", "run"), sampleStream, []string{"messages.jsonl"}))
	// no message stream
	require.NoError(t, createDummyFilesInDirWithContent(filepath.Join(testsDir, "no_stream"), `{"title": "test title"}`, []string{"step-info.json"}))
	require.NoError(t, createDummyFilesInDirWithContent(filepath.Join(testsDir, "no_stream", "run"), "<testsuites/>", []string{"result.xml"}))
	// not a directory
	require.NoError(t, createDummyFilesInDirWithContent(testsDir, "", []string{"file.txt"}))

	results, err := ParseTestResults(testsDir, logV2.NewLogger())
	require.NoError(t, err)
	assert.Len(t, results, 0)
}

func Test_ParseTestResults_missingTestInfo(t *testing.T) {
	testsDir := t.TempDir()
	require.NoError(t, createDummyFilesInDirWithContent(filepath.Join(testsDir, "step"), `{"title": "test title"}`, []string{"step-info.json"}))
	require.NoError(t, createDummyFilesInDirWithContent(filepath.Join(testsDir, "step", "run"), sampleStream, []string{"messages.jsonl"}))

	_, err := ParseTestResults(testsDir, logV2.NewLogger())
	assert.Error(t, err)
}

func TestResults_Redact(t *testing.T) {
	results := Results{{Name: "unit_tests", XMLContent: []byte("<system-out>token=SUPER_SECRET_WORD</system-out>")}}

	redacted, err := results.Redact([]string{"SUPER_SECRET_WORD"}, logV2.NewLogger())
	require.NoError(t, err)

	assert.NotContains(t, string(redacted[0].XMLContent), "SUPER_SECRET_WORD")
	assert.Contains(t, string(redacted[0].XMLContent), "token=")
	assert.Contains(t, string(results[0].XMLContent), "SUPER_SECRET_WORD", "input must not be modified")

	unchanged, err := results.Redact(nil, logV2.NewLogger())
	require.NoError(t, err)
	assert.Equal(t, results, unchanged)
}

func TestResults_WriteTo(t *testing.T) {
	testsDir, _ := createTestDeployDir(t)
	outputDir := filepath.Join(t.TempDir(), "report")

	results, err := ParseTestResults(testsDir, logV2.NewLogger())
	require.NoError(t, err)

	written, err := results.WriteTo(outputDir, []string{"SUPER_SECRET_WORD"}, logV2.NewLogger())
	require.NoError(t, err)
	require.Len(t, written, 1)

	resultDir := filepath.Join(outputDir, "0_unit_tests")
	xmlContent, err := os.ReadFile(filepath.Join(resultDir, ResultFileName))
	require.NoError(t, err)
	assert.Equal(t, results[0].XMLContent, xmlContent)

	testInfo, err := os.ReadFile(filepath.Join(resultDir, "test-info.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"test-name": "unit_tests"}`, string(testInfo))

	log, err := os.ReadFile(filepath.Join(resultDir, "output.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(log), "SUPER_SECRET_WORD")

	image, err := os.ReadFile(filepath.Join(resultDir, "screens", "image2.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "test content", string(image))

	for _, pth := range written[0].AttachmentPaths {
		assert.True(t, strings.HasPrefix(pth, resultDir), pth)
	}
}

func TestResults_Upload(t *testing.T) {
	const testResponseID = "mock-test-id"

	tempDir := t.TempDir()
	require.NoError(t, createDummyFilesInDirWithContent(tempDir, "dummy data", []string{"image1.png", "image2.png"}))

	testXMLContent := []byte("test xml content")
	testStepInfo := models.TestResultStepInfo{ID: "test-ID", Title: "test-Title", Version: "test-Version", Number: 19}
	results := Results{
		{
			Name:            "unit_tests",
			XMLContent:      testXMLContent,
			StepInfo:        testStepInfo,
			AttachmentPaths: []string{filepath.Join(tempDir, "image1.png"), filepath.Join(tempDir, "image2.png")},
		},
	}

	var (
		mu       sync.Mutex
		uploaded = map[string]string{}
		request  UploadRequest
		patched  bool
	)

	router := mux.NewRouter()
	router.HandleFunc("/test/apps/{app_slug}/builds/{build_slug}/test_reports/{accessToken}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if vars["app_slug"] != "test-app-slug" || vars["build_slug"] != "test-build-slug" || vars["accessToken"] != "access-token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		storageURL := "http://" + r.Host + "/teststorage/"
		response := UploadResponse{
			ID:        testResponseID,
			UploadURL: UploadURL{FileName: request.FileName, URL: storageURL + request.FileName},
		}
		for _, asset := range request.Assets {
			response.Assets = append(response.Assets, UploadURL{FileName: asset.FileName, URL: storageURL + asset.FileName})
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}).Methods(http.MethodPost)

	router.HandleFunc("/teststorage/{file_name}", func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		uploaded[mux.Vars(r)["file_name"]] = string(data)
	}).Methods(http.MethodPut)

	router.HandleFunc("/test/apps/{app_slug}/builds/{build_slug}/test_reports/{id}/{accessToken}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != testResponseID {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		patched = true
	}).Methods(http.MethodPatch)

	server := httptest.NewServer(router)
	defer server.Close()

	err := results.Upload("access-token", server.URL+"/test", "test-app-slug", "test-build-slug", logV2.NewLogger())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "unit_tests", request.Name)
	assert.Equal(t, testStepInfo, request.Step)
	assert.Equal(t, FileInfo{FileName: ResultFileName, FileSize: len(testXMLContent)}, request.FileInfo)
	assert.Equal(t, map[string]string{
		ResultFileName: string(testXMLContent),
		"image1.png":   "dummy data",
		"image2.png":   "dummy data",
	}, uploaded)
	assert.True(t, patched)
}

func TestResults_Upload_sizeLimit(t *testing.T) {
	results := Results{{Name: "huge", XMLContent: make([]byte, maxTotalXMLSize+1)}}

	err := results.Upload("access-token", "http://localhost:0", "app", "build", logV2.NewLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the maximum allowed size of 100MiB")
}

func Test_relativeFilePath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		reportName string
		want       string
	}{
		{name: "inside report dir", path: "/tests/step/unit_tests/screens/a.png", reportName: "unit_tests", want: "screens/a.png"},
		{name: "outside report dir", path: "/tests/step/other/a.png", reportName: "unit_tests", want: "a.png"},
		{name: "empty report name", path: "/tests/step/a.png", reportName: "", want: "a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeFilePath(tt.path, tt.reportName))
		})
	}
}
