package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agribot/internal/dataset"
	"agribot/internal/model"

	"github.com/gin-gonic/gin"
)

// uploadStatusResponse mirrors the upload/reset handler response body
type uploadStatusResponse struct {
	Status  model.DatasetStatus `json:"status"`
	Warning string              `json:"warning"`
	Error   string              `json:"error"`
	Tip     string              `json:"tip"`
}

func postMultipart(t *testing.T, router *gin.Engine, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, "/api/v1/datasets/upload", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDatasetHandler_Status(t *testing.T) {
	router := newTestRouter(newTestStore(t))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/datasets/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var status model.DatasetStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if !status.Crops.Loaded || status.Crops.Rows != 2 {
		t.Errorf("Unexpected crop status: %+v", status.Crops)
	}
	if !status.Districts.Loaded || status.Districts.Rows != 2 {
		t.Errorf("Unexpected district status: %+v", status.Districts)
	}
}

func TestDatasetHandler_Upload_MalformedFileIsHardError(t *testing.T) {
	router := newTestRouter(newTestStore(t))

	// Header row lacks the crop columns entirely
	w := postMultipart(t, router, map[string]string{
		"crop_file": "Title row\nname,value\nrice,100\n",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for malformed upload, got %d: %s", w.Code, w.Body.String())
	}

	var resp uploadStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Error, "missing expected column") {
		t.Errorf("Expected parse failure in error, got %q", resp.Error)
	}
	if resp.Tip == "" {
		t.Error("Expected a tip explaining the header layout")
	}
}

func TestDatasetHandler_Upload_ReplacesTable(t *testing.T) {
	router := newTestRouter(newTestStore(t))

	w := postMultipart(t, router, map[string]string{
		"crop_file": "Title\ncrop,N(kg/ha)\nMaize,80\n",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp uploadStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status.Crops.Rows != 1 {
		t.Errorf("Expected replaced crop table with 1 row, got %+v", resp.Status.Crops)
	}
	if resp.Status.Districts.Rows != 2 {
		t.Errorf("Expected district table untouched, got %+v", resp.Status.Districts)
	}
}

func TestDatasetHandler_Upload_OtherDefaultStillMissing(t *testing.T) {
	// No uploads, no default files: uploading only the crop table is
	// accepted, with a warning that the district source is still absent.
	store := dataset.NewStore("no-such-crops.csv", "no-such-districts.csv", 3)
	router := newTestRouter(store)

	w := postMultipart(t, router, map[string]string{
		"crop_file": testCropCSV,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp uploadStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Warning == "" {
		t.Error("Expected a warning about the missing district source")
	}
}

func TestDatasetHandler_Upload_NoFiles(t *testing.T) {
	router := newTestRouter(newTestStore(t))

	w := postMultipart(t, router, map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without files, got %d", w.Code)
	}
}

func TestDatasetHandler_Reset(t *testing.T) {
	router := newTestRouter(newTestStore(t))

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/datasets/reset", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	// Uploads are gone and the defaults do not exist, so the tables report
	// the load failure
	var resp uploadStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status.Crops.Loaded {
		t.Errorf("Expected unloaded crop table after reset, got %+v", resp.Status.Crops)
	}
	if resp.Status.Crops.Error == "" {
		t.Error("Expected a load error after reset")
	}
}
