package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"agribot/internal/dataset"

	"github.com/gin-gonic/gin"
)

// DatasetHandler handles dataset management HTTP requests
type DatasetHandler struct {
	store *dataset.Store
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(store *dataset.Store) *DatasetHandler {
	return &DatasetHandler{store: store}
}

// Status handles GET /api/v1/datasets/status
func (h *DatasetHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Status())
}

// Upload handles POST /api/v1/datasets/upload. Accepts multipart form
// files "crop_file" and/or "district_file"; either one may be replaced on
// its own. The new sources are validated immediately.
func (h *DatasetHandler) Upload(c *gin.Context) {
	cropFile, cropErr := c.FormFile("crop_file")
	districtFile, districtErr := c.FormFile("district_file")
	if cropErr != nil && districtErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected at least one of 'crop_file' or 'district_file'"})
		return
	}

	if cropFile != nil {
		data, err := readUpload(cropFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read crop_file: " + err.Error()})
			return
		}
		h.store.SetCropUpload(cropFile.Filename, data)
	}
	if districtFile != nil {
		data, err := readUpload(districtFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read district_file: " + err.Error()})
			return
		}
		h.store.SetDistrictUpload(districtFile.Filename, data)
	}

	// Parse now so a bad upload is reported here, not on the next chat turn
	if _, _, err := h.store.Tables(); err != nil {
		var parseErr *dataset.ParseError
		if errors.As(err, &parseErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"tip":   "Ensure your CSV has the header on the 2nd row",
			})
			return
		}
		// A default file is still missing; the upload itself was accepted
		c.JSON(http.StatusOK, gin.H{"status": h.store.Status(), "warning": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": h.store.Status()})
}

// Reset handles POST /api/v1/datasets/reset - drops uploads and the cached
// tables so the next load re-reads the default files.
func (h *DatasetHandler) Reset(c *gin.Context) {
	h.store.Reset()
	c.JSON(http.StatusOK, gin.H{"status": h.store.Status()})
}

// readUpload reads an uploaded file into memory
func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
