// Package apihandlers exposes the pipeline's HTTP boundary: uploads,
// document status reads and the queue status endpoint.
package apihandlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"docflow/internal/app"
	"docflow/internal/models"
)

// maxUploadBytes caps a single uploaded file at 10MB, matching the
// ingestion contract.
const maxUploadBytes = 10 << 20

type APIHandler struct {
	app *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{app: a}
}

// QueueStatusHandler returns the queue counters snapshot.
func (h *APIHandler) QueueStatusHandler(c *gin.Context) {
	counters, err := h.app.Queue.Status(c.Request.Context())
	if err != nil {
		log.Errorf("queue status: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue status unavailable"})
		return
	}
	c.JSON(http.StatusOK, counters)
}

// UploadDocumentHandler accepts one multipart file upload for an owner
// and queues it for processing.
func (h *APIHandler) UploadDocumentHandler(c *gin.Context) {
	ownerID := c.PostForm("ownerId")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 10MB limit"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	doc, err := h.app.Ingest.Ingest(c.Request.Context(), ownerID, fileHeader.Filename, mimeType, data)
	if errors.Is(err, models.ErrUnsupportedFormat) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Errorf("ingest upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GetDocumentHandler returns one document record by id.
func (h *APIHandler) GetDocumentHandler(c *gin.Context) {
	doc, err := h.app.Documents.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if err != nil {
		log.Errorf("get document: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ListDocumentsHandler returns an owner's documents, newest first.
func (h *APIHandler) ListDocumentsHandler(c *gin.Context) {
	ownerID := c.Query("ownerId")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.app.Documents.ListByOwner(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		log.Errorf("list documents: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// ReenqueueDocumentHandler puts a failed document back on the queue.
// Explicit operator action; the only path out of a terminal status.
func (h *APIHandler) ReenqueueDocumentHandler(c *gin.Context) {
	doc, err := h.app.Ingest.Reenqueue(c.Request.Context(), c.Param("id"))
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, doc)
}
