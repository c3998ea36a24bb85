package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// DocumentHandler handles quote document upload and retrieval
type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadMB     int64
	logger          *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadMB:     maxUploadMB,
		logger:          logger,
	}
}

// Upload godoc
// @Summary Upload a quote document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Quote ID"
// @Param file formData file true "Document to upload"
// @Success 201 {object} domain.QuoteDocument
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID or missing file"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 413 {object} domain.ErrorResponse "File too large"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	// Limit request size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(r.Context(), quoteID, header.Filename, header.Header.Get("Content-Type"), file, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to upload document",
			zap.Error(err),
			zap.String("quote_id", quoteID.String()),
			zap.String("file_name", header.Filename))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// ListForQuote godoc
// @Summary List quote documents
// @Tags Documents
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {array} domain.QuoteDocument
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/documents [get]
func (h *DocumentHandler) ListForQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	docs, err := h.documentService.ListForQuote(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err), zap.String("quote_id", quoteID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// Download godoc
// @Summary Download a quote document
// @Tags Documents
// @Produce application/octet-stream
// @Param id path string true "Document ID"
// @Success 200
// @Failure 400 {object} domain.ErrorResponse "Invalid document ID"
// @Failure 404 {object} domain.ErrorResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	reader, filename, contentType, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to download document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusNotFound, "Document not found")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}
