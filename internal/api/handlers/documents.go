package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"homeledger/internal/api/middleware"
	"homeledger/internal/domain"
	"homeledger/internal/gcsuploader"
)

// DocumentsStore is the storage surface for document metadata.
type DocumentsStore interface {
	InsertDocument(ctx context.Context, doc *domain.Document) error
	ListDocuments(ctx context.Context, entityType, entityID string) ([]domain.Document, error)
}

// DocumentsHandler handles document-related endpoints.
type DocumentsHandler struct {
	store   DocumentsStore
	storage gcsuploader.StorageService
	bucket  string
	log     zerolog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(store DocumentsStore, storage gcsuploader.StorageService, bucket string, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		store:   store,
		storage: storage,
		bucket:  bucket,
		log:     log,
	}
}

type documentJSON struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	GCSURI      string `json:"gcs_uri"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	EntityType  string `json:"entity_type,omitempty"`
	EntityID    string `json:"entity_id,omitempty"`
	UploadedAt  string `json:"uploaded_at"`
}

// ListDocuments handles GET /api/documents, optionally filtered by
// ?entity_type=account&entity_id=...
func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	entityID := r.URL.Query().Get("entity_id")

	documents, err := h.store.ListDocuments(r.Context(), entityType, entityID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list documents")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	out := make([]documentJSON, 0, len(documents))
	for _, d := range documents {
		out = append(out, documentJSON{
			ID:          d.ID,
			Filename:    d.Filename,
			GCSURI:      d.GCSURI,
			ContentType: d.ContentType,
			SizeBytes:   d.SizeBytes,
			EntityType:  d.EntityType,
			EntityID:    d.EntityID,
			UploadedAt:  d.UploadedAt.Format(time.RFC3339),
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": out,
		"count":     len(out),
	})
}

// CreateUploadURL handles POST /api/documents/upload-url
func (h *DocumentsHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	if h.bucket == "" {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Document storage is not configured")
		return
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		EntityType  string `json:"entity_type"`
		EntityID    string `json:"entity_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	// Generate unique object name
	objectName := fmt.Sprintf("uploads/%s/%s", time.Now().Format("2006/01/02"), uuid.NewString()+"-"+req.Filename)
	documentID := uuid.NewString()

	// For local development with user credentials, return a direct upload
	// URL. With service accounts this would hand out a signed URL instead.
	uploadURL := fmt.Sprintf("/api/documents/upload/%s?object_name=%s&filename=%s&entity_type=%s&entity_id=%s",
		documentID,
		url.QueryEscape(objectName),
		url.QueryEscape(req.Filename),
		url.QueryEscape(req.EntityType),
		url.QueryEscape(req.EntityID),
	)

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"upload_url":  uploadURL,
		"gcs_uri":     fmt.Sprintf("gs://%s/%s", h.bucket, objectName),
		"object_name": objectName,
		"document_id": documentID,
	})
}

// UploadDocument handles POST /api/documents/upload/:documentId, the direct
// upload endpoint paired with CreateUploadURL. The request body is streamed
// straight into blob storage.
func (h *DocumentsHandler) UploadDocument(w http.ResponseWriter, r *http.Request, documentID string) {
	ctx := r.Context()

	objectName := r.URL.Query().Get("object_name")
	if objectName == "" {
		middleware.WriteError(w, http.StatusBadRequest, "object_name is required")
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = gcsuploader.FilenameFromGCSURI("gs://" + h.bucket + "/" + objectName)
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size, err := h.storage.Upload(ctx, h.bucket, objectName, contentType, r.Body)
	if err != nil {
		h.log.Error().Err(err).Str("object", objectName).Msg("Failed to upload document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	doc := &domain.Document{
		ID:          documentID,
		Filename:    filename,
		GCSURI:      fmt.Sprintf("gs://%s/%s", h.bucket, objectName),
		ContentType: contentType,
		SizeBytes:   size,
		EntityType:  r.URL.Query().Get("entity_type"),
		EntityID:    r.URL.Query().Get("entity_id"),
		UploadedAt:  time.Now(),
	}
	if err := h.store.InsertDocument(ctx, doc); err != nil {
		h.log.Error().Err(err).Str("document_id", documentID).Msg("Failed to record document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to record document")
		return
	}

	h.log.Info().
		Str("document_id", documentID).
		Str("gcs_uri", doc.GCSURI).
		Int64("size_bytes", size).
		Msg("Document uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"document_id": documentID,
		"gcs_uri":     doc.GCSURI,
		"size_bytes":  size,
	})
}
