package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/levibean95-hub/keyboard-warrior/internal/ingest"
	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

type createStyleUploadRequest struct {
	Filename       string `json:"filename"`
	ContentType    string `json:"contentType"`
	Content        string `json:"content"` // base64
	ConversationID string `json:"conversationId"`
}

func handleCreateStyleUpload(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer r.Body.Close()

		var req createStyleUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid base64 content")
			return
		}
		if req.ContentType == "" {
			req.ContentType = "text/plain"
		}

		if req.ConversationID != "" {
			if _, err := deps.Store.GetConversation(req.ConversationID); errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "not_found", "conversation not found")
				return
			} else if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to check conversation: %v", err)
				return
			}
		}

		uploadID := uuid.New().String()
		if err := os.MkdirAll(deps.UploadsDir, 0o755); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to prepare upload dir: %v", err)
			return
		}
		if err := os.WriteFile(ingest.UploadPath(deps.UploadsDir, uploadID), data, 0o600); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to store upload: %v", err)
			return
		}

		u := storage.StyleUpload{
			ID:             uploadID,
			ConversationID: req.ConversationID,
			Filename:       req.Filename,
			ContentType:    req.ContentType,
		}
		if err := deps.Store.CreateStyleUpload(u); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save upload: %v", err)
			return
		}

		payload, err := json.Marshal(map[string]string{"upload_id": uploadID})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create job payload: %v", err)
			return
		}
		job := storage.Job{
			ID:          uuid.New().String(),
			Type:        ingest.JobType,
			PayloadJSON: string(payload),
		}
		if err := deps.Store.EnqueueJob(job); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to enqueue job: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"id":     uploadID,
			"status": "queued",
		})
	}
}

func handleGetStyleUpload(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		u, err := deps.Store.GetStyleUpload(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "upload not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch upload: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":             u.ID,
			"conversationId": u.ConversationID,
			"filename":       u.Filename,
			"contentType":    u.ContentType,
			"status":         u.Status,
			"examples":       decodeStringList(u.ExamplesJSON),
			"error":          u.Error,
			"createdAt":      u.CreatedAt.Format(time.RFC3339),
			"updatedAt":      u.UpdatedAt.Format(time.RFC3339),
		})
	}
}
