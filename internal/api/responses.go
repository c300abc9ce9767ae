package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/levibean95-hub/keyboard-warrior/internal/generate"
	"github.com/levibean95-hub/keyboard-warrior/internal/prompt"
	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

const maxContextChars = 2000

type responseJSON struct {
	ID          string `json:"id"`
	ArgumentID  string `json:"argumentId"`
	Content     string `json:"content"`
	Tone        string `json:"tone"`
	GeneratedAt string `json:"generatedAt"`
}

func toResponseJSON(records []storage.ResponseRecord) []responseJSON {
	out := make([]responseJSON, len(records))
	for i, rec := range records {
		out[i] = responseJSON{
			ID:          rec.ID,
			ArgumentID:  rec.ArgumentID,
			Content:     rec.Content,
			Tone:        rec.Tone,
			GeneratedAt: rec.GeneratedAt.Format(time.RFC3339),
		}
	}
	return out
}

func handleGenerateResponses(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req generate.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Tone == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "tone is required")
			return
		}
		if len(req.Context) > maxContextChars {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "context must be at most %d characters", maxContextChars)
			return
		}

		responses, err := deps.Generator.Generate(r.Context(), req)
		if errors.Is(err, prompt.ErrInsufficientInput) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to generate responses: %v", err)
			return
		}

		// Persist against the argument when one is named. A write failure
		// must not cost the caller the responses they already have.
		if req.ArgumentID != "" {
			records := make([]storage.ResponseRecord, len(responses))
			for i, content := range responses {
				records[i] = storage.ResponseRecord{
					ID:         uuid.New().String(),
					ArgumentID: req.ArgumentID,
					Content:    content,
					Tone:       string(req.Tone),
				}
			}
			if err := deps.Store.SaveResponses(records); err != nil {
				slog.Error("failed to save generated responses", "argument_id", req.ArgumentID, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"responses":  responses,
			"argumentId": req.ArgumentID,
		})
	}
}

func handleListArgumentResponses(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		argumentID := chi.URLParam(r, "id")

		records, err := deps.Store.ListResponses(argumentID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch responses: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"responses": toResponseJSON(records),
		})
	}
}
