package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

const maxTitleChars = 100

type argumentJSON struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId,omitempty"`
	Title         string         `json:"title"`
	Context       string         `json:"context"`
	Tone          string         `json:"tone"`
	StyleExamples []string       `json:"styleExamples"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
	Responses     []responseJSON `json:"responses,omitempty"`
}

func toArgumentJSON(a storage.Argument) argumentJSON {
	return argumentJSON{
		ID:            a.ID,
		UserID:        a.UserID,
		Title:         a.Title,
		Context:       a.Context,
		Tone:          a.Tone,
		StyleExamples: decodeStringList(a.StyleExamples),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.Format(time.RFC3339),
	}
}

// decodeStringList parses a JSON array column, treating empty or malformed
// text as no entries.
func decodeStringList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func encodeStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func handleListArguments(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args, err := deps.Store.ListArguments(userID(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch arguments: %v", err)
			return
		}

		out := make([]argumentJSON, len(args))
		for i, a := range args {
			out[i] = toArgumentJSON(a)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"arguments": out,
		})
	}
}

func handleGetArgument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		a, err := deps.Store.GetArgument(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "argument not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch argument: %v", err)
			return
		}

		records, err := deps.Store.ListResponses(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch responses: %v", err)
			return
		}

		arg := toArgumentJSON(a)
		arg.Responses = toResponseJSON(records)

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"argument": arg,
		})
	}
}

type createArgumentRequest struct {
	Title         string   `json:"title"`
	Context       string   `json:"context"`
	Tone          string   `json:"tone"`
	StyleExamples []string `json:"styleExamples"`
}

func handleCreateArgument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req createArgumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Context == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "context is required")
			return
		}
		if len(req.Context) > maxContextChars {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "context must be at most %d characters", maxContextChars)
			return
		}
		if req.Tone == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "tone is required")
			return
		}
		if len(req.Title) > maxTitleChars {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "title must be at most %d characters", maxTitleChars)
			return
		}

		title := req.Title
		if title == "" {
			title = fmt.Sprintf("Argument %d", time.Now().UnixMilli())
		}

		a := storage.Argument{
			ID:            uuid.New().String(),
			UserID:        userID(r),
			Title:         title,
			Context:       req.Context,
			Tone:          req.Tone,
			StyleExamples: encodeStringList(req.StyleExamples),
		}
		if err := deps.Store.CreateArgument(a); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create argument: %v", err)
			return
		}

		saved, err := deps.Store.GetArgument(a.ID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch created argument: %v", err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    toArgumentJSON(saved),
		})
	}
}

func handleDeleteArgument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Store.DeleteArgument(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "argument not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete argument: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
