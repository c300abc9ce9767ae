package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/levibean95-hub/keyboard-warrior/internal/generate"
	"github.com/levibean95-hub/keyboard-warrior/internal/prompt"
	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
	"github.com/levibean95-hub/keyboard-warrior/internal/tone"
)

type messageJSON struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func toMessageJSON(messages []storage.Message) []messageJSON {
	out := make([]messageJSON, len(messages))
	for i, m := range messages {
		out[i] = messageJSON{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

type styleChangeJSON struct {
	ID           string `json:"id"`
	FromTone     string `json:"fromTone"`
	ToTone       string `json:"toTone"`
	MessageCount int    `json:"messageCount"`
	ChangedAt    string `json:"changedAt"`
}

// parsePositions recovers the position pair from a context that was built
// from one. Free-form contexts yield empty strings.
func parsePositions(context string) (opponent, user, additional string) {
	if !strings.Contains(context, "Opponent:") || !strings.Contains(context, "User:") {
		return "", "", ""
	}
	for _, line := range strings.Split(context, "\n") {
		switch {
		case strings.HasPrefix(line, "Opponent:"):
			opponent = strings.TrimSpace(strings.TrimPrefix(line, "Opponent:"))
		case strings.HasPrefix(line, "User:"):
			user = strings.TrimSpace(strings.TrimPrefix(line, "User:"))
		case strings.HasPrefix(line, "Context:"):
			additional = strings.TrimSpace(strings.TrimPrefix(line, "Context:"))
		}
	}
	return opponent, user, additional
}

// buildContext serializes a position pair into the stored context format.
func buildContext(opponentPosition, userPosition, additionalContext string) string {
	ctx := fmt.Sprintf("Opponent: %s\nUser: %s", opponentPosition, userPosition)
	if additionalContext != "" {
		ctx += "\nContext: " + additionalContext
	}
	return ctx
}

type createConversationRequest struct {
	Context               string   `json:"context"`
	OpponentPosition      string   `json:"opponentPosition"`
	UserPosition          string   `json:"userPosition"`
	AdditionalContext     string   `json:"additionalContext"`
	Tone                  string   `json:"tone"`
	CustomToneDescription string   `json:"customToneDescription"`
	StyleExamples         []string `json:"styleExamples"`
	FirstOpponentMessage  string   `json:"firstOpponentMessage"`
}

func handleCreateConversation(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req createConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Tone == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "tone is required")
			return
		}
		if req.Context == "" && (req.OpponentPosition == "" || req.UserPosition == "") {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "must provide either context or both positions")
			return
		}

		contextToStore := req.Context
		if contextToStore == "" {
			contextToStore = buildContext(req.OpponentPosition, req.UserPosition, req.AdditionalContext)
		}

		c := storage.Conversation{
			ID:                    uuid.New().String(),
			UserID:                userID(r),
			Context:               contextToStore,
			Tone:                  req.Tone,
			CurrentTone:           req.Tone,
			CustomToneDescription: req.CustomToneDescription,
			StyleExamples:         encodeStringList(req.StyleExamples),
		}
		if err := deps.Store.CreateConversation(c); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create conversation: %v", err)
			return
		}

		messages := []messageJSON{}
		if first := strings.TrimSpace(req.FirstOpponentMessage); first != "" {
			m := storage.Message{
				ID:             uuid.New().String(),
				ConversationID: c.ID,
				Role:           "opponent",
				Content:        first,
			}
			if err := deps.Store.AddMessage(m); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to add first message: %v", err)
				return
			}
			messages = append(messages, messageJSON{
				ID:        m.ID,
				Role:      m.Role,
				Content:   m.Content,
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			})
		}

		now := time.Now().UTC().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, map[string]any{
			"id":                    c.ID,
			"context":               contextToStore,
			"opponentPosition":      req.OpponentPosition,
			"userPosition":          req.UserPosition,
			"additionalContext":     req.AdditionalContext,
			"tone":                  req.Tone,
			"customToneDescription": req.CustomToneDescription,
			"styleExamples":         decodeStringList(c.StyleExamples),
			"messages":              messages,
			"createdAt":             now,
			"updatedAt":             now,
		})
	}
}

func handleListConversations(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversations, err := deps.Store.ListConversations(userID(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list conversations: %v", err)
			return
		}

		out := make([]map[string]any, len(conversations))
		for i, c := range conversations {
			out[i] = map[string]any{
				"id":          c.ID,
				"context":     c.Context,
				"tone":        c.Tone,
				"currentTone": c.CurrentTone,
				"createdAt":   c.CreatedAt.Format(time.RFC3339),
				"updatedAt":   c.UpdatedAt.Format(time.RFC3339),
			}
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetConversation(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		c, err := deps.Store.GetConversation(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "conversation not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get conversation: %v", err)
			return
		}

		messages, err := deps.Store.ListMessages(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list messages: %v", err)
			return
		}

		opponentPos, userPos, addCtx := parsePositions(c.Context)

		writeJSON(w, http.StatusOK, map[string]any{
			"id":                    c.ID,
			"context":               c.Context,
			"opponentPosition":      opponentPos,
			"userPosition":          userPos,
			"additionalContext":     addCtx,
			"tone":                  c.Tone,
			"customToneDescription": c.CustomToneDescription,
			"currentTone":           c.CurrentTone,
			"styleExamples":         decodeStringList(c.StyleExamples),
			"messages":              toMessageJSON(messages),
			"createdAt":             c.CreatedAt.Format(time.RFC3339),
			"updatedAt":             c.UpdatedAt.Format(time.RFC3339),
		})
	}
}

type addMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func handleAddMessage(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		id := chi.URLParam(r, "id")

		var req addMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Role == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "role is required")
			return
		}
		if req.Role != "user" && req.Role != "opponent" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "role must be user or opponent")
			return
		}

		c, err := deps.Store.GetConversation(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "conversation not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get conversation: %v", err)
			return
		}

		// The client retries submissions; an identical trailing message is
		// the same turn arriving twice, not a new turn.
		shouldAdd := req.Content != ""
		if shouldAdd {
			last, err := deps.Store.LastMessage(id)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to check last message: %v", err)
				return
			}
			if err == nil && last.Role == req.Role && last.Content == req.Content {
				shouldAdd = false
			}
		}

		var newMessageID string
		if shouldAdd {
			m := storage.Message{
				ID:             uuid.New().String(),
				ConversationID: id,
				Role:           req.Role,
				Content:        req.Content,
			}
			if err := deps.Store.AddMessage(m); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to add message: %v", err)
				return
			}
			newMessageID = m.ID
		}

		messages, err := deps.Store.ListMessages(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list messages: %v", err)
			return
		}

		generatedResponses := []string{}
		if req.Role == "opponent" {
			generatedResponses, err = generateForConversation(r, deps, c, messages)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to generate responses: %v", err)
				return
			}
			if newMessageID != "" {
				if err := deps.Store.SetGeneratedResponses(newMessageID, encodeStringList(generatedResponses)); err != nil {
					slog.Warn("failed to record generated responses", "message_id", newMessageID, "error", err)
				}
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"messages":           toMessageJSON(messages),
			"generatedResponses": generatedResponses,
		})
	}
}

// generateForConversation builds the full transcript context and asks the
// generator for candidates in the conversation's current tone.
func generateForConversation(r *http.Request, deps AppDeps, c storage.Conversation, messages []storage.Message) ([]string, error) {
	history := make([]string, len(messages))
	for i, m := range messages {
		speaker := "You"
		if m.Role == "opponent" {
			speaker = "Opponent"
		}
		history[i] = speaker + ": " + m.Content
	}
	fullContext := c.Context + "\n\n" + prompt.ConversationMarker + "\n" + strings.Join(history, "\n\n")

	opponentPos, userPos, addCtx := parsePositions(c.Context)

	return deps.Generator.Generate(r.Context(), generate.Request{
		Context:               fullContext,
		OpponentPosition:      opponentPos,
		UserPosition:          userPos,
		AdditionalContext:     addCtx,
		Tone:                  tone.Tone(c.CurrentTone),
		CustomToneDescription: c.CustomToneDescription,
		StyleExamples:         decodeStringList(c.StyleExamples),
	})
}

type patchConversationRequest struct {
	OpponentPosition  string `json:"opponentPosition"`
	UserPosition      string `json:"userPosition"`
	AdditionalContext string `json:"additionalContext"`
}

func handlePatchConversation(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		id := chi.URLParam(r, "id")

		var req patchConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		c, err := deps.Store.GetConversation(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "conversation not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get conversation: %v", err)
			return
		}

		opponentPos := req.OpponentPosition
		if opponentPos == "" {
			opponentPos = "Not specified"
		}
		userPos := req.UserPosition
		if userPos == "" {
			userPos = "Not specified"
		}
		newContext := buildContext(opponentPos, userPos, req.AdditionalContext)

		if err := deps.Store.UpdateConversationContext(id, newContext); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update conversation: %v", err)
			return
		}

		messages, err := deps.Store.ListMessages(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list messages: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":                id,
			"context":           newContext,
			"opponentPosition":  req.OpponentPosition,
			"userPosition":      req.UserPosition,
			"additionalContext": req.AdditionalContext,
			"tone":              c.Tone,
			"currentTone":       c.CurrentTone,
			"styleExamples":     decodeStringList(c.StyleExamples),
			"messages":          toMessageJSON(messages),
			"createdAt":         c.CreatedAt.Format(time.RFC3339),
			"updatedAt":         time.Now().UTC().Format(time.RFC3339),
		})
	}
}

type changeToneRequest struct {
	Tone string `json:"tone"`
}

func handleChangeTone(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		id := chi.URLParam(r, "id")

		var req changeToneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Tone == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "tone is required")
			return
		}

		change, err := deps.Store.ChangeConversationTone(uuid.New().String(), id, req.Tone)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "conversation not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to change tone: %v", err)
			return
		}

		history, err := deps.Store.ListStyleChanges(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch style history: %v", err)
			return
		}

		styleHistory := make([]styleChangeJSON, len(history))
		for i, sc := range history {
			styleHistory[i] = styleChangeJSON{
				ID:           sc.ID,
				FromTone:     sc.FromTone,
				ToTone:       sc.ToTone,
				MessageCount: sc.MessageCount,
				ChangedAt:    sc.ChangedAt.Format(time.RFC3339),
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":           id,
			"currentTone":  change.ToTone,
			"previousTone": change.FromTone,
			"styleHistory": styleHistory,
		})
	}
}

type selectResponseRequest struct {
	MessageID        string `json:"messageId"`
	SelectedResponse string `json:"selectedResponse"`
}

func handleSelectResponse(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req selectResponseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.MessageID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "messageId is required")
			return
		}
		if req.SelectedResponse == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "selectedResponse is required")
			return
		}

		err := deps.Store.SetSelectedResponse(req.MessageID, req.SelectedResponse)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "message not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to select response: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"messageId":        req.MessageID,
			"selectedResponse": req.SelectedResponse,
		})
	}
}
