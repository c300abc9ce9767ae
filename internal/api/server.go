// Package api exposes the REST surface of the response generator: health,
// one-shot generation, saved arguments, conversation threads, and style
// uploads. It also hosts the MCP server in mcp.go.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/levibean95-hub/keyboard-warrior/internal/generate"
	"github.com/levibean95-hub/keyboard-warrior/internal/ratelimit"
	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB
const maxUploadBodySize = 10 << 20 // 10MB

// AppDeps holds everything the HTTP handlers need.
type AppDeps struct {
	Store      *storage.Store
	Generator  *generate.Generator
	UploadsDir string
	Limiter    *ratelimit.Limiter // optional; if nil, no rate limiting
}

// NewAppHandler builds the router. Everything under /api is rate limited
// when a limiter is configured; /health is always open.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/api", func(api chi.Router) {
		if deps.Limiter != nil {
			api.Use(deps.Limiter.Middleware)
		}

		api.Post("/generate-responses", handleGenerateResponses(deps))

		api.Route("/arguments", func(args chi.Router) {
			args.Get("/", handleListArguments(deps))
			args.Post("/", handleCreateArgument(deps))
			args.Get("/{id}", handleGetArgument(deps))
			args.Delete("/{id}", handleDeleteArgument(deps))
			args.Get("/{id}/responses", handleListArgumentResponses(deps))
		})

		api.Route("/conversations", func(conv chi.Router) {
			conv.Get("/", handleListConversations(deps))
			conv.Post("/", handleCreateConversation(deps))
			conv.Get("/{id}", handleGetConversation(deps))
			conv.Patch("/{id}", handlePatchConversation(deps))
			conv.Patch("/{id}/tone", handleChangeTone(deps))
			conv.Post("/{id}/messages", handleAddMessage(deps))
			conv.Post("/{id}/select", handleSelectResponse(deps))
		})

		api.Route("/style-uploads", func(up chi.Router) {
			up.Post("/", handleCreateStyleUpload(deps))
			up.Get("/{id}", handleGetStyleUpload(deps))
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// userID reads the optional ownership header. Requests without it fall back
// to the shared default owner.
func userID(r *http.Request) string {
	if id := r.Header.Get("user-id"); id != "" {
		return id
	}
	return "default-user"
}
