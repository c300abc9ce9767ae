package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/levibean95-hub/keyboard-warrior/internal/generate"
	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

// setupAppHandler builds a handler backed by an in-memory store and a
// fallback-only generator (no backend client configured).
func setupAppHandler(t *testing.T) (http.Handler, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := NewAppHandler(AppDeps{
		Store:      store,
		Generator:  generate.NewGenerator(nil),
		UploadsDir: t.TempDir(),
	})
	return handler, store
}

func jsonReq(method, url, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return httptest.NewRequest(method, url, reader)
}

func doRaw(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func doJSON(t *testing.T, h http.Handler, req *http.Request, wantStatus int) map[string]any {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, wantStatus, rr.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	h, _ := setupAppHandler(t)

	resp := doJSON(t, h, jsonReq(http.MethodGet, "/health", ""), http.StatusOK)
	if resp["status"] != "healthy" {
		t.Errorf("status = %v, want %q", resp["status"], "healthy")
	}
	if resp["timestamp"] == "" || resp["timestamp"] == nil {
		t.Error("response missing timestamp")
	}
}

func TestErrorEnvelope(t *testing.T) {
	h, _ := setupAppHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/api/generate-responses", `{"context":"we disagree about dinner"}`))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var resp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp.Error.Type != "invalid_request_error" {
		t.Errorf("error.type = %q, want %q", resp.Error.Type, "invalid_request_error")
	}
	if resp.Error.Message == "" {
		t.Error("error.message is empty")
	}
}
