package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"testing"

	"github.com/levibean95-hub/keyboard-warrior/internal/generate"
	"github.com/levibean95-hub/keyboard-warrior/internal/ingest"
	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

func setupUploadsHandler(t *testing.T) (http.Handler, *storage.Store, string) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	dir := t.TempDir()
	handler := NewAppHandler(AppDeps{
		Store:      store,
		Generator:  generate.NewGenerator(nil),
		UploadsDir: dir,
	})
	return handler, store, dir
}

func TestCreateStyleUpload(t *testing.T) {
	h, store, dir := setupUploadsHandler(t)

	content := base64.StdEncoding.EncodeToString([]byte("first sample message\nsecond sample message"))
	body := `{"filename":"chat.txt","contentType":"text/plain","content":"` + content + `"}`
	resp := doJSON(t, h, jsonReq(http.MethodPost, "/api/style-uploads", body), http.StatusOK)

	if resp["status"] != "queued" {
		t.Errorf("status = %v, want %q", resp["status"], "queued")
	}
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatal("response missing id")
	}

	if _, err := os.Stat(ingest.UploadPath(dir, id)); err != nil {
		t.Errorf("upload blob not written: %v", err)
	}

	u, err := store.GetStyleUpload(id)
	if err != nil {
		t.Fatalf("GetStyleUpload failed: %v", err)
	}
	if u.Status != "pending" {
		t.Errorf("upload status = %q, want %q", u.Status, "pending")
	}

	job, err := store.ClaimNextJob([]string{ingest.JobType})
	if err != nil {
		t.Fatalf("ClaimNextJob failed: %v", err)
	}
	if job == nil {
		t.Fatal("no extraction job was enqueued")
	}
}

func TestCreateStyleUpload_InvalidBase64(t *testing.T) {
	h, _, _ := setupUploadsHandler(t)

	rr := doRaw(t, h, jsonReq(http.MethodPost, "/api/style-uploads",
		`{"filename":"chat.txt","content":"not base64!!!"}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateStyleUpload_MissingContent(t *testing.T) {
	h, _, _ := setupUploadsHandler(t)

	rr := doRaw(t, h, jsonReq(http.MethodPost, "/api/style-uploads", `{"filename":"chat.txt"}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateStyleUpload_UnknownConversation(t *testing.T) {
	h, _, _ := setupUploadsHandler(t)

	content := base64.StdEncoding.EncodeToString([]byte("sample"))
	body := `{"content":"` + content + `","conversationId":"nope"}`
	rr := doRaw(t, h, jsonReq(http.MethodPost, "/api/style-uploads", body))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetStyleUpload_RoundTrip(t *testing.T) {
	h, store, dir := setupUploadsHandler(t)

	content := base64.StdEncoding.EncodeToString([]byte("a long enough sample line\nanother long enough line"))
	created := doJSON(t, h, jsonReq(http.MethodPost, "/api/style-uploads",
		`{"filename":"chat.txt","contentType":"text/plain","content":"`+content+`"}`), http.StatusOK)
	id := created["id"].(string)

	// Run the extraction worker to completion.
	w := ingest.NewWorker(store, dir, 0)
	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	resp := doJSON(t, h, jsonReq(http.MethodGet, "/api/style-uploads/"+id, ""), http.StatusOK)
	if resp["status"] != "completed" {
		t.Fatalf("status = %v, want %q; error = %v", resp["status"], "completed", resp["error"])
	}
	examples, ok := resp["examples"].([]any)
	if !ok || len(examples) != 2 {
		t.Errorf("examples = %v, want 2 entries", resp["examples"])
	}
}

func TestGetStyleUpload_NotFound(t *testing.T) {
	h, _, _ := setupUploadsHandler(t)

	rr := doRaw(t, h, jsonReq(http.MethodGet, "/api/style-uploads/nope", ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
