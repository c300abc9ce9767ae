package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

func TestGenerateResponses_ReturnsThree(t *testing.T) {
	h, _ := setupAppHandler(t)

	body := `{"context":"my roommate says I never do the dishes","tone":"casual"}`
	resp := doJSON(t, h, jsonReq(http.MethodPost, "/api/generate-responses", body), http.StatusOK)

	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	responses, ok := resp["responses"].([]any)
	if !ok {
		t.Fatalf("responses is %T, want array", resp["responses"])
	}
	if len(responses) != 3 {
		t.Fatalf("len(responses) = %d, want 3", len(responses))
	}
	for i, r := range responses {
		if r == "" {
			t.Errorf("responses[%d] is empty", i)
		}
	}
}

func TestGenerateResponses_MissingTone(t *testing.T) {
	h, _ := setupAppHandler(t)

	body := `{"context":"my roommate says I never do the dishes"}`
	rr := doRaw(t, h, jsonReq(http.MethodPost, "/api/generate-responses", body))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGenerateResponses_InsufficientInput(t *testing.T) {
	h, _ := setupAppHandler(t)

	body := `{"tone":"casual","opponentPosition":"cats are better"}`
	rr := doRaw(t, h, jsonReq(http.MethodPost, "/api/generate-responses", body))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestGenerateResponses_ContextTooLong(t *testing.T) {
	h, _ := setupAppHandler(t)

	long := make([]byte, maxContextChars+1)
	for i := range long {
		long[i] = 'x'
	}
	body := fmt.Sprintf(`{"context":%q,"tone":"casual"}`, string(long))
	rr := doRaw(t, h, jsonReq(http.MethodPost, "/api/generate-responses", body))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGenerateResponses_PersistsForArgument(t *testing.T) {
	h, store := setupAppHandler(t)

	arg := storage.Argument{ID: "arg-1", Title: "dishes", Context: "who does the dishes", Tone: "casual", StyleExamples: "[]"}
	if err := store.CreateArgument(arg); err != nil {
		t.Fatalf("CreateArgument failed: %v", err)
	}

	body := `{"context":"my roommate says I never do the dishes","tone":"aggressive","argumentId":"arg-1"}`
	resp := doJSON(t, h, jsonReq(http.MethodPost, "/api/generate-responses", body), http.StatusOK)
	if resp["argumentId"] != "arg-1" {
		t.Errorf("argumentId = %v, want %q", resp["argumentId"], "arg-1")
	}

	records, err := store.ListResponses("arg-1")
	if err != nil {
		t.Fatalf("ListResponses failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("persisted %d responses, want 3", len(records))
	}
	for _, rec := range records {
		if rec.Tone != "aggressive" {
			t.Errorf("record tone = %q, want %q", rec.Tone, "aggressive")
		}
	}
}

func TestGenerateResponses_UnknownArgumentStillSucceeds(t *testing.T) {
	h, _ := setupAppHandler(t)

	// A failed best-effort save must not surface to the caller.
	body := `{"context":"my roommate says I never do the dishes","tone":"casual","argumentId":"no-such-argument"}`
	resp := doJSON(t, h, jsonReq(http.MethodPost, "/api/generate-responses", body), http.StatusOK)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
}

func TestListArgumentResponses(t *testing.T) {
	h, store := setupAppHandler(t)

	arg := storage.Argument{ID: "arg-2", Title: "t", Context: "c", Tone: "casual", StyleExamples: "[]"}
	if err := store.CreateArgument(arg); err != nil {
		t.Fatalf("CreateArgument failed: %v", err)
	}
	records := []storage.ResponseRecord{
		{ID: "r1", ArgumentID: "arg-2", Content: "first", Tone: "casual"},
		{ID: "r2", ArgumentID: "arg-2", Content: "second", Tone: "casual"},
	}
	if err := store.SaveResponses(records); err != nil {
		t.Fatalf("SaveResponses failed: %v", err)
	}

	resp := doJSON(t, h, jsonReq(http.MethodGet, "/api/arguments/arg-2/responses", ""), http.StatusOK)
	responses, ok := resp["responses"].([]any)
	if !ok {
		t.Fatalf("responses is %T, want array", resp["responses"])
	}
	if len(responses) != 2 {
		t.Fatalf("len(responses) = %d, want 2", len(responses))
	}
}
