// Package ingest runs the background worker that turns uploaded writing
// samples into style example messages.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

// JobType is the queue type tag for style extraction jobs.
const JobType = "style_extract"

// UploadStore abstracts the job queue and upload records.
type UploadStore interface {
	ClaimNextJob(types []string) (*storage.Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error
	GetStyleUpload(id string) (storage.StyleUpload, error)
	CompleteStyleUpload(id, examplesJSON string) error
	FailStyleUpload(id, errMsg string) error
	GetConversation(id string) (storage.Conversation, error)
	UpdateConversationStyleExamples(id, examplesJSON string) error
}

// Worker processes style_extract jobs from the SQLite job queue.
type Worker struct {
	store      UploadStore
	uploadsDir string
	poll       time.Duration
	logger     *slog.Logger
}

// NewWorker creates a Worker reading uploaded files from uploadsDir.
// If pollInterval is <= 0, it defaults to 500ms.
func NewWorker(store UploadStore, uploadsDir string, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		store:      store,
		uploadsDir: uploadsDir,
		poll:       pollInterval,
		logger:     slog.Default(),
	}
}

// UploadPath returns where the raw bytes of an upload live on disk.
func UploadPath(uploadsDir, uploadID string) string {
	return filepath.Join(uploadsDir, uploadID)
}

// Run polls for jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		done, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("worker iteration failed", "error", err)
		}
		if done {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and processes a single style_extract job.
// Returns true if a job was processed (regardless of success/failure).
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextJob([]string{JobType})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	if err := w.processJob(job); err != nil {
		w.logger.Warn("job failed", "job_id", job.ID, "error", err)
		if failErr := w.store.FailJob(job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		return true, nil
	}

	if err := w.store.CompleteJob(job.ID); err != nil {
		return true, fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	return true, nil
}

type extractPayload struct {
	UploadID string `json:"upload_id"`
}

func (w *Worker) processJob(job *storage.Job) error {
	var payload extractPayload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	upload, err := w.store.GetStyleUpload(payload.UploadID)
	if err != nil {
		return fmt.Errorf("loading style upload %s: %w", payload.UploadID, err)
	}

	data, err := os.ReadFile(UploadPath(w.uploadsDir, upload.ID))
	if err != nil {
		w.markFailed(upload.ID, "upload file missing")
		return fmt.Errorf("reading upload file: %w", err)
	}

	text, err := ExtractText(data, upload.ContentType)
	if err != nil {
		w.markFailed(upload.ID, err.Error())
		return fmt.Errorf("extracting text: %w", err)
	}

	examples := SplitExamples(text)
	if len(examples) == 0 {
		w.markFailed(upload.ID, "no usable text in upload")
		return fmt.Errorf("no usable text in upload %s", upload.ID)
	}

	examplesJSON, err := json.Marshal(examples)
	if err != nil {
		return fmt.Errorf("encoding examples: %w", err)
	}

	if err := w.store.CompleteStyleUpload(upload.ID, string(examplesJSON)); err != nil {
		return fmt.Errorf("completing style upload: %w", err)
	}

	if upload.ConversationID != "" {
		if err := w.attachToConversation(upload.ConversationID, examples); err != nil {
			// Upload itself succeeded; log and move on.
			w.logger.Warn("attaching examples to conversation failed",
				"conversation_id", upload.ConversationID, "error", err)
		}
	}

	w.logger.Info("style upload processed", "upload_id", upload.ID, "examples", len(examples))
	return nil
}

func (w *Worker) markFailed(uploadID, reason string) {
	if err := w.store.FailStyleUpload(uploadID, reason); err != nil {
		w.logger.Error("failed to mark upload as failed", "upload_id", uploadID, "error", err)
	}
}

// attachToConversation merges new examples into the conversation's stored
// set, keeping the cap.
func (w *Worker) attachToConversation(conversationID string, examples []string) error {
	conv, err := w.store.GetConversation(conversationID)
	if err != nil {
		return err
	}

	var existing []string
	if conv.StyleExamples != "" {
		if err := json.Unmarshal([]byte(conv.StyleExamples), &existing); err != nil {
			existing = nil
		}
	}

	merged := append(existing, examples...)
	if len(merged) > maxExamples {
		merged = merged[:maxExamples]
	}

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return w.store.UpdateConversationStyleExamples(conversationID, string(mergedJSON))
}
