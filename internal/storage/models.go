package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Conversation is an ongoing argument thread. Context holds either a
// free-form description or the serialized position pair. Tone is the tone
// chosen at creation; CurrentTone tracks mid-conversation switches.
type Conversation struct {
	ID                    string
	UserID                string
	Title                 string
	Context               string
	Tone                  string
	CurrentTone           string
	CustomToneDescription string
	StyleExamples         string // JSON array stored as text
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Message is a single turn in a conversation. Role is "user" or "opponent".
type Message struct {
	ID                 string
	ConversationID     string
	Role               string
	Content            string
	GeneratedResponses string // JSON array stored as text
	SelectedResponse   string
	CreatedAt          time.Time
}

// Argument is a saved one-shot argument setup for the stateless
// generation endpoint.
type Argument struct {
	ID            string
	UserID        string
	Title         string
	Context       string
	Tone          string
	StyleExamples string // JSON array stored as text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ResponseRecord is one generated candidate persisted against an argument.
type ResponseRecord struct {
	ID          string
	ArgumentID  string
	Content     string
	Tone        string
	GeneratedAt time.Time
}

// StyleChange records a mid-conversation tone switch.
type StyleChange struct {
	ID             string
	ConversationID string
	FromTone       string
	ToTone         string
	MessageCount   int
	ChangedAt      time.Time
}

// StyleUpload tracks an uploaded writing sample being extracted into style
// examples by the background worker.
type StyleUpload struct {
	ID             string
	ConversationID string
	Filename       string
	ContentType    string
	Status         string // "pending", "completed", "failed"
	ExamplesJSON   string // JSON array of extracted example messages
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}
