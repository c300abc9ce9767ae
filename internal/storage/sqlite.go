package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for conversations, arguments,
// generated responses, and the background job queue.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "warrior.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for tests and diagnostics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", field, err)
	}
	return t, nil
}

// --- Conversations ---

func (s *Store) CreateConversation(c Conversation) error {
	now := nowRFC3339()
	currentTone := c.CurrentTone
	if currentTone == "" {
		currentTone = c.Tone
	}
	_, err := s.db.Exec(`
		INSERT INTO conversations (id, user_id, title, context, tone, current_tone, custom_tone_description, style_examples, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.Context, c.Tone, currentTone, c.CustomToneDescription, c.StyleExamples, now, now,
	)
	return err
}

func (s *Store) GetConversation(id string) (Conversation, error) {
	var c Conversation
	var createdAt, updatedAt string
	var title, currentTone, customDesc, styleExamples sql.NullString
	err := s.db.QueryRow(`
		SELECT id, user_id, title, context, tone, current_tone, custom_tone_description, style_examples, created_at, updated_at
		FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &title, &c.Context, &c.Tone, &currentTone, &customDesc, &styleExamples, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, err
	}
	c.Title = title.String
	c.CurrentTone = currentTone.String
	if c.CurrentTone == "" {
		c.CurrentTone = c.Tone
	}
	c.CustomToneDescription = customDesc.String
	c.StyleExamples = styleExamples.String
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return Conversation{}, err
	}
	if c.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return Conversation{}, err
	}
	return c, nil
}

// ListConversations returns the user's conversation threads, most recently
// touched first. Rows without an owner are visible to everyone.
func (s *Store) ListConversations(userID string) ([]Conversation, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, context, tone, current_tone, custom_tone_description, style_examples, created_at, updated_at
		FROM conversations
		WHERE user_id = ? OR user_id IS NULL OR user_id = ''
		ORDER BY updated_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Conversation
	for rows.Next() {
		var c Conversation
		var createdAt, updatedAt string
		var title, currentTone, customDesc, styleExamples sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &title, &c.Context, &c.Tone, &currentTone, &customDesc, &styleExamples, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.Title = title.String
		c.CurrentTone = currentTone.String
		if c.CurrentTone == "" {
			c.CurrentTone = c.Tone
		}
		c.CustomToneDescription = customDesc.String
		c.StyleExamples = styleExamples.String
		if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (s *Store) UpdateConversationContext(id, context string) error {
	res, err := s.db.Exec(`UPDATE conversations SET context = ?, updated_at = ? WHERE id = ?`,
		context, nowRFC3339(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateConversationStyleExamples(id, examplesJSON string) error {
	res, err := s.db.Exec(`UPDATE conversations SET style_examples = ?, updated_at = ? WHERE id = ?`,
		examplesJSON, nowRFC3339(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangeConversationTone records the switch in style_changes and updates the
// conversation's current tone in one transaction. It returns the recorded change.
func (s *Store) ChangeConversationTone(changeID, conversationID, toTone string) (StyleChange, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return StyleChange{}, fmt.Errorf("beginning tone change transaction: %w", err)
	}
	defer tx.Rollback()

	var tone string
	var currentTone sql.NullString
	err = tx.QueryRow(`SELECT tone, current_tone FROM conversations WHERE id = ?`, conversationID).
		Scan(&tone, &currentTone)
	if err == sql.ErrNoRows {
		return StyleChange{}, ErrNotFound
	}
	if err != nil {
		return StyleChange{}, err
	}
	fromTone := currentTone.String
	if fromTone == "" {
		fromTone = tone
	}

	var messageCount int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&messageCount); err != nil {
		return StyleChange{}, err
	}

	now := nowRFC3339()
	if _, err := tx.Exec(`
		INSERT INTO style_changes (id, conversation_id, from_tone, to_tone, message_count, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		changeID, conversationID, fromTone, toTone, messageCount, now,
	); err != nil {
		return StyleChange{}, err
	}
	if _, err := tx.Exec(`UPDATE conversations SET current_tone = ?, updated_at = ? WHERE id = ?`,
		toTone, now, conversationID); err != nil {
		return StyleChange{}, err
	}

	if err := tx.Commit(); err != nil {
		return StyleChange{}, fmt.Errorf("committing tone change: %w", err)
	}

	changedAt, err := parseTime("changed_at", now)
	if err != nil {
		return StyleChange{}, err
	}
	return StyleChange{
		ID:             changeID,
		ConversationID: conversationID,
		FromTone:       fromTone,
		ToTone:         toTone,
		MessageCount:   messageCount,
		ChangedAt:      changedAt,
	}, nil
}

func (s *Store) ListStyleChanges(conversationID string) ([]StyleChange, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, from_tone, to_tone, message_count, changed_at
		FROM style_changes WHERE conversation_id = ? ORDER BY changed_at DESC`, conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StyleChange
	for rows.Next() {
		var sc StyleChange
		var fromTone sql.NullString
		var changedAt string
		if err := rows.Scan(&sc.ID, &sc.ConversationID, &fromTone, &sc.ToTone, &sc.MessageCount, &changedAt); err != nil {
			return nil, err
		}
		sc.FromTone = fromTone.String
		if sc.ChangedAt, err = parseTime("changed_at", changedAt); err != nil {
			return nil, err
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}

// --- Messages ---

func (s *Store) AddMessage(m Message) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, conversation_id, role, content, generated_responses, selected_response, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.Role, m.Content, m.GeneratedResponses, m.SelectedResponse, nowRFC3339(),
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, nowRFC3339(), m.ConversationID)
	return err
}

func (s *Store) ListMessages(conversationID string) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, role, content, generated_responses, selected_response, created_at
		FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC`, conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// LastMessage returns the most recent message in the conversation, or
// ErrNotFound when the conversation has no messages yet.
func (s *Store) LastMessage(conversationID string) (Message, error) {
	row := s.db.QueryRow(`
		SELECT id, conversation_id, role, content, generated_responses, selected_response, created_at
		FROM messages WHERE conversation_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, conversationID,
	)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return Message{}, ErrNotFound
	}
	return m, err
}

func (s *Store) SetGeneratedResponses(messageID, responsesJSON string) error {
	res, err := s.db.Exec(`UPDATE messages SET generated_responses = ? WHERE id = ?`, responsesJSON, messageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetSelectedResponse(messageID, content string) error {
	res, err := s.db.Exec(`UPDATE messages SET selected_response = ? WHERE id = ?`, content, messageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var m Message
	var generated, selected sql.NullString
	var createdAt string
	if err := row.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &generated, &selected, &createdAt); err != nil {
		return Message{}, err
	}
	m.GeneratedResponses = generated.String
	m.SelectedResponse = selected.String
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return Message{}, err
	}
	m.CreatedAt = t
	return m, nil
}

// --- Arguments ---

func (s *Store) CreateArgument(a Argument) error {
	now := nowRFC3339()
	_, err := s.db.Exec(`
		INSERT INTO arguments (id, user_id, title, context, tone, style_examples, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Title, a.Context, a.Tone, a.StyleExamples, now, now,
	)
	return err
}

func (s *Store) GetArgument(id string) (Argument, error) {
	var a Argument
	var createdAt, updatedAt string
	var userID, styleExamples sql.NullString
	err := s.db.QueryRow(`
		SELECT id, user_id, title, context, tone, style_examples, created_at, updated_at
		FROM arguments WHERE id = ?`, id,
	).Scan(&a.ID, &userID, &a.Title, &a.Context, &a.Tone, &styleExamples, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Argument{}, ErrNotFound
	}
	if err != nil {
		return Argument{}, err
	}
	a.UserID = userID.String
	a.StyleExamples = styleExamples.String
	if a.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return Argument{}, err
	}
	if a.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return Argument{}, err
	}
	return a, nil
}

// ListArguments returns arguments owned by userID plus unowned ones,
// newest first.
func (s *Store) ListArguments(userID string) ([]Argument, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, context, tone, style_examples, created_at, updated_at
		FROM arguments WHERE user_id = ? OR user_id IS NULL OR user_id = ''
		ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Argument
	for rows.Next() {
		var a Argument
		var createdAt, updatedAt string
		var owner, styleExamples sql.NullString
		if err := rows.Scan(&a.ID, &owner, &a.Title, &a.Context, &a.Tone, &styleExamples, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		a.UserID = owner.String
		a.StyleExamples = styleExamples.String
		if a.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if a.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *Store) DeleteArgument(id string) error {
	res, err := s.db.Exec(`DELETE FROM arguments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Responses ---

// SaveResponses persists a batch of generated candidates for an argument.
func (s *Store) SaveResponses(records []ResponseRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning responses transaction: %w", err)
	}
	defer tx.Rollback()

	now := nowRFC3339()
	for _, r := range records {
		if _, err := tx.Exec(`
			INSERT INTO responses (id, argument_id, content, tone, generated_at)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.ArgumentID, r.Content, r.Tone, now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListResponses(argumentID string) ([]ResponseRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, argument_id, content, tone, generated_at
		FROM responses WHERE argument_id = ? ORDER BY generated_at DESC, rowid ASC`, argumentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ResponseRecord
	for rows.Next() {
		var r ResponseRecord
		var generatedAt string
		if err := rows.Scan(&r.ID, &r.ArgumentID, &r.Content, &r.Tone, &generatedAt); err != nil {
			return nil, err
		}
		if r.GeneratedAt, err = parseTime("generated_at", generatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- Style Uploads ---

func (s *Store) CreateStyleUpload(u StyleUpload) error {
	now := nowRFC3339()
	status := u.Status
	if status == "" {
		status = "pending"
	}
	_, err := s.db.Exec(`
		INSERT INTO style_uploads (id, conversation_id, filename, content_type, status, examples_json, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.ConversationID, u.Filename, u.ContentType, status, u.ExamplesJSON, u.Error, now, now,
	)
	return err
}

func (s *Store) GetStyleUpload(id string) (StyleUpload, error) {
	var u StyleUpload
	var createdAt, updatedAt string
	var conversationID, examples, uploadErr sql.NullString
	err := s.db.QueryRow(`
		SELECT id, conversation_id, filename, content_type, status, examples_json, error, created_at, updated_at
		FROM style_uploads WHERE id = ?`, id,
	).Scan(&u.ID, &conversationID, &u.Filename, &u.ContentType, &u.Status, &examples, &uploadErr, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return StyleUpload{}, ErrNotFound
	}
	if err != nil {
		return StyleUpload{}, err
	}
	u.ConversationID = conversationID.String
	u.ExamplesJSON = examples.String
	u.Error = uploadErr.String
	if u.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return StyleUpload{}, err
	}
	if u.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return StyleUpload{}, err
	}
	return u, nil
}

func (s *Store) CompleteStyleUpload(id, examplesJSON string) error {
	res, err := s.db.Exec(`
		UPDATE style_uploads SET status = 'completed', examples_json = ?, error = '', updated_at = ? WHERE id = ?`,
		examplesJSON, nowRFC3339(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) FailStyleUpload(id, errMsg string) error {
	res, err := s.db.Exec(`
		UPDATE style_uploads SET status = 'failed', error = ?, updated_at = ? WHERE id = ?`,
		errMsg, nowRFC3339(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Jobs ---

func (s *Store) EnqueueJob(job Job) error {
	now := nowRFC3339()
	runAfter := now
	if !job.RunAfter.IsZero() {
		runAfter = job.RunAfter.UTC().Format(time.RFC3339)
	}
	maxAttempts := job.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	_, err := s.db.Exec(`
		INSERT INTO jobs (id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', 0, ?, ?, ?, ?)`,
		job.ID, job.Type, job.PayloadJSON, maxAttempts, runAfter, now, now,
	)
	return err
}

func (s *Store) ClaimNextJob(types []string) (*Job, error) {
	if len(types) == 0 {
		return nil, nil
	}

	now := nowRFC3339()
	placeholders := strings.Repeat(",?", len(types)-1)
	query := `SELECT id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at, last_error
		FROM jobs
		WHERE status = 'pending' AND run_after <= ? AND type IN (?` + placeholders + `)
		ORDER BY run_after ASC, created_at ASC
		LIMIT 1`

	args := make([]interface{}, 0, len(types)+1)
	args = append(args, now)
	for _, t := range types {
		args = append(args, t)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning claim transaction: %w", err)
	}

	var j Job
	var runAfter, createdAt, updatedAt string
	var lastError sql.NullString
	err = tx.QueryRow(query, args...).Scan(
		&j.ID, &j.Type, &j.PayloadJSON, &j.Status, &j.Attempts, &j.MaxAttempts,
		&runAfter, &createdAt, &updatedAt, &lastError,
	)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return nil, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("selecting next job: %w", err)
	}

	res, err := tx.Exec(`UPDATE jobs SET status = 'running', updated_at = ? WHERE id = ? AND status = 'pending'`, now, j.ID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("updating job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("checking updated job rows: %w", err)
	}
	if n != 1 {
		tx.Rollback()
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	j.Status = "running"
	j.LastError = lastError.String
	if j.RunAfter, err = parseTime("run_after", runAfter); err != nil {
		return nil, err
	}
	if j.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if j.UpdatedAt, err = parseTime("updated_at", now); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) CompleteJob(id string) error {
	res, err := s.db.Exec(`UPDATE jobs SET status = 'completed', updated_at = ? WHERE id = ?`, nowRFC3339(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) FailJob(id string, errMsg string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning fail transaction: %w", err)
	}
	defer tx.Rollback()

	var attempts, maxAttempts int
	err = tx.QueryRow(`SELECT attempts, max_attempts FROM jobs WHERE id = ?`, id).Scan(&attempts, &maxAttempts)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	attempts++

	if attempts >= maxAttempts {
		_, err = tx.Exec(`UPDATE jobs SET status = 'failed', attempts = ?, last_error = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, now.Format(time.RFC3339), id)
	} else {
		backoff := time.Duration(math.Pow(2, float64(attempts))) * time.Second
		runAfter := now.Add(backoff)
		_, err = tx.Exec(`UPDATE jobs SET status = 'pending', attempts = ?, last_error = ?, run_after = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, runAfter.Format(time.RFC3339), now.Format(time.RFC3339), id)
	}

	if err != nil {
		return err
	}

	return tx.Commit()
}
