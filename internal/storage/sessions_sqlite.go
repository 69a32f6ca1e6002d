package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
)

const (
	sessionsFileName = "sessions.db"
	sessionNotesTag  = "session notes"
)

// SessionDB stores completed sessions and their journal entries in SQLite.
type SessionDB struct {
	db  *sql.DB
	now func() time.Time

	mu     sync.RWMutex
	custom []model.CustomPracticeType
}

// SessionDBPath returns the database location under dir.
func SessionDBPath(dir string) string {
	return filepath.Join(dir, sessionsFileName)
}

// OpenSessionDB opens or creates the session database at dbPath.
func OpenSessionDB(dbPath string) (*SessionDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SessionDB{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return store, nil
}

func (store *SessionDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS meditation_sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			duration_seconds INTEGER NOT NULL,
			practice_type TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 1,
			notes TEXT
		);

		CREATE TABLE IF NOT EXISTS journal_entries (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			tags TEXT NOT NULL,
			practice_type TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_started ON meditation_sessions(started_at);
		CREATE INDEX IF NOT EXISTS idx_journal_created ON journal_entries(created_at);
	`
	_, err := store.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (store *SessionDB) Close() error {
	return store.db.Close()
}

// SetCustomPracticeTypes supplies the user's custom labels for journal titles.
func (store *SessionDB) SetCustomPracticeTypes(custom []model.CustomPracticeType) {
	store.mu.Lock()
	store.custom = append([]model.CustomPracticeType(nil), custom...)
	store.mu.Unlock()
}

// SaveCompletedSession records a finished session. Non-empty notes also
// create a journal entry titled after the practice, date and length.
func (store *SessionDB) SaveCompletedSession(ctx context.Context, session model.CompletedSession) error {
	if session.DurationSeconds < 0 {
		return fmt.Errorf("save session: negative duration %d", session.DurationSeconds)
	}
	endedAt := store.now().UTC()
	startedAt := endedAt.Add(-time.Duration(session.DurationSeconds) * time.Second)
	notes := strings.TrimSpace(session.Notes)

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}
	defer tx.Rollback()

	var storedNotes any
	if notes != "" {
		storedNotes = notes
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meditation_sessions (id, started_at, ended_at, duration_seconds, practice_type, completed, notes)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, uuid.NewString(), startedAt, endedAt, session.DurationSeconds, session.PracticeType, storedNotes); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if notes != "" {
		tags, _ := json.Marshal([]string{sessionNotesTag})
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO journal_entries (id, title, content, tags, practice_type, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), store.journalTitle(session, endedAt), notes, string(tags), session.PracticeType, endedAt); err != nil {
			return fmt.Errorf("insert journal entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

func (store *SessionDB) journalTitle(session model.CompletedSession, endedAt time.Time) string {
	store.mu.RLock()
	name := model.PracticeShortName(session.PracticeType, store.custom)
	store.mu.RUnlock()
	return fmt.Sprintf("%s - %s - %d min", name, endedAt.Local().Format("Jan 2, 2006"), session.DurationSeconds/60)
}

// RecentSessions returns the newest sessions first.
func (store *SessionDB) RecentSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := store.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, duration_seconds, practice_type, completed, COALESCE(notes, '')
		FROM meditation_sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []model.SessionRecord
	for rows.Next() {
		var record model.SessionRecord
		if err := rows.Scan(&record.ID, &record.StartedAt, &record.EndedAt, &record.DurationSeconds, &record.PracticeType, &record.Completed, &record.Notes); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// JournalEntries returns the newest journal entries first.
func (store *SessionDB) JournalEntries(ctx context.Context, limit int) ([]model.JournalEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := store.db.QueryContext(ctx, `
		SELECT id, title, content, tags, COALESCE(practice_type, ''), created_at
		FROM journal_entries
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		var entry model.JournalEntry
		var tagsJSON string
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Content, &tagsJSON, &entry.PracticeType, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &entry.Tags); err != nil {
			return nil, fmt.Errorf("decode journal tags: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Totals summarises everything stored.
func (store *SessionDB) Totals(ctx context.Context) (model.PracticeTotals, error) {
	var totals model.PracticeTotals
	if err := store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0) FROM meditation_sessions
	`).Scan(&totals.Sessions, &totals.TotalSeconds); err != nil {
		return totals, fmt.Errorf("sum sessions: %w", err)
	}
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries`).Scan(&totals.JournalEntries); err != nil {
		return totals, fmt.Errorf("count journal: %w", err)
	}
	return totals, nil
}

var _ timekeeper.SessionSaver = (*SessionDB)(nil)
