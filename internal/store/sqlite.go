package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	turnsMu sync.Mutex // serializes transcript writes to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		logged_in INTEGER NOT NULL DEFAULT 0,
		selected_app TEXT NOT NULL DEFAULT '',
		original_task TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT 'idle',
		clarifications INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_seen_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen_at);

	CREATE TABLE IF NOT EXISTS conversation_turns (
		token TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (token, seq)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateSession persists a new session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `
	INSERT INTO sessions (token, logged_in, selected_app, original_task, state, clarifications, created_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		session.Token, boolToInt(session.LoggedIn),
		session.SelectedApp, session.OriginalTask,
		string(session.State), session.Clarifications,
		session.CreatedAt.Unix(), session.LastSeenAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its token.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT token, logged_in, selected_app, original_task, state, clarifications, created_at, last_seen_at
		FROM sessions WHERE token = ?`

	row := s.db.QueryRowContext(ctx, query, token)

	var session domain.Session
	var loggedIn int
	var state string
	var createdAt, lastSeen int64

	err := row.Scan(
		&session.Token, &loggedIn, &session.SelectedApp, &session.OriginalTask,
		&state, &session.Clarifications, &createdAt, &lastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.LoggedIn = loggedIn != 0
	session.State = domain.ConversationState(state)
	session.CreatedAt = time.Unix(createdAt, 0)
	session.LastSeenAt = time.Unix(lastSeen, 0)

	return &session, nil
}

// UpdateSession updates the mutable builder fields of a session.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session *domain.Session) error {
	query := `
	UPDATE sessions SET selected_app = ?, original_task = ?, state = ?, clarifications = ?, last_seen_at = ?
	WHERE token = ?`

	result, err := s.db.ExecContext(ctx, query,
		session.SelectedApp, session.OriginalTask,
		string(session.State), session.Clarifications,
		time.Now().Unix(), session.Token,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// TouchSession updates the last_seen_at timestamp for a session.
func (s *SQLiteStore) TouchSession(ctx context.Context, token string, seen time.Time) error {
	query := `UPDATE sessions SET last_seen_at = ? WHERE token = ?`
	result, err := s.db.ExecContext(ctx, query, seen.Unix(), token)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("TouchSession affected 0 rows", "token", token)
	}
	return nil
}

// DeleteSession removes a session and its conversation turns.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_turns WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete turns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete session: %w", err)
	}
	return nil
}

// AppendTurn appends one conversation turn to a session's transcript.
func (s *SQLiteStore) AppendTurn(ctx context.Context, token string, turn domain.Turn) error {
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()

	query := `
	INSERT INTO conversation_turns (token, seq, role, content, created_at)
	VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM conversation_turns WHERE token = ?), ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		token, token, string(turn.Role), turn.Content, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// ReplaceTurns atomically replaces a session's transcript.
func (s *SQLiteStore) ReplaceTurns(ctx context.Context, token string, turns []domain.Turn) error {
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace turns: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_turns WHERE token = ?`, token); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}

	now := time.Now().Unix()
	for i, turn := range turns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversation_turns (token, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			token, i+1, string(turn.Role), turn.Content, now,
		)
		if err != nil {
			return fmt.Errorf("insert turn %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace turns: %w", err)
	}
	return nil
}

// GetTurns returns a session's transcript in append order.
func (s *SQLiteStore) GetTurns(ctx context.Context, token string) ([]domain.Turn, error) {
	query := `SELECT role, content FROM conversation_turns WHERE token = ? ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close turns rows", "error", closeErr)
		}
	}()

	var turns []domain.Turn
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turns = append(turns, domain.Turn{Role: domain.Role(role), Content: content})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

// DeleteExpiredSessions removes sessions idle longer than ttl.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()

	threshold := time.Now().Add(-ttl).Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin expiry sweep: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM conversation_turns WHERE token IN (SELECT token FROM sessions WHERE last_seen_at < ?)`,
		threshold,
	); err != nil {
		return 0, fmt.Errorf("delete expired turns: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit expiry sweep: %w", err)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// IsBusy reports whether err is a SQLite concurrency error
// (SQLITE_BUSY or "database is locked") that warrants a retry.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
