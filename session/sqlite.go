package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/logging"
)

// SQLiteStore is a durable SessionStore backed by a single SQLite file. A
// conversation keeps its history across process restarts, so the same
// session name resumes where the previous chat left off.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// SQLiteOptions configures a SQLiteStore.
type SQLiteOptions struct {
	Logger logging.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs the
// schema migration. Parent directories are created as needed.
func NewSQLiteStore(dbPath string, optFns ...func(o *SQLiteOptions)) (*SQLiteStore, error) {
	opts := SQLiteOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create session db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// One connection serializes writers; the chat is single-user anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}

	return &SQLiteStore{db: db, logger: opts.Logger}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			state      TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS events (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			payload    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts an empty session, replacing any previous session with the
// same id together with its events.
func (s *SQLiteStore) Create(id string) (*core.Session, error) {
	sess := core.NewSession(id)
	now := sess.Created.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM events WHERE session_id = ?", id); err != nil {
		return nil, fmt.Errorf("reset session events: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO sessions (id, state, created_at, updated_at) VALUES (?, '{}', ?, ?)",
		id, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Debug("session.sqlite.create", "session_id", id)

	return sess, nil
}

// Get loads the session row and its ordered event log.
func (s *SQLiteStore) Get(id string) (*core.Session, error) {
	var stateJSON, created, updated string
	err := s.db.QueryRow(
		"SELECT state, created_at, updated_at FROM sessions WHERE id = ?", id,
	).Scan(&stateJSON, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := core.NewSession(id)
	if err := json.Unmarshal([]byte(stateJSON), &sess.State); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	if sess.State == nil {
		sess.State = map[string]any{}
	}
	sess.Created, _ = time.Parse(time.RFC3339Nano, created)
	sess.Updated, _ = time.Parse(time.RFC3339Nano, updated)

	rows, err := s.db.Query("SELECT payload FROM events WHERE session_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, fmt.Errorf("load session events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ev core.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("decode session event: %w", err)
		}
		sess.Events = append(sess.Events, ev)
	}

	return sess, rows.Err()
}

// AppendEvent stores ev at the end of the session's log, creating the
// session row when it does not exist yet.
func (s *SQLiteStore) AppendEvent(sessionID string, ev core.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ensureSession(tx, sessionID, now); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO events (session_id, payload, created_at) VALUES (?, ?, ?)",
		sessionID, string(payload), now,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if _, err := tx.Exec("UPDATE sessions SET updated_at = ? WHERE id = ?", now, sessionID); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Debug("session.sqlite.append", "session_id", sessionID, "event_id", ev.ID, "author", ev.Author)

	return nil
}

// ApplyDelta merges delta into the stored session state.
func (s *SQLiteStore) ApplyDelta(sessionID string, delta map[string]interface{}) error {
	if len(delta) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ensureSession(tx, sessionID, now); err != nil {
		return err
	}

	var stateJSON string
	if err := tx.QueryRow("SELECT state FROM sessions WHERE id = ?", sessionID).Scan(&stateJSON); err != nil {
		return fmt.Errorf("load session state: %w", err)
	}
	state := map[string]any{}
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return fmt.Errorf("decode session state: %w", err)
	}
	for k, v := range delta {
		state[k] = v
	}
	merged, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if _, err := tx.Exec("UPDATE sessions SET state = ?, updated_at = ? WHERE id = ?", string(merged), now, sessionID); err != nil {
		return fmt.Errorf("update session state: %w", err)
	}

	return tx.Commit()
}

func ensureSession(tx *sql.Tx, id, now string) error {
	_, err := tx.Exec(
		"INSERT OR IGNORE INTO sessions (id, state, created_at, updated_at) VALUES (?, '{}', ?, ?)",
		id, now, now,
	)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}
